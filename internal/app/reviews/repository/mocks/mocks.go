package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"cityspot/internal/app/reviews/entity"
)

// MockReviewRepository мок для ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) GetAll(ctx context.Context) ([]entity.ReviewDetail, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ReviewDetail), args.Error(1)
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id string) (*entity.ReviewDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ReviewDetail), args.Error(1)
}

func (m *MockReviewRepository) Update(ctx context.Context, id string, upd *entity.ReviewUpdate) (*entity.Review, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id string) (*entity.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *MockReviewRepository) Like(ctx context.Context, id string, userID string) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewRepository) Unlike(ctx context.Context, id string, userID string) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}

// MockBusinessRepository мок для BusinessRepository
type MockBusinessRepository struct {
	mock.Mock
}

func (m *MockBusinessRepository) AttachReview(ctx context.Context, businessID, reviewID primitive.ObjectID, tags []primitive.ObjectID) error {
	args := m.Called(ctx, businessID, reviewID, tags)
	return args.Error(0)
}

func (m *MockBusinessRepository) DetachReview(ctx context.Context, businessID, reviewID primitive.ObjectID) error {
	args := m.Called(ctx, businessID, reviewID)
	return args.Error(0)
}

// MockUserRepository мок для UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) AddLikedReview(ctx context.Context, userID string, reviewID primitive.ObjectID) error {
	args := m.Called(ctx, userID, reviewID)
	return args.Error(0)
}

func (m *MockUserRepository) RemoveLikedReview(ctx context.Context, userID string, reviewID primitive.ObjectID) error {
	args := m.Called(ctx, userID, reviewID)
	return args.Error(0)
}

func (m *MockUserRepository) RemoveLikedReviewFromAll(ctx context.Context, reviewID primitive.ObjectID) error {
	args := m.Called(ctx, reviewID)
	return args.Error(0)
}

// MockMessagePublisher мок для Kafka MessagePublisher
type MockMessagePublisher struct {
	mock.Mock
	Messages [][]byte
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	m.Messages = append(m.Messages, value)
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// FakeTransactionManager выполняет fn без реальной транзакции
type FakeTransactionManager struct{}

func (f *FakeTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
