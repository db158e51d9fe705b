package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"cityspot/internal/app/reviews/entity"
)

// ReviewRepository определяет методы для работы с отзывами в MongoDB
type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetAll(ctx context.Context) ([]entity.ReviewDetail, error)
	GetByID(ctx context.Context, id string) (*entity.ReviewDetail, error)
	// Update возвращает документ ПОСЛЕ применения изменений
	Update(ctx context.Context, id string, upd *entity.ReviewUpdate) (*entity.Review, error)
	// Delete возвращает удаленный документ для каскадной очистки обратных ссылок
	Delete(ctx context.Context, id string) (*entity.Review, error)
	// Like применяет лайк только если пользователь еще не в likes
	// Возвращает false если лайк уже стоял (повторный лайк - no-op)
	Like(ctx context.Context, id string, userID string) (bool, error)
	// Unlike снимает лайк только если пользователь есть в likes,
	// поэтому like_count не может уйти ниже нуля
	Unlike(ctx context.Context, id string, userID string) (bool, error)
}

// BusinessRepository управляет обратными ссылками заведения на отзывы
type BusinessRepository interface {
	// AttachReview добавляет id отзыва и его теги в коллекции заведения
	// и увеличивает review_count - одним атомарным обновлением документа
	AttachReview(ctx context.Context, businessID, reviewID primitive.ObjectID, tags []primitive.ObjectID) error
	// DetachReview убирает id отзыва и уменьшает review_count
	DetachReview(ctx context.Context, businessID, reviewID primitive.ObjectID) error
}

// UserRepository управляет списком liked_reviews пользователя
type UserRepository interface {
	AddLikedReview(ctx context.Context, userID string, reviewID primitive.ObjectID) error
	RemoveLikedReview(ctx context.Context, userID string, reviewID primitive.ObjectID) error
	// RemoveLikedReviewFromAll убирает id отзыва у всех пользователей (каскад при удалении)
	RemoveLikedReviewFromAll(ctx context.Context, reviewID primitive.ObjectID) error
}
