package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"cityspot/internal/app/reviews/entity"
	"cityspot/internal/app/reviews/infrastructure"
	"cityspot/internal/app/reviews/repository"
	"cityspot/pkg/logger"
	"cityspot/pkg/metrics"
)

const serviceName = "reviews-service"

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrReviewNotFound   = errors.New("review not found")
	ErrBusinessNotFound = errors.New("business not found")
)

// ReviewService обрабатывает бизнес-логику отзывов.
// Записи, затрагивающие несколько коллекций (отзыв + заведение,
// отзыв + пользователь), выполняются в одной транзакции MongoDB
type ReviewService struct {
	reviewRepo    repository.ReviewRepository
	businessRepo  repository.BusinessRepository
	userRepo      repository.UserRepository
	txn           infrastructure.TransactionManager
	kafkaProducer infrastructure.MessagePublisher
}

// NewReviewService создает новый сервис отзывов с внедрением зависимостей
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	businessRepo repository.BusinessRepository,
	userRepo repository.UserRepository,
	txn infrastructure.TransactionManager,
	kafkaProducer infrastructure.MessagePublisher,
) *ReviewService {
	return &ReviewService{
		reviewRepo:    reviewRepo,
		businessRepo:  businessRepo,
		userRepo:      userRepo,
		txn:           txn,
		kafkaProducer: kafkaProducer,
	}
}

// GetReviews получает все отзывы с развернутыми тегами и именем автора
func (s *ReviewService) GetReviews(ctx context.Context) ([]entity.ReviewDetail, error) {
	reviews, err := s.reviewRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}

	return reviews, nil
}

// GetReview получает отзыв по ID
func (s *ReviewService) GetReview(ctx context.Context, reviewID string) (*entity.ReviewDetail, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	return review, nil
}

// CreateReview создает новый отзыв
// 1. Сохраняет отзыв и обратные ссылки заведения в одной транзакции
// 2. Отправляет событие REVIEW_CREATED в Kafka (best effort)
func (s *ReviewService) CreateReview(ctx context.Context, userID string, req *entity.CreateReviewRequest, imagePath string) (*entity.Review, error) {
	businessID, err := primitive.ObjectIDFromHex(req.BusinessID)
	if err != nil {
		return nil, ErrBusinessNotFound
	}

	tags := make([]primitive.ObjectID, 0, len(req.Tags))
	for _, t := range req.Tags {
		tagID, err := primitive.ObjectIDFromHex(t)
		if err != nil {
			return nil, fmt.Errorf("invalid tag id %q", t)
		}
		tags = append(tags, tagID)
	}

	review := &entity.Review{
		Title:       req.Title,
		Description: req.Description,
		StarRating:  req.StarRating,
		ReviewImage: imagePath,
		Tags:        tags,
		Author:      userID,
		BusinessID:  businessID,
	}

	// Вставка отзыва и обновление заведения фиксируются вместе:
	// при неизвестном business_id отзыв не останется в базе
	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.reviewRepo.Create(ctx, review); err != nil {
			return err
		}
		return s.businessRepo.AttachReview(ctx, businessID, review.ID, tags)
	})
	if err != nil {
		if errors.Is(err, repository.ErrBusinessNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	metrics.RecordReviewCreated(serviceName, review.StarRating)

	s.publishReviewEvent(ctx, entity.ReviewEvent{
		EventType:  entity.EventReviewCreated,
		ReviewID:   review.ID.Hex(),
		BusinessID: businessID.Hex(),
		UserID:     userID,
		StarRating: review.StarRating,
		Timestamp:  time.Now(),
	})

	return review, nil
}

// LikeReview ставит лайк отзыву и добавляет отзыв в liked_reviews пользователя.
// Повторный лайк того же пользователя - no-op без ошибки
func (s *ReviewService) LikeReview(ctx context.Context, reviewID string, userID string) error {
	var liked bool

	err := s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		liked, err = s.reviewRepo.Like(ctx, reviewID, userID)
		if err != nil {
			return err
		}
		if !liked {
			return nil
		}
		oid, _ := primitive.ObjectIDFromHex(reviewID)
		return s.userRepo.AddLikedReview(ctx, userID, oid)
	})
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to like review: %w", err)
	}

	if liked {
		metrics.RecordReviewLike(serviceName, "like")
		s.publishReviewEvent(ctx, entity.ReviewEvent{
			EventType: entity.EventReviewLiked,
			ReviewID:  reviewID,
			UserID:    userID,
			Timestamp: time.Now(),
		})
	}

	return nil
}

// UnlikeReview снимает лайк. Снятие несуществующего лайка - no-op,
// like_count никогда не уходит ниже нуля
func (s *ReviewService) UnlikeReview(ctx context.Context, reviewID string, userID string) error {
	var unliked bool

	err := s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		unliked, err = s.reviewRepo.Unlike(ctx, reviewID, userID)
		if err != nil {
			return err
		}
		if !unliked {
			return nil
		}
		oid, _ := primitive.ObjectIDFromHex(reviewID)
		return s.userRepo.RemoveLikedReview(ctx, userID, oid)
	})
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to unlike review: %w", err)
	}

	if unliked {
		metrics.RecordReviewLike(serviceName, "unlike")
		s.publishReviewEvent(ctx, entity.ReviewEvent{
			EventType: entity.EventReviewUnliked,
			ReviewID:  reviewID,
			UserID:    userID,
			Timestamp: time.Now(),
		})
	}

	return nil
}

// UpdateReview обновляет изменяемые поля отзыва
// Возвращает документ ПОСЛЕ обновления
func (s *ReviewService) UpdateReview(ctx context.Context, reviewID string, req *entity.UpdateReviewRequest, imagePath string) (*entity.Review, error) {
	upd := &entity.ReviewUpdate{
		Title:       req.Title,
		Description: req.Description,
		StarRating:  req.StarRating,
		ReviewImage: imagePath,
	}

	review, err := s.reviewRepo.Update(ctx, reviewID, upd)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	return review, nil
}

// DeleteReview удаляет отзыв и каскадно чистит обратные ссылки:
// id отзыва убирается из reviews заведения и из liked_reviews всех пользователей
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID string) (*entity.Review, error) {
	var review *entity.Review

	err := s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		review, err = s.reviewRepo.Delete(ctx, reviewID)
		if err != nil {
			return err
		}
		if err := s.businessRepo.DetachReview(ctx, review.BusinessID, review.ID); err != nil {
			// Заведение могло быть удалено раньше отзыва - это не причина
			// откатывать удаление
			if !errors.Is(err, repository.ErrBusinessNotFound) {
				return err
			}
		}
		return s.userRepo.RemoveLikedReviewFromAll(ctx, review.ID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to delete review: %w", err)
	}

	s.publishReviewEvent(ctx, entity.ReviewEvent{
		EventType:  entity.EventReviewDeleted,
		ReviewID:   review.ID.Hex(),
		BusinessID: review.BusinessID.Hex(),
		UserID:     review.Author,
		Timestamp:  time.Now(),
	})

	return review, nil
}

// publishReviewEvent отправляет событие об отзыве в Kafka
// Ошибки логируются, но не прерывают выполнение - запись уже зафиксирована
func (s *ReviewService) publishReviewEvent(ctx context.Context, event entity.ReviewEvent) {
	eventData, err := json.Marshal(event)
	if err != nil {
		logger.Warn().Err(err).Str("event_type", event.EventType).Msg("Failed to marshal review event")
		return
	}

	// Ключ = ReviewID для партиционирования
	if err := s.kafkaProducer.PublishMessage(ctx, event.ReviewID, eventData); err != nil {
		logger.Warn().Err(err).Str("event_type", event.EventType).Msg("Failed to publish review event")
	}
}
