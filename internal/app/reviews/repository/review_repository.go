package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cityspot/internal/app/reviews/entity"
	"cityspot/pkg/logger"
	"cityspot/pkg/metrics"
)

const serviceName = "reviews-service"

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrReviewNotFound   = errors.New("review not found")
	ErrBusinessNotFound = errors.New("business not found")
)

type reviewRepository struct {
	collection *mongo.Collection
}

// NewReviewRepository создает новый репозиторий отзывов
// Автоматически создает индексы по business_id и author
func NewReviewRepository(db *mongo.Database) ReviewRepository {
	collection := db.Collection("reviews")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "business_id", Value: 1}},
			Options: options.Index().SetName("business_id_idx"),
		},
		{
			Keys:    bson.D{{Key: "author", Value: 1}},
			Options: options.Index().SetName("author_idx"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		// Индексы могут уже существовать - не прерываем работу
		logger.Warn().Err(err).Msg("Failed to create review indexes")
	}

	return &reviewRepository{
		collection: collection,
	}
}

// populateStages разворачивает теги и имя автора ($lookup по tags и users)
func populateStages() mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "tags"},
			{Key: "localField", Value: "tags"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "tags"},
		}}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "author"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "author_docs"},
		}}},
		bson.D{{Key: "$addFields", Value: bson.D{
			{Key: "author_name", Value: bson.D{{Key: "$first", Value: "$author_docs.name"}}},
		}}},
		bson.D{{Key: "$project", Value: bson.D{{Key: "author_docs", Value: 0}}}},
	}
}

// Create создает новый отзыв в MongoDB
func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpInsert, "reviews")
	defer timer.ObserveDuration()

	review.CreatedAt = time.Now()
	review.UpdatedAt = review.CreatedAt
	if review.Tags == nil {
		review.Tags = []primitive.ObjectID{}
	}
	review.Likes = []string{}
	review.LikeCount = 0

	result, err := r.collection.InsertOne(ctx, review)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpInsert)
		return fmt.Errorf("failed to create review: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		review.ID = oid
	}

	return nil
}

// GetAll получает все отзывы с развернутыми тегами и именем автора
func (r *reviewRepository) GetAll(ctx context.Context) ([]entity.ReviewDetail, error) {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpAggregate, "reviews")
	defer timer.ObserveDuration()

	pipeline := append(mongo.Pipeline{}, populateStages()...)
	pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}})

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpAggregate)
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var reviews []entity.ReviewDetail
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	return reviews, nil
}

// GetByID получает отзыв по ID с развернутыми ссылками
// Некорректный hex трактуется как "не найдено", а не как отдельная ошибка
func (r *reviewRepository) GetByID(ctx context.Context, id string) (*entity.ReviewDetail, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrReviewNotFound
	}

	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpAggregate, "reviews")
	defer timer.ObserveDuration()

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "_id", Value: objectID}}}},
	}
	pipeline = append(pipeline, populateStages()...)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpAggregate)
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	defer cursor.Close(ctx)

	var reviews []entity.ReviewDetail
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode review: %w", err)
	}
	if len(reviews) == 0 {
		return nil, ErrReviewNotFound
	}

	return &reviews[0], nil
}

// Update обновляет изменяемые поля отзыва и возвращает документ после обновления
func (r *reviewRepository) Update(ctx context.Context, id string, upd *entity.ReviewUpdate) (*entity.Review, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrReviewNotFound
	}

	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpUpdate, "reviews")
	defer timer.ObserveDuration()

	set := bson.M{
		"title":       upd.Title,
		"description": upd.Description,
		"star_rating": upd.StarRating,
		"updated_at":  time.Now(),
	}
	if upd.ReviewImage != "" {
		set["review_image"] = upd.ReviewImage
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var review entity.Review
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrReviewNotFound
		}
		metrics.RecordMongoError(serviceName, metrics.MongoOpUpdate)
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	return &review, nil
}

// Delete удаляет отзыв и возвращает удаленный документ
func (r *reviewRepository) Delete(ctx context.Context, id string) (*entity.Review, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrReviewNotFound
	}

	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpDelete, "reviews")
	defer timer.ObserveDuration()

	var review entity.Review
	err = r.collection.FindOneAndDelete(ctx, bson.M{"_id": objectID}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrReviewNotFound
		}
		metrics.RecordMongoError(serviceName, metrics.MongoOpDelete)
		return nil, fmt.Errorf("failed to delete review: %w", err)
	}

	return &review, nil
}

// Like ставит лайк: $inc like_count и $addToSet likes одним атомарным обновлением.
// Фильтр по likes гарантирует идемпотентность: повторный лайк не меняет документ
func (r *reviewRepository) Like(ctx context.Context, id string, userID string) (bool, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, ErrReviewNotFound
	}

	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpUpdate, "reviews")
	defer timer.ObserveDuration()

	filter := bson.M{
		"_id":   objectID,
		"likes": bson.M{"$ne": userID},
	}
	update := bson.M{
		"$inc":      bson.M{"like_count": 1},
		"$addToSet": bson.M{"likes": userID},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpUpdate)
		return false, fmt.Errorf("failed to like review: %w", err)
	}

	if result.MatchedCount == 0 {
		// Либо отзыва нет, либо лайк уже стоит - различаем отдельным запросом
		return false, r.exists(ctx, objectID)
	}

	return true, nil
}

// Unlike снимает лайк: фильтр по членству в likes не дает like_count уйти в минус
func (r *reviewRepository) Unlike(ctx context.Context, id string, userID string) (bool, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, ErrReviewNotFound
	}

	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpUpdate, "reviews")
	defer timer.ObserveDuration()

	filter := bson.M{
		"_id":   objectID,
		"likes": userID,
	}
	update := bson.M{
		"$inc":  bson.M{"like_count": -1},
		"$pull": bson.M{"likes": userID},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpUpdate)
		return false, fmt.Errorf("failed to unlike review: %w", err)
	}

	if result.MatchedCount == 0 {
		return false, r.exists(ctx, objectID)
	}

	return true, nil
}

// exists возвращает nil если отзыв существует, иначе ErrReviewNotFound
func (r *reviewRepository) exists(ctx context.Context, id primitive.ObjectID) error {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to check review existence: %w", err)
	}
	if count == 0 {
		return ErrReviewNotFound
	}
	return nil
}
