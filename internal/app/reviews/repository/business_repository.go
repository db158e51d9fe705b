package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"cityspot/pkg/metrics"
)

type businessRepository struct {
	collection *mongo.Collection
}

func NewBusinessRepository(db *mongo.Database) BusinessRepository {
	return &businessRepository{
		collection: db.Collection("businesses"),
	}
}

// AttachReview добавляет обратные ссылки на отзыв в документ заведения:
// $addToSet не создает дубликатов, $each раскрывает массив тегов поэлементно
func (r *businessRepository) AttachReview(ctx context.Context, businessID, reviewID primitive.ObjectID, tags []primitive.ObjectID) error {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpUpdate, "businesses")
	defer timer.ObserveDuration()

	if tags == nil {
		tags = []primitive.ObjectID{}
	}

	update := bson.M{
		"$addToSet": bson.M{
			"reviews": reviewID,
			"tags":    bson.M{"$each": tags},
		},
		"$inc": bson.M{"review_count": 1},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": businessID}, update)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpUpdate)
		return fmt.Errorf("failed to attach review to business: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrBusinessNotFound
	}

	return nil
}

// DetachReview убирает ссылку на удаленный отзыв и уменьшает review_count
func (r *businessRepository) DetachReview(ctx context.Context, businessID, reviewID primitive.ObjectID) error {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpUpdate, "businesses")
	defer timer.ObserveDuration()

	update := bson.M{
		"$pull": bson.M{"reviews": reviewID},
		"$inc":  bson.M{"review_count": -1},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": businessID}, update)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpUpdate)
		return fmt.Errorf("failed to detach review from business: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrBusinessNotFound
	}

	return nil
}
