package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"cityspot/pkg/metrics"
)

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{
		collection: db.Collection("users"),
	}
}

func (r *userRepository) AddLikedReview(ctx context.Context, userID string, reviewID primitive.ObjectID) error {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpUpdate, "users")
	defer timer.ObserveDuration()

	update := bson.M{"$addToSet": bson.M{"liked_reviews": reviewID}}

	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, update); err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpUpdate)
		return fmt.Errorf("failed to add liked review: %w", err)
	}

	return nil
}

func (r *userRepository) RemoveLikedReview(ctx context.Context, userID string, reviewID primitive.ObjectID) error {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpUpdate, "users")
	defer timer.ObserveDuration()

	update := bson.M{"$pull": bson.M{"liked_reviews": reviewID}}

	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, update); err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpUpdate)
		return fmt.Errorf("failed to remove liked review: %w", err)
	}

	return nil
}

// RemoveLikedReviewFromAll чистит ссылку на удаленный отзыв у всех пользователей
func (r *userRepository) RemoveLikedReviewFromAll(ctx context.Context, reviewID primitive.ObjectID) error {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpUpdate, "users")
	defer timer.ObserveDuration()

	filter := bson.M{"liked_reviews": reviewID}
	update := bson.M{"$pull": bson.M{"liked_reviews": reviewID}}

	if _, err := r.collection.UpdateMany(ctx, filter, update); err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpUpdate)
		return fmt.Errorf("failed to remove liked review from users: %w", err)
	}

	return nil
}
