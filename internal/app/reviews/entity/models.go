package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID          primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Title       string               `json:"title" bson:"title"`
	Description string               `json:"description" bson:"description"`
	StarRating  int                  `json:"star_rating" bson:"star_rating"` // Оценка от 1 до 5
	ReviewImage string               `json:"review_image" bson:"review_image"`
	Tags        []primitive.ObjectID `json:"tags" bson:"tags"`
	Author      string               `json:"author" bson:"author"`           // UUID пользователя из Auth Service, неизменяем
	BusinessID  primitive.ObjectID   `json:"business_id" bson:"business_id"` // Заведение, к которому относится отзыв, неизменяемо
	LikeCount   int                  `json:"like_count" bson:"like_count"`
	Likes       []string             `json:"likes" bson:"likes"` // UUID пользователей, поставивших лайк (без дубликатов)
	CreatedAt   time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at" bson:"updated_at"`
}

// ReviewDetail - отзыв с развернутыми ссылками (теги и имя автора)
// Формируется aggregation pipeline с $lookup по коллекциям tags и users
type ReviewDetail struct {
	ID          primitive.ObjectID `json:"id" bson:"_id"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	StarRating  int                `json:"star_rating" bson:"star_rating"`
	ReviewImage string             `json:"review_image" bson:"review_image"`
	Tags        []Tag              `json:"tags" bson:"tags"`
	Author      string             `json:"author" bson:"author"`
	AuthorName  string             `json:"author_name" bson:"author_name"`
	BusinessID  primitive.ObjectID `json:"business_id" bson:"business_id"`
	LikeCount   int                `json:"like_count" bson:"like_count"`
	Likes       []string           `json:"likes" bson:"likes"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

type Tag struct {
	ID   primitive.ObjectID `json:"id" bson:"_id"`
	Name string             `json:"name" bson:"name"`
}

// Business хранится в коллекции businesses
// Сервис отзывов трогает только обратные ссылки: reviews, tags и review_count
type Business struct {
	ID          primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name        string               `json:"name" bson:"name"`
	Reviews     []primitive.ObjectID `json:"reviews" bson:"reviews"`
	Tags        []primitive.ObjectID `json:"tags" bson:"tags"`
	ReviewCount int                  `json:"review_count" bson:"review_count"`
}

// User хранится в коллекции users, _id = UUID из Auth Service
// Сервис отзывов трогает только liked_reviews
type User struct {
	ID           string               `json:"id" bson:"_id"`
	Name         string               `json:"name" bson:"name"`
	LikedReviews []primitive.ObjectID `json:"liked_reviews" bson:"liked_reviews"`
}

// ReviewUpdate - изменяемые поля отзыва
// author, business_id и tags после создания не меняются
type ReviewUpdate struct {
	Title       string
	Description string
	StarRating  int
	ReviewImage string
}

type ReviewEvent struct {
	EventType  string    `json:"event_type"` // REVIEW_CREATED, REVIEW_LIKED, REVIEW_UNLIKED, REVIEW_DELETED
	ReviewID   string    `json:"review_id"`
	BusinessID string    `json:"business_id"`
	UserID     string    `json:"user_id"`
	StarRating int       `json:"star_rating,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

const (
	EventReviewCreated = "REVIEW_CREATED"
	EventReviewLiked   = "REVIEW_LIKED"
	EventReviewUnliked = "REVIEW_UNLIKED"
	EventReviewDeleted = "REVIEW_DELETED"
)
