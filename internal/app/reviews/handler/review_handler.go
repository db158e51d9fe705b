package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"cityspot/internal/app/reviews/entity"
	"cityspot/internal/app/reviews/service"
	"cityspot/pkg/logger"
)

type ReviewServiceInterface interface {
	GetReviews(ctx context.Context) ([]entity.ReviewDetail, error)
	GetReview(ctx context.Context, reviewID string) (*entity.ReviewDetail, error)
	CreateReview(ctx context.Context, userID string, req *entity.CreateReviewRequest, imagePath string) (*entity.Review, error)
	LikeReview(ctx context.Context, reviewID string, userID string) error
	UnlikeReview(ctx context.Context, reviewID string, userID string) error
	UpdateReview(ctx context.Context, reviewID string, req *entity.UpdateReviewRequest, imagePath string) (*entity.Review, error)
	DeleteReview(ctx context.Context, reviewID string) (*entity.Review, error)
}

type ReviewHandler struct {
	reviewService ReviewServiceInterface
	validator     *validator.Validate
	uploadDir     string
	maxImageSize  int64
}

func NewReviewHandler(reviewService ReviewServiceInterface, uploadDir string, maxImageSize int64) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
		uploadDir:     uploadDir,
		maxImageSize:  maxImageSize,
	}
}

// GetReviews отдает все отзывы с развернутыми тегами и именем автора.
// Пустая база - это 404, а не пустой список: так ведет себя API,
// на которое завязаны клиенты
func (h *ReviewHandler) GetReviews(c *gin.Context) {
	reviews, err := h.reviewService.GetReviews(c.Request.Context())
	if err != nil {
		h.internalError(c, err, "Failed to get reviews")
		return
	}

	if len(reviews) == 0 {
		c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: entity.ErrKindNotFound, Message: "No reviews found"})
		return
	}

	c.JSON(http.StatusOK, entity.ReviewListResponse{
		Reviews: reviews,
		Total:   len(reviews),
	})
}

func (h *ReviewHandler) GetReviewByID(c *gin.Context) {
	review, err := h.reviewService.GetReview(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: entity.ErrKindNotFound, Message: "Review not found"})
			return
		}
		h.internalError(c, err, "Failed to get review")
		return
	}

	c.JSON(http.StatusOK, gin.H{"review": review})
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	var req entity.CreateReviewRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: entity.ErrKindValidation, Message: "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: entity.ErrKindValidation, Message: formatValidationError(err)})
		return
	}

	imagePath, err := h.saveReviewImage(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: entity.ErrKindValidation, Message: err.Error()})
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), userID, &req, imagePath)
	if err != nil {
		if errors.Is(err, service.ErrBusinessNotFound) {
			c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: entity.ErrKindNotFound, Message: "Business not found"})
			return
		}
		h.internalError(c, err, "Failed to create review")
		return
	}

	c.JSON(http.StatusCreated, entity.ReviewResponse{
		Review:  review,
		Message: "Review successfully created!",
	})
}

func (h *ReviewHandler) LikeReview(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	if err := h.reviewService.LikeReview(c.Request.Context(), c.Param("id"), userID); err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: entity.ErrKindNotFound, Message: "Review not found"})
			return
		}
		h.internalError(c, err, "Failed to like review")
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Successfully liked review!"})
}

func (h *ReviewHandler) UnlikeReview(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	if err := h.reviewService.UnlikeReview(c.Request.Context(), c.Param("id"), userID); err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: entity.ErrKindNotFound, Message: "Review not found"})
			return
		}
		h.internalError(c, err, "Failed to unlike review")
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Successfully unliked review!"})
}

func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	if _, ok := h.callerID(c); !ok {
		return
	}

	var req entity.UpdateReviewRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: entity.ErrKindValidation, Message: "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: entity.ErrKindValidation, Message: formatValidationError(err)})
		return
	}

	// Новое изображение опционально: без файла остается прежнее
	imagePath, err := h.saveReviewImage(c)
	if err != nil && !errors.Is(err, ErrNoImage) {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: entity.ErrKindValidation, Message: err.Error()})
		return
	}

	review, err := h.reviewService.UpdateReview(c.Request.Context(), c.Param("id"), &req, imagePath)
	if err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: entity.ErrKindNotFound, Message: "Review not found"})
			return
		}
		h.internalError(c, err, "Failed to update review")
		return
	}

	c.JSON(http.StatusOK, entity.ReviewResponse{
		Review:  review,
		Message: "Review successfully updated!",
	})
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	if _, ok := h.callerID(c); !ok {
		return
	}

	review, err := h.reviewService.DeleteReview(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: entity.ErrKindNotFound, Message: "Review not found"})
			return
		}
		h.internalError(c, err, "Failed to delete review")
		return
	}

	c.JSON(http.StatusOK, entity.ReviewResponse{
		Review:  review,
		Message: "Review successfully deleted!",
	})
}

// callerID извлекает id аутентифицированного пользователя из контекста Gin
func (h *ReviewHandler) callerID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "unauthorized", Message: "Unauthorized"})
		return "", false
	}

	userIDStr, ok := userID.(string)
	if !ok || userIDStr == "" {
		c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "unauthorized", Message: "Invalid user ID"})
		return "", false
	}

	return userIDStr, true
}

// internalError логирует ошибку хранилища и отдает клиенту общий ответ
// без внутренних подробностей
func (h *ReviewHandler) internalError(c *gin.Context, err error, message string) {
	logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg(message)
	c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: entity.ErrKindInternal, Message: message})
}

// formatValidationError возвращает сообщение о первом нарушении
func formatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
