package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"cityspot/internal/app/reviews/entity"
	"cityspot/internal/app/reviews/service"
	"cityspot/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.InitWithWriter("reviews-service-test", "error", io.Discard)
	os.Exit(m.Run())
}

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) GetReviews(ctx context.Context) ([]entity.ReviewDetail, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ReviewDetail), args.Error(1)
}

func (m *MockReviewService) GetReview(ctx context.Context, reviewID string) (*entity.ReviewDetail, error) {
	args := m.Called(ctx, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ReviewDetail), args.Error(1)
}

func (m *MockReviewService) CreateReview(ctx context.Context, userID string, req *entity.CreateReviewRequest, imagePath string) (*entity.Review, error) {
	args := m.Called(ctx, userID, req, imagePath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *MockReviewService) LikeReview(ctx context.Context, reviewID string, userID string) error {
	args := m.Called(ctx, reviewID, userID)
	return args.Error(0)
}

func (m *MockReviewService) UnlikeReview(ctx context.Context, reviewID string, userID string) error {
	args := m.Called(ctx, reviewID, userID)
	return args.Error(0)
}

func (m *MockReviewService) UpdateReview(ctx context.Context, reviewID string, req *entity.UpdateReviewRequest, imagePath string) (*entity.Review, error) {
	args := m.Called(ctx, reviewID, req, imagePath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *MockReviewService) DeleteReview(ctx context.Context, reviewID string) (*entity.Review, error) {
	args := m.Called(ctx, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

// setupTestRouter собирает маршруты с подменой auth middleware:
// userID == "" имитирует неаутентифицированный запрос
func setupTestRouter(t *testing.T, mockService *MockReviewService, userID string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewReviewHandler(mockService, t.TempDir(), 8<<20)

	auth := func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
		}
	}

	router := gin.New()
	router.GET("/reviews", h.GetReviews)
	router.GET("/reviews/:id", h.GetReviewByID)
	router.POST("/reviews", auth, h.CreateReview)
	router.PATCH("/reviews/:id", auth, h.UpdateReview)
	router.DELETE("/reviews/:id", auth, h.DeleteReview)
	router.POST("/reviews/:id/like", auth, h.LikeReview)
	router.POST("/reviews/:id/unlike", auth, h.UnlikeReview)
	return router
}

// reviewForm собирает multipart тело запроса создания/обновления отзыва
func reviewForm(t *testing.T, fields map[string]string, withImage bool) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		assert.NoError(t, w.WriteField(k, v))
	}
	if withImage {
		fw, err := w.CreateFormFile(imageFormField, "photo.jpg")
		assert.NoError(t, err)
		_, err = fw.Write([]byte("not really a jpeg"))
		assert.NoError(t, err)
	}
	assert.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestGetReviews_ReturnsList(t *testing.T) {
	mockService := new(MockReviewService)
	router := setupTestRouter(t, mockService, "")

	reviews := []entity.ReviewDetail{
		{ID: primitive.NewObjectID(), Title: "Great food", AuthorName: "Alice", StarRating: 5},
	}
	mockService.On("GetReviews", mock.Anything).Return(reviews, nil)

	req, _ := http.NewRequest(http.MethodGet, "/reviews", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp entity.ReviewListResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "Great food", resp.Reviews[0].Title)
}

func TestGetReviews_EmptyIsNotFound(t *testing.T) {
	mockService := new(MockReviewService)
	router := setupTestRouter(t, mockService, "")

	mockService.On("GetReviews", mock.Anything).Return([]entity.ReviewDetail{}, nil)

	req, _ := http.NewRequest(http.MethodGet, "/reviews", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Пустая база отдается как 404 - контракт публичного API
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp entity.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, entity.ErrKindNotFound, resp.Error)
}

func TestGetReviews_StoreErrorIsOpaque(t *testing.T) {
	mockService := new(MockReviewService)
	router := setupTestRouter(t, mockService, "")

	mockService.On("GetReviews", mock.Anything).Return(nil, assert.AnError)

	req, _ := http.NewRequest(http.MethodGet, "/reviews", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	// Внутренняя ошибка не попадает в тело ответа
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestGetReviewByID_NotFound(t *testing.T) {
	mockService := new(MockReviewService)
	router := setupTestRouter(t, mockService, "")

	mockService.On("GetReview", mock.Anything, "missing-id").Return(nil, service.ErrReviewNotFound)

	req, _ := http.NewRequest(http.MethodGet, "/reviews/missing-id", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateReview_Success(t *testing.T) {
	mockService := new(MockReviewService)
	router := setupTestRouter(t, mockService, "user-123")

	businessID := primitive.NewObjectID()
	review := &entity.Review{
		ID:         primitive.NewObjectID(),
		Title:      "Great food",
		Author:     "user-123",
		BusinessID: businessID,
		StarRating: 5,
	}
	mockService.On("CreateReview", mock.Anything, "user-123", mock.AnythingOfType("*entity.CreateReviewRequest"), mock.AnythingOfType("string")).Return(review, nil)

	body, contentType := reviewForm(t, map[string]string{
		"title":       "Great food",
		"description": "Loved it",
		"starRating":  "5",
		"business_id": businessID.Hex(),
	}, true)

	req, _ := http.NewRequest(http.MethodPost, "/reviews", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp entity.ReviewResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "user-123", resp.Review.Author)
	assert.Equal(t, businessID.Hex(), resp.Review.BusinessID.Hex())
	assert.Equal(t, "Review successfully created!", resp.Message)
}

func TestCreateReview_InvalidStarRating(t *testing.T) {
	mockService := new(MockReviewService)
	router := setupTestRouter(t, mockService, "user-123")

	body, contentType := reviewForm(t, map[string]string{
		"title":       "Great food",
		"description": "Loved it",
		"starRating":  "6",
		"business_id": primitive.NewObjectID().Hex(),
	}, true)

	req, _ := http.NewRequest(http.MethodPost, "/reviews", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	// Валидация падает до обращения к сервису - никаких записей
	mockService.AssertNotCalled(t, "CreateReview", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	var resp entity.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, entity.ErrKindValidation, resp.Error)
	assert.Contains(t, resp.Message, "StarRating")
}

func TestCreateReview_MissingImage(t *testing.T) {
	mockService := new(MockReviewService)
	router := setupTestRouter(t, mockService, "user-123")

	body, contentType := reviewForm(t, map[string]string{
		"title":       "Great food",
		"description": "Loved it",
		"starRating":  "5",
		"business_id": primitive.NewObjectID().Hex(),
	}, false)

	req, _ := http.NewRequest(http.MethodPost, "/reviews", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "CreateReview", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateReview_Unauthorized(t *testing.T) {
	mockService := new(MockReviewService)
	router := setupTestRouter(t, mockService, "")

	body, contentType := reviewForm(t, map[string]string{
		"title":       "Great food",
		"description": "Loved it",
		"starRating":  "5",
		"business_id": primitive.NewObjectID().Hex(),
	}, true)

	req, _ := http.NewRequest(http.MethodPost, "/reviews", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateReview_BusinessNotFound(t *testing.T) {
	mockService := new(MockReviewService)
	router := setupTestRouter(t, mockService, "user-123")

	mockService.On("CreateReview", mock.Anything, "user-123", mock.Anything, mock.Anything).Return(nil, service.ErrBusinessNotFound)

	body, contentType := reviewForm(t, map[string]string{
		"title":       "Great food",
		"description": "Loved it",
		"starRating":  "5",
		"business_id": primitive.NewObjectID().Hex(),
	}, true)

	req, _ := http.NewRequest(http.MethodPost, "/reviews", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLikeReview_Success(t *testing.T) {
	mockService := new(MockReviewService)
	router := setupTestRouter(t, mockService, "user-123")

	reviewID := primitive.NewObjectID().Hex()
	mockService.On("LikeReview", mock.Anything, reviewID, "user-123").Return(nil)

	req, _ := http.NewRequest(http.MethodPost, "/reviews/"+reviewID+"/like", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp entity.SuccessResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Successfully liked review!", resp.Message)
}

func TestLikeReview_NotFound(t *testing.T) {
	mockService := new(MockReviewService)
	router := setupTestRouter(t, mockService, "user-123")

	reviewID := primitive.NewObjectID().Hex()
	mockService.On("LikeReview", mock.Anything, reviewID, "user-123").Return(service.ErrReviewNotFound)

	req, _ := http.NewRequest(http.MethodPost, "/reviews/"+reviewID+"/like", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnlikeReview_Success(t *testing.T) {
	mockService := new(MockReviewService)
	router := setupTestRouter(t, mockService, "user-123")

	reviewID := primitive.NewObjectID().Hex()
	mockService.On("UnlikeReview", mock.Anything, reviewID, "user-123").Return(nil)

	req, _ := http.NewRequest(http.MethodPost, "/reviews/"+reviewID+"/unlike", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateReview_ReturnsUpdatedValues(t *testing.T) {
	mockService := new(MockReviewService)
	router := setupTestRouter(t, mockService, "user-123")

	reviewID := primitive.NewObjectID()
	updated := &entity.Review{ID: reviewID, Title: "Updated title", StarRating: 2}
	mockService.On("UpdateReview", mock.Anything, reviewID.Hex(), mock.AnythingOfType("*entity.UpdateReviewRequest"), "").Return(updated, nil)

	body, contentType := reviewForm(t, map[string]string{
		"title":       "Updated title",
		"description": "Changed my mind",
		"starRating":  "2",
	}, false)

	req, _ := http.NewRequest(http.MethodPatch, "/reviews/"+reviewID.Hex(), body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	// Ответ отражает новые значения, а не документ до обновления
	var resp entity.ReviewResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Updated title", resp.Review.Title)
	assert.Equal(t, 2, resp.Review.StarRating)
}

func TestUpdateReview_NotFound(t *testing.T) {
	mockService := new(MockReviewService)
	router := setupTestRouter(t, mockService, "user-123")

	reviewID := primitive.NewObjectID().Hex()
	mockService.On("UpdateReview", mock.Anything, reviewID, mock.Anything, mock.Anything).Return(nil, service.ErrReviewNotFound)

	body, contentType := reviewForm(t, map[string]string{
		"title":       "Updated title",
		"description": "Changed my mind",
		"starRating":  "2",
	}, false)

	req, _ := http.NewRequest(http.MethodPatch, "/reviews/"+reviewID, body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteReview_ReturnsDeletedReview(t *testing.T) {
	mockService := new(MockReviewService)
	router := setupTestRouter(t, mockService, "user-123")

	reviewID := primitive.NewObjectID()
	deleted := &entity.Review{ID: reviewID, Title: "Great food"}
	mockService.On("DeleteReview", mock.Anything, reviewID.Hex()).Return(deleted, nil)

	req, _ := http.NewRequest(http.MethodDelete, "/reviews/"+reviewID.Hex(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp entity.ReviewResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Review successfully deleted!", resp.Message)
	assert.Equal(t, reviewID.Hex(), resp.Review.ID.Hex())
}

func TestDeleteReview_NotFound(t *testing.T) {
	mockService := new(MockReviewService)
	router := setupTestRouter(t, mockService, "user-123")

	reviewID := primitive.NewObjectID().Hex()
	mockService.On("DeleteReview", mock.Anything, reviewID).Return(nil, service.ErrReviewNotFound)

	req, _ := http.NewRequest(http.MethodDelete, "/reviews/"+reviewID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
