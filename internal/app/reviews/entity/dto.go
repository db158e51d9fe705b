package entity

// CreateReviewRequest - запрос на создание отзыва (multipart form + файл изображения)
type CreateReviewRequest struct {
	Title       string   `form:"title" validate:"required,min=2,max=120"`
	Description string   `form:"description" validate:"required,min=2,max=2000"`
	StarRating  int      `form:"starRating" validate:"required,min=1,max=5"`
	Tags        []string `form:"tags" validate:"omitempty,dive,len=24,hexadecimal"`
	BusinessID  string   `form:"business_id" validate:"required,len=24,hexadecimal"`
}

// UpdateReviewRequest - запрос на обновление отзыва
// business_id и tags после создания не меняются, поэтому здесь их нет
type UpdateReviewRequest struct {
	Title       string `form:"title" validate:"required,min=2,max=120"`
	Description string `form:"description" validate:"required,min=2,max=2000"`
	StarRating  int    `form:"starRating" validate:"required,min=1,max=5"`
}

// ErrorResponse - стандартный ответ об ошибке
// Error - тип ошибки, Message - человекочитаемое описание
// Внутренние ошибки хранилища клиенту не отдаются, только логируются
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse - ответ с подтверждением без данных
type SuccessResponse struct {
	Message string `json:"message"`
}

// ReviewResponse - ответ с отзывом и подтверждением
type ReviewResponse struct {
	Review  *Review `json:"review"`
	Message string  `json:"message"`
}

// ReviewListResponse - ответ со списком отзывов
type ReviewListResponse struct {
	Reviews []ReviewDetail `json:"reviews"`
	Total   int            `json:"total"`
}

const (
	ErrKindValidation = "validation_error"
	ErrKindNotFound   = "not_found"
	ErrKindInternal   = "internal_error"
)
