package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// imageFormField - имя поля с файлом изображения в multipart форме
const imageFormField = "reviewImage"

var ErrNoImage = errors.New("review image is required")

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// saveReviewImage сохраняет загруженное изображение под случайным именем
// и возвращает путь к файлу. Имя файла клиента не используется
func (h *ReviewHandler) saveReviewImage(c *gin.Context) (string, error) {
	file, err := c.FormFile(imageFormField)
	if err != nil {
		return "", ErrNoImage
	}

	if err := h.checkImage(file); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	path := filepath.Join(h.uploadDir, uuid.New().String()+ext)

	if err := c.SaveUploadedFile(file, path); err != nil {
		return "", fmt.Errorf("failed to save review image: %w", err)
	}

	return path, nil
}

func (h *ReviewHandler) checkImage(file *multipart.FileHeader) error {
	if file.Size > h.maxImageSize {
		return fmt.Errorf("image exceeds maximum size of %d bytes", h.maxImageSize)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExts[ext] {
		return fmt.Errorf("unsupported image type %q", ext)
	}

	return nil
}
