package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Attachment представляет медиафайл библиотеки
type Attachment struct {
	ID               int64     `json:"id" db:"id"`
	Title            string    `json:"title" db:"title"`
	OriginalFilename string    `json:"original_filename" db:"original_filename"`
	StoragePath      string    `json:"storage_path" db:"storage_path"`
	FileSize         int64     `json:"file_size" db:"file_size"`
	MimeType         string    `json:"mime_type,omitempty" db:"mime_type"`
	Width            *int      `json:"width,omitempty" db:"width"`
	Height           *int      `json:"height,omitempty" db:"height"`
	Caption          string    `json:"caption" db:"caption"`
	Alt              string    `json:"alt" db:"alt"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// Validate проверяет корректность данных вложения
func (a *Attachment) Validate() error {
	var validationErrors []string

	if a.OriginalFilename == "" {
		validationErrors = append(validationErrors, "original filename is required")
	}
	if len(a.OriginalFilename) > 255 {
		validationErrors = append(validationErrors, "original filename must be 255 characters or less")
	}
	if a.StoragePath == "" {
		validationErrors = append(validationErrors, "storage path is required")
	}
	if a.FileSize <= 0 {
		validationErrors = append(validationErrors, "file size must be positive")
	}
	if a.MimeType != "" && len(a.MimeType) > 100 {
		validationErrors = append(validationErrors, "mime type must be 100 characters or less")
	}
	if a.Width != nil && *a.Width <= 0 || a.Height != nil && *a.Height <= 0 {
		validationErrors = append(validationErrors, "width and height must be positive values")
	}

	if len(validationErrors) > 0 {
		return &AttachmentValidationError{
			Errors: validationErrors,
		}
	}

	return nil
}

// AttachmentValidationError кастомный тип ошибки для валидации
type AttachmentValidationError struct {
	Errors []string
}

func (e *AttachmentValidationError) Error() string {
	return fmt.Sprintf("attachment validation failed: %s", strings.Join(e.Errors, "; "))
}

// IsAttachmentValidationError проверяет, является ли ошибка ошибкой валидации
func IsAttachmentValidationError(err error) bool {
	var verr *AttachmentValidationError
	return errors.As(err, &verr)
}
