package dto

import (
	"mime/multipart"
	"time"

	"remember_galleries/internal/domain/models"
)

type AttachmentUploadInput struct {
	File    *multipart.FileHeader `json:"-" form:"file" validate:"required"`
	Title   string                `json:"title" form:"title" validate:"max=255"`
	Caption string                `json:"caption" form:"caption"`
	Alt     string                `json:"alt" form:"alt" validate:"max=255"`

	// Опциональные размеры изображения
	Width  *int `json:"width,omitempty" form:"width" validate:"omitempty,min=1"`
	Height *int `json:"height,omitempty" form:"height" validate:"omitempty,min=1"`
}

// QueryAttachmentsRequest ID приходят как попало: числами, строками, с
// нулями и повторами. Сервис их нормализует.
type QueryAttachmentsRequest struct {
	IDs []any `json:"ids"`
}

// AttachmentResponse запись вложения для отображения в редакторе
type AttachmentResponse struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Filename string    `json:"filename"`
	URL      string    `json:"url"`
	MimeType string    `json:"mime_type,omitempty"`
	Width    *int      `json:"width,omitempty"`
	Height   *int      `json:"height,omitempty"`
	Caption  string    `json:"caption"`
	Alt      string    `json:"alt"`
	Date     time.Time `json:"date"`
}

func NewAttachmentResponse(a models.Attachment, url string) AttachmentResponse {
	return AttachmentResponse{
		ID:       a.ID,
		Title:    a.Title,
		Filename: a.OriginalFilename,
		URL:      url,
		MimeType: a.MimeType,
		Width:    a.Width,
		Height:   a.Height,
		Caption:  a.Caption,
		Alt:      a.Alt,
		Date:     a.CreatedAt,
	}
}
