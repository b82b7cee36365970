package dto

import (
	"time"

	"remember_galleries/internal/domain/models"
)

// GalleryImageInput элемент списка изображений в запросе сохранения.
// id приходит числом или строкой, caption — строкой; форма проверяется сервисом.
type GalleryImageInput struct {
	ID      any `json:"id"`
	Caption any `json:"caption,omitempty"`
}

// SaveGalleryRequest запрос на сохранение (создание, обновление или перезапись) галереи
type SaveGalleryRequest struct {
	Images    []GalleryImageInput `json:"images"`
	Name      string              `json:"name"`
	TermID    int64               `json:"term_id,omitempty" validate:"gte=0"`
	Settings  map[string]any      `json:"settings,omitempty"`
	Confirmed bool                `json:"confirmed"`
}

// SavedGalleryResponse результат успешного сохранения
type SavedGalleryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type SearchGalleriesRequest struct {
	Term string `json:"term" form:"term"`
}

// GallerySearchResult элемент автодополнения с уже разрешённым списком вложений
type GallerySearchResult struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Slug  string  `json:"slug"`
	Count int     `json:"count"`
	IDs   []int64 `json:"ids"`
}

// GalleryResponse представляет собой DTO для ответа с данными о галерее
type GalleryResponse struct {
	ID        int64           `json:"id"`       // Уникальный идентификатор галереи
	Name      string          `json:"name"`     // Название галереи
	Slug      string          `json:"slug"`     // Slug для шорткода
	Count     int             `json:"count"`    // Число привязанных вложений
	Status    string          `json:"status"`   // publish или trash
	IDs       []int64         `json:"ids"`      // Вложения в порядке показа
	Captions  models.Captions `json:"captions"` // Подписи по ID вложения
	Settings  models.Settings `json:"settings"` // Только заданные настройки
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// GalleryListResponse страница административного списка
type GalleryListResponse struct {
	Galleries  []GalleryResponse `json:"galleries"`
	TotalCount int               `json:"total_count"`
	Page       int               `json:"page"`
	PerPage    int               `json:"per_page"`
}

func NewGallerySearchResult(g models.Gallery) GallerySearchResult {
	return GallerySearchResult{
		ID:    g.ID,
		Name:  g.Name,
		Slug:  g.Slug,
		Count: g.Count,
		IDs:   nonNil(g.IDs),
	}
}

func NewGalleryResponse(g models.Gallery) GalleryResponse {
	captions := g.Captions
	if captions == nil {
		captions = models.Captions{}
	}

	return GalleryResponse{
		ID:        g.ID,
		Name:      g.Name,
		Slug:      g.Slug,
		Count:     g.Count,
		Status:    g.Status,
		IDs:       nonNil(g.IDs),
		Captions:  captions,
		Settings:  g.Settings,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

type ExpandShortcodesRequest struct {
	Content string `json:"content"`
}

type ExpandShortcodesResponse struct {
	Content string             `json:"content"`
	Slugs   map[string][]int64 `json:"slugs"`
}
