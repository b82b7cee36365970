package dto

import (
	"time"

	"remember_galleries/internal/domain/models"
)

type DraftItem struct {
	ID      int64  `json:"id" validate:"gt=0"`
	Caption string `json:"caption,omitempty" validate:"max=2000"`
}

// DraftRequest состояние сессии редактирования, которое нужно пережить перезагрузку
type DraftRequest struct {
	GalleryID int64           `json:"gallery_id" validate:"gte=0"`
	Name      string          `json:"name" validate:"max=200"`
	Items     []DraftItem     `json:"items" validate:"max=500,dive"`
	Settings  models.Settings `json:"settings"`
}

type DraftResponse struct {
	GalleryID int64           `json:"gallery_id"`
	Name      string          `json:"name"`
	Items     []DraftItem     `json:"items"`
	Settings  models.Settings `json:"settings"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (r DraftRequest) ToDomain() models.Draft {
	items := make([]models.DraftItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, models.DraftItem{ID: it.ID, Caption: it.Caption})
	}

	return models.Draft{
		GalleryID: r.GalleryID,
		Name:      r.Name,
		Items:     items,
		Settings:  r.Settings,
	}
}

func NewDraftResponse(d models.Draft) DraftResponse {
	items := make([]DraftItem, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, DraftItem{ID: it.ID, Caption: it.Caption})
	}

	return DraftResponse{
		GalleryID: d.GalleryID,
		Name:      d.Name,
		Items:     items,
		Settings:  d.Settings,
		UpdatedAt: d.UpdatedAt,
	}
}
