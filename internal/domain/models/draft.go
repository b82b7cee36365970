package models

import "time"

// Draft снимок незавершённой сессии редактирования галереи
type Draft struct {
	GalleryID int64       `json:"gallery_id"`
	Name      string      `json:"name"`
	Items     []DraftItem `json:"items"`
	Settings  Settings    `json:"settings"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// DraftItem вложение черновика с подписью, введённой в редакторе
type DraftItem struct {
	ID      int64  `json:"id"`
	Caption string `json:"caption,omitempty"`
}
