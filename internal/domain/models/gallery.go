package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	PostStatusPublish = "publish"
	PostStatusTrash   = "trash"
)

// GalleryTerm представляет собой идентичность галереи (термин таксономии)
type GalleryTerm struct {
	ID        int64     `json:"id" db:"id"`           // Уникальный идентификатор галереи
	Name      string    `json:"name" db:"name"`       // Название галереи
	Slug      string    `json:"slug" db:"slug"`       // Уникальный идентификатор для шорткода, не меняется при переименовании
	PostID    int64     `json:"post_id" db:"post_id"` // Пост с метаданными галереи (0, если ещё не создан)
	Count     int       `json:"count" db:"count"`     // Денормализованное число привязанных вложений
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// GalleryPost хранит изменяемое состояние галереи: порядок, подписи, настройки
type GalleryPost struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Status    string    `json:"status" db:"status"`
	Order     []int64   `json:"order" db:"attachment_order"` // Порядок вложений, задаёт порядок показа
	Captions  Captions  `json:"captions" db:"captions"`
	Settings  Settings  `json:"settings" db:"settings"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Gallery объединяет термин и пост галереи для чтения
type Gallery struct {
	GalleryTerm
	Status   string   `json:"status"`
	IDs      []int64  `json:"ids"`
	Captions Captions `json:"captions"`
	Settings Settings `json:"settings"`
}

// GalleryImage элемент сохраняемой галереи
type GalleryImage struct {
	ID      int64
	Caption *string
}

// Captions подписи вложений по их ID
type Captions map[int64]string

// Value реализует интерфейс driver.Valuer для сериализации Captions в JSONB
func (c Captions) Value() (driver.Value, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c)
}

// Scan реализует интерфейс sql.Scanner для десериализации JSONB в Captions
func (c *Captions) Scan(value interface{}) error {
	b, err := jsonBytes(value)
	if err != nil || b == nil {
		*c = Captions{}
		return err
	}
	return json.Unmarshal(b, c)
}

// Settings настройки отображения галереи. nil означает значение по умолчанию хоста.
type Settings struct {
	Columns *int    `json:"columns,omitempty"`
	Link    *string `json:"link,omitempty"`
	Size    *int    `json:"size,omitempty"`
	Random  *bool   `json:"random,omitempty"`
}

// IsZero сообщает, что ни одна настройка не задана
func (s Settings) IsZero() bool {
	return s.Columns == nil && s.Link == nil && s.Size == nil && s.Random == nil
}

func (s Settings) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *Settings) Scan(value interface{}) error {
	b, err := jsonBytes(value)
	if err != nil || b == nil {
		*s = Settings{}
		return err
	}
	return json.Unmarshal(b, s)
}

func jsonBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported jsonb value type %T", value)
	}
}
