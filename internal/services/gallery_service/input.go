package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"remember_galleries/internal/domain/models"
	"remember_galleries/internal/lib/sanitize"
	"remember_galleries/internal/transport/http/dto"
)

// normalizeImages проверяет весь список целиком: один некорректный элемент
// отклоняет запрос. Повторы ID отбрасываются, остается первое вхождение.
func normalizeImages(images []dto.GalleryImageInput) ([]models.GalleryImage, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: no images", ErrInvalidInput)
	}

	out := make([]models.GalleryImage, 0, len(images))
	seen := make(map[int64]struct{}, len(images))

	for i, img := range images {
		id, ok := positiveID(img.ID)
		if !ok {
			return nil, fmt.Errorf("%w: image %d has malformed id", ErrInvalidInput, i)
		}

		var caption *string
		switch c := img.Caption.(type) {
		case nil:
		case string:
			if clean := sanitize.Text(c); clean != "" {
				caption = &clean
			}
		default:
			return nil, fmt.Errorf("%w: image %d has malformed caption", ErrInvalidInput, i)
		}

		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		out = append(out, models.GalleryImage{ID: id, Caption: caption})
	}

	return out, nil
}

func positiveID(v any) (int64, bool) {
	switch id := v.(type) {
	case float64:
		if id < 1 || id != math.Trunc(id) || id > math.MaxInt64 {
			return 0, false
		}
		return int64(id), true
	case int:
		return int64(id), id > 0
	case int64:
		return id, id > 0
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		if err != nil || n < 1 {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// coerceSettings приводит известные ключи к их типам. Неизвестные ключи и
// некорректные значения отбрасываются. supplied=false, если ни одного
// известного ключа не передано.
func coerceSettings(raw map[string]any) (settings models.Settings, supplied bool) {
	for key, value := range raw {
		switch key {
		case "columns":
			supplied = true
			settings.Columns = nonNegativeInt(value)
		case "size":
			supplied = true
			settings.Size = nonNegativeInt(value)
		case "random":
			supplied = true
			settings.Random = boolValue(value)
		case "link":
			supplied = true
			if s, ok := value.(string); ok {
				if s = sanitize.Text(s); s != "" {
					settings.Link = &s
				}
			}
		}
	}

	return settings, supplied
}

func nonNegativeInt(v any) *int {
	var n int
	switch x := v.(type) {
	case float64:
		if x < 0 || x != math.Trunc(x) || x > math.MaxInt32 {
			return nil
		}
		n = int(x)
	case int:
		if x < 0 {
			return nil
		}
		n = x
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil || parsed < 0 {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	return &n
}

func boolValue(v any) *bool {
	var b bool
	switch x := v.(type) {
	case bool:
		b = x
	case float64:
		if x != 0 && x != 1 {
			return nil
		}
		b = x == 1
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			return nil
		}
		b = parsed
	default:
		return nil
	}
	return &b
}
