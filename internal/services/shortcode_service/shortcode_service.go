package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"remember_galleries/internal/domain/models"
	"remember_galleries/internal/lib/logger/sl"
	"remember_galleries/internal/lib/shortcode"
)

const galleryTag = "gallery"

// GalleryResolver находит галереи по ссылкам из шорткодов
type GalleryResolver interface {
	GalleriesByReference(ctx context.Context, refs []string) (map[string]models.Gallery, error)
}

type ShortcodeService struct {
	log       *slog.Logger
	galleries GalleryResolver
	parser    *shortcode.Parser
}

func NewShortcodeService(log *slog.Logger, galleries GalleryResolver) *ShortcodeService {
	return &ShortcodeService{
		log:       log,
		galleries: galleries,
		parser:    shortcode.New(galleryTag),
	}
}

// Expanded результат раскрытия шорткодов
type Expanded struct {
	Content string
	// Slugs содержимое каждой найденной галереи по ссылке из шорткода
	Slugs map[string][]int64
}

// ExpandContent заменяет slug в [gallery slug="..."] на явный список ids.
// Шорткоды с неизвестным slug остаются без изменений.
func (s *ShortcodeService) ExpandContent(ctx context.Context, content string) (Expanded, error) {
	const op = "service.ShortcodeService.ExpandContent"
	log := s.log.With(slog.String("op", op))

	var refs []string
	for _, sc := range s.parser.Parse(content) {
		if slug, ok := sc.Get("slug"); ok && slug != "" {
			refs = append(refs, slug)
		}
	}

	out := Expanded{Content: content, Slugs: map[string][]int64{}}
	if len(refs) == 0 {
		return out, nil
	}

	found, err := s.galleries.GalleriesByReference(ctx, refs)
	if err != nil {
		log.Error("failed to resolve gallery shortcodes", sl.Err(err))
		return Expanded{}, fmt.Errorf("%s: %w", op, err)
	}

	for ref, g := range found {
		out.Slugs[ref] = g.IDs
	}

	out.Content = s.parser.Replace(content, func(sc *shortcode.Shortcode) bool {
		slug, _ := sc.Get("slug")
		g, ok := found[slug]
		if !ok {
			return false
		}

		sc.Delete("slug")
		sc.Set("ids", joinIDs(g.IDs))
		return true
	})

	log.Debug("shortcodes expanded", slog.Int("references", len(refs)), slog.Int("resolved", len(found)))

	return out, nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
