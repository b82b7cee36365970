package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"remember_galleries/internal/domain/models"
	"remember_galleries/internal/lib/logger/sl"
	"remember_galleries/internal/lib/sanitize"
	"remember_galleries/internal/repository"
	"remember_galleries/internal/storage"
	"remember_galleries/internal/transport/http/dto"
)

const (
	defaultSearchLimit = 10
	previewSize        = 10
	fallbackSlug       = "gallery"
)

type GalleryService struct {
	log         *slog.Logger
	galleries   repository.GalleryRepository
	posts       repository.PostRepository
	searchLimit int
}

func NewGalleryService(
	log *slog.Logger,
	galleries repository.GalleryRepository,
	posts repository.PostRepository,
	searchLimit int,
) *GalleryService {
	if searchLimit < 1 {
		searchLimit = defaultSearchLimit
	}

	return &GalleryService{
		log:         log,
		galleries:   galleries,
		posts:       posts,
		searchLimit: searchLimit,
	}
}

// SavedGallery итог успешного сохранения
type SavedGallery struct {
	ID   int64
	Name string
}

// SaveGallery создает галерею, обновляет её или, после подтверждения,
// перезаписывает одноимённую галерею. Частично применённые шаги при
// ошибке хранилища не откатываются.
func (s *GalleryService) SaveGallery(ctx context.Context, req dto.SaveGalleryRequest) (SavedGallery, error) {
	const op = "service.GalleryService.SaveGallery"
	log := s.log.With(
		slog.String("op", op),
		slog.Int64("term_id", req.TermID),
		slog.Bool("confirmed", req.Confirmed),
	)

	images, err := normalizeImages(req.Images)
	if err != nil {
		log.Warn("invalid images", sl.Err(err))
		return SavedGallery{}, fmt.Errorf("%s: %w", op, err)
	}

	name := sanitize.Text(req.Name)
	if name == "" {
		log.Warn("empty gallery name")
		return SavedGallery{}, fmt.Errorf("%s: %w", op, ErrEmptyName)
	}

	log = log.With(slog.String("name", name))
	log.Info("saving gallery")

	termID := req.TermID
	rename := true

	existing, err := s.galleries.TermByName(ctx, name)
	switch {
	case errors.Is(err, storage.ErrGalleryNotFound):
	case err != nil:
		log.Error("failed to look up gallery by name", sl.Err(err))
		return SavedGallery{}, fmt.Errorf("%s: %w", op, err)
	case existing.ID != termID:
		if !req.Confirmed {
			log.Info("name collides with another gallery", slog.Int64("existing_id", existing.ID))
			return SavedGallery{}, fmt.Errorf("%s: %w", op, &ConfirmError{Name: existing.Name})
		}
		// Перезапись: сохраняем в найденную галерею, её имя остается прежним
		termID = existing.ID
		rename = false
	}

	var term models.GalleryTerm
	if termID == 0 {
		term, err = s.createGallery(ctx, name)
		if err != nil {
			log.Error("failed to create gallery", sl.Err(err))
			return SavedGallery{}, fmt.Errorf("%s: %w", op, err)
		}
	} else {
		term, err = s.updateIdentity(ctx, termID, name, rename)
		if err != nil {
			log.Error("failed to update gallery", sl.Err(err))
			return SavedGallery{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	order := make([]int64, 0, len(images))
	captions := make(models.Captions)
	for _, img := range images {
		order = append(order, img.ID)
		if img.Caption != nil {
			captions[img.ID] = *img.Caption
		}
	}

	if err := s.galleries.AddTermObjects(ctx, term.ID, order); err != nil {
		log.Error("failed to associate attachments", sl.Err(err))
		return SavedGallery{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.posts.UpdatePostMeta(ctx, term.PostID, order, captions); err != nil {
		log.Error("failed to store order and captions", sl.Err(err))
		return SavedGallery{}, fmt.Errorf("%s: %w", op, err)
	}

	if settings, supplied := coerceSettings(req.Settings); supplied {
		if err := s.posts.UpdatePostSettings(ctx, term.PostID, settings); err != nil {
			log.Error("failed to store settings", sl.Err(err))
			return SavedGallery{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := s.galleries.UpdateTermCount(ctx, term.ID); err != nil {
		log.Error("failed to refresh gallery count", sl.Err(err))
		return SavedGallery{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("gallery saved", slog.Int64("id", term.ID), slog.Int("images", len(order)))

	return SavedGallery{ID: term.ID, Name: term.Name}, nil
}

// createGallery создает пост метаданных, затем термин, ссылающийся на него
func (s *GalleryService) createGallery(ctx context.Context, name string) (models.GalleryTerm, error) {
	postID, err := s.posts.CreatePost(ctx, name)
	if err != nil {
		return models.GalleryTerm{}, err
	}

	slug, err := s.uniqueSlug(ctx, name)
	if err != nil {
		return models.GalleryTerm{}, err
	}

	return s.galleries.CreateTerm(ctx, name, slug, postID)
}

// updateIdentity загружает существующую галерею, при необходимости создает
// ей пост и переименовывает термин вместе с заголовком поста.
func (s *GalleryService) updateIdentity(ctx context.Context, termID int64, name string, rename bool) (models.GalleryTerm, error) {
	term, err := s.galleries.TermByID(ctx, termID)
	if err != nil {
		return models.GalleryTerm{}, err
	}

	if err := s.ensurePost(ctx, &term); err != nil {
		return models.GalleryTerm{}, err
	}

	if rename && term.Name != name {
		if err := s.galleries.RenameTerm(ctx, term.ID, name); err != nil {
			return models.GalleryTerm{}, err
		}
		if err := s.posts.UpdatePostTitle(ctx, term.PostID, name); err != nil {
			return models.GalleryTerm{}, err
		}
		term.Name = name
	}

	return term, nil
}

func (s *GalleryService) ensurePost(ctx context.Context, term *models.GalleryTerm) error {
	if term.PostID != 0 {
		_, err := s.posts.PostByID(ctx, term.PostID)
		if !errors.Is(err, storage.ErrPostNotFound) {
			return err
		}
	}

	postID, err := s.posts.CreatePost(ctx, term.Name)
	if err != nil {
		return err
	}
	if err := s.galleries.SetTermPost(ctx, term.ID, postID); err != nil {
		return err
	}

	term.PostID = postID
	return nil
}

// uniqueSlug подбирает свободный slug: beach, beach-2, beach-3...
func (s *GalleryService) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := sanitize.Slugify(name)
	if base == "" {
		base = fallbackSlug
	}

	slug := base
	for n := 2; ; n++ {
		_, err := s.galleries.TermBySlug(ctx, slug)
		if errors.Is(err, storage.ErrGalleryNotFound) {
			return slug, nil
		}
		if err != nil {
			return "", err
		}
		slug = base + "-" + strconv.Itoa(n)
	}
}

// SearchGalleries возвращает до searchLimit галерей, подходящих под запрос,
// вместе с уже разрешёнными списками вложений
func (s *GalleryService) SearchGalleries(ctx context.Context, term string) ([]models.Gallery, error) {
	const op = "service.GalleryService.SearchGalleries"
	log := s.log.With(
		slog.String("op", op),
		slog.String("term", term),
	)

	terms, err := s.galleries.SearchTerms(ctx, sanitize.Text(term), s.searchLimit)
	if err != nil {
		log.Error("failed to search galleries", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res := newResolver(s.galleries, s.posts)
	galleries := make([]models.Gallery, 0, len(terms))
	for _, t := range terms {
		g, err := buildGallery(ctx, res, t)
		if err != nil {
			log.Error("failed to resolve gallery attachments", slog.Int64("id", t.ID), sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		galleries = append(galleries, g)
	}

	log.Debug("galleries found", slog.Int("count", len(galleries)))

	return galleries, nil
}

// ListGalleries возвращает страницу галерей с превью из первых вложений
func (s *GalleryService) ListGalleries(ctx context.Context, page, perPage int) ([]models.Gallery, int, error) {
	const op = "service.GalleryService.ListGalleries"
	log := s.log.With(
		slog.String("op", op),
		slog.Int("page", page),
		slog.Int("per_page", perPage),
	)

	terms, total, err := s.galleries.GetTerms(ctx, page, perPage)
	if err != nil {
		log.Error("failed to list galleries", sl.Err(err))
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	res := newResolver(s.galleries, s.posts)
	galleries := make([]models.Gallery, 0, len(terms))
	for _, t := range terms {
		g, err := buildGallery(ctx, res, t)
		if err != nil {
			log.Error("failed to resolve gallery attachments", slog.Int64("id", t.ID), sl.Err(err))
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		if len(g.IDs) > previewSize {
			g.IDs = g.IDs[:previewSize]
		}
		galleries = append(galleries, g)
	}

	return galleries, total, nil
}

// GetGallery возвращает галерею целиком, в том числе из корзины
func (s *GalleryService) GetGallery(ctx context.Context, id int64) (models.Gallery, error) {
	const op = "service.GalleryService.GetGallery"
	log := s.log.With(
		slog.String("op", op),
		slog.Int64("id", id),
	)

	term, err := s.galleries.TermByID(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrGalleryNotFound) {
			log.Error("failed to get gallery", sl.Err(err))
		}
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	g, err := buildGallery(ctx, newResolver(s.galleries, s.posts), term)
	if err != nil {
		log.Error("failed to resolve gallery attachments", sl.Err(err))
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	return g, nil
}

// GalleriesByReference находит галереи по slug, а если slug не найден — по
// имени. Ненайденные ссылки в результат не попадают.
func (s *GalleryService) GalleriesByReference(ctx context.Context, refs []string) (map[string]models.Gallery, error) {
	const op = "service.GalleryService.GalleriesByReference"
	log := s.log.With(slog.String("op", op))

	res := newResolver(s.galleries, s.posts)
	out := make(map[string]models.Gallery, len(refs))

	for _, ref := range refs {
		if _, done := out[ref]; done || ref == "" {
			continue
		}

		term, err := s.galleries.TermBySlug(ctx, ref)
		if errors.Is(err, storage.ErrGalleryNotFound) {
			term, err = s.galleries.TermByName(ctx, ref)
		}
		if errors.Is(err, storage.ErrGalleryNotFound) {
			log.Debug("gallery reference not found", slog.String("ref", ref))
			continue
		}
		if err != nil {
			log.Error("failed to look up gallery", slog.String("ref", ref), sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		g, err := buildGallery(ctx, res, term)
		if err != nil {
			log.Error("failed to resolve gallery attachments", slog.String("ref", ref), sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out[ref] = g
	}

	return out, nil
}

// TrashGallery перемещает пост галереи в корзину
func (s *GalleryService) TrashGallery(ctx context.Context, id int64) error {
	return s.setStatus(ctx, "service.GalleryService.TrashGallery", id, models.PostStatusTrash)
}

// RestoreGallery возвращает галерею из корзины, если её имя ещё свободно
func (s *GalleryService) RestoreGallery(ctx context.Context, id int64) error {
	return s.setStatus(ctx, "service.GalleryService.RestoreGallery", id, models.PostStatusPublish)
}

func (s *GalleryService) setStatus(ctx context.Context, op string, id int64, status string) error {
	log := s.log.With(
		slog.String("op", op),
		slog.Int64("id", id),
		slog.String("status", status),
	)

	term, err := s.galleries.TermByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if term.PostID == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrPostNotFound)
	}

	if status == models.PostStatusPublish {
		other, err := s.galleries.TermByName(ctx, term.Name)
		switch {
		case errors.Is(err, storage.ErrGalleryNotFound):
		case err != nil:
			log.Error("failed to check gallery name", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		case other.ID != term.ID:
			log.Warn("name taken by another gallery", slog.Int64("existing_id", other.ID))
			return fmt.Errorf("%s: %w", op, ErrNameTaken)
		}
	}

	if err := s.posts.UpdatePostStatus(ctx, term.PostID, status); err != nil {
		log.Error("failed to update gallery status", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("gallery status updated")

	return nil
}

func buildGallery(ctx context.Context, res *resolver, term models.GalleryTerm) (models.Gallery, error) {
	r, err := res.resolve(ctx, term)
	if err != nil {
		return models.Gallery{}, err
	}

	status := r.post.Status
	if status == "" {
		status = models.PostStatusPublish
	}

	return models.Gallery{
		GalleryTerm: term,
		Status:      status,
		IDs:         r.ids,
		Captions:    r.post.Captions,
		Settings:    r.post.Settings,
	}, nil
}
