package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"remember_galleries/internal/domain/models"
	"remember_galleries/internal/lib/logger/sl"
	"remember_galleries/internal/repository"
	"remember_galleries/internal/storage"
)

const DefaultDraftTTL = 24 * time.Hour

var ErrEmptyDraftKey = errors.New("empty draft key")

// DraftService хранит черновики сессий редактирования отдельно для каждого
// владельца и каждой сессии
type DraftService struct {
	log  *slog.Logger
	repo repository.DraftRepository
	ttl  time.Duration
	now  func() time.Time
}

func NewDraftService(log *slog.Logger, repo repository.DraftRepository, ttl time.Duration) *DraftService {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}

	return &DraftService{
		log:  log,
		repo: repo,
		ttl:  ttl,
		now:  time.Now,
	}
}

func (s *DraftService) SaveDraft(ctx context.Context, owner, draftID string, draft models.Draft) (models.Draft, error) {
	const op = "service.DraftService.SaveDraft"
	log := s.log.With(
		slog.String("op", op),
		slog.String("owner", owner),
	)

	key, err := draftKey(owner, draftID)
	if err != nil {
		return models.Draft{}, fmt.Errorf("%s: %w", op, err)
	}

	draft.UpdatedAt = s.now().UTC()

	if err := s.repo.SaveDraft(ctx, key, draft, s.ttl); err != nil {
		log.Error("failed to save draft", sl.Err(err))
		return models.Draft{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("draft saved", slog.Int("items", len(draft.Items)))

	return draft, nil
}

func (s *DraftService) GetDraft(ctx context.Context, owner, draftID string) (models.Draft, error) {
	const op = "service.DraftService.GetDraft"
	log := s.log.With(
		slog.String("op", op),
		slog.String("owner", owner),
	)

	key, err := draftKey(owner, draftID)
	if err != nil {
		return models.Draft{}, fmt.Errorf("%s: %w", op, err)
	}

	draft, err := s.repo.GetDraft(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrDraftNotFound) {
			log.Error("failed to get draft", sl.Err(err))
		}
		return models.Draft{}, fmt.Errorf("%s: %w", op, err)
	}

	return draft, nil
}

func (s *DraftService) DeleteDraft(ctx context.Context, owner, draftID string) error {
	const op = "service.DraftService.DeleteDraft"

	key, err := draftKey(owner, draftID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.DeleteDraft(ctx, key); err != nil {
		s.log.Error("failed to delete draft", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func draftKey(owner, draftID string) (string, error) {
	if owner == "" || draftID == "" {
		return "", ErrEmptyDraftKey
	}
	return owner + ":" + draftID, nil
}
