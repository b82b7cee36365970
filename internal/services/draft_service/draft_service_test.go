package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"remember_galleries/internal/domain/models"
	"remember_galleries/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDraftRepository struct {
	mock.Mock
}

func (m *MockDraftRepository) SaveDraft(ctx context.Context, key string, draft models.Draft, exp time.Duration) error {
	return m.Called(ctx, key, draft, exp).Error(0)
}

func (m *MockDraftRepository) GetDraft(ctx context.Context, key string) (models.Draft, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(models.Draft), args.Error(1)
}

func (m *MockDraftRepository) DeleteDraft(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func newService(repo *MockDraftRepository) *DraftService {
	s := NewDraftService(slog.New(slog.NewTextHandler(io.Discard, nil)), repo, time.Hour)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestDraftService_SaveDraft(t *testing.T) {
	ctx := context.Background()
	repo := new(MockDraftRepository)
	service := newService(repo)

	draft := models.Draft{Name: "Beach", Items: []models.DraftItem{{ID: 3, Caption: "sea"}}}
	stored := draft
	stored.UpdatedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	repo.On("SaveDraft", ctx, "editor:abc", stored, time.Hour).Return(nil).Once()

	saved, err := service.SaveDraft(ctx, "editor", "abc", draft)
	require.NoError(t, err)
	assert.Equal(t, stored, saved)
	repo.AssertExpectations(t)
}

func TestDraftService_GetDraft(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		repo := new(MockDraftRepository)
		repo.On("GetDraft", ctx, "editor:abc").Return(models.Draft{Name: "Beach"}, nil).Once()

		draft, err := newService(repo).GetDraft(ctx, "editor", "abc")
		require.NoError(t, err)
		assert.Equal(t, "Beach", draft.Name)
	})

	t.Run("missing", func(t *testing.T) {
		repo := new(MockDraftRepository)
		repo.On("GetDraft", ctx, "editor:abc").Return(models.Draft{}, storage.ErrDraftNotFound).Once()

		_, err := newService(repo).GetDraft(ctx, "editor", "abc")
		assert.ErrorIs(t, err, storage.ErrDraftNotFound)
	})

	t.Run("empty key never reaches redis", func(t *testing.T) {
		repo := new(MockDraftRepository)

		_, err := newService(repo).GetDraft(ctx, "editor", "")
		assert.ErrorIs(t, err, ErrEmptyDraftKey)
		repo.AssertNotCalled(t, "GetDraft", mock.Anything, mock.Anything)
	})
}

func TestDraftService_DeleteDraft(t *testing.T) {
	ctx := context.Background()
	repo := new(MockDraftRepository)
	repo.On("DeleteDraft", ctx, "editor:abc").Return(errors.New("redis down")).Once()

	err := newService(repo).DeleteDraft(ctx, "editor", "abc")
	assert.ErrorContains(t, err, "redis down")
}
