package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"remember_galleries/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGalleryResolver struct {
	mock.Mock
}

func (m *MockGalleryResolver) GalleriesByReference(ctx context.Context, refs []string) (map[string]models.Gallery, error) {
	args := m.Called(ctx, refs)
	return args.Get(0).(map[string]models.Gallery), args.Error(1)
}

func newService(resolver GalleryResolver) *ShortcodeService {
	return NewShortcodeService(slog.New(slog.NewTextHandler(io.Discard, nil)), resolver)
}

func TestShortcodeService_ExpandContent(t *testing.T) {
	ctx := context.Background()

	t.Run("rewrites known slugs", func(t *testing.T) {
		resolver := new(MockGalleryResolver)
		resolver.On("GalleriesByReference", ctx, []string{"beach", "missing"}).
			Return(map[string]models.Gallery{
				"beach": {GalleryTerm: models.GalleryTerm{ID: 1, Slug: "beach"}, IDs: []int64{5, 2, 9}},
			}, nil).Once()

		content := `Intro [gallery slug="beach" columns="4"] middle [gallery slug="missing"] [[gallery slug="beach"]]`

		out, err := newService(resolver).ExpandContent(ctx, content)
		require.NoError(t, err)

		assert.Equal(t,
			`Intro [gallery columns="4" ids="5,2,9"] middle [gallery slug="missing"] [[gallery slug="beach"]]`,
			out.Content)
		assert.Equal(t, map[string][]int64{"beach": {5, 2, 9}}, out.Slugs)
		resolver.AssertExpectations(t)
	})

	t.Run("content without references", func(t *testing.T) {
		resolver := new(MockGalleryResolver)

		out, err := newService(resolver).ExpandContent(ctx, `[gallery ids="1,2"] text`)
		require.NoError(t, err)
		assert.Equal(t, `[gallery ids="1,2"] text`, out.Content)
		assert.Empty(t, out.Slugs)
		resolver.AssertNotCalled(t, "GalleriesByReference", mock.Anything, mock.Anything)
	})

	t.Run("resolver failure", func(t *testing.T) {
		resolver := new(MockGalleryResolver)
		resolver.On("GalleriesByReference", ctx, []string{"beach"}).
			Return(map[string]models.Gallery(nil), errors.New("db error")).Once()

		_, err := newService(resolver).ExpandContent(ctx, `[gallery slug="beach"]`)
		assert.ErrorContains(t, err, "db error")
	})
}
