package repository

import (
	"context"
	"time"

	"remember_galleries/internal/domain/models"
)

type GalleryRepository interface {
	CreateTerm(ctx context.Context, name, slug string, postID int64) (models.GalleryTerm, error)
	TermByID(ctx context.Context, id int64) (models.GalleryTerm, error)
	TermByName(ctx context.Context, name string) (models.GalleryTerm, error)
	TermBySlug(ctx context.Context, slug string) (models.GalleryTerm, error)
	RenameTerm(ctx context.Context, id int64, name string) error
	SetTermPost(ctx context.Context, termID, postID int64) error
	SearchTerms(ctx context.Context, search string, limit int) ([]models.GalleryTerm, error)
	GetTerms(ctx context.Context, page, perPage int) ([]models.GalleryTerm, int, error)
	AddTermObjects(ctx context.Context, termID int64, objectIDs []int64) error
	ObjectsInTerm(ctx context.Context, termID int64) ([]int64, error)
	UpdateTermCount(ctx context.Context, termID int64) error
}

type PostRepository interface {
	CreatePost(ctx context.Context, title string) (int64, error)
	PostByID(ctx context.Context, id int64) (models.GalleryPost, error)
	UpdatePostTitle(ctx context.Context, id int64, title string) error
	UpdatePostMeta(ctx context.Context, id int64, order []int64, captions models.Captions) error
	UpdatePostSettings(ctx context.Context, id int64, settings models.Settings) error
	UpdatePostStatus(ctx context.Context, id int64, status string) error
}

type AttachmentRepository interface {
	CreateAttachment(ctx context.Context, attachment *models.Attachment) (*models.Attachment, error)
	AttachmentsByIDs(ctx context.Context, ids []int64) ([]models.Attachment, error)
}

type DraftRepository interface {
	SaveDraft(ctx context.Context, key string, draft models.Draft, exp time.Duration) error
	GetDraft(ctx context.Context, key string) (models.Draft, error)
	DeleteDraft(ctx context.Context, key string) error
}
