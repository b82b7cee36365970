package repository

import (
	redisapp "remember_galleries/internal/storage/redis"

	"github.com/jackc/pgx/v4/pgxpool"
)

type Repository struct {
	Gallery    GalleryRepository
	Post       PostRepository
	Attachment AttachmentRepository
	Draft      DraftRepository
}

func NewRepository(db *pgxpool.Pool, client *redisapp.Client) *Repository {
	return &Repository{
		Gallery:    NewGalleryRepo(db),
		Post:       NewPostRepo(db),
		Attachment: NewAttachmentRepository(db),
		Draft:      NewRedisDraftRepo(client),
	}
}
