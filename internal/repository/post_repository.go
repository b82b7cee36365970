package repository

import (
	"context"
	"errors"
	"fmt"

	"remember_galleries/internal/domain/models"
	"remember_galleries/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type PostRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewPostRepo(db *pgxpool.Pool) *PostRepo {
	return &PostRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// CreatePost создает пост метаданных галереи и возвращает его ID
func (r *PostRepo) CreatePost(ctx context.Context, title string) (int64, error) {
	const op = "repository.PostRepo.CreatePost"

	query, args, err := r.sb.Insert("gallery_posts").
		Columns("title", "status").
		Values(title, models.PostStatusPublish).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// PostByID возвращает пост метаданных по ID
func (r *PostRepo) PostByID(ctx context.Context, id int64) (models.GalleryPost, error) {
	const op = "repository.PostRepo.PostByID"

	query, args, err := r.sb.Select(
		"id",
		"title",
		"status",
		"attachment_order",
		"captions",
		"settings",
		"created_at",
		"updated_at",
	).
		From("gallery_posts").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.GalleryPost{}, fmt.Errorf("%s: %w", op, err)
	}

	var post models.GalleryPost
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&post.ID,
		&post.Title,
		&post.Status,
		&post.Order,
		&post.Captions,
		&post.Settings,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.GalleryPost{}, fmt.Errorf("%s: %w", op, storage.ErrPostNotFound)
		}
		return models.GalleryPost{}, fmt.Errorf("%s: %w", op, err)
	}

	return post, nil
}

// UpdatePostTitle меняет только заголовок поста
func (r *PostRepo) UpdatePostTitle(ctx context.Context, id int64, title string) error {
	const op = "repository.PostRepo.UpdatePostTitle"

	return r.update(ctx, op, r.sb.Update("gallery_posts").
		Set("title", title).
		Where(sq.Eq{"id": id}))
}

// UpdatePostMeta полностью перезаписывает порядок вложений и подписи
func (r *PostRepo) UpdatePostMeta(ctx context.Context, id int64, order []int64, captions models.Captions) error {
	const op = "repository.PostRepo.UpdatePostMeta"

	if order == nil {
		order = []int64{}
	}

	return r.update(ctx, op, r.sb.Update("gallery_posts").
		Set("attachment_order", order).
		Set("captions", captions).
		Where(sq.Eq{"id": id}))
}

// UpdatePostSettings перезаписывает настройки отображения
func (r *PostRepo) UpdatePostSettings(ctx context.Context, id int64, settings models.Settings) error {
	const op = "repository.PostRepo.UpdatePostSettings"

	return r.update(ctx, op, r.sb.Update("gallery_posts").
		Set("settings", settings).
		Where(sq.Eq{"id": id}))
}

// UpdatePostStatus обновляет только статус поста (publish/trash)
func (r *PostRepo) UpdatePostStatus(ctx context.Context, id int64, status string) error {
	const op = "repository.PostRepo.UpdatePostStatus"

	return r.update(ctx, op, r.sb.Update("gallery_posts").
		Set("status", status).
		Where(sq.Eq{"id": id}))
}

func (r *PostRepo) update(ctx context.Context, op string, builder sq.UpdateBuilder) error {
	query, args, err := builder.
		Set("updated_at", sq.Expr("NOW()")).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrPostNotFound)
	}

	return nil
}
