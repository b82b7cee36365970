package repository

import (
	"context"
	"fmt"

	"remember_galleries/internal/domain/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/lib/pq"
)

type AttachmentRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewAttachmentRepository(db *pgxpool.Pool) *AttachmentRepo {
	return &AttachmentRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var attachmentColumns = []string{
	"id",
	"title",
	"original_filename",
	"storage_path",
	"file_size",
	"COALESCE(mime_type, '')",
	"width",
	"height",
	"caption",
	"alt",
	"created_at",
}

func (r *AttachmentRepo) CreateAttachment(ctx context.Context, attachment *models.Attachment) (*models.Attachment, error) {
	const op = "repository.attachment_repository.CreateAttachment"

	query, args, err := r.sb.Insert("attachments").
		Columns(
			"title",
			"original_filename",
			"storage_path",
			"file_size",
			"mime_type",
			"width",
			"height",
			"caption",
			"alt",
			"created_at",
		).
		Values(
			attachment.Title,
			attachment.OriginalFilename,
			attachment.StoragePath,
			attachment.FileSize,
			attachment.MimeType,
			attachment.Width,
			attachment.Height,
			attachment.Caption,
			attachment.Alt,
			attachment.CreatedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query:%s %w", op, err)
	}

	created := *attachment
	if err := r.db.QueryRow(ctx, query, args...).Scan(&created.ID); err != nil {
		return nil, fmt.Errorf("failed to create attachment:%s %w", op, err)
	}

	return &created, nil
}

// SELECT a.*
// FROM attachments a
// WHERE a.id = ANY('{12,7,9}')
// Порядок результата не гарантирован, сортировку делает вызывающий код.
func (r *AttachmentRepo) AttachmentsByIDs(ctx context.Context, ids []int64) ([]models.Attachment, error) {
	const op = "repository.attachment_repository.AttachmentsByIDs"

	if len(ids) == 0 {
		return []models.Attachment{}, nil
	}

	query, args, err := r.sb.
		Select(attachmentColumns...).
		From("attachments").
		Where("id = ANY(?)", pq.Array(ids)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query:%s %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	attachments := make([]models.Attachment, 0, len(ids))
	for rows.Next() {
		var a models.Attachment
		err := rows.Scan(
			&a.ID,
			&a.Title,
			&a.OriginalFilename,
			&a.StoragePath,
			&a.FileSize,
			&a.MimeType,
			&a.Width,
			&a.Height,
			&a.Caption,
			&a.Alt,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("row scanning failed:%s %w", op, err)
		}

		attachments = append(attachments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error:%s %w", op, err)
	}
	return attachments, nil
}
