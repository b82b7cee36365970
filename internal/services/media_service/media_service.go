package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"remember_galleries/internal/domain/models"
	"remember_galleries/internal/lib/logger/sl"
	"remember_galleries/internal/lib/sanitize"
	"remember_galleries/internal/repository"
	storage "remember_galleries/internal/storage/filestorage"
	"remember_galleries/internal/transport/http/dto"

	"github.com/google/uuid"
)

type MediaService struct {
	log         *slog.Logger
	repo        repository.AttachmentRepository
	fileStorage storage.FileStorage
}

func NewMediaService(log *slog.Logger, repo repository.AttachmentRepository, fileStorage storage.FileStorage) *MediaService {
	return &MediaService{
		log:         log,
		repo:        repo,
		fileStorage: fileStorage,
	}
}

// QueryAttachments возвращает записи вложений в порядке запроса.
// Неизвестные ID молча пропускаются.
func (s *MediaService) QueryAttachments(ctx context.Context, req dto.QueryAttachmentsRequest) ([]dto.AttachmentResponse, error) {
	const op = "media_service.QueryAttachments"

	ids := normalizeIDs(req.IDs)

	log := s.log.With(
		slog.String("op", op),
		slog.Int("requested", len(req.IDs)),
		slog.Int("ids", len(ids)),
	)

	out := make([]dto.AttachmentResponse, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	attachments, err := s.repo.AttachmentsByIDs(ctx, ids)
	if err != nil {
		log.Error("failed to load attachments", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	byID := make(map[int64]models.Attachment, len(attachments))
	for _, a := range attachments {
		byID[a.ID] = a
	}

	for _, id := range ids {
		a, ok := byID[id]
		if !ok {
			continue
		}
		out = append(out, dto.NewAttachmentResponse(a, s.fileStorage.URL(a.StoragePath)))
	}

	log.Debug("attachments resolved", slog.Int("found", len(out)))

	return out, nil
}

func (s *MediaService) UploadAttachment(ctx context.Context, input dto.AttachmentUploadInput) (dto.AttachmentResponse, error) {
	const op = "media_service.UploadAttachment"

	log := s.log.With(
		slog.String("op", op),
		slog.String("filename", input.File.Filename),
	)

	log.Info("upload attachment")

	// Каждая загрузка в своем каталоге, одинаковые имена файлов не конфликтуют
	subPath := filepath.Join(time.Now().UTC().Format("2006/01"), uuid.NewString())

	filePath, mimeType, fileSize, err := s.fileStorage.Save(ctx, input.File, subPath)
	if err != nil {
		log.Error("failed to save file", sl.Err(err))

		return dto.AttachmentResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	title := sanitize.Text(input.Title)
	if title == "" {
		base := path.Base(filepath.ToSlash(filePath))
		title = strings.TrimSuffix(base, path.Ext(base))
	}

	attachment := &models.Attachment{
		Title:            title,
		OriginalFilename: input.File.Filename,
		StoragePath:      filePath,
		FileSize:         fileSize,
		MimeType:         mimeType,
		Width:            input.Width,
		Height:           input.Height,
		Caption:          sanitize.Text(input.Caption),
		Alt:              sanitize.Text(input.Alt),
	}

	if err := attachment.Validate(); err != nil {
		// Удаляем сохраненный файл при ошибке валидации
		_ = s.fileStorage.Delete(ctx, filePath)
		log.Error("attachment validation failed", sl.Err(err))

		return dto.AttachmentResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.repo.CreateAttachment(ctx, attachment)
	if err != nil {
		// Удаляем файл если не удалось сохранить в БД
		_ = s.fileStorage.Delete(ctx, filePath)
		log.Error("failed to save attachment to database", sl.Err(err))

		return dto.AttachmentResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("attachment uploaded", slog.Int64("id", created.ID))

	return dto.NewAttachmentResponse(*created, s.fileStorage.URL(created.StoragePath)), nil
}

// normalizeIDs приводит значения к неотрицательным целым, отбрасывает нули
// и повторы, сохраняя порядок первого вхождения.
func normalizeIDs(raw []any) []int64 {
	ids := make([]int64, 0, len(raw))
	seen := make(map[int64]struct{}, len(raw))

	for _, v := range raw {
		id := absInt(v)
		if id == 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return ids
}

func absInt(v any) int64 {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) || math.Abs(x) >= math.MaxInt64 {
			return 0
		}
		return int64(math.Abs(math.Trunc(x)))
	case int:
		return abs(int64(x))
	case int64:
		return abs(x)
	case string:
		return abs(leadingInt(strings.TrimSpace(x)))
	case bool:
		if x {
			return 1
		}
	}
	return 0
}

// leadingInt разбирает знак и цифры в начале строки: "12abc" -> 12
func leadingInt(s string) int64 {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}

	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
