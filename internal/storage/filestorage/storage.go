package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	apperrors "remember_galleries/internal/storage"
)

// FileStorage интерфейс для работы с файловым хранилищем медиатеки
type FileStorage interface {
	Save(ctx context.Context, file *multipart.FileHeader, subPath string) (filePath, mimeType string, fileSize int64, err error)
	Delete(ctx context.Context, filePath string) error
	URL(relativePath string) string
}

var allowedTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// LocalFileStorage реализация для локальной файловой системы
type LocalFileStorage struct {
	baseDir string // Базовый каталог для хранения (например: "./uploads")
	baseURL string // Базовый URL для доступа к файлам (например: "http://localhost:8080/uploads")
	maxSize int64  // Максимальный размер файла в байтах, 0 — без ограничения
}

func NewLocalFileStorage(baseDir, baseURL string, maxSize int64) (*LocalFileStorage, error) {
	// Создаем директорию, если она не существует
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &LocalFileStorage{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
		maxSize: maxSize,
	}, nil
}

// Save сохраняет изображение в baseDir/subPath. Тип файла определяется по
// содержимому, а не по заголовку клиента.
func (s *LocalFileStorage) Save(ctx context.Context, file *multipart.FileHeader, subPath string) (string, string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", "", 0, err
	}

	if s.maxSize > 0 && file.Size > s.maxSize {
		return "", "", 0, apperrors.ErrFileTooLarge
	}

	name := filepath.Base(filepath.Clean("/" + file.Filename))
	if name == "/" || name == "." {
		return "", "", 0, fmt.Errorf("%w: empty filename", apperrors.ErrInvalidFileType)
	}

	src, err := file.Open()
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", "", 0, fmt.Errorf("failed to read source file: %w", err)
	}
	head = head[:n]

	mimeType := http.DetectContentType(head)
	if _, ok := allowedTypes[mimeType]; !ok {
		return "", "", 0, fmt.Errorf("%w: %s", apperrors.ErrInvalidFileType, mimeType)
	}

	relPath := filepath.Join(subPath, name)
	filePath := filepath.Join(s.baseDir, relPath)

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return "", "", 0, fmt.Errorf("failed to create directories: %w", err)
	}

	// Создаем целевой файл
	dst, err := os.Create(filePath)
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	done := make(chan struct{})
	var size int64
	var copyErr error

	go func() {
		size, copyErr = io.Copy(dst, io.MultiReader(bytes.NewReader(head), src))
		close(done)
	}()

	select {
	case <-done:
		if copyErr != nil {
			_ = os.Remove(filePath)
			return "", "", 0, fmt.Errorf("failed to copy file: %w", copyErr)
		}
	case <-ctx.Done():
		<-done
		_ = os.Remove(filePath)
		return "", "", 0, ctx.Err()
	}

	return relPath, mimeType, size, nil
}

// Delete удаляет файл из хранилища
func (s *LocalFileStorage) Delete(_ context.Context, filePath string) error {
	err := os.Remove(filepath.Join(s.baseDir, filepath.Clean("/"+filePath)))
	if errors.Is(err, os.ErrNotExist) {
		return apperrors.ErrFileNotFound
	}
	return err
}

// URL возвращает публичный адрес файла
func (s *LocalFileStorage) URL(relativePath string) string {
	segments := strings.Split(filepath.ToSlash(relativePath), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.baseURL + path.Clean("/"+strings.Join(segments, "/"))
}
