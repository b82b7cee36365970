package storage_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	apperrors "remember_galleries/internal/storage"
	storage "remember_galleries/internal/storage/filestorage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func setupFileStorage(t *testing.T, maxSize int64) (*storage.LocalFileStorage, string) {
	t.Helper()

	tempDir := t.TempDir()

	fs, err := storage.NewLocalFileStorage(tempDir, "http://test.local/uploads/", maxSize)
	require.NoError(t, err)

	return fs, tempDir
}

func createTestFile(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	// Создаем multipart форму
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)

	_, err = part.Write(content)
	require.NoError(t, err)

	require.NoError(t, writer.Close())

	// Парсим multipart запрос
	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	file, header, err := req.FormFile("file")
	require.NoError(t, err)
	file.Close()

	return header
}

func TestLocalFileStorage_Save(t *testing.T) {
	fs, tempDir := setupFileStorage(t, 0)
	ctx := context.Background()

	t.Run("successful save", func(t *testing.T) {
		testFile := createTestFile(t, "beach.png", pngHeader)

		filePath, mimeType, size, err := fs.Save(ctx, testFile, "subdir")
		require.NoError(t, err)

		assert.Equal(t, filepath.Join("subdir", "beach.png"), filePath)
		assert.Equal(t, "image/png", mimeType)
		assert.Equal(t, int64(len(pngHeader)), size)

		// Проверяем содержимое файла
		data, err := os.ReadFile(filepath.Join(tempDir, filePath))
		require.NoError(t, err)
		assert.Equal(t, pngHeader, data)
	})

	t.Run("path traversal in filename is flattened", func(t *testing.T) {
		testFile := createTestFile(t, "../../evil.png", pngHeader)

		filePath, _, _, err := fs.Save(ctx, testFile, "")
		require.NoError(t, err)
		assert.Equal(t, "evil.png", filePath)
	})

	t.Run("rejects non image content", func(t *testing.T) {
		testFile := createTestFile(t, "notes.png", []byte("just some text"))

		_, _, _, err := fs.Save(ctx, testFile, "")
		assert.ErrorIs(t, err, apperrors.ErrInvalidFileType)
	})

	t.Run("save with context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(ctx)
		cancel() // Отменяем контекст сразу

		_, _, _, err := fs.Save(ctx, createTestFile(t, "a.png", pngHeader), "subdir")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLocalFileStorage_SaveTooLarge(t *testing.T) {
	fs, _ := setupFileStorage(t, 4)

	_, _, _, err := fs.Save(context.Background(), createTestFile(t, "big.png", pngHeader), "")
	assert.ErrorIs(t, err, apperrors.ErrFileTooLarge)
}

func TestLocalFileStorage_Delete(t *testing.T) {
	fs, tempDir := setupFileStorage(t, 0)
	ctx := context.Background()

	t.Run("successful delete", func(t *testing.T) {
		filePath, _, _, err := fs.Save(ctx, createTestFile(t, "to_delete.png", pngHeader), "")
		require.NoError(t, err)

		require.NoError(t, fs.Delete(ctx, filePath))

		_, err = os.Stat(filepath.Join(tempDir, filePath))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("delete non-existent file", func(t *testing.T) {
		err := fs.Delete(ctx, "nonexistent.png")
		assert.ErrorIs(t, err, apperrors.ErrFileNotFound)
	})
}

func TestLocalFileStorage_URL(t *testing.T) {
	fs, _ := setupFileStorage(t, 0)

	assert.Equal(t, "http://test.local/uploads/2024/my%20photo.png", fs.URL(filepath.Join("2024", "my photo.png")))
}

func TestNewLocalFileStorage_InvalidDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	// Каталог нельзя создать внутри обычного файла
	_, err := storage.NewLocalFileStorage(filepath.Join(file, "sub"), "http://test.local", 0)
	assert.Error(t, err)
}

func TestConcurrentSaves(t *testing.T) {
	fs, _ := setupFileStorage(t, 0)
	ctx := context.Background()
	testFile := createTestFile(t, "concurrent.png", pngHeader)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _, err := fs.Save(ctx, testFile, "concurrent")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
