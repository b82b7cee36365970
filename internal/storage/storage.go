package storage

import "errors"

var (
	ErrGalleryNotFound = errors.New("gallery not found")
	ErrPostNotFound    = errors.New("gallery post not found")
	ErrDraftNotFound   = errors.New("draft not found")
)

var (
	ErrFileTooLarge    = errors.New("file size exceeds limit")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileNotFound    = errors.New("file not found")
)
