package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/chatify/backend/src/store"
)

// FileService stores uploads on disk under a single directory and
// records their metadata. Stored names are uuid-based so client
// filenames never reach the filesystem.
type FileService struct {
	store     *store.Store
	uploadDir string
	logger    zerolog.Logger
}

// NewFileService creates a file service rooted at uploadDir, creating
// the directory if needed.
func NewFileService(s *store.Store, uploadDir string, logger zerolog.Logger) (*FileService, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FileService{
		store:     s,
		uploadDir: uploadDir,
		logger:    logger.With().Str("component", "file-service").Logger(),
	}, nil
}

// Save writes one uploaded file to disk and records it.
func (f *FileService) Save(ctx context.Context, header *multipart.FileHeader) (FileRead, error) {
	src, err := header.Open()
	if err != nil {
		return FileRead{}, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return FileRead{}, fmt.Errorf("read upload: %w", err)
	}

	id := uuid.New()
	storedName := id.String() + filepath.Ext(header.Filename)
	path := filepath.Join(f.uploadDir, storedName)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return FileRead{}, fmt.Errorf("write upload: %w", err)
	}

	file := store.File{
		ID:          id,
		Filename:    header.Filename,
		Path:        path,
		Size:        int64(len(content)),
		ContentType: mimetype.Detect(content).String(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := f.store.CreateFile(ctx, file); err != nil {
		// Do not leave an orphaned blob behind a failed insert.
		os.Remove(path)
		return FileRead{}, err
	}

	f.logger.Info().
		Str("file_id", id.String()).
		Str("content_type", file.ContentType).
		Int64("size", file.Size).
		Msg("file stored")
	return toFileRead(file), nil
}

// Get returns file metadata by id.
func (f *FileService) Get(ctx context.Context, id uuid.UUID) (FileRead, error) {
	file, found, err := f.store.FileByID(ctx, id)
	if err != nil {
		return FileRead{}, err
	}
	if !found {
		return FileRead{}, ErrFileNotFound
	}
	return toFileRead(file), nil
}

// List returns metadata for all stored files.
func (f *FileService) List(ctx context.Context) ([]FileRead, error) {
	files, err := f.store.ListFiles(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(files, func(file store.File, _ int) FileRead { return toFileRead(file) }), nil
}

// Delete removes a file from disk and from the store.
func (f *FileService) Delete(ctx context.Context, id uuid.UUID) error {
	file, found, err := f.store.FileByID(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrFileNotFound
	}

	if err := os.Remove(file.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file from disk: %w", err)
	}
	if _, err := f.store.DeleteFile(ctx, id); err != nil {
		return err
	}
	return nil
}
