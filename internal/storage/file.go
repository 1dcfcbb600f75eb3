package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cyderes/notion-sync/internal/models"
)

// FileStorage writes the snapshot document to a single JSON file
type FileStorage struct {
	path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Path returns the destination file
func (f *FileStorage) Path() string { return f.path }

// StoreDocument replaces the destination file with the encoded document
func (f *FileStorage) StoreDocument(_ context.Context, doc *models.Document) error {
	b, err := Encode(doc)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(f.path, b, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.path, err)
	}
	return nil
}

// UpdateSyncStatus is a no-op; the file holds the snapshot only
func (f *FileStorage) UpdateSyncStatus(context.Context, models.SyncStatus) error { return nil }

func (f *FileStorage) Close() error { return nil }
