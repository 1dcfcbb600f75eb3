package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cyderes/notion-sync/internal/config"
	"github.com/cyderes/notion-sync/internal/models"
)

// Storage interface defines the contract for persisting sync output
type Storage interface {
	StoreDocument(ctx context.Context, doc *models.Document) error
	UpdateSyncStatus(ctx context.Context, status models.SyncStatus) error
	Close() error
}

// NewStorage creates the file store for the snapshot and, when a mirror is
// configured, fans writes out to it as well
func NewStorage(ctx context.Context, cfg *config.Config) (Storage, error) {
	file := NewFileStorage(cfg.Output.Path)
	if cfg.Storage.Type == "" {
		return file, nil
	}
	mirror, err := newMirror(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	return NewMulti(file, mirror), nil
}

func newMirror(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "dynamodb":
		return NewDynamoDBStorage(cfg)
	case "mongodb":
		return NewMongoDBStorage(ctx, cfg)
	case "postgresql":
		return NewPostgreSQLStorage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// Encode serializes a document as 2-space indented JSON
func Encode(doc *models.Document) ([]byte, error) {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return b, nil
}

// Multi writes to every store in order and stops at the first failure
type Multi struct {
	stores []Storage
}

func NewMulti(stores ...Storage) *Multi {
	return &Multi{stores: stores}
}

func (m *Multi) StoreDocument(ctx context.Context, doc *models.Document) error {
	for _, s := range m.stores {
		if err := s.StoreDocument(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

// UpdateSyncStatus updates every store and reports all failures
func (m *Multi) UpdateSyncStatus(ctx context.Context, status models.SyncStatus) error {
	var errs []error
	for _, s := range m.stores {
		if err := s.UpdateSyncStatus(ctx, status); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.stores {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
