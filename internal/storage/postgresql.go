package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/cyderes/notion-sync/internal/config"
	"github.com/cyderes/notion-sync/internal/models"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS notion_snapshots (
		id        BIGSERIAL PRIMARY KEY,
		synced_at TIMESTAMPTZ NOT NULL,
		document  JSONB NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS notion_sync_status (
		id                  TEXT PRIMARY KEY,
		last_attempt        TIMESTAMPTZ NOT NULL,
		last_successful_run TIMESTAMPTZ,
		status              TEXT NOT NULL,
		error_message       TEXT,
		failed_feeds        TEXT[]
	)`,
}

const upsertStatusSQL = `INSERT INTO notion_sync_status (id, last_attempt, last_successful_run, status, error_message, failed_feeds)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		last_attempt = EXCLUDED.last_attempt,
		last_successful_run = COALESCE(EXCLUDED.last_successful_run, notion_sync_status.last_successful_run),
		status = EXCLUDED.status,
		error_message = EXCLUDED.error_message,
		failed_feeds = EXCLUDED.failed_feeds`

// PostgreSQLStorage appends every snapshot to a JSONB history table
type PostgreSQLStorage struct {
	db *sql.DB
}

// NewPostgreSQLStorage opens the database and creates the tables if missing
func NewPostgreSQLStorage(ctx context.Context, cfg config.StorageConfig) (*PostgreSQLStorage, error) {
	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgresql: %w", err)
	}
	s := &PostgreSQLStorage{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (p *PostgreSQLStorage) migrate(ctx context.Context) error {
	for _, stmt := range postgresSchema {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create postgresql schema: %w", err)
		}
	}
	return nil
}

func (p *PostgreSQLStorage) StoreDocument(ctx context.Context, doc *models.Document) error {
	b, err := Encode(doc)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO notion_snapshots (synced_at, document) VALUES ($1, $2)`,
		doc.SyncedAt.UTC(), string(b))
	if err != nil {
		return fmt.Errorf("failed to store document in postgresql: %w", err)
	}
	return nil
}

func (p *PostgreSQLStorage) UpdateSyncStatus(ctx context.Context, status models.SyncStatus) error {
	_, err := p.db.ExecContext(ctx, upsertStatusSQL, statusArgs(status)...)
	if err != nil {
		return fmt.Errorf("failed to store sync status in postgresql: %w", err)
	}
	return nil
}

// statusArgs maps a status onto the upsert placeholders
func statusArgs(status models.SyncStatus) []any {
	var lastSuccess sql.NullTime
	if !status.LastSuccessfulRun.IsZero() {
		lastSuccess = sql.NullTime{Time: status.LastSuccessfulRun.UTC(), Valid: true}
	}
	var errMsg sql.NullString
	if status.ErrorMessage != "" {
		errMsg = sql.NullString{String: status.ErrorMessage, Valid: true}
	}
	return []any{
		statusKey,
		status.LastAttempt.UTC(),
		lastSuccess,
		status.Status,
		errMsg,
		pq.Array(status.FailedFeeds),
	}
}

func (p *PostgreSQLStorage) Close() error {
	return p.db.Close()
}
