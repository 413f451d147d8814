package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/York260/Coins-manager/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists the snapshot blob in a single-row SQLite table,
// keyed by SnapshotKey.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (core.AppState, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM snapshots WHERE key = ?`, SnapshotKey).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return core.DefaultState(), nil
	case err != nil:
		slog.WarnContext(ctx, "Failed to read snapshot row, starting empty", "error", err)
		return core.DefaultState(), nil
	}

	state, err := DecodeSnapshot(raw)
	if err != nil {
		slog.WarnContext(ctx, "Persisted snapshot is corrupt, starting empty", "error", err)
		return core.DefaultState(), nil
	}
	return state, nil
}

func (s *SQLiteStore) Save(ctx context.Context, state core.AppState) error {
	raw, err := EncodeSnapshot(state)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (key, payload, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		SnapshotKey, raw)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
