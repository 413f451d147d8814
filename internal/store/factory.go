package store

import (
	"fmt"
	"log/slog"
)

// BackendType selects the snapshot storage backend.
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
)

func (bt BackendType) String() string { return string(bt) }

// IsValid returns true if the backend type is valid.
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, FileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Config holds what each backend needs to open.
type Config struct {
	Type BackendType

	// File backend
	StateFilePath string

	// SQLite backend
	SQLiteDBPath string
}

// Open creates the configured backend and returns it alongside a cleanup
// function, never nil, so callers can defer it unconditionally.
func Open(cfg Config, logger *slog.Logger) (Store, CleanupFunc, error) {
	if logger == nil {
		logger = slog.Default()
	}
	noop := func() error { return nil }

	switch cfg.Type {
	case MemoryBackend:
		logger.Info("Initialized memory state store")
		return NewMemoryStore(), noop, nil

	case FileBackend:
		if cfg.StateFilePath == "" {
			return nil, nil, fmt.Errorf("file backend needs a state file path")
		}
		logger.Info("Initialized file state store", "path", cfg.StateFilePath)
		return NewFileStore(cfg.StateFilePath), noop, nil

	case SQLiteBackend:
		if cfg.SQLiteDBPath == "" {
			return nil, nil, fmt.Errorf("sqlite backend needs a database path")
		}
		st, err := NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		logger.Info("Initialized sqlite state store", "db_path", cfg.SQLiteDBPath)
		return st, st.Close, nil

	default:
		return nil, nil, fmt.Errorf("invalid backend type: %s", cfg.Type)
	}
}
