package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/York260/Coins-manager/internal/core"
)

// FileStore keeps the snapshot in a single JSON file, the closest analog
// of the original single-key browser storage.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(ctx context.Context) (core.AppState, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.WarnContext(ctx, "Failed to read state file, starting empty",
				"path", s.path, "error", err)
		}
		return core.DefaultState(), nil
	}

	state, err := DecodeSnapshot(raw)
	if err != nil {
		slog.WarnContext(ctx, "State file is corrupt, starting empty",
			"path", s.path, "error", err)
		return core.DefaultState(), nil
	}
	return state, nil
}

func (s *FileStore) Save(ctx context.Context, state core.AppState) error {
	raw, err := EncodeSnapshot(state)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create state directory: %w", err)
		}
	}

	// Write-then-rename so a crash mid-write cannot leave a truncated
	// snapshot behind.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
