// Package store persists the application snapshot as a single opaque blob
// under one fixed key. Three backends are available: an in-process memory
// store, a JSON file, and a SQLite database.
package store

import (
	"context"
	"sync"

	"github.com/York260/Coins-manager/internal/core"
)

// SnapshotKey is the single fixed key all backends store the blob under.
const SnapshotKey = "moneykeeper_data_v1"

// Store loads and saves the full application snapshot.
//
// Load never fails the application: missing or corrupt data yields the
// empty default state. Save is best-effort; callers log a failure and keep
// the in-memory snapshot authoritative until the next successful write.
type Store interface {
	Load(ctx context.Context) (core.AppState, error)
	Save(ctx context.Context, state core.AppState) error
}

// MemoryStore keeps the snapshot in process memory. It is the default
// backend and the one tests use.
type MemoryStore struct {
	mu    sync.Mutex
	raw   []byte
	saves int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (core.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.raw == nil {
		return core.DefaultState(), nil
	}
	state, err := DecodeSnapshot(s.raw)
	if err != nil {
		return core.DefaultState(), nil
	}
	return state, nil
}

func (s *MemoryStore) Save(ctx context.Context, state core.AppState) error {
	raw, err := EncodeSnapshot(state)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = raw
	s.saves++
	return nil
}

// Saves returns how many times Save succeeded. Used by tests to assert
// write-through behavior.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
