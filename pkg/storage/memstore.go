// Copyright 2025 Certen Protocol

package storage

import (
	"sync"

	"github.com/certen/verifying-client/pkg/types"
)

// MemStore is an in-memory types.Storage implementation: no
// persistence across process restarts, used for tests and for callers
// who accept spec.md's "persisting waypoints to durable media" as an
// explicit non-goal of the abstract storage interface.
type MemStore struct {
	mu    sync.Mutex
	state types.TrustedState
	has   bool
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (m *MemStore) Load() (types.TrustedState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.has, nil
}

func (m *MemStore) Store(state types.TrustedState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.has = true
	return nil
}
