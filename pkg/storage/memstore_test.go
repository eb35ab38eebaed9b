// Copyright 2025 Certen Protocol

package storage

import (
	"testing"

	"github.com/certen/verifying-client/pkg/types"
)

func TestMemStoreLoadStore(t *testing.T) {
	s := NewMemStore()

	if _, ok, err := s.Load(); err != nil || ok {
		t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
	}

	state := types.NewEpochWaypoint(1, types.HashValue{0x01})
	if err := s.Store(state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok, err := s.Load()
	if err != nil || !ok {
		t.Fatalf("expected stored state, got ok=%v err=%v", ok, err)
	}
	if got.Epoch != state.Epoch || got.WaypointHash != state.WaypointHash {
		t.Fatalf("loaded state does not match stored state")
	}
}
