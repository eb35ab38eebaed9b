// Copyright 2025 Certen Protocol

package storage

import (
	"testing"

	"github.com/cometbft/cometbft/crypto/ed25519"

	"github.com/certen/verifying-client/pkg/types"
)

// fakeKV is an in-memory stand-in for pkg/kvdb.KVAdapter, exercising
// CometStore against the same narrow KV shape without touching disk.
type fakeKV struct {
	data map[string][]byte
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string][]byte)}
}

func (f *fakeKV) Get(key []byte) ([]byte, error) {
	v, ok := f.data[string(key)]
	if !ok {
		return nil, nil
	}
	return v, nil
}

func (f *fakeKV) Set(key, value []byte) error {
	f.data[string(key)] = value
	return nil
}

func TestCometStoreLoadEmpty(t *testing.T) {
	store := NewCometStore(newFakeKV())
	_, ok, err := store.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected no trusted state in an empty store")
	}
}

func TestCometStoreRoundTrip(t *testing.T) {
	priv := ed25519.GenPrivKey()
	vs := &types.ValidatorSet{
		Epoch: 2,
		Validators: map[types.ValidatorID]types.Validator{
			"v1": {ID: "v1", PubKey: priv.PubKey().(ed25519.PubKey), VotingPower: 3},
		},
	}
	summary := &types.TransactionAccumulatorSummary{NumLeaves: 5, FrontierHashes: []types.HashValue{{0x01}, {0x02}}}
	want := types.NewEpochState(2, vs, 40, summary)

	store := NewCometStore(newFakeKV())
	if err := store.Store(want); err != nil {
		t.Fatalf("store: %v", err)
	}

	got, ok, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatalf("expected a stored trusted state to be found")
	}
	if got.Epoch != want.Epoch || got.Version != want.Version {
		t.Fatalf("expected (epoch=%d, version=%d), got (epoch=%d, version=%d)", want.Epoch, want.Version, got.Epoch, got.Version)
	}
	if got.ValidatorSet == nil || len(got.ValidatorSet.Validators) != 1 {
		t.Fatalf("expected validator set to survive round trip")
	}
	if got.AccumulatorSummary == nil || got.AccumulatorSummary.NumLeaves != 5 || len(got.AccumulatorSummary.FrontierHashes) != 2 {
		t.Fatalf("expected accumulator summary to survive round trip, got %+v", got.AccumulatorSummary)
	}
}
