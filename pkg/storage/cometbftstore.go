// Copyright 2025 Certen Protocol
//
// Disk-backed Storage adapter, built on pkg/kvdb.KVAdapter's
// ledger.KV-shaped Get/Set rather than depending on cometbft-db's
// dbm.DB directly: the domain-level Storage interface (load/store)
// sits on top of that raw key/value abstraction.

package storage

import (
	"encoding/json"
	"sync"

	"github.com/cometbft/cometbft/crypto/ed25519"

	"github.com/certen/verifying-client/pkg/types"
)

// trustedStateKey is the single key this adapter ever writes: the
// store holds exactly one TrustedState (spec.md §3's
// TrustedStateStore "owns the single current TrustedState").
var trustedStateKey = []byte("verifying_client/trusted_state")

// KV is the raw key/value dependency CometStore needs: exactly the
// shape pkg/kvdb.KVAdapter already exposes over a cometbft-db dbm.DB.
type KV interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
}

// CometStore persists a TrustedState through a KV (in practice a
// *kvdb.KVAdapter wrapping a cometbft-db dbm.DB). Safe for concurrent
// use: writes take an internal mutex, and the underlying Set is
// itself a durable write with respect to concurrent readers.
type CometStore struct {
	mu sync.Mutex
	kv KV
}

func NewCometStore(kv KV) *CometStore {
	return &CometStore{kv: kv}
}

// wireTrustedState is the JSON-serializable mirror of types.TrustedState.
// ed25519 public keys round-trip as their raw bytes (ed25519.PubKey is
// itself a []byte-backed type, so the default JSON encoding already
// does this correctly; this struct exists purely to give the
// validator map a stable field order).
type wireValidator struct {
	ID          string `json:"id"`
	PubKey      []byte `json:"pub_key"`
	VotingPower uint64 `json:"voting_power"`
}

type wireValidatorSet struct {
	Epoch      uint64          `json:"epoch"`
	Validators []wireValidator `json:"validators"`
}

type wireTrustedState struct {
	Kind               int               `json:"kind"`
	Epoch              uint64            `json:"epoch"`
	WaypointHash       [32]byte          `json:"waypoint_hash"`
	ValidatorSet       *wireValidatorSet `json:"validator_set,omitempty"`
	Version            uint64            `json:"version"`
	FrontierHashes     [][32]byte        `json:"frontier_hashes,omitempty"`
	NumLeaves          uint64            `json:"num_leaves,omitempty"`
	HasAccumulator     bool              `json:"has_accumulator"`
}

func toWire(s types.TrustedState) wireTrustedState {
	w := wireTrustedState{
		Kind:         int(s.Kind),
		Epoch:        uint64(s.Epoch),
		WaypointHash: s.WaypointHash,
		Version:      uint64(s.Version),
	}
	if s.ValidatorSet != nil {
		vs := &wireValidatorSet{Epoch: uint64(s.ValidatorSet.Epoch)}
		for id, v := range s.ValidatorSet.Validators {
			vs.Validators = append(vs.Validators, wireValidator{
				ID:          string(id),
				PubKey:      v.PubKey.Bytes(),
				VotingPower: v.VotingPower,
			})
		}
		w.ValidatorSet = vs
	}
	if s.AccumulatorSummary != nil {
		w.HasAccumulator = true
		w.NumLeaves = s.AccumulatorSummary.NumLeaves
		for _, h := range s.AccumulatorSummary.FrontierHashes {
			w.FrontierHashes = append(w.FrontierHashes, h)
		}
	}
	return w
}

func (m *CometStore) Load() (types.TrustedState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, err := m.kv.Get(trustedStateKey)
	if err != nil {
		return types.TrustedState{}, false, err
	}
	if raw == nil {
		return types.TrustedState{}, false, nil
	}

	var w wireTrustedState
	if err := json.Unmarshal(raw, &w); err != nil {
		return types.TrustedState{}, false, err
	}

	state := types.TrustedState{
		Kind:         types.Kind(w.Kind),
		Epoch:        types.Epoch(w.Epoch),
		WaypointHash: w.WaypointHash,
		Version:      types.Version(w.Version),
	}
	if w.ValidatorSet != nil {
		vs := &types.ValidatorSet{Epoch: types.Epoch(w.ValidatorSet.Epoch), Validators: make(map[types.ValidatorID]types.Validator)}
		for _, v := range w.ValidatorSet.Validators {
			vs.Validators[types.ValidatorID(v.ID)] = types.Validator{
				ID:          types.ValidatorID(v.ID),
				PubKey:      ed25519.PubKey(v.PubKey),
				VotingPower: v.VotingPower,
			}
		}
		state.ValidatorSet = vs
	}
	if w.HasAccumulator {
		summary := &types.TransactionAccumulatorSummary{NumLeaves: w.NumLeaves}
		for _, h := range w.FrontierHashes {
			summary.FrontierHashes = append(summary.FrontierHashes, h)
		}
		state.AccumulatorSummary = summary
	}
	return state, true, nil
}

func (m *CometStore) Store(state types.TrustedState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.Marshal(toWire(state))
	if err != nil {
		return err
	}
	return m.kv.Set(trustedStateKey, data)
}
