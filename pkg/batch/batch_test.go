// Copyright 2025 Certen Protocol

package batch

import (
	"encoding/json"
	"testing"

	"github.com/cometbft/cometbft/crypto/ed25519"

	certenerrors "github.com/certen/verifying-client/pkg/errors"
	"github.com/certen/verifying-client/pkg/rpc"
	"github.com/certen/verifying-client/pkg/types"
)

type testSigner struct {
	id   types.ValidatorID
	priv ed25519.PrivKey
	pub  ed25519.PubKey
}

func newTestSigner(id string) testSigner {
	priv := ed25519.GenPrivKey()
	return testSigner{id: types.ValidatorID(id), priv: priv, pub: priv.PubKey().(ed25519.PubKey)}
}

func testValidatorSet(epoch types.Epoch, signers []testSigner) *types.ValidatorSet {
	vs := &types.ValidatorSet{Epoch: epoch, Validators: make(map[types.ValidatorID]types.Validator)}
	for _, s := range signers {
		vs.Validators[s.id] = types.Validator{ID: s.id, PubKey: s.pub, VotingPower: 1}
	}
	return vs
}

func wireCertify(li types.LedgerInfo, signers []testSigner) rpc.WireLedgerInfoWithSignatures {
	digest := li.Hash()
	sigs := make(map[string][]byte, len(signers))
	for _, s := range signers {
		sig, _ := s.priv.Sign(digest[:])
		sigs[string(s.id)] = sig
	}
	return rpc.WireLedgerInfoWithSignatures{
		LedgerInfo: rpc.WireLedgerInfo{
			Version:                    uint64(li.VersionVal),
			TransactionAccumulatorHash: li.TransactionAccumulatorHash,
			ConsensusDataHash:          li.ConsensusDataHash,
			ConsensusBlockID:           li.ConsensusBlockID,
			EpochNum:                   uint64(li.EpochNum),
			TimestampUsecs:             li.TimestampUsecs,
		},
		Signatures: sigs,
	}
}

func mustMarshal(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

// newFixture builds a pinned-at-10 batch with an already-bootstrapped
// trusted state (epoch 1, no change expected from the state proof) and
// a single get_metadata sub-request, for S4/S5 style per-element tests.
func newFixture(t *testing.T) (*Batch, types.TrustedState, []testSigner) {
	t.Helper()
	signers := []testSigner{newTestSigner("v1"), newTestSigner("v2"), newTestSigner("v3")}
	vs := testValidatorSet(1, signers)
	old := types.NewEpochState(1, vs, 10, &types.TransactionAccumulatorSummary{NumLeaves: 11, FrontierHashes: []types.HashValue{{0x01}}})

	b := FromBatch([]UserRequest{{Kind: ReqGetMetadata}}, 10, false)
	return b, old, signers
}

func stateProofResponse(t *testing.T, old types.TrustedState, signers []testSigner) rpc.Response {
	t.Helper()
	li := types.LedgerInfo{VersionVal: 10, EpochNum: 1, TransactionAccumulatorHash: types.HashValue{0x02}}
	certified := wireCertify(li, signers)
	result := rpc.StateProofResult{LatestLedgerInfo: certified}
	return rpc.Response{ID: "0", State: rpc.StateBlock{Version: 10}, Result: mustMarshal(t, result)}
}

// TestValidateResponsesHappyPath exercises the normal single-element
// path: pinned version matches across both sub-responses.
func TestValidateResponsesHappyPath(t *testing.T) {
	b, old, signers := newFixture(t)
	responses := []rpc.Response{
		stateProofResponse(t, old, signers),
		{ID: "1", State: rpc.StateBlock{Version: 10}, Result: mustMarshal(t, rpc.MetadataResult{Version: 10})},
	}

	_, results, more, err := b.ValidateResponses(old, responses)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if more {
		t.Fatalf("expected more=false")
	}
	if len(results) != 1 || results[0].Err != nil {
		t.Fatalf("expected one clean result, got %+v", results)
	}
}

// TestValidateResponsesStaleResponse mirrors spec.md §8 scenario S5:
// a sub-response reporting a version older than the pinned version
// must fail with StaleResponse, isolated to that element.
func TestValidateResponsesStaleResponse(t *testing.T) {
	b, old, signers := newFixture(t)
	responses := []rpc.Response{
		stateProofResponse(t, old, signers),
		{ID: "1", State: rpc.StateBlock{Version: 9}, Result: mustMarshal(t, rpc.MetadataResult{Version: 9})},
	}

	_, results, _, err := b.ValidateResponses(old, responses)
	if err != nil {
		t.Fatalf("unexpected batch-level error: %v", err)
	}
	if len(results) != 1 || results[0].Err == nil {
		t.Fatalf("expected a per-element error, got %+v", results)
	}
	if !certenerrors.IsCode(results[0].Err, certenerrors.StaleResponse) {
		t.Fatalf("expected StaleResponse, got %v", results[0].Err)
	}
}

// TestValidateResponsesBatchStateMismatch mirrors S4: two sub-responses
// within one batch reporting different ledger versions.
func TestValidateResponsesBatchStateMismatch(t *testing.T) {
	signers := []testSigner{newTestSigner("v1"), newTestSigner("v2"), newTestSigner("v3")}
	vs := testValidatorSet(1, signers)
	old := types.NewEpochState(1, vs, 10, &types.TransactionAccumulatorSummary{NumLeaves: 11, FrontierHashes: []types.HashValue{{0x01}}})

	b := FromBatch([]UserRequest{{Kind: ReqGetMetadata}, {Kind: ReqGetCurrencies}}, 10, false)
	responses := []rpc.Response{
		stateProofResponse(t, old, signers),
		{ID: "1", State: rpc.StateBlock{Version: 10}, Result: mustMarshal(t, rpc.MetadataResult{Version: 10})},
		{ID: "2", State: rpc.StateBlock{Version: 11}, Result: mustMarshal(t, rpc.CurrenciesResult{})},
	}

	_, results, _, err := b.ValidateResponses(old, responses)
	if err != nil {
		t.Fatalf("unexpected batch-level error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected two results, got %d", len(results))
	}
	if results[0].Err != nil {
		t.Fatalf("expected first element clean, got %v", results[0].Err)
	}
	if results[1].Err == nil || !certenerrors.IsCode(results[1].Err, certenerrors.BatchStateMismatch) {
		t.Fatalf("expected BatchStateMismatch on second element, got %v", results[1].Err)
	}
}

// TestCollectRequestsByVersionUsesExplicitVersion mirrors
// original_source's get_metadata_by_version/get_account_by_version:
// these accessors query an explicit historical version rather than the
// batch's pinned (latest-known) version.
func TestCollectRequestsByVersionUsesExplicitVersion(t *testing.T) {
	explicit := uint64(5)
	b := FromBatch([]UserRequest{
		{Kind: ReqGetMetadataByVersion, Version: &explicit},
		{Kind: ReqGetAccountByVersion, Address: "0xabc", Version: &explicit},
	}, 10, false)

	requests, err := b.CollectRequests()
	if err != nil {
		t.Fatalf("CollectRequests: %v", err)
	}
	if len(requests) != 3 {
		t.Fatalf("expected 3 sub-requests, got %d", len(requests))
	}

	var metaParams rpc.GetMetadataParams
	if err := json.Unmarshal(requests[1].Params, &metaParams); err != nil {
		t.Fatalf("unmarshal metadata params: %v", err)
	}
	if requests[1].Method != rpc.MethodGetMetadataByVersion || metaParams.Version == nil || *metaParams.Version != explicit {
		t.Fatalf("expected get_metadata_by_version pinned to %d, got method=%q version=%v", explicit, requests[1].Method, metaParams.Version)
	}

	var accountParams rpc.GetAccountParams
	if err := json.Unmarshal(requests[2].Params, &accountParams); err != nil {
		t.Fatalf("unmarshal account params: %v", err)
	}
	if requests[2].Method != rpc.MethodGetAccountByVersion || accountParams.Version == nil || *accountParams.Version != explicit {
		t.Fatalf("expected get_account_by_version pinned to %d, got method=%q version=%v", explicit, requests[2].Method, accountParams.Version)
	}
}

// TestValidateResponsesAccumulatorStateMismatch mirrors
// original_source's get_state_proof_and_maybe_accumulator: the
// accumulator-consistency-proof sub-response and the state-proof
// sub-response must be served from the same state, or the batch is
// rejected before either is trusted.
func TestValidateResponsesAccumulatorStateMismatch(t *testing.T) {
	signers := []testSigner{newTestSigner("v1"), newTestSigner("v2"), newTestSigner("v3")}
	vs := testValidatorSet(1, signers)
	waypointHash := vs.Hash()
	old := types.NewEpochWaypoint(1, waypointHash)

	b := FromBatch([]UserRequest{{Kind: ReqGetMetadata}}, 0, true)
	responses := []rpc.Response{
		{ID: "0", State: rpc.StateBlock{Version: 11}, Result: mustMarshal(t, rpc.StateProofResult{})},
		{ID: "1", State: rpc.StateBlock{Version: 10}, Result: mustMarshal(t, rpc.AccumulatorConsistencyProofResult{})},
		{ID: "2", State: rpc.StateBlock{Version: 11}, Result: mustMarshal(t, rpc.MetadataResult{Version: 11})},
	}

	_, _, _, err := b.ValidateResponses(old, responses)
	if err == nil || !certenerrors.IsCode(err, certenerrors.BatchStateMismatch) {
		t.Fatalf("expected BatchStateMismatch, got %v", err)
	}
}

func TestSubRequestCountIncludesAccumulatorProof(t *testing.T) {
	b := FromBatch([]UserRequest{{Kind: ReqGetMetadata}, {Kind: ReqGetCurrencies}}, 0, true)
	if got := b.SubRequestCount(); got != 4 {
		t.Fatalf("expected 4 sub-requests (state proof + accumulator proof + 2 user requests), got %d", got)
	}
}
