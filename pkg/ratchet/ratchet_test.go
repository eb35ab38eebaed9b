// Copyright 2025 Certen Protocol

package ratchet

import (
	"testing"

	"github.com/cometbft/cometbft/crypto/ed25519"

	"github.com/certen/verifying-client/pkg/accumulator"
	certenerrors "github.com/certen/verifying-client/pkg/errors"
	"github.com/certen/verifying-client/pkg/types"
)

type signer struct {
	id   types.ValidatorID
	priv ed25519.PrivKey
	pub  ed25519.PubKey
}

func newSigner(id string) signer {
	priv := ed25519.GenPrivKey()
	return signer{id: types.ValidatorID(id), priv: priv, pub: priv.PubKey().(ed25519.PubKey)}
}

func validatorSet(epoch types.Epoch, signers []signer) *types.ValidatorSet {
	vs := &types.ValidatorSet{Epoch: epoch, Validators: make(map[types.ValidatorID]types.Validator)}
	for _, s := range signers {
		vs.Validators[s.id] = types.Validator{ID: s.id, PubKey: s.pub, VotingPower: 1}
	}
	return vs
}

func certify(li types.LedgerInfo, signers []signer) types.LedgerInfoWithSignatures {
	digest := li.Hash()
	sigs := make(map[types.ValidatorID][]byte, len(signers))
	for _, s := range signers {
		sig, _ := s.priv.Sign(digest[:])
		sigs[s.id] = sig
	}
	return types.LedgerInfoWithSignatures{LedgerInfo: li, Signatures: sigs}
}

func leaf(b byte) types.HashValue {
	var h types.HashValue
	h[0] = b
	return h
}

// TestBootstrapFromWaypoint mirrors spec.md §8 scenario S1: bootstrap
// from an EpochWaypoint, one epoch-change record advancing epoch 1 to
// 2, latest at version 100 backed by a genesis accumulator proof.
func TestBootstrapFromWaypoint(t *testing.T) {
	epoch1Signers := []signer{newSigner("v1"), newSigner("v2"), newSigner("v3")}
	epoch1Set := validatorSet(1, epoch1Signers)
	epoch2Signers := []signer{newSigner("w1"), newSigner("w2"), newSigner("w3")}
	epoch2Set := validatorSet(2, epoch2Signers)

	waypointHash := epoch1Set.Hash()
	old := types.NewEpochWaypoint(1, waypointHash)

	leaves := make([]types.HashValue, 101)
	for i := range leaves {
		leaves[i] = leaf(byte(i + 1))
	}
	frontier, numLeaves := appendLeavesForTest(leaves)
	root := accumulator.RootHash(&types.TransactionAccumulatorSummary{NumLeaves: numLeaves, FrontierHashes: frontier})

	epochEndLI := types.LedgerInfo{VersionVal: 99, EpochNum: 1, TransactionAccumulatorHash: types.HashValue{0xAA}}
	epochEndCertified := certify(epochEndLI, epoch1Signers)

	latestLI := types.LedgerInfo{VersionVal: 100, EpochNum: 2, TransactionAccumulatorHash: root}
	latestCertified := certify(latestLI, epoch2Signers)

	proof := &types.StateProof{
		LatestLedgerInfo: latestCertified,
		EpochChanges: types.EpochChangeProof{
			Records: []types.EpochChangeRecord{
				{Certified: epochEndCertified, SigningValidatorSet: epoch1Set, NextValidatorSet: epoch2Set},
			},
			More: false,
		},
	}

	change, err := VerifyAndRatchet(old, proof, &types.AccumulatorConsistencyProof{Subtrees: leaves})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if change.Kind != EpochChange {
		t.Fatalf("expected EpochChange, got %v", change.Kind)
	}
	if change.NewState.Epoch != 2 || change.NewState.Version != 100 {
		t.Fatalf("expected (epoch=2, version=100), got (epoch=%d, version=%d)", change.NewState.Epoch, change.NewState.Version)
	}
}

// TestBadSignatureFails mirrors S3: a latest_ledger_info whose
// signatures fall below quorum must fail InvalidProof and leave the
// caller free to retry; the function performs no mutation itself.
func TestBadSignatureFails(t *testing.T) {
	signers := []signer{newSigner("v1"), newSigner("v2"), newSigner("v3")}
	vs := validatorSet(1, signers)
	old := types.NewEpochState(1, vs, 50, &types.TransactionAccumulatorSummary{NumLeaves: 51, FrontierHashes: []types.HashValue{leaf(1)}})

	li := types.LedgerInfo{VersionVal: 60, EpochNum: 1, TransactionAccumulatorHash: leaf(2)}
	certified := certify(li, signers[:1]) // only one of three signs: below quorum

	proof := &types.StateProof{LatestLedgerInfo: certified}
	_, err := VerifyAndRatchet(old, proof, nil)
	if err == nil {
		t.Fatalf("expected quorum failure")
	}
	if !certenerrors.IsCode(err, certenerrors.InvalidProof) {
		t.Fatalf("expected InvalidProof, got %v", err)
	}
}

// TestSameVersionStateProofIsNoop guards against a regression: a
// heartbeat state-proof response reporting the same (epoch, version)
// old already trusts must come back as NoChange, not as an
// InvalidProof from trying to extend the accumulator past a version it
// has already covered.
func TestSameVersionStateProofIsNoop(t *testing.T) {
	signers := []signer{newSigner("v1"), newSigner("v2"), newSigner("v3")}
	vs := validatorSet(1, signers)
	summary := &types.TransactionAccumulatorSummary{NumLeaves: 51, FrontierHashes: []types.HashValue{leaf(1)}}
	old := types.NewEpochState(1, vs, 50, summary)

	li := types.LedgerInfo{VersionVal: 50, EpochNum: 1, TransactionAccumulatorHash: accumulator.RootHash(summary)}
	certified := certify(li, signers)

	proof := &types.StateProof{LatestLedgerInfo: certified}
	change, err := VerifyAndRatchet(old, proof, nil)
	if err != nil {
		t.Fatalf("same-version heartbeat must not error: %v", err)
	}
	if change.Kind != NoChange {
		t.Fatalf("expected NoChange, got %v", change.Kind)
	}
}

func appendLeavesForTest(leaves []types.HashValue) ([]types.HashValue, uint64) {
	summary := &types.TransactionAccumulatorSummary{}
	for _, l := range leaves {
		entry := l
		entrySize := uint64(1)
		sizes := sizesOf(summary.NumLeaves)
		for len(sizes) > 0 && sizes[len(sizes)-1] == entrySize {
			last := summary.FrontierHashes[len(summary.FrontierHashes)-1]
			summary.FrontierHashes = summary.FrontierHashes[:len(summary.FrontierHashes)-1]
			sizes = sizes[:len(sizes)-1]
			entry = hashPairForTest(last, entry)
			entrySize *= 2
		}
		summary.FrontierHashes = append(summary.FrontierHashes, entry)
		summary.NumLeaves++
	}
	return summary.FrontierHashes, summary.NumLeaves
}

func sizesOf(numLeaves uint64) []uint64 {
	var sizes []uint64
	for bit := 63; bit >= 0; bit-- {
		b := uint64(1) << uint(bit)
		if numLeaves&b != 0 {
			sizes = append(sizes, b)
		}
	}
	return sizes
}

func hashPairForTest(left, right types.HashValue) types.HashValue {
	// Mirrors accumulator.hashPair without exporting it.
	return accumulator.RootHash(&types.TransactionAccumulatorSummary{NumLeaves: 2, FrontierHashes: []types.HashValue{left, right}})
}
