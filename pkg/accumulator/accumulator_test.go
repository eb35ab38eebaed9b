// Copyright 2025 Certen Protocol

package accumulator

import (
	"testing"

	"github.com/certen/verifying-client/pkg/types"
)

func leafHash(b byte) types.HashValue {
	var h types.HashValue
	h[0] = b
	return h
}

func TestTryFromGenesisProofAndAppend(t *testing.T) {
	leaves := []types.HashValue{leafHash(1), leafHash(2), leafHash(3)}
	proof := &types.AccumulatorConsistencyProof{Subtrees: leaves}

	frontier, numLeaves := appendLeaves(nil, 0, leaves)
	summary := &types.TransactionAccumulatorSummary{NumLeaves: numLeaves, FrontierHashes: frontier}
	root := RootHash(summary)

	got, err := TryFromGenesisProof(proof, types.Version(2), root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if RootHash(got) != root {
		t.Fatalf("root mismatch after TryFromGenesisProof")
	}

	// Appending one more leaf must advance numLeaves and change the root.
	extra := []types.HashValue{leafHash(4)}
	frontier2, numLeaves2 := appendLeaves(append([]types.HashValue(nil), frontier...), numLeaves, extra)
	summary2 := &types.TransactionAccumulatorSummary{NumLeaves: numLeaves2, FrontierHashes: frontier2}
	root2 := RootHash(summary2)

	extended, err := Append(got, &types.AccumulatorConsistencyProof{Subtrees: extra}, types.Version(3), root2)
	if err != nil {
		t.Fatalf("unexpected error on append: %v", err)
	}
	if extended.NumLeaves != 4 {
		t.Fatalf("expected 4 leaves, got %d", extended.NumLeaves)
	}
	if root2 == root {
		t.Fatalf("expected root to change after append")
	}
}

func TestAppendRejectsNonMonotoneVersion(t *testing.T) {
	summary := &types.TransactionAccumulatorSummary{NumLeaves: 5, FrontierHashes: []types.HashValue{leafHash(9)}}
	_, err := Append(summary, &types.AccumulatorConsistencyProof{Subtrees: nil}, types.Version(3), types.HashValue{})
	if err == nil {
		t.Fatalf("expected error for non-monotone version")
	}
}

func TestVerifyInclusion(t *testing.T) {
	leaves := []types.HashValue{leafHash(1), leafHash(2)}
	frontier, numLeaves := appendLeaves(nil, 0, leaves)
	summary := &types.TransactionAccumulatorSummary{NumLeaves: numLeaves, FrontierHashes: frontier}

	// With two single-leaf peaks merged into one size-2 peak, leaf 0's
	// sibling is leaf 1 on the right.
	siblings := []types.InclusionSibling{{Hash: leaves[1], Right: true}}
	if err := VerifyInclusion(summary, types.Version(0), leaves[0], siblings); err != nil {
		t.Fatalf("expected valid inclusion proof, got %v", err)
	}

	// Flipping the sibling hash must fail.
	bad := []types.InclusionSibling{{Hash: leafHash(0xff), Right: true}}
	if err := VerifyInclusion(summary, types.Version(0), leaves[0], bad); err == nil {
		t.Fatalf("expected inclusion proof to fail with wrong sibling")
	}
}

func TestVerifyInclusionRejectsOutOfRangeVersion(t *testing.T) {
	summary := &types.TransactionAccumulatorSummary{NumLeaves: 1, FrontierHashes: []types.HashValue{leafHash(1)}}
	if err := VerifyInclusion(summary, types.Version(5), leafHash(1), nil); err == nil {
		t.Fatalf("expected error for out-of-range version")
	}
}
