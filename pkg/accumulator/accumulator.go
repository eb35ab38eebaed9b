// Copyright 2025 Certen Protocol
//
// Component C: Accumulator Verifier. A transaction-history
// Merkle-Mountain-Range-style accumulator: the frontier is the
// minimal set of sub-tree roots whose leaf ranges partition
// [0, NumLeaves), one entry per set bit of NumLeaves (most-significant
// first), exactly mirroring the standard MMR "peaks" representation.
//
// The sibling re-hashing rule (walk a path of (hash, right-flag)
// pairs, folding into a running hash) is adapted from
// pkg/merkle/receipt.go's Receipt.Validate: "if Right, hash(current,
// sibling); else hash(sibling, current)".

package accumulator

import (
	"crypto/sha256"
	"math/bits"

	certenerrors "github.com/certen/verifying-client/pkg/errors"
	"github.com/certen/verifying-client/pkg/types"
)

// hashPair computes SHA256(left || right), the node-compression
// function for every level of the accumulator.
func hashPair(left, right types.HashValue) types.HashValue {
	h := sha256.New()
	h.Write(left[:])
	h.Write(right[:])
	var out types.HashValue
	copy(out[:], h.Sum(nil))
	return out
}

// frontierSizes decomposes numLeaves into the sizes of the sub-trees
// that make up the frontier, most-significant bit first. E.g.
// numLeaves=13 (0b1101) yields sizes [8, 4, 1].
func frontierSizes(numLeaves uint64) []uint64 {
	if numLeaves == 0 {
		return nil
	}
	sizes := make([]uint64, 0, bits.OnesCount64(numLeaves))
	for bit := 63; bit >= 0; bit-- {
		b := uint64(1) << uint(bit)
		if numLeaves&b != 0 {
			sizes = append(sizes, b)
		}
	}
	return sizes
}

// RootHash folds a summary's frontier peaks into the single root hash
// at NumLeaves, by bagging right-to-left: the rightmost (smallest,
// newest) peak combines into the running hash first.
func RootHash(summary *types.TransactionAccumulatorSummary) types.HashValue {
	n := len(summary.FrontierHashes)
	if n == 0 {
		return types.HashValue{}
	}
	root := summary.FrontierHashes[n-1]
	for i := n - 2; i >= 0; i-- {
		root = hashPair(summary.FrontierHashes[i], root)
	}
	return root
}

// appendLeaves inserts newLeaves (each representing one fully-formed,
// single-leaf sub-tree root) into frontier/numLeaves using the
// standard MMR carry-merge: a newly inserted size-1 peak merges with
// the current smallest peak whenever they are the same size, exactly
// like incrementing a binary counter.
func appendLeaves(frontier []types.HashValue, numLeaves uint64, newLeaves []types.HashValue) ([]types.HashValue, uint64) {
	for _, leaf := range newLeaves {
		entry := leaf
		entrySize := uint64(1)
		sizes := frontierSizes(numLeaves)
		for len(sizes) > 0 && sizes[len(sizes)-1] == entrySize {
			last := frontier[len(frontier)-1]
			frontier = frontier[:len(frontier)-1]
			sizes = sizes[:len(sizes)-1]
			entry = hashPair(last, entry)
			entrySize *= 2
		}
		frontier = append(frontier, entry)
		numLeaves++
	}
	return frontier, numLeaves
}

// TryFromGenesisProof constructs an initial summary from a proof that
// links the empty accumulator to targetVersion, and checks the
// resulting root matches expectedRoot. Fails InvalidProof on any
// structural inconsistency.
func TryFromGenesisProof(proof *types.AccumulatorConsistencyProof, targetVersion types.Version, expectedRoot types.HashValue) (*types.TransactionAccumulatorSummary, error) {
	if proof == nil {
		return nil, certenerrors.NewInvalidProofError(certenerrors.ReasonInvalidAccumulator, "genesis proof is nil")
	}
	frontier, numLeaves := appendLeaves(nil, 0, proof.Subtrees)
	wantLeaves := uint64(targetVersion) + 1
	if numLeaves != wantLeaves {
		return nil, certenerrors.NewInvalidProofError(certenerrors.ReasonInvalidAccumulator, "genesis proof does not cover target_version").
			WithContext("got_leaves", numLeaves).WithContext("want_leaves", wantLeaves)
	}
	summary := &types.TransactionAccumulatorSummary{NumLeaves: numLeaves, FrontierHashes: frontier}
	if RootHash(summary) != expectedRoot {
		return nil, certenerrors.NewInvalidProofError(certenerrors.ReasonInvalidAccumulator, "genesis proof root does not match expected root")
	}
	return summary, nil
}

// Append extends summary using proof, producing a new summary whose
// root must equal expectedRoot. Fails InvalidProof on any arithmetic
// or structural inconsistency: non-monotone version, wrong sub-tree
// sizes, or a mismatched root.
func Append(summary *types.TransactionAccumulatorSummary, proof *types.AccumulatorConsistencyProof, newVersion types.Version, expectedRoot types.HashValue) (*types.TransactionAccumulatorSummary, error) {
	if summary == nil {
		return nil, certenerrors.NewInvalidProofError(certenerrors.ReasonInvalidAccumulator, "cannot append to a nil summary")
	}
	wantLeaves := uint64(newVersion) + 1
	if wantLeaves <= summary.NumLeaves {
		return nil, certenerrors.NewInvalidProofError(certenerrors.ReasonInvalidAccumulator, "new_version is not strictly greater than the summary's current version").
			WithContext("current_leaves", summary.NumLeaves).WithContext("want_leaves", wantLeaves)
	}
	if proof == nil {
		return nil, certenerrors.NewInvalidProofError(certenerrors.ReasonInvalidAccumulator, "consistency proof is nil")
	}

	frontierCopy := append([]types.HashValue(nil), summary.FrontierHashes...)
	frontier, numLeaves := appendLeaves(frontierCopy, summary.NumLeaves, proof.Subtrees)
	if numLeaves != wantLeaves {
		return nil, certenerrors.NewInvalidProofError(certenerrors.ReasonInvalidAccumulator, "consistency proof does not reach new_version").
			WithContext("got_leaves", numLeaves).WithContext("want_leaves", wantLeaves)
	}

	extended := &types.TransactionAccumulatorSummary{NumLeaves: numLeaves, FrontierHashes: frontier}
	if RootHash(extended) != expectedRoot {
		return nil, certenerrors.NewInvalidProofError(certenerrors.ReasonInvalidAccumulator, "extended accumulator root does not match expected root")
	}
	return extended, nil
}

// VerifyInclusion verifies that leafHash at version is included under
// summary's root, by re-hashing siblings along the Merkle path
// (pkg/merkle/receipt.go's Right-flag walk) and comparing the
// resulting root to RootHash(summary). The sibling list must lead from
// the leaf all the way to this summary's root, across its frontier
// peaks; a path built for an accumulator with fewer leaves does not
// recompute to a later summary's root and is rejected.
func VerifyInclusion(summary *types.TransactionAccumulatorSummary, version types.Version, leafHash types.HashValue, siblings []types.InclusionSibling) error {
	if uint64(version) >= summary.NumLeaves {
		return certenerrors.NewInvalidProofError(certenerrors.ReasonInvalidAccumulator, "version is not covered by this summary").
			WithContext("version", uint64(version)).WithContext("num_leaves", summary.NumLeaves)
	}

	current := leafHash
	for _, sib := range siblings {
		if sib.Right {
			current = hashPair(current, sib.Hash)
		} else {
			current = hashPair(sib.Hash, current)
		}
	}

	if current != RootHash(summary) {
		return certenerrors.NewInvalidProofError(certenerrors.ReasonInvalidAccumulator, "inclusion proof does not recompute to the summary root")
	}
	return nil
}
