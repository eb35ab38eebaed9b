// Copyright 2025 Certen Protocol

package types

// TransactionAccumulatorSummary is the logarithmic-size frontier of
// the transaction-history accumulator: the sub-tree roots whose
// combination yields the root hash at NumLeaves. See pkg/accumulator
// for the algorithms operating on this type.
type TransactionAccumulatorSummary struct {
	NumLeaves      uint64
	FrontierHashes []HashValue
}

// RootHash combines the frontier into the accumulator's root hash at
// NumLeaves. The combination rule (right-to-left folding of sub-tree
// roots) lives in pkg/accumulator to keep this package free of hashing
// policy; this method is implemented there via a package-level
// function operating on the exported fields.

// AccumulatorConsistencyProof links a known accumulator state (at an
// earlier version) to a later version: the sub-tree roots needed to
// extend the frontier.
type AccumulatorConsistencyProof struct {
	Subtrees []HashValue
}

// AccumulatorInclusionProof proves that a single leaf is included in
// the accumulator at a given version: the sibling hashes from the leaf
// up to its covering sub-tree root, each tagged with which side the
// sibling occupies.
type AccumulatorInclusionProof struct {
	Siblings []InclusionSibling
}

// InclusionSibling is one step of a Merkle inclusion path.
type InclusionSibling struct {
	Hash  HashValue
	Right bool // true: sibling is on the right of current
}

// EpochChangeRecord is one step of an epoch-change walk: a
// quorum-certified LedgerInfoWithSignatures, the validator set its
// signatures must verify under (the "running" set carried forward
// from the previous step, or bound to the waypoint digest for the
// first record of a bootstrap), and — unless this is the terminating
// "latest" record of the proof — the validator set that starts the
// next epoch.
type EpochChangeRecord struct {
	Certified          LedgerInfoWithSignatures
	SigningValidatorSet *ValidatorSet
	NextValidatorSet    *ValidatorSet // nil iff this is the terminating record
}

// EpochChangeProof is an ordered sequence of epoch-change records
// walking from one epoch to another, plus a flag indicating whether
// the sender has further records beyond what was sent.
type EpochChangeProof struct {
	Records []EpochChangeRecord
	More    bool
}

// StateProof is the bundle the server returns to sync a client.
type StateProof struct {
	LatestLedgerInfo  LedgerInfoWithSignatures
	EpochChanges      EpochChangeProof
	ConsistencyProof  *AccumulatorConsistencyProof // nil if not needed
}
