// Copyright 2025 Certen Protocol
//
// Data model (spec.md §3): HashValue, Version, Epoch, ValidatorSet,
// LedgerInfo, LedgerInfoWithSignatures, VoteMsg, EpochChangeProof,
// TransactionAccumulatorSummary, StateProof, TrustedState,
// TrustedStateStore.

package types

import (
	"github.com/cometbft/cometbft/crypto/ed25519"

	"github.com/certen/verifying-client/pkg/hash"
)

// HashValue is the 32-byte digest type used throughout the core.
type HashValue = hash.Value

// Version is the monotonically increasing transaction index within
// the remote ledger.
type Version uint64

// Epoch is incremented exactly on each validator-set change.
type Epoch uint64

// ValidatorID identifies a validator within a ValidatorSet. It is an
// opaque string taken as given from the wire or the caller; it is not
// derived from, or checked against, the validator's public key.
type ValidatorID string

// Validator is one entry of a ValidatorSet: a verifying key plus its
// voting power.
type Validator struct {
	ID          ValidatorID
	PubKey      ed25519.PubKey
	VotingPower uint64
}

// ValidatorSet is the mapping from validator identifier to public
// verifying key and voting power for one epoch. The set is immutable
// within an epoch (spec.md §3).
type ValidatorSet struct {
	Epoch      Epoch
	Validators map[ValidatorID]Validator
}

// TotalVotingPower sums the voting power of every validator in the set.
func (vs *ValidatorSet) TotalVotingPower() uint64 {
	var total uint64
	for _, v := range vs.Validators {
		total += v.VotingPower
	}
	return total
}

// QuorumThreshold returns the minimum voting power required for a
// quorum certificate: strictly more than two-thirds of total power
// (2f+1 where total = 3f+1).
func (vs *ValidatorSet) QuorumThreshold() uint64 {
	total := vs.TotalVotingPower()
	// ceil(2*total/3) + epsilon via integer math: smallest power P such
	// that 3*P > 2*total.
	return (2*total)/3 + 1
}

// Hash returns the validator set's one-way pinned digest, used to bind
// an EpochWaypoint bootstrap (spec.md §4.B step 3).
func (vs *ValidatorSet) Hash() HashValue {
	e := hash.NewEncoder()
	e.U64(uint64(vs.Epoch))
	ids := make([]ValidatorID, 0, len(vs.Validators))
	for id := range vs.Validators {
		ids = append(ids, id)
	}
	// Deterministic ordering independent of map iteration.
	sortValidatorIDs(ids)
	e.U64(uint64(len(ids)))
	for _, id := range ids {
		v := vs.Validators[id]
		e.Bytes([]byte(id))
		e.Bytes(v.PubKey.Bytes())
		e.U64(v.VotingPower)
	}
	return hash.HashBytes("ValidatorSet", e.Finish())
}

func sortValidatorIDs(ids []ValidatorID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}
