// Copyright 2025 Certen Protocol
//
// Component B: Trusted-State Ratchet (spec.md §4.B).

package ratchet

import (
	"github.com/certen/verifying-client/pkg/accumulator"
	certenerrors "github.com/certen/verifying-client/pkg/errors"
	"github.com/certen/verifying-client/pkg/types"
)

// ChangeKind discriminates the three RatchetChange variants.
type ChangeKind int

const (
	NoChange ChangeKind = iota
	VersionChange
	EpochChange
)

// Change is the sum RatchetChange: NoChange, Version(new), or
// Epoch(new). NewState is meaningful only when Kind != NoChange.
type Change struct {
	Kind     ChangeKind
	NewState types.TrustedState
}

// VerifyAndRatchet runs the six-step algorithm of spec.md §4.B against
// old, proof, and an optional extraAccumulator (supplied only when old
// has no accumulator summary of its own — see step 4). It never
// mutates old; callers pass the result to a TrustedStateStore.Ratchet.
func VerifyAndRatchet(old types.TrustedState, proof *types.StateProof, extraAccumulator *types.AccumulatorConsistencyProof) (Change, error) {
	runningEpoch := old.Epoch
	var runningValidatorSet *types.ValidatorSet
	if old.IsEpochState() {
		runningValidatorSet = old.ValidatorSet
	}

	// Step 2: epoch-change walk.
	for _, rec := range proof.EpochChanges.Records {
		if rec.Certified.LedgerInfo.EpochNum != runningEpoch {
			return Change{}, certenerrors.NewInvalidProofError(certenerrors.ReasonInvalidEpochChange,
				"epoch-change record's epoch_num does not match the running epoch")
		}

		if runningValidatorSet == nil {
			// Step 3: waypoint bootstrap. The first record's signing
			// validator set must hash to the waypoint digest.
			if !old.IsEpochWaypoint() {
				return Change{}, certenerrors.NewInvalidProofError(certenerrors.ReasonWaypointMismatch,
					"no validator set known and old trusted state is not a waypoint")
			}
			if rec.SigningValidatorSet == nil {
				return Change{}, certenerrors.NewInvalidProofError(certenerrors.ReasonWaypointMismatch,
					"bootstrap record is missing its signing validator set")
			}
			if rec.SigningValidatorSet.Hash() != old.WaypointHash {
				return Change{}, certenerrors.NewInvalidProofError(certenerrors.ReasonWaypointMismatch,
					"first epoch-change record's validator-set hash does not match the waypoint")
			}
			runningValidatorSet = rec.SigningValidatorSet
		}

		if err := rec.Certified.Verify(runningValidatorSet); err != nil {
			return Change{}, certenerrors.Wrap(certenerrors.InvalidProof, "epoch-change record failed quorum verification", err).
				WithContext("reason", certenerrors.ReasonInvalidSignatures)
		}

		if rec.NextValidatorSet == nil {
			// Terminating "latest" record within this epoch: no further
			// epoch advance from this record.
			continue
		}
		runningValidatorSet = rec.NextValidatorSet
		runningEpoch++
	}

	// Step 1: signature check on latest, under whatever validator set
	// the walk above leaves us with (old's own set, if epoch_changes
	// was empty; or the set the walk advanced to).
	if runningValidatorSet == nil {
		return Change{}, certenerrors.NewInvalidProofError(certenerrors.ReasonInvalidSignatures,
			"no validator set available to verify latest_ledger_info")
	}
	if proof.LatestLedgerInfo.LedgerInfo.EpochNum != runningEpoch {
		return Change{}, certenerrors.NewInvalidProofError(certenerrors.ReasonInvalidEpochChange,
			"latest_ledger_info's epoch does not match the epoch reached by the change walk")
	}
	if err := proof.LatestLedgerInfo.Verify(runningValidatorSet); err != nil {
		return Change{}, certenerrors.Wrap(certenerrors.InvalidProof, "latest_ledger_info failed quorum verification", err).
			WithContext("reason", certenerrors.ReasonInvalidSignatures)
	}

	newVersion := proof.LatestLedgerInfo.LedgerInfo.VersionVal
	expectedRoot := proof.LatestLedgerInfo.LedgerInfo.TransactionAccumulatorHash

	// Steps 5/6 moved ahead of step 4: a proof that does not actually
	// advance past old is a no-op and must short-circuit before trying
	// to extend the accumulator, since accumulator.Append rejects a
	// non-strictly-increasing version outright.
	if runningEpoch < old.Epoch {
		return Change{Kind: NoChange}, nil
	}
	if !old.IsEpochWaypoint() && runningEpoch == old.Epoch && newVersion <= old.Version {
		return Change{Kind: NoChange}, nil
	}

	// Step 4: accumulator handling.
	var newSummary *types.TransactionAccumulatorSummary
	if old.HasAccumulator() && old.Epoch == runningEpoch {
		// Same epoch as before: extend the existing summary using the
		// consistency proof embedded in the StateProof.
		extended, err := accumulator.Append(old.AccumulatorSummary, proof.ConsistencyProof, newVersion, expectedRoot)
		if err != nil {
			return Change{}, err
		}
		newSummary = extended
	} else {
		// Either bootstrap (no prior summary) or an epoch change
		// occurred: require the caller-supplied genesis-linking proof.
		if extraAccumulator == nil {
			return Change{}, certenerrors.NewInvalidProofError(certenerrors.ReasonInvalidAccumulator,
				"no prior accumulator summary and no extra_accumulator proof supplied")
		}
		genesis, err := accumulator.TryFromGenesisProof(extraAccumulator, newVersion, expectedRoot)
		if err != nil {
			return Change{}, err
		}
		newSummary = genesis
	}

	candidate := types.NewEpochState(runningEpoch, runningValidatorSet, newVersion, newSummary)

	// Step 5: monotonicity check.
	if candidate.Less(old) {
		return Change{Kind: NoChange}, nil
	}
	// Step 6 tie-break: equal (epoch, version) is also a no-op.
	if candidate.Epoch == old.Epoch && !old.IsEpochWaypoint() && candidate.Version == old.Version {
		return Change{Kind: NoChange}, nil
	}

	if candidate.Epoch > old.Epoch {
		return Change{Kind: EpochChange, NewState: candidate}, nil
	}
	return Change{Kind: VersionChange, NewState: candidate}, nil
}
