// Copyright 2025 Certen Protocol

package rpc

import (
	"github.com/cometbft/cometbft/crypto/ed25519"

	"github.com/certen/verifying-client/pkg/types"
)

func (w WireLedgerInfo) toDomain() types.LedgerInfo {
	return types.LedgerInfo{
		VersionVal:                 types.Version(w.Version),
		TransactionAccumulatorHash: w.TransactionAccumulatorHash,
		ConsensusDataHash:          w.ConsensusDataHash,
		ConsensusBlockID:           w.ConsensusBlockID,
		EpochNum:                   types.Epoch(w.EpochNum),
		TimestampUsecs:             w.TimestampUsecs,
	}
}

func (w WireLedgerInfoWithSignatures) ToDomain() types.LedgerInfoWithSignatures {
	sigs := make(map[types.ValidatorID][]byte, len(w.Signatures))
	for id, sig := range w.Signatures {
		sigs[types.ValidatorID(id)] = sig
	}
	return types.LedgerInfoWithSignatures{LedgerInfo: w.LedgerInfo.toDomain(), Signatures: sigs}
}

func (w *WireValidatorSet) ToDomain() *types.ValidatorSet {
	if w == nil {
		return nil
	}
	vs := &types.ValidatorSet{Epoch: types.Epoch(w.Epoch), Validators: make(map[types.ValidatorID]types.Validator, len(w.Validators))}
	for _, v := range w.Validators {
		vs.Validators[types.ValidatorID(v.ID)] = types.Validator{
			ID:          types.ValidatorID(v.ID),
			PubKey:      ed25519.PubKey(v.PubKey),
			VotingPower: v.VotingPower,
		}
	}
	return vs
}

// ToDomain converts the wire StateProofResult into the domain
// types.StateProof consumed by pkg/ratchet, pairing it with an
// optional out-of-band consistency proof fetched in the same batch.
func (r *StateProofResult) ToDomain() *types.StateProof {
	records := make([]types.EpochChangeRecord, 0, len(r.EpochChanges))
	for _, rec := range r.EpochChanges {
		records = append(records, types.EpochChangeRecord{
			Certified:           rec.Certified.ToDomain(),
			SigningValidatorSet: rec.SigningValidatorSet.ToDomain(),
			NextValidatorSet:    rec.NextValidatorSet.ToDomain(),
		})
	}
	return &types.StateProof{
		LatestLedgerInfo: r.LatestLedgerInfo.ToDomain(),
		EpochChanges:     types.EpochChangeProof{Records: records, More: r.More},
	}
}
