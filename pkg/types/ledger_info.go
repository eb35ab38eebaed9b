// Copyright 2025 Certen Protocol
//
// Grounded on original_source/types/src/ledger_info.rs.

package types

import (
	"github.com/certen/verifying-client/pkg/hash"
)

// LedgerInfo is an immutable record describing the state of the
// ledger at a given version.
type LedgerInfo struct {
	VersionVal                Version
	TransactionAccumulatorHash HashValue
	ConsensusDataHash          HashValue
	ConsensusBlockID           HashValue
	EpochNum                   Epoch
	TimestampUsecs             uint64
}

// CanonicalEncode implements hash.Canonical per spec.md §6's
// LedgerInfo canonical layout: version u64-LE, then three
// length-prefixed hashes, then epoch_num u64-LE, then
// timestamp_usecs u64-LE.
func (li LedgerInfo) CanonicalEncode(buf []byte) []byte {
	e := hash.NewEncoder()
	e.U64(uint64(li.VersionVal))
	e.Bytes(li.TransactionAccumulatorHash[:])
	e.Bytes(li.ConsensusDataHash[:])
	e.Bytes(li.ConsensusBlockID[:])
	e.U64(uint64(li.EpochNum))
	e.U64(li.TimestampUsecs)
	return e.CanonicalEncode(buf)
}

// Hash returns the domain-separated hash of this LedgerInfo.
func (li LedgerInfo) Hash() HashValue {
	return hash.Hash(hash.DomainLedgerInfo, li)
}

// IsZero reports whether this LedgerInfo is "nominal": version == 0,
// carrying no verifiable information. Nominal records skip signature
// verification entirely (original_source/types/src/ledger_info.rs
// verify()).
func (li LedgerInfo) IsZero() bool {
	return li.VersionVal == 0
}

// LedgerInfoWithSignatures pairs a LedgerInfo with the map of
// validator signatures over its hash.
type LedgerInfoWithSignatures struct {
	LedgerInfo LedgerInfo
	Signatures map[ValidatorID][]byte
}

// Verify checks that this record is quorum-certified under vs: a
// signature counts only if its signer is in vs and it verifies under
// the key vs assigns to that validator (other signatures are ignored),
// and the summed voting power of those valid signers must meet the
// quorum threshold.
// A nominal (IsZero) LedgerInfo skips verification entirely, matching
// original_source's is_zero() short-circuit.
func (liws *LedgerInfoWithSignatures) Verify(vs *ValidatorSet) error {
	if liws.LedgerInfo.IsZero() {
		return nil
	}
	digest := liws.LedgerInfo.Hash()

	var validPower uint64
	seen := make(map[ValidatorID]bool, len(liws.Signatures))
	for id, sig := range liws.Signatures {
		if seen[id] {
			continue // duplicate key in map is structurally impossible in Go, defensive only
		}
		seen[id] = true
		v, ok := vs.Validators[id]
		if !ok {
			continue
		}
		if !v.PubKey.VerifySignature(digest[:], sig) {
			continue
		}
		validPower += v.VotingPower
	}

	if validPower < vs.QuorumThreshold() {
		return errInsufficientQuorum
	}
	return nil
}

var errInsufficientQuorum = &quorumError{}

type quorumError struct{}

func (q *quorumError) Error() string { return "insufficient quorum-certified voting power" }
