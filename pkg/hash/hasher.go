// Copyright 2025 Certen Protocol

package hash

import "crypto/sha256"

// Domain tags are the record-type names as ASCII, matching
// original_source/types/src/ledger_info.rs's LedgerInfoHasher and
// original_source/consensus/src/chained_bft/safety/vote_msg.rs's
// VoteMsgHasher salt strings.
const (
	DomainLedgerInfo = "LedgerInfo"
	DomainVoteMsg    = "VoteMsg"
)

// Hash pre-absorbs the domain tag, then the record's canonical
// serialization, and returns the resulting digest. Determinism is
// required across implementations and platforms: this is plain
// SHA-256 over (domain || canonical(record)), with no implementation-
// specific state.
func Hash(domain string, record Canonical) Value {
	buf := make([]byte, 0, 128)
	buf = append(buf, domain...)
	buf = record.CanonicalEncode(buf)
	return sha256.Sum256(buf)
}

// HashBytes hashes raw canonical bytes already prefixed by the caller;
// used by components (e.g. types.ValidatorSet.Hash) that hash values
// which are not themselves a Canonical record type.
func HashBytes(domain string, canonical []byte) Value {
	buf := make([]byte, 0, len(domain)+len(canonical))
	buf = append(buf, domain...)
	buf = append(buf, canonical...)
	return sha256.Sum256(buf)
}
