// Copyright 2025 Certen Protocol
//
// Grounded on
// original_source/consensus/src/chained_bft/safety/vote_msg.rs.

package types

import (
	"github.com/cometbft/cometbft/crypto/ed25519"

	"github.com/certen/verifying-client/pkg/hash"
)

// ExecutedState is the (state_id, version) pair a vote commits to.
type ExecutedState struct {
	StateID HashValue
	Version Version
}

// CanonicalEncode encodes state_id (32 raw bytes) ‖ version (u64-LE),
// matching the "executed_state" field of VoteMsg's canonical layout
// (spec.md §6).
func (es ExecutedState) CanonicalEncode(buf []byte) []byte {
	e := hash.NewEncoder()
	e.RawBytes(es.StateID[:])
	e.U64(uint64(es.Version))
	return e.CanonicalEncode(buf)
}

// voteMsgBinding is the internal (proposed_block_id, executed_state,
// round) triple hashed into a vote's consensus_data_hash. It mirrors
// the original source's private VoteMsgSerializer.
type voteMsgBinding struct {
	ProposedBlockID HashValue
	ExecutedState   ExecutedState
	Round           uint64
}

// CanonicalEncode implements spec.md §6's VoteMsg canonical layout:
// proposed_block_id (32 raw bytes) ‖ executed_state (state_id 32
// bytes ‖ version u64-LE) ‖ round u64-LE.
func (b voteMsgBinding) CanonicalEncode(buf []byte) []byte {
	e := hash.NewEncoder()
	e.RawBytes(b.ProposedBlockID[:])
	e.Struct(b.ExecutedState)
	e.U64(b.Round)
	return e.CanonicalEncode(buf)
}

func voteDigest(blockID HashValue, state ExecutedState, round uint64) HashValue {
	return hash.Hash(hash.DomainVoteMsg, voteMsgBinding{
		ProposedBlockID: blockID,
		ExecutedState:   state,
		Round:           round,
	})
}

// VoteMsg is a single validator's signed vote for a proposed block.
type VoteMsg struct {
	ProposedBlockID HashValue
	ExecutedState   ExecutedState
	Round           uint64
	Author          ValidatorID
	LedgerInfo      LedgerInfo
	Signature       []byte
}

// NewVoteMsg binds (block_id, state, round) into the consensus_data_hash
// of ledgerInfoPlaceholder, then signs that LedgerInfo's hash with
// priv. This mirrors original_source's VoteMsg::new.
func NewVoteMsg(author ValidatorID, blockID HashValue, state ExecutedState, round uint64, ledgerInfoPlaceholder LedgerInfo, priv ed25519.PrivKey) (*VoteMsg, error) {
	ledgerInfoPlaceholder.ConsensusDataHash = voteDigest(blockID, state, round)
	digest := ledgerInfoPlaceholder.Hash()
	sig, err := priv.Sign(digest[:])
	if err != nil {
		return nil, err
	}
	return &VoteMsg{
		ProposedBlockID: blockID,
		ExecutedState:   state,
		Round:           round,
		Author:          author,
		LedgerInfo:      ledgerInfoPlaceholder,
		Signature:       sig,
	}, nil
}

// Verify checks that the embedded LedgerInfo's consensus_data_hash
// matches the recomputed vote digest, then checks the signature under
// the public key vs assigns to v.Author.
func (v *VoteMsg) Verify(vs *ValidatorSet) error {
	want := voteDigest(v.ProposedBlockID, v.ExecutedState, v.Round)
	if v.LedgerInfo.ConsensusDataHash != want {
		return errVoteBindingMismatch
	}
	validator, ok := vs.Validators[v.Author]
	if !ok {
		return errUnknownVoteAuthor
	}
	digest := v.LedgerInfo.Hash()
	if !validator.PubKey.VerifySignature(digest[:], v.Signature) {
		return errInvalidVoteSignature
	}
	return nil
}

type voteError string

func (e voteError) Error() string { return string(e) }

const (
	errVoteBindingMismatch  voteError = "vote consensus_data_hash does not match (block_id, state, round) binding"
	errUnknownVoteAuthor    voteError = "vote author is not a member of the validator set"
	errInvalidVoteSignature voteError = "vote signature does not verify under the author's key"
)
