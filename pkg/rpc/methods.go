// Copyright 2025 Certen Protocol

package rpc

import (
	"encoding/json"

	"github.com/certen/verifying-client/pkg/types"
)

// --- submit ---

type SubmitParams struct {
	SignedTransaction []byte `json:"signed_transaction"`
}

type SubmitResult struct{}

// --- get_metadata / get_metadata_by_version ---

type GetMetadataParams struct {
	Version *uint64 `json:"version,omitempty"`
}

type MetadataResult struct {
	Version        uint64 `json:"version"`
	TimestampUsecs uint64 `json:"timestamp_usecs"`
	ChainID        uint8  `json:"chain_id"`
}

// --- get_account / get_account_by_version ---

type GetAccountParams struct {
	Address string  `json:"address"`
	Version *uint64 `json:"version,omitempty"`
}

type AccountResult struct {
	Blob   []byte                          `json:"blob,omitempty"` // nil if account does not exist
	Proof  types.AccumulatorInclusionProof `json:"proof"`
	AtVersion uint64                       `json:"at_version"`
}

// --- get_transactions ---

type GetTransactionsParams struct {
	StartVersion  uint64 `json:"start_version"`
	Limit         uint64 `json:"limit"`
	IncludeEvents bool   `json:"include_events"`
}

type TransactionEntry struct {
	Version uint64                          `json:"version"`
	Hash    types.HashValue                 `json:"hash"`
	Proof   types.AccumulatorInclusionProof `json:"proof"`
}

type TransactionsResult struct {
	Transactions []TransactionEntry `json:"transactions"`
}

// --- get_account_transaction / get_account_transactions ---

type GetAccountTransactionParams struct {
	Address        string `json:"address"`
	SequenceNumber uint64 `json:"sequence_number"`
	IncludeEvents  bool   `json:"include_events"`
}

type AccountTransactionResult struct {
	Found       bool             `json:"found"`
	Version     uint64           `json:"version"`
	Hash        types.HashValue  `json:"hash"`
	Success     bool             `json:"success"`
	Proof       types.AccumulatorInclusionProof `json:"proof"`
}

type GetAccountTransactionsParams struct {
	Address       string `json:"address"`
	StartSeqNum   uint64 `json:"start_sequence_number"`
	Limit         uint64 `json:"limit"`
	IncludeEvents bool   `json:"include_events"`
}

type AccountTransactionsResult struct {
	Transactions []AccountTransactionResult `json:"transactions"`
}

// --- get_events ---

type GetEventsParams struct {
	EventKey string `json:"event_key"`
	Start    uint64 `json:"start"`
	Limit    uint64 `json:"limit"`
}

type EventsResult struct {
	Events []json.RawMessage `json:"events"`
}

// --- get_currencies / get_network_status ---

type GetCurrenciesParams struct{}

type CurrenciesResult struct {
	Currencies []string `json:"currencies"`
}

type GetNetworkStatusParams struct{}

type NetworkStatusResult struct {
	ChainID uint8  `json:"chain_id"`
	Status  string `json:"status"`
}

// --- get_state_proof ---

type GetStateProofParams struct {
	KnownVersion uint64 `json:"known_version"`
}

type StateProofResult struct {
	LatestLedgerInfo WireLedgerInfoWithSignatures `json:"latest_ledger_info"`
	EpochChanges     []WireEpochChangeRecord       `json:"epoch_changes"`
	More             bool                          `json:"more"`
}

// --- get_accumulator_consistency_proof ---

type GetAccumulatorConsistencyProofParams struct {
	ClientKnownVersion uint64 `json:"client_known_version"`
	LedgerVersion      uint64 `json:"ledger_version"`
}

type AccumulatorConsistencyProofResult struct {
	Subtrees []types.HashValue `json:"subtrees"`
}

// Wire mirrors of the signed-record types (pkg/types strips wire
// concerns; these carry JSON tags and are converted at the RPC
// boundary in pkg/batch).

type WireLedgerInfo struct {
	Version                    uint64          `json:"version"`
	TransactionAccumulatorHash types.HashValue `json:"transaction_accumulator_hash"`
	ConsensusDataHash          types.HashValue `json:"consensus_data_hash"`
	ConsensusBlockID           types.HashValue `json:"consensus_block_id"`
	EpochNum                   uint64          `json:"epoch_num"`
	TimestampUsecs             uint64          `json:"timestamp_usecs"`
}

type WireLedgerInfoWithSignatures struct {
	LedgerInfo WireLedgerInfo    `json:"ledger_info"`
	Signatures map[string][]byte `json:"signatures"`
}

type WireValidator struct {
	ID          string `json:"id"`
	PubKey      []byte `json:"pub_key"`
	VotingPower uint64 `json:"voting_power"`
}

type WireValidatorSet struct {
	Epoch      uint64          `json:"epoch"`
	Validators []WireValidator `json:"validators"`
}

type WireEpochChangeRecord struct {
	Certified           WireLedgerInfoWithSignatures `json:"certified"`
	SigningValidatorSet *WireValidatorSet            `json:"signing_validator_set,omitempty"`
	NextValidatorSet    *WireValidatorSet            `json:"next_validator_set,omitempty"`
}
