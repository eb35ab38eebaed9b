// Copyright 2025 Certen Protocol
//
// Wire codec for the RPC surface (spec.md §6). Requests and responses
// are exchanged in JSON-RPC-like envelopes; batch semantics guarantee
// that responses are returned in request order and in equal count.

package rpc

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/certen/verifying-client/pkg/types"
)

// Method names the core issues (spec.md §6).
type Method string

const (
	MethodSubmit                          Method = "submit"
	MethodGetMetadata                     Method = "get_metadata"
	MethodGetMetadataByVersion             Method = "get_metadata_by_version"
	MethodGetAccount                      Method = "get_account"
	MethodGetAccountByVersion              Method = "get_account_by_version"
	MethodGetTransactions                 Method = "get_transactions"
	MethodGetAccountTransaction            Method = "get_account_transaction"
	MethodGetAccountTransactions           Method = "get_account_transactions"
	MethodGetEvents                       Method = "get_events"
	MethodGetCurrencies                   Method = "get_currencies"
	MethodGetNetworkStatus                Method = "get_network_status"
	MethodGetStateProof                   Method = "get_state_proof"
	MethodGetAccumulatorConsistencyProof  Method = "get_accumulator_consistency_proof"
)

// Request is one sub-request within a batch call.
type Request struct {
	ID     string          `json:"id"`
	Method Method          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// NewRequest wraps params (any of the *Params types in methods.go)
// into a Request with a fresh correlation ID, grounded on the
// teacher's root main.go use of google/uuid for request IDs.
func NewRequest(method Method, params any) (Request, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return Request{}, err
	}
	return Request{ID: uuid.NewString(), Method: method, Params: data}, nil
}

// Error is a structured server-reported RPC error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Message }

// Response is one sub-response within a batch call. Exactly one of
// Result or Err is populated.
type Response struct {
	ID     string          `json:"id"`
	State  StateBlock      `json:"state"`
	Result json.RawMessage `json:"result,omitempty"`
	Err    *Error          `json:"error,omitempty"`
}

// StateBlock is the ledger version/timestamp every response carries,
// compared for equality within a single batch (spec.md §6).
type StateBlock struct {
	Version        uint64 `json:"version"`
	TimestampUsecs uint64 `json:"timestamp_usecs"`
}

// HashToWire renders a types.HashValue as the 0x-prefixed hex
// go-ethereum/common.Hash already implements, rather than
// reimplementing a hex codec (SPEC_FULL.md §3).
func HashToWire(h types.HashValue) common.Hash {
	return common.Hash(h)
}

func HashFromWire(h common.Hash) types.HashValue {
	return types.HashValue(h)
}
