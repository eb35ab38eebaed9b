// Copyright 2025 Certen Protocol
//
// Component D: Verifying Batch (spec.md §4.D).

package batch

import (
	"encoding/json"

	certenerrors "github.com/certen/verifying-client/pkg/errors"
	"github.com/certen/verifying-client/pkg/ratchet"
	"github.com/certen/verifying-client/pkg/rpc"
	"github.com/certen/verifying-client/pkg/types"
)

// RequestKind discriminates the typed user-level accessors
// (spec.md §4.E's "family of typed accessors").
type RequestKind int

const (
	ReqGetMetadata RequestKind = iota
	ReqGetMetadataByVersion
	ReqGetAccount
	ReqGetAccountByVersion
	ReqGetTransactions
	ReqGetAccountTransaction
	ReqGetAccountTransactions
	ReqGetEvents
	ReqGetCurrencies
	ReqGetNetworkStatus
	ReqSubmit
)

// UserRequest is one user-level call to be expanded into wire
// sub-requests. Only the fields relevant to Kind are meaningful.
type UserRequest struct {
	Kind               RequestKind
	Address            string
	Version            *uint64
	StartVersion       uint64
	Limit              uint64
	IncludeEvents      bool
	SequenceNumber     uint64
	EventKey           string
	EventStart         uint64
	SignedTransaction  []byte
}

// UserResult is the per-element Result spec.md §4.D/§7 describes:
// either a decoded value or an error, never both. Elements fail
// independently of one another; failures that concern the whole batch
// (response count, state proof, ratchet) are returned by
// ValidateResponses as its error instead.
type UserResult struct {
	Err   error
	Value any
}

// Batch is the VerifyingBatch: a fixed set of user requests pinned to
// one ledger version.
type Batch struct {
	Requests               []UserRequest
	PinnedVersion          types.Version
	NeedInitialAccumulator bool
}

// FromBatch constructs a VerifyingBatch pinned to pinnedVersion, the
// trusted version observed at batch construction (spec.md §4.D-2).
// needInitialAccumulator is true when the trusted state has no
// accumulator summary yet and a from-genesis consistency proof must be
// fetched in the same round trip (SPEC_FULL.md §4, original_source's
// single-round-trip optimization).
func FromBatch(requests []UserRequest, pinnedVersion types.Version, needInitialAccumulator bool) *Batch {
	return &Batch{Requests: requests, PinnedVersion: pinnedVersion, NeedInitialAccumulator: needInitialAccumulator}
}

// SubRequestCount reports how many wire sub-requests CollectRequests
// will emit: one state-proof request, plus one optional accumulator
// proof request, plus one per user request (spec's expansion rule is
// 1:1 for every method this core supports).
func (b *Batch) SubRequestCount() int {
	n := 1 + len(b.Requests)
	if b.NeedInitialAccumulator {
		n++
	}
	return n
}

// CollectRequests expands b into wire sub-requests, each stamped with
// pinnedVersion where the method admits a version parameter
// (spec.md §4.D-2's pinning rule), except the *_by_version requests,
// which carry the caller's explicit UserRequest.Version. Index 0 is always the state-proof
// request; index 1 is the accumulator consistency proof request iff
// NeedInitialAccumulator; the remainder mirror b.Requests 1:1 in
// order, so responses can be folded back by position.
func (b *Batch) CollectRequests() ([]rpc.Request, error) {
	out := make([]rpc.Request, 0, b.SubRequestCount())

	stateProofReq, err := rpc.NewRequest(rpc.MethodGetStateProof, rpc.GetStateProofParams{KnownVersion: uint64(b.PinnedVersion)})
	if err != nil {
		return nil, err
	}
	out = append(out, stateProofReq)

	if b.NeedInitialAccumulator {
		accReq, err := rpc.NewRequest(rpc.MethodGetAccumulatorConsistencyProof, rpc.GetAccumulatorConsistencyProofParams{
			ClientKnownVersion: 0,
			LedgerVersion:      uint64(b.PinnedVersion),
		})
		if err != nil {
			return nil, err
		}
		out = append(out, accReq)
	}

	pinned := uint64(b.PinnedVersion)
	for _, req := range b.Requests {
		var (
			wire rpc.Request
			err  error
		)
		switch req.Kind {
		case ReqGetMetadata:
			wire, err = rpc.NewRequest(rpc.MethodGetMetadata, rpc.GetMetadataParams{Version: &pinned})
		case ReqGetMetadataByVersion:
			wire, err = rpc.NewRequest(rpc.MethodGetMetadataByVersion, rpc.GetMetadataParams{Version: req.Version})
		case ReqGetAccount:
			wire, err = rpc.NewRequest(rpc.MethodGetAccount, rpc.GetAccountParams{Address: req.Address, Version: &pinned})
		case ReqGetAccountByVersion:
			wire, err = rpc.NewRequest(rpc.MethodGetAccountByVersion, rpc.GetAccountParams{Address: req.Address, Version: req.Version})
		case ReqGetTransactions:
			wire, err = rpc.NewRequest(rpc.MethodGetTransactions, rpc.GetTransactionsParams{
				StartVersion: req.StartVersion, Limit: req.Limit, IncludeEvents: req.IncludeEvents,
			})
		case ReqGetAccountTransaction:
			wire, err = rpc.NewRequest(rpc.MethodGetAccountTransaction, rpc.GetAccountTransactionParams{
				Address: req.Address, SequenceNumber: req.SequenceNumber, IncludeEvents: req.IncludeEvents,
			})
		case ReqGetAccountTransactions:
			wire, err = rpc.NewRequest(rpc.MethodGetAccountTransactions, rpc.GetAccountTransactionsParams{
				Address: req.Address, StartSeqNum: req.SequenceNumber, Limit: req.Limit, IncludeEvents: req.IncludeEvents,
			})
		case ReqGetEvents:
			wire, err = rpc.NewRequest(rpc.MethodGetEvents, rpc.GetEventsParams{EventKey: req.EventKey, Start: req.EventStart, Limit: req.Limit})
		case ReqGetCurrencies:
			wire, err = rpc.NewRequest(rpc.MethodGetCurrencies, rpc.GetCurrenciesParams{})
		case ReqGetNetworkStatus:
			wire, err = rpc.NewRequest(rpc.MethodGetNetworkStatus, rpc.GetNetworkStatusParams{})
		case ReqSubmit:
			wire, err = rpc.NewRequest(rpc.MethodSubmit, rpc.SubmitParams{SignedTransaction: req.SignedTransaction})
		}
		if err != nil {
			return nil, err
		}
		out = append(out, wire)
	}
	return out, nil
}

// ValidateResponses implements spec.md §4.D-3/4: the first
// state-proof sub-response ratchets oldTrusted; every other
// sub-response is checked against the resulting accumulator summary
// and the pinned version, with per-element failures isolated from the
// rest of the batch. Returns the new trusted state (nil if nothing
// changed) and one UserResult per entry in b.Requests.
func (b *Batch) ValidateResponses(oldTrusted types.TrustedState, subResponses []rpc.Response) (*types.TrustedState, []UserResult, bool, error) {
	if len(subResponses) != b.SubRequestCount() {
		return nil, nil, false, certenerrors.NewRpcError("sub-response count does not match sub-request count", nil)
	}

	idx := 0
	stateProofResp := subResponses[idx]
	idx++

	var extraAccumulator *types.AccumulatorConsistencyProof
	if b.NeedInitialAccumulator {
		accResp := subResponses[idx]
		idx++
		if accResp.Err != nil {
			return nil, nil, false, certenerrors.NewRpcError("accumulator consistency proof request failed", accResp.Err)
		}
		// original_source's get_state_proof_and_maybe_accumulator rejects
		// the pair outright if the two sub-responses were not served from
		// the same state (state1 != state2); mirrored here before either
		// is trusted for verification.
		if accResp.State != stateProofResp.State {
			return nil, nil, false, certenerrors.NewBatchStateMismatchError(stateProofResp.State.Version, accResp.State.Version)
		}
		var accResult rpc.AccumulatorConsistencyProofResult
		if err := json.Unmarshal(accResp.Result, &accResult); err != nil {
			return nil, nil, false, certenerrors.NewTransportError("decoding accumulator consistency proof response", err)
		}
		extraAccumulator = &types.AccumulatorConsistencyProof{Subtrees: accResult.Subtrees}
	}

	if stateProofResp.Err != nil {
		return nil, nil, false, certenerrors.NewRpcError("state proof request failed", stateProofResp.Err)
	}
	var stateProofResult rpc.StateProofResult
	if err := json.Unmarshal(stateProofResp.Result, &stateProofResult); err != nil {
		return nil, nil, false, certenerrors.NewTransportError("decoding state proof response", err)
	}
	domainProof := stateProofResult.ToDomain()

	change, err := ratchet.VerifyAndRatchet(oldTrusted, domainProof, extraAccumulator)
	if err != nil {
		return nil, nil, false, err
	}

	newTrusted := oldTrusted
	var newTrustedPtr *types.TrustedState
	if change.Kind != ratchet.NoChange {
		newTrusted = change.NewState
		newTrustedPtr = &newTrusted
	}

	pinned := uint64(b.PinnedVersion)
	var baselineVersion uint64
	haveBaseline := false

	results := make([]UserResult, len(b.Requests))
	for i, req := range b.Requests {
		resp := subResponses[idx+i]

		if resp.Err != nil {
			results[i] = UserResult{Err: certenerrors.NewRpcError("sub-request failed", resp.Err)}
			continue
		}
		if resp.State.Version < pinned {
			results[i] = UserResult{Err: certenerrors.NewStaleResponseError(pinned, resp.State.Version)}
			continue
		}
		if !haveBaseline {
			baselineVersion = resp.State.Version
			haveBaseline = true
		} else if resp.State.Version != baselineVersion {
			results[i] = UserResult{Err: certenerrors.NewBatchStateMismatchError(baselineVersion, resp.State.Version)}
			continue
		}

		value, verr := decodeAndVerify(req.Kind, resp, newTrusted)
		if verr != nil {
			results[i] = UserResult{Err: verr}
			continue
		}
		results[i] = UserResult{Value: value}
	}

	return newTrustedPtr, results, stateProofResult.More, nil
}
