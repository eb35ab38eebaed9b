// Copyright 2025 Certen Protocol

package client

import (
	"context"
	"fmt"

	"github.com/certen/verifying-client/pkg/batch"
	certenerrors "github.com/certen/verifying-client/pkg/errors"
)

// Batch runs reqs as one VerifyingBatch pinned to the trusted version
// observed at construction time (spec.md §4.E's "batch consistency").
// The bootstrap gate refuses to run (returning NeedSync) if the
// trusted state lacks an accumulator summary (spec.md §4.E / testable
// property 6): the caller must invoke Sync first.
func (c *VerifyingClient) Batch(ctx context.Context, reqs []batch.UserRequest) ([]batch.UserResult, error) {
	current := c.store.Current()
	if !current.HasAccumulator() {
		return nil, certenerrors.NewNeedSyncError()
	}

	b := batch.FromBatch(reqs, current.Version, false)
	requests, err := b.CollectRequests()
	if err != nil {
		return nil, certenerrors.NewTransportError("building batch request", err)
	}

	responses, err := c.inner.Batch(ctx, requests)
	if err != nil {
		return nil, certenerrors.NewTransportError("batch call failed", err)
	}

	newTrusted, results, _, err := b.ValidateResponses(current, responses)
	if err != nil {
		return nil, err
	}

	for _, r := range results {
		if r.Err != nil {
			if ce, ok := r.Err.(*certenerrors.ClientError); ok {
				c.metrics.BatchValidationFailures.WithLabelValues(string(ce.Code)).Inc()
			}
		}
	}

	if err := c.ratchetInto(newTrusted); err != nil {
		return nil, err
	}
	return results, nil
}

// Request wraps a single-item Batch call (spec.md §4.E's "request(req)").
func (c *VerifyingClient) Request(ctx context.Context, req batch.UserRequest) (batch.UserResult, error) {
	results, err := c.Batch(ctx, []batch.UserRequest{req})
	if err != nil {
		return batch.UserResult{}, err
	}
	if len(results) != 1 {
		return batch.UserResult{}, fmt.Errorf("expected exactly one response, got %d", len(results))
	}
	return results[0], nil
}

// --- typed accessors (spec.md §4.E) ---

func (c *VerifyingClient) GetMetadata(ctx context.Context) (batch.UserResult, error) {
	return c.Request(ctx, batch.UserRequest{Kind: batch.ReqGetMetadata})
}

// GetMetadataByVersion fetches metadata as of an explicit historical
// version rather than the batch's pinned (latest-known) version.
func (c *VerifyingClient) GetMetadataByVersion(ctx context.Context, version uint64) (batch.UserResult, error) {
	return c.Request(ctx, batch.UserRequest{Kind: batch.ReqGetMetadataByVersion, Version: &version})
}

func (c *VerifyingClient) GetAccount(ctx context.Context, address string) (batch.UserResult, error) {
	return c.Request(ctx, batch.UserRequest{Kind: batch.ReqGetAccount, Address: address})
}

// GetAccountByVersion fetches an account's state as of an explicit
// historical version rather than the batch's pinned version.
func (c *VerifyingClient) GetAccountByVersion(ctx context.Context, address string, version uint64) (batch.UserResult, error) {
	return c.Request(ctx, batch.UserRequest{Kind: batch.ReqGetAccountByVersion, Address: address, Version: &version})
}

func (c *VerifyingClient) GetTransactions(ctx context.Context, startVersion, limit uint64, includeEvents bool) (batch.UserResult, error) {
	return c.Request(ctx, batch.UserRequest{
		Kind: batch.ReqGetTransactions, StartVersion: startVersion, Limit: limit, IncludeEvents: includeEvents,
	})
}

func (c *VerifyingClient) GetAccountTransaction(ctx context.Context, address string, sequenceNumber uint64, includeEvents bool) (batch.UserResult, error) {
	return c.Request(ctx, batch.UserRequest{
		Kind: batch.ReqGetAccountTransaction, Address: address, SequenceNumber: sequenceNumber, IncludeEvents: includeEvents,
	})
}

func (c *VerifyingClient) GetAccountTransactions(ctx context.Context, address string, startSeqNum, limit uint64, includeEvents bool) (batch.UserResult, error) {
	return c.Request(ctx, batch.UserRequest{
		Kind: batch.ReqGetAccountTransactions, Address: address, SequenceNumber: startSeqNum, Limit: limit, IncludeEvents: includeEvents,
	})
}

func (c *VerifyingClient) GetEvents(ctx context.Context, eventKey string, start, limit uint64) (batch.UserResult, error) {
	return c.Request(ctx, batch.UserRequest{Kind: batch.ReqGetEvents, EventKey: eventKey, EventStart: start, Limit: limit})
}

func (c *VerifyingClient) GetCurrencies(ctx context.Context) (batch.UserResult, error) {
	return c.Request(ctx, batch.UserRequest{Kind: batch.ReqGetCurrencies})
}

func (c *VerifyingClient) GetNetworkStatus(ctx context.Context) (batch.UserResult, error) {
	return c.Request(ctx, batch.UserRequest{Kind: batch.ReqGetNetworkStatus})
}

// Submit submits a signed transaction. Submission itself carries no
// proof to verify (spec.md §1 excludes mempool/execution semantics);
// it is still routed through Batch so it observes the same pinning
// and bootstrap-gate discipline as every other call.
func (c *VerifyingClient) Submit(ctx context.Context, signedTransaction []byte) (batch.UserResult, error) {
	return c.Request(ctx, batch.UserRequest{Kind: batch.ReqSubmit, SignedTransaction: signedTransaction})
}
