// Copyright 2025 Certen Protocol
//
// wait_for_transaction polling loop (spec.md §4.E).

package client

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/certen/verifying-client/pkg/batch"
	certenerrors "github.com/certen/verifying-client/pkg/errors"
	"github.com/certen/verifying-client/pkg/rpc"
	"github.com/certen/verifying-client/pkg/types"
)

// WaitForTransaction polls get_account_transaction for (address,
// sequenceNumber) until one of these outcomes (spec.md §4.E):
//
//   - the transaction is found, its hash matches expectedHash and it
//     executed successfully: success;
//   - it is found with a matching hash but did not execute
//     successfully: WaitForTransactionExecutionFailed;
//   - it is found but the hash differs: WaitForTransactionHashMismatch;
//   - the ledger's timestamp passes expirationSecs before it is found:
//     WaitForTransactionExpired;
//   - timeout elapses first: WaitForTransactionTimeout.
//
// A failed batch call ends the wait with WaitForTransactionUnderlying
// (or NeedSync, returned unwrapped).
//
// timeout <= 0 uses DefaultTimeout; delay <= 0 uses DefaultDelay.
func (c *VerifyingClient) WaitForTransaction(
	ctx context.Context,
	address string,
	sequenceNumber uint64,
	expectedHash types.HashValue,
	expirationSecs uint64,
	timeout time.Duration,
	delay time.Duration,
) (batch.UserResult, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if delay <= 0 {
		delay = DefaultDelay
	}

	deadlineCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for {
		started := time.Now()
		result, err := c.pollOnce(deadlineCtx, address, sequenceNumber, expectedHash, expirationSecs)
		c.metrics.WaitForTransactionPollSeconds.Observe(time.Since(started).Seconds())
		if result != nil || err != nil {
			if err != nil {
				if certenerrors.IsCode(err, certenerrors.WaitForTransactionUnderlying) &&
					deadlineCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
					return batch.UserResult{}, certenerrors.NewWaitForTransactionTimeoutError(timeout.String())
				}
				return batch.UserResult{}, err
			}
			return *result, nil
		}

		select {
		case <-deadlineCtx.Done():
			return batch.UserResult{}, certenerrors.NewWaitForTransactionTimeoutError(timeout.String())
		case <-ticker.C:
		}
	}
}

// pollOnce issues one get_account_transaction plus one get_metadata
// call (to learn the current ledger timestamp for expiration
// checking). It returns (nil, nil) to mean "keep polling".
func (c *VerifyingClient) pollOnce(
	ctx context.Context,
	address string,
	sequenceNumber uint64,
	expectedHash types.HashValue,
	expirationSecs uint64,
) (*batch.UserResult, error) {
	results, err := c.Batch(ctx, []batch.UserRequest{
		{Kind: batch.ReqGetAccountTransaction, Address: address, SequenceNumber: sequenceNumber, IncludeEvents: false},
		{Kind: batch.ReqGetMetadata},
	})
	if err != nil {
		if certenerrors.IsCode(err, certenerrors.NeedSync) {
			return nil, err
		}
		return nil, certenerrors.NewWaitForTransactionUnderlyingError(err)
	}

	txnResult := results[0]
	metaResult := results[1]

	if txnResult.Err != nil {
		if certenerrors.IsCode(txnResult.Err, certenerrors.NeedSync) {
			return nil, txnResult.Err
		}
		// transient per-element failure (e.g. stale_response): keep polling.
		return nil, nil
	}

	found, ok := txnResult.Value.(rpc.AccountTransactionResult)
	if !ok || !found.Found {
		// not found yet: expired only once the ledger has moved past
		// expirationSecs without ever seeing the transaction.
		if metaResult.Err == nil {
			if meta, ok := metaResult.Value.(rpc.MetadataResult); ok {
				if meta.TimestampUsecs/1_000_000 > expirationSecs {
					return nil, certenerrors.NewWaitForTransactionExpiredError(expirationSecs, meta.TimestampUsecs)
				}
			}
		}
		return nil, nil
	}

	if found.Hash != expectedHash {
		return nil, certenerrors.NewWaitForTransactionHashMismatchError(hex.EncodeToString(expectedHash[:]), hex.EncodeToString(found.Hash[:]))
	}
	if !found.Success {
		return nil, certenerrors.NewWaitForTransactionExecutionFailedError()
	}
	return &txnResult, nil
}
