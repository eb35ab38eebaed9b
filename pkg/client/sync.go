// Copyright 2025 Certen Protocol

package client

import (
	"context"

	"github.com/certen/verifying-client/pkg/batch"
	certenerrors "github.com/certen/verifying-client/pkg/errors"
)

// Sync iterates SyncOneStep while the server reports
// epoch_changes.more == true (spec.md §4.E).
func (c *VerifyingClient) Sync(ctx context.Context) error {
	for {
		more, err := c.SyncOneStep(ctx)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// SyncOneStep issues one state-proof request (plus an optional
// initial consistency-from-genesis proof if the accumulator is
// absent), ratchets, and returns whether more epochs remain.
// SyncOneStep does not retry on Transport errors; the caller wraps
// retry policy around Sync.
func (c *VerifyingClient) SyncOneStep(ctx context.Context) (bool, error) {
	current := c.store.Current()
	pinned := current.Version

	b := batch.FromBatch(nil, pinned, !current.HasAccumulator())
	requests, err := b.CollectRequests()
	if err != nil {
		return false, certenerrors.NewTransportError("building sync_one_step request", err)
	}

	responses, err := c.inner.Batch(ctx, requests)
	if err != nil {
		return false, certenerrors.NewTransportError("sync_one_step batch call failed", err)
	}

	newTrusted, _, more, err := b.ValidateResponses(current, responses)
	if err != nil {
		return false, err
	}

	c.metrics.SyncSteps.Inc()
	if err := c.ratchetInto(newTrusted); err != nil {
		return false, err
	}
	if newTrusted != nil {
		c.log.Debug("sync_one_step ratcheted", "epoch", newTrusted.Epoch, "version", newTrusted.Version, "more", more)
	}

	// DESIGN.md / spec.md §9 open question (ii): the server may
	// report more==true even though this step's batch already
	// validated; we accept the batch as-is and let the next call to
	// Sync pull the remaining epoch changes rather than erroring.
	return more, nil
}
