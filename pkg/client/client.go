// Copyright 2025 Certen Protocol
//
// Component E: Verifying Client façade (spec.md §4.E).

package client

import (
	"context"
	"time"

	certenerrors "github.com/certen/verifying-client/pkg/errors"
	"github.com/certen/verifying-client/pkg/logging"
	"github.com/certen/verifying-client/pkg/rpc"
	"github.com/certen/verifying-client/pkg/types"
)

// Default timeout/delay for wait_for_transaction, spec.md §4.E.
const (
	DefaultTimeout = 5 * time.Second
	DefaultDelay   = 50 * time.Millisecond
)

// InnerClient is the unverified transport the façade wraps: it sends
// a batch of wire requests and returns wire responses in the same
// order and count (spec.md §6's batch semantics).
type InnerClient interface {
	Batch(ctx context.Context, requests []rpc.Request) ([]rpc.Response, error)
}

// VerifyingClient is the public façade over InnerClient and a
// TrustedStateStore.
type VerifyingClient struct {
	inner InnerClient
	store *types.TrustedStateStore
	log   *logging.Logger
	metrics *Metrics
}

// NewVerifyingClient constructs a client bootstrapped from a waypoint.
// If storage already holds a more advanced TrustedState, that state is
// preferred (it is never correct to regress behind durable state).
func NewVerifyingClient(inner InnerClient, waypointEpoch types.Epoch, waypointHash types.HashValue, storage types.Storage, log *logging.Logger) (*VerifyingClient, error) {
	initial := types.NewEpochWaypoint(waypointEpoch, waypointHash)
	if storage != nil {
		if loaded, ok, err := storage.Load(); err != nil {
			return nil, certenerrors.NewStorageError("loading persisted trusted state", err)
		} else if ok && !loaded.Less(initial) {
			initial = loaded
		}
	}
	return newClient(inner, initial, storage, log), nil
}

// NewVerifyingClientWithState seeds the client directly from a
// previously-obtained TrustedState, skipping storage.Load (original
// source's new_with_state constructor, SPEC_FULL.md §4).
func NewVerifyingClientWithState(inner InnerClient, state types.TrustedState, storage types.Storage, log *logging.Logger) *VerifyingClient {
	return newClient(inner, state, storage, log)
}

func newClient(inner InnerClient, initial types.TrustedState, storage types.Storage, log *logging.Logger) *VerifyingClient {
	if log == nil {
		log = logging.GetGlobalLogger()
	}
	return &VerifyingClient{
		inner:   inner,
		store:   types.NewTrustedStateStore(initial, storage),
		log:     log.WithComponent("verifying_client"),
		metrics: NewMetrics(),
	}
}

// Version returns the trusted version currently held by the store.
func (c *VerifyingClient) Version() types.Version {
	ts := c.store.Current()
	if ts.IsEpochState() {
		return ts.Version
	}
	return 0
}

// Waypoint returns the current epoch and, if the state is still an
// EpochWaypoint, its pinned digest.
func (c *VerifyingClient) Waypoint() (epoch types.Epoch, hash types.HashValue, isWaypoint bool) {
	ts := c.store.Current()
	return ts.Epoch, ts.WaypointHash, ts.IsEpochWaypoint()
}

// TrustedState returns a cheap copy of the current trusted state.
func (c *VerifyingClient) TrustedState() types.TrustedState {
	return c.store.Current()
}

// Metrics exposes the client's Prometheus collectors so callers can
// serve Registry() alongside their own.
func (c *VerifyingClient) Metrics() *Metrics {
	return c.metrics
}

// ratchetInto compare-and-swaps candidate, the state already produced
// by a batch's VerifyAndRatchet, into the store (spec.md §4.E's
// "ratchet(new_state)"); a nil candidate means the batch changed
// nothing. Per spec §5 the CAS losing a race is not an error.
func (c *VerifyingClient) ratchetInto(candidate *types.TrustedState) error {
	if candidate == nil {
		c.metrics.RatchetNoChange.Inc()
		return nil
	}
	before := c.store.Current()
	if err := c.store.Ratchet(*candidate); err != nil {
		c.metrics.RatchetStorageFailures.Inc()
		return certenerrors.NewStorageError("persisting ratcheted trusted state", err)
	}
	switch {
	case !before.Less(*candidate):
		c.metrics.RatchetNoChange.Inc()
	case candidate.Epoch > before.Epoch:
		c.metrics.RatchetEpochChange.Inc()
	default:
		c.metrics.RatchetVersionChange.Inc()
	}
	return nil
}
