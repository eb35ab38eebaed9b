// Copyright 2025 Certen Protocol
//
// Client-side metrics, grounded on the teacher's
// liteclient/core/liteclient.go per-operation timing pattern, wired
// to github.com/prometheus/client_golang instead of the teacher's
// hand-rolled counters.

package client

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus collectors the façade updates as it
// ratchets, syncs, and validates batches. Callers register Registry()
// with their own prometheus.Registerer.
type Metrics struct {
	RatchetNoChange        prometheus.Counter
	RatchetVersionChange    prometheus.Counter
	RatchetEpochChange       prometheus.Counter
	RatchetStorageFailures  prometheus.Counter
	SyncSteps               prometheus.Counter
	BatchValidationFailures *prometheus.CounterVec
	WaitForTransactionPollSeconds prometheus.Histogram

	registry *prometheus.Registry
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		RatchetNoChange: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "verifying_client_ratchet_no_change_total",
			Help: "Ratchet calls that resulted in no change (lost race or stale candidate).",
		}),
		RatchetVersionChange: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "verifying_client_ratchet_version_change_total",
			Help: "Ratchet calls that advanced the trusted version within the same epoch.",
		}),
		RatchetEpochChange: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "verifying_client_ratchet_epoch_change_total",
			Help: "Ratchet calls that advanced the trusted epoch.",
		}),
		RatchetStorageFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "verifying_client_ratchet_storage_failures_total",
			Help: "Ratchet calls that failed to persist the new waypoint.",
		}),
		SyncSteps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "verifying_client_sync_steps_total",
			Help: "Number of sync_one_step calls whose state-proof response validated.",
		}),
		BatchValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "verifying_client_batch_validation_failures_total",
			Help: "Per-element batch validation failures, labeled by error code.",
		}, []string{"code"}),
		WaitForTransactionPollSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "verifying_client_wait_for_transaction_poll_seconds",
			Help:    "Latency of each wait_for_transaction poll round trip.",
			Buckets: prometheus.DefBuckets,
		}),
		registry: reg,
	}
	reg.MustRegister(m.RatchetNoChange, m.RatchetVersionChange, m.RatchetEpochChange,
		m.RatchetStorageFailures, m.SyncSteps, m.BatchValidationFailures, m.WaitForTransactionPollSeconds)
	return m
}

// Registry exposes the Prometheus registry so callers can serve it
// over /metrics alongside their own collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
