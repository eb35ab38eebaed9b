// Copyright 2025 Certen Protocol
//
// Structured error taxonomy for the verifying client core.

package errors

import (
	"fmt"
)

// Code identifies the kind of failure at the client boundary.
type Code string

const (
	// Transport covers I/O or serialization failure at the RPC layer.
	Transport Code = "transport"

	// Rpc covers a structured error reported by the server.
	Rpc Code = "rpc"

	// InvalidProof covers any proof that did not verify: signatures,
	// accumulator consistency/inclusion, or epoch-change continuity.
	// The specific reason is carried as context under the "reason" key;
	// see the Reason* constants below.
	InvalidProof Code = "invalid_proof"

	// StaleResponse marks a response whose ledger version is less than
	// the pinned request version.
	StaleResponse Code = "stale_response"

	// BatchStateMismatch marks two responses in one batch reporting
	// different state blocks.
	BatchStateMismatch Code = "batch_state_mismatch"

	// NeedSync marks a batch call made before accumulator bootstrap.
	NeedSync Code = "need_sync"

	// StorageError marks a waypoint persistence failure.
	StorageError Code = "storage_error"

	// WaitForTransaction* form the dedicated polling-loop taxonomy.
	WaitForTransactionHashMismatch    Code = "wait_for_transaction.hash_mismatch"
	WaitForTransactionExpired         Code = "wait_for_transaction.expired"
	WaitForTransactionTimeout         Code = "wait_for_transaction.timeout"
	WaitForTransactionExecutionFailed Code = "wait_for_transaction.execution_failed"
	WaitForTransactionUnderlying      Code = "wait_for_transaction.underlying"
)

// InvalidProof reason sub-codes, carried as context rather than as
// distinct top-level error kinds (spec: InvalidProof "subsumes" these).
const (
	ReasonInvalidSignatures  = "invalid_signatures"
	ReasonInvalidAccumulator = "invalid_accumulator"
	ReasonInvalidEpochChange = "invalid_epoch_change"
	ReasonWaypointMismatch   = "waypoint_mismatch"
)

// ClientError is the structured error type returned across the core's
// public boundary. It always carries a Code and wraps an optional Cause.
type ClientError struct {
	Code    Code
	Message string
	Context map[string]any
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a key/value pair and returns the same error for
// chaining at the call site.
func (e *ClientError) WithContext(key string, value any) *ClientError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func newError(code Code, message string, cause error) *ClientError {
	return &ClientError{Code: code, Message: message, Cause: cause}
}

func New(code Code, message string) *ClientError {
	return newError(code, message, nil)
}

func Wrap(code Code, message string, cause error) *ClientError {
	return newError(code, message, cause)
}

func NewTransportError(message string, cause error) *ClientError {
	return Wrap(Transport, message, cause)
}

func NewRpcError(message string, cause error) *ClientError {
	return Wrap(Rpc, message, cause)
}

// NewInvalidProofError builds an InvalidProof error tagged with one of
// the Reason* sub-codes.
func NewInvalidProofError(reason string, message string) *ClientError {
	return New(InvalidProof, message).WithContext("reason", reason)
}

func NewStaleResponseError(pinned, got uint64) *ClientError {
	return New(StaleResponse, "response version is older than pinned version").
		WithContext("pinned_version", pinned).
		WithContext("response_version", got)
}

func NewBatchStateMismatchError(a, b uint64) *ClientError {
	return New(BatchStateMismatch, "batch responses reported different ledger versions").
		WithContext("version_a", a).
		WithContext("version_b", b)
}

func NewNeedSyncError() *ClientError {
	return New(NeedSync, "trusted state lacks an accumulator summary; call sync() first")
}

func NewStorageError(message string, cause error) *ClientError {
	return Wrap(StorageError, message, cause)
}

func NewWaitForTransactionHashMismatchError(expected, got string) *ClientError {
	return New(WaitForTransactionHashMismatch, "executed transaction hash did not match the expected hash").
		WithContext("expected_hash", expected).
		WithContext("actual_hash", got)
}

func NewWaitForTransactionExpiredError(expirationSecs uint64, ledgerTimestampUsecs uint64) *ClientError {
	return New(WaitForTransactionExpired, "ledger timestamp passed the transaction's expiration before it was found").
		WithContext("expiration_secs", expirationSecs).
		WithContext("ledger_timestamp_usecs", ledgerTimestampUsecs)
}

func NewWaitForTransactionTimeoutError(timeout string) *ClientError {
	return New(WaitForTransactionTimeout, "timed out waiting for transaction").
		WithContext("timeout", timeout)
}

func NewWaitForTransactionExecutionFailedError() *ClientError {
	return New(WaitForTransactionExecutionFailed, "transaction executed but reported failure")
}

func NewWaitForTransactionUnderlyingError(cause error) *ClientError {
	return Wrap(WaitForTransactionUnderlying, "underlying request failed while polling", cause)
}

// IsCode reports whether err is a *ClientError with the given code.
func IsCode(err error, code Code) bool {
	ce, ok := err.(*ClientError)
	if !ok {
		return false
	}
	return ce.Code == code
}

// Reason extracts the InvalidProof "reason" context value, if present.
func Reason(err error) (string, bool) {
	ce, ok := err.(*ClientError)
	if !ok || ce.Context == nil {
		return "", false
	}
	r, ok := ce.Context["reason"].(string)
	return r, ok
}
