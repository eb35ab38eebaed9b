// Copyright 2025 Certen Protocol

package batch

import (
	"crypto/sha256"
	"encoding/json"

	"github.com/certen/verifying-client/pkg/accumulator"
	certenerrors "github.com/certen/verifying-client/pkg/errors"
	"github.com/certen/verifying-client/pkg/rpc"
	"github.com/certen/verifying-client/pkg/types"
)

// decodeAndVerify decodes resp according to kind and, where the
// response carries an embedded accumulator proof, verifies it against
// trusted.AccumulatorSummary before returning the decoded value.
func decodeAndVerify(kind RequestKind, resp rpc.Response, trusted types.TrustedState) (any, error) {
	switch kind {
	case ReqGetMetadata, ReqGetMetadataByVersion:
		var v rpc.MetadataResult
		if err := json.Unmarshal(resp.Result, &v); err != nil {
			return nil, certenerrors.NewTransportError("decoding metadata response", err)
		}
		return v, nil

	case ReqGetAccount, ReqGetAccountByVersion:
		var v rpc.AccountResult
		if err := json.Unmarshal(resp.Result, &v); err != nil {
			return nil, certenerrors.NewTransportError("decoding account response", err)
		}
		if v.Blob != nil {
			leaf := leafHashOf(v.Blob)
			if err := verifyInclusion(trusted, types.Version(v.AtVersion), leaf, v.Proof); err != nil {
				return nil, err
			}
		}
		return v, nil

	case ReqGetTransactions:
		var v rpc.TransactionsResult
		if err := json.Unmarshal(resp.Result, &v); err != nil {
			return nil, certenerrors.NewTransportError("decoding transactions response", err)
		}
		for _, txn := range v.Transactions {
			if err := verifyInclusion(trusted, types.Version(txn.Version), txn.Hash, txn.Proof); err != nil {
				return nil, err
			}
		}
		return v, nil

	case ReqGetAccountTransaction:
		var v rpc.AccountTransactionResult
		if err := json.Unmarshal(resp.Result, &v); err != nil {
			return nil, certenerrors.NewTransportError("decoding account transaction response", err)
		}
		if v.Found {
			if err := verifyInclusion(trusted, types.Version(v.Version), v.Hash, v.Proof); err != nil {
				return nil, err
			}
		}
		return v, nil

	case ReqGetAccountTransactions:
		var v rpc.AccountTransactionsResult
		if err := json.Unmarshal(resp.Result, &v); err != nil {
			return nil, certenerrors.NewTransportError("decoding account transactions response", err)
		}
		for _, txn := range v.Transactions {
			if !txn.Found {
				continue
			}
			if err := verifyInclusion(trusted, types.Version(txn.Version), txn.Hash, txn.Proof); err != nil {
				return nil, err
			}
		}
		return v, nil

	case ReqGetEvents:
		var v rpc.EventsResult
		if err := json.Unmarshal(resp.Result, &v); err != nil {
			return nil, certenerrors.NewTransportError("decoding events response", err)
		}
		return v, nil

	case ReqGetCurrencies:
		var v rpc.CurrenciesResult
		if err := json.Unmarshal(resp.Result, &v); err != nil {
			return nil, certenerrors.NewTransportError("decoding currencies response", err)
		}
		return v, nil

	case ReqGetNetworkStatus:
		var v rpc.NetworkStatusResult
		if err := json.Unmarshal(resp.Result, &v); err != nil {
			return nil, certenerrors.NewTransportError("decoding network status response", err)
		}
		return v, nil

	case ReqSubmit:
		var v rpc.SubmitResult
		if err := json.Unmarshal(resp.Result, &v); err != nil {
			return nil, certenerrors.NewTransportError("decoding submit response", err)
		}
		return v, nil
	}
	return nil, certenerrors.New(certenerrors.Rpc, "unknown request kind")
}

func verifyInclusion(trusted types.TrustedState, version types.Version, leaf types.HashValue, proof types.AccumulatorInclusionProof) error {
	if !trusted.HasAccumulator() {
		return certenerrors.NewNeedSyncError()
	}
	return accumulator.VerifyInclusion(trusted.AccumulatorSummary, version, leaf, proof.Siblings)
}

// leafHashOf hashes an account blob into the leaf value the
// accumulator's inclusion proof covers. Account state is committed to
// the accumulator as the hash of its serialized blob.
func leafHashOf(blob []byte) types.HashValue {
	return sha256.Sum256(blob)
}
