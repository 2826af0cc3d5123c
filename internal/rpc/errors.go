package rpc

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sony/gobreaker"
)

// Starknet JSON-RPC error codes.
const (
	CodeBlockNotFound            = 24
	CodeTransactionHashNotFound  = 29
	CodePageSizeTooBig           = 31
	CodeInvalidContinuationToken = 33
	CodeTooManyKeysInFilter      = 34
)

var ErrTransactionNotFound = errors.New("transaction not found")

// errorCode returns the JSON-RPC error code carried by err, if any.
func errorCode(err error) (int, bool) {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return rpcErr.ErrorCode(), true
	}
	return 0, false
}

// IsPageSizeTooBigError reports whether the node rejected the requested chunk size.
func IsPageSizeTooBigError(err error) bool {
	code, ok := errorCode(err)
	return ok && code == CodePageSizeTooBig
}

// IsTransactionNotFoundError reports whether the node does not know the requested transaction.
func IsTransactionNotFoundError(err error) bool {
	if errors.Is(err, ErrTransactionNotFound) {
		return true
	}
	code, ok := errorCode(err)
	return ok && code == CodeTransactionHashNotFound
}

// IsInvalidContinuationTokenError reports whether a paging token was rejected.
func IsInvalidContinuationTokenError(err error) bool {
	code, ok := errorCode(err)
	return ok && code == CodeInvalidContinuationToken
}

// errorType classifies err for the error metric.
func errorType(err error) string {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "circuit_open"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case IsPageSizeTooBigError(err):
		return "page_size_too_big"
	case IsTransactionNotFoundError(err):
		return "not_found"
	}

	if _, ok := errorCode(err); ok {
		return "rpc"
	}
	if retryableError(err) {
		return "transient"
	}
	return "other"
}
