package chainclient

import (
	"context"
	"errors"
	"strings"
)

// Error types reported by ClassifyError
const (
	ErrorTypeNetwork  = "network_error"
	ErrorTypeGas      = "gas_error"
	ErrorTypeNonce    = "nonce_error"
	ErrorTypeFunds    = "insufficient_funds"
	ErrorTypeContract = "contract_error"
	ErrorTypeCanceled = "canceled"
	ErrorTypeUnknown  = "unknown_error"
)

// ClassifyError maps an RPC error to a coarse error type based on the
// messages go-ethereum and common node implementations return
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) {
		return ErrorTypeCanceled
	}

	errStr := err.Error()

	// Network/RPC errors
	if errors.Is(err, context.DeadlineExceeded) ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "timed out") ||
		strings.Contains(errStr, "no response") ||
		strings.Contains(errStr, "EOF") ||
		strings.Contains(errStr, "429 Too Many Requests") ||
		strings.Contains(errStr, "503 Service Unavailable") {
		return ErrorTypeNetwork
	}

	// Nonce-related errors
	if strings.Contains(errStr, "nonce too low") ||
		strings.Contains(errStr, "nonce too high") ||
		strings.Contains(errStr, "replacement transaction underpriced") {
		return ErrorTypeNonce
	}

	// Gas-related errors
	if strings.Contains(errStr, "gas required exceeds allowance") ||
		strings.Contains(errStr, "insufficient funds for gas") ||
		strings.Contains(errStr, "gas price too low") ||
		strings.Contains(errStr, "transaction underpriced") {
		return ErrorTypeGas
	}

	// Balance-related errors
	if strings.Contains(errStr, "insufficient balance") ||
		strings.Contains(errStr, "insufficient funds") {
		return ErrorTypeFunds
	}

	if strings.Contains(errStr, "execution reverted") {
		return ErrorTypeContract
	}

	return ErrorTypeUnknown
}
