package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/speedrun-hq/lzbridger/pkg/chains"
)

var (
	// ErrRPCUnavailable marks a failed read against the chain RPC
	ErrRPCUnavailable = errors.New("rpc unavailable")
	// ErrApprovalFailed marks a failure to build, sign or broadcast an approval
	ErrApprovalFailed = errors.New("approval failed")
	// ErrFeeEstimationFailed marks a failed estimateSendFee call
	ErrFeeEstimationFailed = errors.New("fee estimation failed")
	// ErrSubmissionFailed marks a failure to sign or broadcast the bridge transaction
	ErrSubmissionFailed = errors.New("submission failed")
)

// Error kinds used as metric labels and in reports
const (
	KindUnknownChain     = "unknown_chain"
	KindRPCUnavailable   = "rpc_unavailable"
	KindApprovalFailed   = "approval_failed"
	KindFeeEstimation    = "fee_estimation_failed"
	KindSubmissionFailed = "submission_failed"
	KindCanceled         = "canceled"
	KindUnknown          = "unknown"
)

// ErrorKind classifies a workflow error
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, chains.ErrUnknownChain):
		return KindUnknownChain
	case errors.Is(err, ErrApprovalFailed):
		return KindApprovalFailed
	case errors.Is(err, ErrFeeEstimationFailed):
		return KindFeeEstimation
	case errors.Is(err, ErrSubmissionFailed):
		return KindSubmissionFailed
	case errors.Is(err, ErrRPCUnavailable):
		return KindRPCUnavailable
	}
	return KindUnknown
}

// wrap keeps both the sentinel and the cause reachable through errors.Is
func wrap(kind error, action string, err error) error {
	return fmt.Errorf("%w: %s: %w", kind, action, err)
}
