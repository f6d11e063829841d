package bridge

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/speedrun-hq/lzbridger/pkg/chains"
)

func TestErrorKind(t *testing.T) {
	cause := errors.New("nonce too low")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"unknown chain", fmt.Errorf("source: %w", fmt.Errorf("%w: %q", chains.ErrUnknownChain, "fantom")), KindUnknownChain},
		{"rpc", wrap(ErrRPCUnavailable, "failed to read balance", cause), KindRPCUnavailable},
		{"approval", wrap(ErrApprovalFailed, "failed to submit approval", cause), KindApprovalFailed},
		{"fee", wrap(ErrFeeEstimationFailed, "failed to estimate fee", cause), KindFeeEstimation},
		{"submission", wrap(ErrSubmissionFailed, "failed to submit swap", cause), KindSubmissionFailed},
		{"canceled", fmt.Errorf("waiting: %w", context.Canceled), KindCanceled},
		{"other", cause, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorKind(tt.err))
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("insufficient funds for gas")
	err := wrap(ErrSubmissionFailed, "failed to submit swap", cause)

	assert.ErrorIs(t, err, ErrSubmissionFailed)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "insufficient funds for gas")
}
