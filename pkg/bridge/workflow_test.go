package bridge

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speedrun-hq/lzbridger/pkg/bridge/mocks"
	"github.com/speedrun-hq/lzbridger/pkg/models"
)

func stagesOf(outcome models.Outcome) []models.Stage {
	var stages []models.Stage
	for _, record := range outcome.Stages {
		stages = append(stages, record.Stage)
	}
	return stages
}

func assertTimestampsOrdered(t *testing.T, outcome models.Outcome) {
	t.Helper()
	for i := 1; i < len(outcome.Stages); i++ {
		assert.False(t, outcome.Stages[i].CompletedAt.Before(outcome.Stages[i-1].CompletedAt),
			"stage %s completed before %s", outcome.Stages[i].Stage, outcome.Stages[i-1].Stage)
	}
}

func TestWorkflowPolygonToBSC(t *testing.T) {
	signer := newWallet(t)
	source := mocks.NewChainClient()
	source.Balances = []*big.Int{big.NewInt(10000), big.NewInt(10000), big.NewInt(40000)}
	source.Allowance = big.NewInt(0)
	source.Nonce = 11
	destination := mocks.NewChainClient()

	sleeper := &mocks.Sleeper{}
	recorder := &EventRecorder{}
	rt := testRuntime(sleeper, recorder)
	rt.Options.MinBalance = big.NewInt(30000)

	intent := models.SwapIntent{Source: "polygon", Destination: "bsc", Wallet: signer}
	outcome := NewWorkflow(intent, testChain(t, "polygon", source), testChain(t, "bsc", destination), rt).Run(context.Background())

	require.NoError(t, outcome.Err)
	assert.True(t, outcome.Succeeded())
	assert.NotEmpty(t, outcome.RunID)
	assert.Contains(t, outcome.ExplorerURL, "https://polygonscan.com/tx/"+outcome.TxHash.Hex())

	// two reads below threshold, then the qualifying one
	assert.Equal(t, 3, source.Calls("balanceOf"))
	assert.Equal(t, 1, source.Calls("allowance"))
	assert.Equal(t, 1, source.Calls("estimateSendFee"))
	assert.Empty(t, destination.CallLog())

	sent := source.Transactions()
	require.Len(t, sent, 2)
	approval, swap := sent[0], sent[1]
	assert.Equal(t, uint64(11), approval.Nonce())
	assert.Equal(t, uint64(12), swap.Nonce())
	assert.Equal(t, outcome.TxHash, swap.Hash())

	call := decodeSendFrom(t, swap)
	assert.Equal(t, uint16(102), call.DstChainID)
	assert.Equal(t, big.NewInt(40000), call.Amount)
	assert.Equal(t, big.NewInt(40000), call.MinAmount)
	assert.Equal(t, source.NativeFee, swap.Value())

	// fee quoted for the full balance
	require.Len(t, source.FeeArgs, 1)
	assert.Equal(t, big.NewInt(40000), source.FeeArgs[0][2])

	// start delay, two poll delays, settle delay
	assert.Equal(t, []time.Duration{360 * time.Second, 360 * time.Second, 360 * time.Second, DefaultSettleDelay}, sleeper.Durations())

	assert.Equal(t, []models.Stage{
		models.StageScheduled,
		models.StageWaitingForFunds,
		models.StageCheckingAllowance,
		models.StageEstimatingFee,
		models.StageSubmitting,
		models.StageDone,
	}, stagesOf(outcome))
	assertTimestampsOrdered(t, outcome)

	assert.Equal(t, 1, recorder.Count(EventStart))
	assert.Equal(t, 1, recorder.Count(EventBalanceSufficient))
	assert.Equal(t, 1, recorder.Count(EventApprovalSubmitted))
	assert.Equal(t, 1, recorder.Count(EventSwapSubmitted))
	assert.Equal(t, 0, recorder.Count(EventError))
	assert.Equal(t, 1, recorder.Count(EventFinish))

	events := recorder.Events()
	assert.Equal(t, EventStart, events[0].Kind)
	assert.Equal(t, EventFinish, events[len(events)-1].Kind)
	for _, e := range events {
		assert.Equal(t, outcome.RunID, e.RunID)
		assert.Equal(t, signer.Address(), e.Wallet)
		assert.Equal(t, uint16(109), e.LzChainID)
	}
}

func TestWorkflowNonceIsFetchedPerTransaction(t *testing.T) {
	source := mocks.NewChainClient()
	source.Balances = []*big.Int{big.NewInt(50000)}

	rt := testRuntime(&mocks.Sleeper{}, nil)
	intent := models.SwapIntent{Source: "polygon", Destination: "bsc", Wallet: newWallet(t)}
	outcome := NewWorkflow(intent, testChain(t, "polygon", source), testChain(t, "bsc", nil), rt).Run(context.Background())
	require.NoError(t, outcome.Err)

	log := source.CallLog()
	var nonceReads []int
	var sends []int
	for i, entry := range log {
		switch entry {
		case "nonce":
			nonceReads = append(nonceReads, i)
		case "send":
			sends = append(sends, i)
		}
	}
	require.Len(t, nonceReads, 2)
	require.Len(t, sends, 2)
	// the swap nonce is read after the approval was broadcast
	assert.Less(t, nonceReads[0], sends[0])
	assert.Greater(t, nonceReads[1], sends[0])
	assert.Less(t, nonceReads[1], sends[1])
}

func TestWorkflowSkipsApprovalWithAllowance(t *testing.T) {
	source := mocks.NewChainClient()
	source.Balances = []*big.Int{big.NewInt(40000)}
	source.Allowance = big.NewInt(40000)

	sleeper := &mocks.Sleeper{}
	recorder := &EventRecorder{}
	rt := testRuntime(sleeper, recorder)
	intent := models.SwapIntent{Source: "polygon", Destination: "bsc", Wallet: newWallet(t)}

	outcome := NewWorkflow(intent, testChain(t, "polygon", source), testChain(t, "bsc", nil), rt).Run(context.Background())
	require.NoError(t, outcome.Err)

	assert.Len(t, source.Transactions(), 1)
	assert.Equal(t, 0, recorder.Count(EventApprovalSubmitted))
	// only the start delay, no settle delay
	assert.Len(t, sleeper.Durations(), 1)
	assert.Contains(t, stagesOf(outcome), models.StageCheckingAllowance)
}

func TestWorkflowFailures(t *testing.T) {
	tests := []struct {
		name      string
		configure func(c *mocks.ChainClient)
		wantErr   error
		wantStage models.Stage
	}{
		{
			name:      "approval rejected",
			configure: func(c *mocks.ChainClient) { c.SendErrs = []error{mocks.ErrUnavailable} },
			wantErr:   ErrApprovalFailed,
			wantStage: models.StageCheckingAllowance,
		},
		{
			name:      "fee estimation",
			configure: func(c *mocks.ChainClient) { c.Allowance = big.NewInt(1 << 40); c.FeeErr = mocks.ErrUnavailable },
			wantErr:   ErrFeeEstimationFailed,
			wantStage: models.StageEstimatingFee,
		},
		{
			name: "swap rejected",
			configure: func(c *mocks.ChainClient) {
				c.Allowance = big.NewInt(1 << 40)
				c.SendErrs = []error{mocks.ErrUnavailable}
			},
			wantErr:   ErrSubmissionFailed,
			wantStage: models.StageSubmitting,
		},
		{
			name:      "gas price unavailable",
			configure: func(c *mocks.ChainClient) { c.Allowance = big.NewInt(1 << 40); c.GasPriceErr = mocks.ErrUnavailable },
			wantErr:   ErrRPCUnavailable,
			wantStage: models.StageSubmitting,
		},
		{
			name:      "nonce unavailable",
			configure: func(c *mocks.ChainClient) { c.Allowance = big.NewInt(1 << 40); c.NonceErr = mocks.ErrUnavailable },
			wantErr:   ErrRPCUnavailable,
			wantStage: models.StageSubmitting,
		},
		{
			name: "fee estimation and gas price both fail",
			configure: func(c *mocks.ChainClient) {
				c.Allowance = big.NewInt(1 << 40)
				c.FeeErr = mocks.ErrUnavailable
				c.GasPriceErr = mocks.ErrUnavailable
			},
			wantErr:   ErrFeeEstimationFailed,
			wantStage: models.StageEstimatingFee,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := mocks.NewChainClient()
			source.Balances = []*big.Int{big.NewInt(40000)}
			tt.configure(source)

			recorder := &EventRecorder{}
			rt := testRuntime(&mocks.Sleeper{}, recorder)
			intent := models.SwapIntent{Source: "polygon", Destination: "bsc", Wallet: newWallet(t)}

			outcome := NewWorkflow(intent, testChain(t, "polygon", source), testChain(t, "bsc", nil), rt).Run(context.Background())
			assert.False(t, outcome.Succeeded())
			assert.ErrorIs(t, outcome.Err, tt.wantErr)
			assert.Equal(t, tt.wantStage, outcome.FailedStage)
			assert.Equal(t, models.StageFailed, outcome.LastStage())
			assertTimestampsOrdered(t, outcome)
			assert.Equal(t, 1, recorder.Count(EventError))
			assert.Equal(t, 1, recorder.Count(EventFinish))
		})
	}
}

func TestWorkflowCanceledWhileWaitingForFunds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := mocks.NewChainClient()
	source.Balances = []*big.Int{big.NewInt(1)}
	sleeper := &mocks.Sleeper{Hook: func(n int, _ time.Duration) {
		if n == 2 {
			cancel()
		}
	}}

	rt := testRuntime(sleeper, nil)
	intent := models.SwapIntent{Source: "polygon", Destination: "bsc", Wallet: newWallet(t)}
	outcome := NewWorkflow(intent, testChain(t, "polygon", source), testChain(t, "bsc", nil), rt).Run(ctx)

	assert.ErrorIs(t, outcome.Err, context.Canceled)
	assert.True(t, outcome.Canceled())
	assert.Equal(t, models.StageWaitingForFunds, outcome.FailedStage)
	assert.Empty(t, source.Transactions())
}
