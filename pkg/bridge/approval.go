package bridge

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/speedrun-hq/lzbridger/pkg/chains"
	"github.com/speedrun-hq/lzbridger/pkg/contracts"
	"github.com/speedrun-hq/lzbridger/pkg/logger"
	"github.com/speedrun-hq/lzbridger/pkg/metrics"
)

// ApprovalManager makes sure the bridge may spend the wallet's tokens
type ApprovalManager struct {
	gasLimit    uint64
	settleDelay time.Duration
	sleeper     Sleeper
	logger      logger.Logger
	onSubmitted func(Chain, SubmittedTransaction)
}

// NewApprovalManager creates an approval manager. onSubmitted, when set, is
// called right after an approval is broadcast and before the settle delay.
func NewApprovalManager(gasLimit uint64, settleDelay time.Duration, sleeper Sleeper, log logger.Logger, onSubmitted func(Chain, SubmittedTransaction)) *ApprovalManager {
	return &ApprovalManager{
		gasLimit:    gasLimit,
		settleDelay: settleDelay,
		sleeper:     sleeper,
		logger:      log,
		onSubmitted: onSubmitted,
	}
}

// EnsureAllowance approves the maximum amount for spender when the current
// allowance is below required, then waits for the approval to settle.
// It returns the approval transaction, or nil when none was needed.
func (m *ApprovalManager) EnsureAllowance(ctx context.Context, chain Chain, signer Signer, spender common.Address, required *big.Int) (*SubmittedTransaction, error) {
	owner := signer.Address()
	token := chain.Descriptor.Contract(chains.TokenContract)
	chainID := int(chain.Descriptor.LzChainID)

	allowance, err := contracts.CallUint256(ctx, chain.Client, contracts.ERC20(), token, owner, "allowance", owner, spender)
	if err != nil {
		return nil, wrap(ErrRPCUnavailable, "failed to read allowance", err)
	}
	if allowance.Cmp(required) >= 0 {
		m.logger.DebugWithChain(chainID, "Wallet: %s | allowance %s covers %s, skipping approval", owner.Hex(), allowance, required)
		return nil, nil
	}

	data, err := contracts.ERC20().Pack("approve", spender, math.MaxBig256)
	if err != nil {
		return nil, wrap(ErrApprovalFailed, "failed to pack approve", err)
	}

	nonce, gasPrice, err := snapshot(ctx, chain.Client, owner)
	if err != nil {
		return nil, wrap(ErrApprovalFailed, "failed to prepare approval", err)
	}

	submitted, err := signAndSend(ctx, chain, signer, TransactionPlan{
		From:     owner,
		To:       token,
		GasLimit: m.gasLimit,
		GasPrice: gasPrice,
		Nonce:    nonce,
		Data:     data,
	})
	if err != nil {
		return nil, wrap(ErrApprovalFailed, "failed to submit approval", err)
	}

	metrics.ApprovalsSubmitted.WithLabelValues(chain.Descriptor.Name).Inc()
	if m.onSubmitted != nil {
		m.onSubmitted(chain, submitted)
	}

	m.logger.DebugWithChain(chainID, "Wallet: %s | waiting %s for approval to settle", owner.Hex(), m.settleDelay)
	if err := m.sleeper.Sleep(ctx, m.settleDelay); err != nil {
		return &submitted, err
	}

	return &submitted, nil
}
