package bridge

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/speedrun-hq/lzbridger/pkg/chains"
	"github.com/speedrun-hq/lzbridger/pkg/contracts"
	"github.com/speedrun-hq/lzbridger/pkg/logger"
	"github.com/speedrun-hq/lzbridger/pkg/metrics"
)

// BalanceWatcher polls a token balance until it clears a threshold
type BalanceWatcher struct {
	jitter  Jitter
	sleeper Sleeper
	logger  logger.Logger
}

// NewBalanceWatcher creates a watcher sleeping a jittered delay between reads
func NewBalanceWatcher(jitter Jitter, sleeper Sleeper, log logger.Logger) *BalanceWatcher {
	return &BalanceWatcher{
		jitter:  jitter,
		sleeper: sleeper,
		logger:  log,
	}
}

// ReadBalance reads the token balance of owner on chain
func ReadBalance(ctx context.Context, chain Chain, owner common.Address) (*big.Int, error) {
	token := chain.Descriptor.Contract(chains.TokenContract)
	balance, err := contracts.CallUint256(ctx, chain.Client, contracts.ERC20(), token, owner, "balanceOf", owner)
	if err != nil {
		return nil, wrap(ErrRPCUnavailable, "failed to read balance", err)
	}
	return balance, nil
}

// AwaitMinimum blocks until the token balance of owner is at least threshold and
// returns it. Read failures are retried on the same schedule. The loop has no
// attempt limit and only ends early through ctx.
func (w *BalanceWatcher) AwaitMinimum(ctx context.Context, chain Chain, owner common.Address, threshold *big.Int) (*big.Int, error) {
	chainID := int(chain.Descriptor.LzChainID)

	for {
		balance, err := ReadBalance(ctx, chain, owner)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			metrics.BalancePolls.WithLabelValues(chain.Descriptor.Name, "error").Inc()
			w.logger.ErrorWithChain(chainID, "Wallet: %s | %v, retrying", owner.Hex(), err)
		case threshold == nil || balance.Cmp(threshold) >= 0:
			metrics.BalancePolls.WithLabelValues(chain.Descriptor.Name, "sufficient").Inc()
			return balance, nil
		default:
			metrics.BalancePolls.WithLabelValues(chain.Descriptor.Name, "insufficient").Inc()
			w.logger.DebugWithChain(chainID, "Wallet: %s | balance %s below %s", owner.Hex(), balance, threshold)
		}

		if err := w.sleeper.Sleep(ctx, w.jitter.Next()); err != nil {
			return nil, err
		}
	}
}
