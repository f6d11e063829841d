package bridge

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speedrun-hq/lzbridger/pkg/bridge/mocks"
	"github.com/speedrun-hq/lzbridger/pkg/logger"
)

func TestAwaitMinimum(t *testing.T) {
	owner := newWallet(t).Address()

	t.Run("reads until threshold is met", func(t *testing.T) {
		for k := 0; k < 4; k++ {
			client := mocks.NewChainClient()
			client.Balances = nil
			for i := 0; i < k; i++ {
				client.Balances = append(client.Balances, big.NewInt(int64(100*i)))
			}
			client.Balances = append(client.Balances, big.NewInt(30000))

			sleeper := &mocks.Sleeper{}
			watcher := NewBalanceWatcher(fixedJitter(90*time.Second, 360*time.Second), sleeper, &logger.EmptyLogger{})

			balance, err := watcher.AwaitMinimum(context.Background(), testChain(t, "polygon", client), owner, big.NewInt(30000))
			require.NoError(t, err)
			assert.Equal(t, big.NewInt(30000), balance)
			assert.Equal(t, k+1, client.Calls("balanceOf"))
			assert.Len(t, sleeper.Durations(), k)
			for _, d := range sleeper.Durations() {
				assert.Equal(t, 360*time.Second, d)
			}
		}
	})

	t.Run("zero threshold reads once", func(t *testing.T) {
		client := mocks.NewChainClient()
		sleeper := &mocks.Sleeper{}
		watcher := NewBalanceWatcher(fixedJitter(time.Second, time.Second), sleeper, &logger.EmptyLogger{})

		balance, err := watcher.AwaitMinimum(context.Background(), testChain(t, "polygon", client), owner, big.NewInt(0))
		require.NoError(t, err)
		assert.Equal(t, 0, balance.Sign())
		assert.Equal(t, 1, client.Calls("balanceOf"))
		assert.Empty(t, sleeper.Durations())
	})

	t.Run("read failures are retried", func(t *testing.T) {
		client := mocks.NewChainClient()
		client.Balances = []*big.Int{nil, nil, big.NewInt(50000)}
		client.BalanceErrs = []error{mocks.ErrUnavailable, mocks.ErrUnavailable}
		sleeper := &mocks.Sleeper{}
		watcher := NewBalanceWatcher(fixedJitter(time.Second, 2*time.Second), sleeper, &logger.EmptyLogger{})

		balance, err := watcher.AwaitMinimum(context.Background(), testChain(t, "bsc", client), owner, big.NewInt(30000))
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(50000), balance)
		assert.Equal(t, 3, client.Calls("balanceOf"))
		assert.Len(t, sleeper.Durations(), 2)
	})

	t.Run("cancellation ends the loop", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		client := mocks.NewChainClient()
		client.Balances = []*big.Int{big.NewInt(1)}
		sleeper := &mocks.Sleeper{Hook: func(n int, _ time.Duration) {
			if n == 3 {
				cancel()
			}
		}}
		watcher := NewBalanceWatcher(fixedJitter(time.Second, time.Second), sleeper, &logger.EmptyLogger{})

		_, err := watcher.AwaitMinimum(ctx, testChain(t, "polygon", client), owner, big.NewInt(30000))
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 3, client.Calls("balanceOf"))
	})
}

func TestReadBalanceWrapsRPCErrors(t *testing.T) {
	client := mocks.NewChainClient()
	client.BalanceErrs = []error{mocks.ErrUnavailable}

	_, err := ReadBalance(context.Background(), testChain(t, "avalanche", client), newWallet(t).Address())
	assert.ErrorIs(t, err, ErrRPCUnavailable)
	assert.ErrorIs(t, err, mocks.ErrUnavailable)
}
