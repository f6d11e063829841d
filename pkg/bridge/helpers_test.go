package bridge

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/speedrun-hq/lzbridger/pkg/bridge/mocks"
	"github.com/speedrun-hq/lzbridger/pkg/chains"
	"github.com/speedrun-hq/lzbridger/pkg/logger"
	"github.com/speedrun-hq/lzbridger/pkg/wallet"
)

func newWallet(t *testing.T) *wallet.Wallet {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return wallet.FromKey(key)
}

func testChain(t *testing.T, name string, client ChainClient) Chain {
	t.Helper()
	descriptor, err := chains.DefaultRegistry().Resolve(name)
	require.NoError(t, err)
	return Chain{Descriptor: descriptor, Client: client}
}

// fixedJitter always draws the upper bound
func fixedJitter(lo, hi time.Duration) Jitter {
	return Jitter{Min: lo, Max: hi, RandInt64N: func(n int64) int64 { return n - 1 }}
}

func testRuntime(sleeper Sleeper, sink EventSink) Runtime {
	opts := DefaultOptions()
	opts.StartJitter = fixedJitter(90*time.Second, 360*time.Second)
	opts.PollJitter = fixedJitter(90*time.Second, 360*time.Second)

	return Runtime{
		Options: opts,
		Sleeper: sleeper,
		Now:     mocks.NewClock(time.Unix(1700000000, 0), time.Second).Now,
		Sink:    sink,
		Logger:  &logger.EmptyLogger{},
	}
}
