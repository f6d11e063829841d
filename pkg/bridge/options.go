package bridge

import (
	"math/big"
	"time"
)

// Default workflow parameters
const (
	DefaultJitterMin       = 90 * time.Second
	DefaultJitterMax       = 360 * time.Second
	DefaultSettleDelay     = 30 * time.Second
	DefaultMinBalance      = 30000
	DefaultApproveGasLimit = 150000
	DefaultSwapGasLimit    = 500000
	DefaultDstGasLimit     = 250000
)

// Options are the tunable parameters of a workflow
type Options struct {
	StartJitter     Jitter
	PollJitter      Jitter
	SettleDelay     time.Duration
	MinBalance      *big.Int
	ApproveGasLimit uint64
	SwapGasLimit    uint64
	DstGasLimit     uint64
	UseZRO          bool
	// MaxConcurrent caps the number of wallets bridged at once, 0 means no cap
	MaxConcurrent int
}

// DefaultOptions returns the parameters the bridger runs with unless configured otherwise
func DefaultOptions() Options {
	return Options{
		StartJitter:     Jitter{Min: DefaultJitterMin, Max: DefaultJitterMax},
		PollJitter:      Jitter{Min: DefaultJitterMin, Max: DefaultJitterMax},
		SettleDelay:     DefaultSettleDelay,
		MinBalance:      big.NewInt(DefaultMinBalance),
		ApproveGasLimit: DefaultApproveGasLimit,
		SwapGasLimit:    DefaultSwapGasLimit,
		DstGasLimit:     DefaultDstGasLimit,
		UseZRO:          true,
	}
}
