package bridge

import (
	"context"
	"math/rand/v2"
	"time"
)

// Sleeper suspends a workflow. Implementations must return promptly with the
// context error once ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// TimerSleeper sleeps on a real timer
type TimerSleeper struct{}

func (TimerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Jitter is a delay window; Next draws uniformly from [Min, Max]
type Jitter struct {
	Min time.Duration
	Max time.Duration
	// RandInt64N returns a value in [0, n). Defaults to math/rand/v2.
	RandInt64N func(n int64) int64
}

// Next returns the next delay
func (j Jitter) Next() time.Duration {
	if j.Max <= j.Min {
		return j.Min
	}

	randN := j.RandInt64N
	if randN == nil {
		randN = rand.Int64N
	}
	return j.Min + time.Duration(randN(int64(j.Max-j.Min)+1))
}
