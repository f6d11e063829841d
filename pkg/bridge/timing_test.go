package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJitterBounds(t *testing.T) {
	t.Run("inclusive range", func(t *testing.T) {
		var requested int64
		low := Jitter{Min: 90 * time.Second, Max: 360 * time.Second, RandInt64N: func(n int64) int64 {
			requested = n
			return 0
		}}
		assert.Equal(t, 90*time.Second, low.Next())
		assert.Equal(t, int64(270*time.Second)+1, requested)

		high := fixedJitter(90*time.Second, 360*time.Second)
		assert.Equal(t, 360*time.Second, high.Next())
	})

	t.Run("degenerate window", func(t *testing.T) {
		j := Jitter{Min: 5 * time.Second, Max: time.Second}
		assert.Equal(t, 5*time.Second, j.Next())
	})

	t.Run("default source stays in range", func(t *testing.T) {
		j := Jitter{Min: time.Millisecond, Max: 3 * time.Millisecond}
		for i := 0; i < 100; i++ {
			d := j.Next()
			assert.GreaterOrEqual(t, d, j.Min)
			assert.LessOrEqual(t, d, j.Max)
		}
	})
}

func TestTimerSleeper(t *testing.T) {
	t.Run("elapses", func(t *testing.T) {
		assert.NoError(t, TimerSleeper{}.Sleep(context.Background(), time.Millisecond))
	})

	t.Run("canceled promptly", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		start := time.Now()
		err := TimerSleeper{}.Sleep(ctx, time.Hour)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Less(t, time.Since(start), time.Second)
	})
}
