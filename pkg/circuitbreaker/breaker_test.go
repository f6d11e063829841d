package circuitbreaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/speedrun-hq/lzbridger/pkg/logger"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestBreaker(threshold int, window, reset time.Duration) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	cb := NewCircuitBreaker("polygon", true, threshold, window, reset, &logger.EmptyLogger{})
	cb.now = clock.Now
	return cb, clock
}

func TestCircuitBreakerTripsAtThreshold(t *testing.T) {
	cb, _ := newTestBreaker(3, time.Minute, 5*time.Minute)

	assert.False(t, cb.RecordFailure())
	assert.False(t, cb.RecordFailure())
	assert.False(t, cb.IsOpen())
	assert.True(t, cb.RecordFailure())
	assert.True(t, cb.IsOpen())

	count, _, window, threshold := cb.GetState()
	assert.Equal(t, 3, count)
	assert.Equal(t, time.Minute, window)
	assert.Equal(t, 3, threshold)
	assert.Equal(t, "polygon", cb.Name())
}

func TestCircuitBreakerWindowExpiry(t *testing.T) {
	cb, clock := newTestBreaker(2, time.Minute, 5*time.Minute)

	assert.False(t, cb.RecordFailure())
	clock.Advance(2 * time.Minute)
	// the first failure fell out of the window
	assert.False(t, cb.RecordFailure())
	assert.False(t, cb.IsOpen())
}

func TestCircuitBreakerResets(t *testing.T) {
	t.Run("after timeout", func(t *testing.T) {
		cb, clock := newTestBreaker(1, time.Minute, 5*time.Minute)
		assert.True(t, cb.RecordFailure())
		assert.True(t, cb.IsOpen())

		clock.Advance(6 * time.Minute)
		assert.False(t, cb.IsOpen())
	})

	t.Run("manually", func(t *testing.T) {
		cb, _ := newTestBreaker(1, time.Minute, time.Hour)
		assert.True(t, cb.RecordFailure())
		cb.Reset()
		assert.False(t, cb.IsOpen())
	})
}

func TestCircuitBreakerDisabled(t *testing.T) {
	cb := NewCircuitBreaker("bsc", false, 1, time.Minute, time.Minute, nil)
	assert.False(t, cb.RecordFailure())
	assert.False(t, cb.IsOpen())
	assert.False(t, cb.IsEnabled())
}
