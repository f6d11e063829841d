package mocks

import (
	"context"
	"sync"
	"time"
)

// Sleeper records requested delays and returns immediately
type Sleeper struct {
	mu        sync.Mutex
	durations []time.Duration
	// Hook runs before Sleep returns, with the 1-based call count
	Hook func(n int, d time.Duration)
}

func (s *Sleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.durations = append(s.durations, d)
	n := len(s.durations)
	hook := s.Hook
	s.mu.Unlock()

	if hook != nil {
		hook(n, d)
	}
	return ctx.Err()
}

// Durations returns the recorded delays
func (s *Sleeper) Durations() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.durations...)
}

// Clock advances by Step on every call to Now
type Clock struct {
	mu      sync.Mutex
	current time.Time
	Step    time.Duration
}

// NewClock starts a clock at start
func NewClock(start time.Time, step time.Duration) *Clock {
	return &Clock{current: start, Step: step}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(c.Step)
	return c.current
}
