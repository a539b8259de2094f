package resilience

import (
	"sync"
	"time"
)

// manualClock is a Clock that only moves when told to.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fastPolicy keeps retry tests quick: 1ms, 2ms, 4ms... without jitter.
func fastPolicy(attempts int) Policy {
	return Policy{
		MaxAttempts:       attempts,
		InitialDelay:      time.Millisecond,
		MaxDelay:          10 * time.Millisecond,
		BackoffMultiplier: 2,
		DisableJitter:     true,
		OperationTimeout:  time.Second,
	}
}
