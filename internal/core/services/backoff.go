package services

import (
	"context"
	"sync/atomic"
	"time"
)

// Backoff defaults. The base matches the service's typical recovery
// window; the cap keeps a persistently throttled run from sleeping
// unboundedly long between attempts.
const (
	DefaultBackoffBase = 5 * time.Second
	DefaultBackoffMax  = 80 * time.Second
)

// BackoffClock is the single deadline shared by every upload worker.
// The rate limit is collection-wide, so one worker observing a 429
// delays all of them. The deadline only moves forward; concurrent
// advances race benignly (a worker sleeping slightly long or short
// affects throughput, never correctness).
//
// The delay grows exponentially with consecutive throttle signals and
// resets on the first successful send.
type BackoffClock struct {
	deadline atomic.Int64 // unix nanos after which sends may proceed
	streak   atomic.Int32 // consecutive throttle signals
	base     time.Duration
	max      time.Duration
	now      func() time.Time
}

// NewBackoffClock creates a clock with the given base and maximum
// delay. Non-positive values fall back to the defaults.
func NewBackoffClock(base, max time.Duration) *BackoffClock {
	if base <= 0 {
		base = DefaultBackoffBase
	}
	if max <= 0 {
		max = DefaultBackoffMax
	}
	if max < base {
		max = base
	}
	return &BackoffClock{base: base, max: max, now: time.Now}
}

// Advance records a throttle signal and pushes the deadline forward.
// When the service suggested a wait (Retry-After), that wins over the
// computed delay. Returns the delay that was applied.
func (c *BackoffClock) Advance(retryAfter time.Duration) time.Duration {
	streak := c.streak.Add(1)

	delay := c.base
	for i := int32(1); i < streak && delay < c.max; i++ {
		delay *= 2
	}
	if delay > c.max {
		delay = c.max
	}
	if retryAfter > 0 {
		delay = retryAfter
	}

	target := c.now().Add(delay).UnixNano()
	for {
		current := c.deadline.Load()
		if current >= target || c.deadline.CompareAndSwap(current, target) {
			return delay
		}
	}
}

// Observe records a successful send, ending the throttle streak.
func (c *BackoffClock) Observe() {
	c.streak.Store(0)
}

// Remaining returns how long a sender must still wait, or zero.
func (c *BackoffClock) Remaining() time.Duration {
	wait := time.Duration(c.deadline.Load() - c.now().UnixNano())
	if wait < 0 {
		return 0
	}
	return wait
}

// Wait sleeps until the shared deadline has passed or the context is
// cancelled. Senders call this before every upsert.
func (c *BackoffClock) Wait(ctx context.Context) error {
	wait := c.Remaining()
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
