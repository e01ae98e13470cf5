package testsupport

import (
	"sync"
	"time"
)

// Clock is a manually advanced clock for pinning expiry boundaries in tests.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

// NewClock returns a clock frozen at start.
func NewClock(start time.Time) *Clock {
	return &Clock{t: start}
}

// Now returns the current clock time. Pass the method value as a facade's
// time source.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// SetTo moves the clock to an absolute instant.
func (c *Clock) SetTo(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}
