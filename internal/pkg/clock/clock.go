package clock

import "time"

// Clock abstracts wall-clock time so cut-off evaluation and suggestion
// expiry can be tested against a fixed "now".
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func NewSystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

// FixedClock is a manually advanced Clock for tests.
type FixedClock struct {
	now time.Time
}

func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{now: t}
}

func (c *FixedClock) Now() time.Time {
	return c.now
}

func (c *FixedClock) Set(t time.Time) {
	c.now = t
}

func (c *FixedClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
