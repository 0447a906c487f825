package clock

import "time"

// FakeClock is a manually driven Clock for tests. Agreement dunning,
// login attempt windows, and webhook signature tolerance all branch on
// Now, so tests advance time explicitly instead of sleeping.
type FakeClock struct {
	now time.Time
}

var _ Clock = (*FakeClock)(nil)

// NewFakeClock pins the clock at t, normalized to UTC to match
// SystemClock.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t.UTC()}
}

func (c *FakeClock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
