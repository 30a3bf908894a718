package totp

import "time"

// Clock converts wall-clock time into TOTP time-step counters.
// It holds no mutable state and is safe for concurrent use.
type Clock struct {
	step uint64
	now  func() time.Time
}

// ClockOption configures a Clock.
type ClockOption func(*Clock)

// WithStep sets the step length in seconds. Zero keeps the default.
func WithStep(seconds uint) ClockOption {
	return func(c *Clock) {
		if seconds > 0 {
			c.step = uint64(seconds)
		}
	}
}

// WithTimeSource replaces time.Now, mainly for deterministic tests.
func WithTimeSource(now func() time.Time) ClockOption {
	return func(c *Clock) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClock returns a clock with a DefaultPeriod step driven by time.Now.
func NewClock(opts ...ClockOption) *Clock {
	c := &Clock{
		step: DefaultPeriod,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Step returns the step length in seconds.
func (c *Clock) Step() uint64 {
	return c.step
}

// Now returns the current time of the underlying time source.
func (c *Clock) Now() time.Time {
	return c.now()
}

// CounterFor returns floor(unix / step). Times before the epoch map to counter 0.
func (c *Clock) CounterFor(unix int64) uint64 {
	if unix < 0 {
		return 0
	}
	return uint64(unix) / c.step
}

// CounterAt returns the counter of the step containing t.
func (c *Clock) CounterAt(t time.Time) uint64 {
	return c.CounterFor(t.Unix())
}

// Counter returns the counter of the current step.
func (c *Clock) Counter() uint64 {
	return c.CounterAt(c.now())
}

// RemainingSecondsFor returns how many seconds are left in the step containing unix.
// The result is always in [1, step].
func (c *Clock) RemainingSecondsFor(unix int64) uint32 {
	if unix < 0 {
		return uint32(c.step)
	}
	return uint32(c.step - uint64(unix)%c.step)
}

// RemainingSeconds returns how many seconds are left in the current step.
func (c *Clock) RemainingSeconds() uint32 {
	return c.RemainingSecondsFor(c.now().Unix())
}

// TimeFor returns the first instant of the step identified by counter.
func (c *Clock) TimeFor(counter uint64) time.Time {
	return time.Unix(int64(counter*c.step), 0).UTC()
}
