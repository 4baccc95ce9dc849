package core

import "time"

// Clock advances simulated time from start to end inclusive on a fixed step.
type Clock struct {
	start   time.Time
	end     time.Time
	step    time.Duration
	current time.Time
}

// NewClock validates the time range and returns a clock positioned at start.
func NewClock(start, end time.Time, step time.Duration) (*Clock, error) {
	if !end.After(start) {
		return nil, ErrInvalidTimeRange
	}

	if step <= 0 {
		return nil, ErrInvalidTimeStep
	}

	return &Clock{
		start:   start,
		end:     end,
		step:    step,
		current: start,
	}, nil
}

// Now returns the current simulated time
func (c *Clock) Now() time.Time {
	return c.current
}

// Start returns the first tick time
func (c *Clock) Start() time.Time {
	return c.start
}

// End returns the last admissible tick time
func (c *Clock) End() time.Time {
	return c.end
}

// Step returns the fixed tick size
func (c *Clock) Step() time.Duration {
	return c.step
}

// Advance moves the clock forward by one step
func (c *Clock) Advance() {
	c.current = c.current.Add(c.step)
}

// Done reports whether the clock has passed the end time
func (c *Clock) Done() bool {
	return c.current.After(c.end)
}

// Ticks returns the number of ticks the clock will produce
func (c *Clock) Ticks() int {
	return int(c.end.Sub(c.start)/c.step) + 1
}
