// Package timing defines the simulation tick and the clock that advances it.
package timing

import "sync/atomic"

// Tick is the index of a simulation step. Ticks wrap around at 2^32; all
// tick arithmetic in the simulator uses unsigned differences so that the
// wrap is harmless as long as no item waits for more than 2^31 ticks.
type Tick uint32

// Since returns the number of ticks elapsed from earlier to t.
func (t Tick) Since(earlier Tick) uint32 {
	return uint32(t - earlier)
}

// Clock is the global simulation clock. The first call to Advance returns
// tick 0.
type Clock struct {
	next atomic.Uint32
	ran  atomic.Bool
}

// NewClock creates a clock that has not ticked yet.
func NewClock() *Clock {
	return &Clock{}
}

// Advance moves the clock one tick forward and returns the new tick.
func (c *Clock) Advance() Tick {
	c.ran.Store(true)
	return Tick(c.next.Add(1) - 1)
}

// Now returns the most recent tick. It returns 0 before the first Advance;
// use Started to tell the two apart.
func (c *Clock) Now() Tick {
	n := c.next.Load()
	if n == 0 {
		return 0
	}

	return Tick(n - 1)
}

// Started reports whether the clock has advanced at least once.
func (c *Clock) Started() bool {
	return c.ran.Load()
}
