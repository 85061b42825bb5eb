package frame

import "time"

// Clock reports the time elapsed since the demo started.
type Clock interface {
	Now() time.Duration
}

type wallClock struct {
	start time.Time
}

// WallClock returns a Clock backed by the monotonic system clock.
func WallClock() Clock {
	return wallClock{start: time.Now()}
}

func (c wallClock) Now() time.Duration {
	return time.Since(c.start)
}

// TextureClock paces texture refreshes at a fixed quantum independent of
// the render frame rate. Each refresh advances the deadline by exactly one
// quantum, never to "now", so pacing does not drift under variable frame
// times. At most one refresh happens per frame; under sustained slow frames
// the schedule falls behind real time and never skips ahead.
type TextureClock struct {
	quantum time.Duration
	last    time.Duration
	frame   uint32
}

// NewTextureClock starts pacing at start.
func NewTextureClock(start, quantum time.Duration) *TextureClock {
	if quantum <= 0 {
		panic("frame: texture quantum must be positive")
	}
	return &TextureClock{quantum: quantum, last: start}
}

// Due reports whether a refresh is due at now and, if so, returns the
// frame index to render and advances the schedule. The frame index wraps
// modulo 2^32.
func (c *TextureClock) Due(now time.Duration) (uint32, bool) {
	if now-c.last < c.quantum {
		return 0, false
	}
	c.last += c.quantum
	f := c.frame
	c.frame++
	return f, true
}

// Deadline returns the time of the next refresh.
func (c *TextureClock) Deadline() time.Duration {
	return c.last + c.quantum
}

// Frame returns the index the next refresh will render.
func (c *TextureClock) Frame() uint32 {
	return c.frame
}

// Quantum returns the refresh interval.
func (c *TextureClock) Quantum() time.Duration {
	return c.quantum
}
