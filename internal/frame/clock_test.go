package frame

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTextureClockBoundary(t *testing.T) {
	c := NewTextureClock(0, 100*time.Millisecond)

	_, due := c.Due(99 * time.Millisecond)
	assert.False(t, due)

	f, due := c.Due(100 * time.Millisecond)
	assert.True(t, due)
	assert.Equal(t, uint32(0), f)
	assert.Equal(t, 200*time.Millisecond, c.Deadline())
}

func TestTextureClockAdvancesByQuantum(t *testing.T) {
	c := NewTextureClock(time.Second, 100*time.Millisecond)

	// A late frame advances the deadline by one quantum, not to now.
	f, due := c.Due(time.Second + 150*time.Millisecond)
	assert.True(t, due)
	assert.Equal(t, uint32(0), f)
	assert.Equal(t, time.Second+200*time.Millisecond, c.Deadline())

	f, due = c.Due(time.Second + 200*time.Millisecond)
	assert.True(t, due)
	assert.Equal(t, uint32(1), f)
	assert.Equal(t, uint32(2), c.Frame())
}

func TestTextureClockFrameWraps(t *testing.T) {
	c := NewTextureClock(0, time.Millisecond)
	c.frame = math.MaxUint32

	f, _ := c.Due(time.Millisecond)
	assert.Equal(t, uint32(math.MaxUint32), f)
	assert.Equal(t, uint32(0), c.Frame())
}

func TestTextureClockInvalidQuantum(t *testing.T) {
	assert.Panics(t, func() { NewTextureClock(0, 0) })
}

func TestWallClockMonotonic(t *testing.T) {
	c := WallClock()
	a := c.Now()
	b := c.Now()
	assert.GreaterOrEqual(t, b, a)
	assert.Equal(t, time.Second/30, NewTextureClock(0, time.Second/30).Quantum())
}
