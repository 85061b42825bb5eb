package gpu

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/revolve/pkg/math"
)

// Sizer reports drawable dimensions in pixels.
type Sizer interface {
	Size() (width, height int)
}

// Target is the window's default framebuffer.
type Target struct {
	surface Sizer
	clear   math.Color
	active  bool
}

// NewTarget creates a target drawing into surface.
func NewTarget(surface Sizer) *Target {
	return &Target{surface: surface, clear: math.Color{A: 1}}
}

// SetClearColor sets the color Begin clears to.
func (t *Target) SetClearColor(c math.Color) {
	t.clear = c
}

// Begin binds and clears the default framebuffer. It fails for an empty
// surface.
func (t *Target) Begin() bool {
	w, h := t.surface.Size()
	if w <= 0 || h <= 0 {
		return false
	}
	t.active = true

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(w), int32(h))
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.ClearColor(t.clear.R, t.clear.G, t.clear.B, t.clear.A)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	return true
}

// End finishes recording.
func (t *Target) End() {
	t.active = false
}

// Active reports whether the target is between Begin and End.
func (t *Target) Active() bool {
	return t.active
}

// Size returns the current surface size.
func (t *Target) Size() (int, int) {
	return t.surface.Size()
}
