package ui

import (
	"math"

	"github.com/Faultbox/revolve/internal/engine"
)

// Rect is an axis-aligned rectangle in logical units.
type Rect struct {
	X, Y, W, H float32
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

func (r Rect) event() engine.Rect {
	return engine.Rect{X: r.X, Y: r.Y, Width: r.W, Height: r.H}
}

// Backdrop is the full-viewport rectangle showing the rendered frame.
type Backdrop struct {
	rect    Rect
	texture engine.Texture
	linear  bool
	scaleX  float32
	scaleY  float32
	flipH   bool
	flipV   bool
}

// SetTexture sets the displayed texture and its filtering.
func (b *Backdrop) SetTexture(tex engine.Texture, linear bool) {
	b.texture = tex
	b.linear = linear
}

// SetTextureScale sets the logical units per texture pixel.
func (b *Backdrop) SetTextureScale(sx, sy float32) {
	b.scaleX, b.scaleY = sx, sy
}

// SetTextureFlip sets whether the texture rows or columns are reversed.
func (b *Backdrop) SetTextureFlip(h, v bool) {
	b.flipH, b.flipV = h, v
}

// Texture returns the displayed texture.
func (b *Backdrop) Texture() engine.Texture {
	return b.texture
}

// uvScale returns the texcoord scale that maps the backdrop rectangle onto
// the texture.
func (b *Backdrop) uvScale() (float32, float32) {
	if b.texture == nil {
		return 1, 1
	}
	tw, th := b.texture.Size()
	u, v := float32(1), float32(1)
	if b.scaleX > 0 && tw > 0 {
		u = b.rect.W / (b.scaleX * float32(tw))
	}
	if b.scaleY > 0 && th > 0 {
		v = b.rect.H / (b.scaleY * float32(th))
	}
	return u, v
}

// Text is a static label.
type Text struct {
	rect Rect
	text string
}

// Button emits a click event when pressed.
type Button struct {
	name    string
	rect    Rect
	label   string
	hovered bool
	active  bool
	clicks  int
}

// Slider edits a value in [min, max] rounded to a number of digits.
type Slider struct {
	name     string
	rect     Rect
	track    Rect
	label    string
	digits   int
	min, max float64
	value    float64
	active   bool
}

// Value returns the current value.
func (s *Slider) Value() float64 {
	return s.value
}

// SetValue clamps and rounds v. It reports whether the value changed.
func (s *Slider) SetValue(v float64) bool {
	v = s.round(max(s.min, min(s.max, v)))
	if v == s.value {
		return false
	}
	s.value = v
	return true
}

func (s *Slider) round(v float64) float64 {
	p := math.Pow10(s.digits)
	return math.Round(v*p) / p
}

// setFromPointer maps a pointer x onto the track.
func (s *Slider) setFromPointer(x float32) bool {
	if s.track.W <= 0 {
		return false
	}
	t := float64((x - s.track.X) / s.track.W)
	return s.SetValue(s.min + t*(s.max-s.min))
}

// fraction returns the knob position in [0, 1].
func (s *Slider) fraction() float32 {
	if s.max == s.min {
		return 0
	}
	return float32((s.value - s.min) / (s.max - s.min))
}

// Dialog is a draggable panel laid out as a column of rows.
type Dialog struct {
	name     string
	rect     Rect
	width    float32
	height   float32
	offsetX  float32
	offsetY  float32
	dragging bool
	reported Rect
}

// Rect returns the dialog rectangle of the last layout pass.
func (d *Dialog) Rect() Rect {
	return d.rect
}

func (d *Dialog) titleBar() Rect {
	return Rect{d.rect.X, d.rect.Y, d.rect.W, titleBarHeight}
}
