// Package ui is the interface control tree and the canvas that draws it:
// a backdrop showing the rendered frame and a draggable dialog with a
// button and colour sliders.
package ui

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/Faultbox/revolve/internal/engine"
	"github.com/Faultbox/revolve/pkg/math"
)

// Dialog geometry in logical units.
const (
	DialogWidth  = 240
	DialogHeight = 180

	titleBarHeight = 20
	padding        = 8
	rowSpacing     = 6
	buttonHeight   = 28
	sliderHeight   = 24
	sliderLabel    = 20
	sliderValue    = 40
)

// Control names carried by emitted events.
const (
	ControlDialog = "dialog"
	ControlButton = "button"
)

// Options configures a Root.
type Options struct {
	Title string
	// Color seeds the R, G and B sliders.
	Color math.Color
	Sink  engine.EventSink
}

// Root owns every control. Update lays them out and applies pointer input.
type Root struct {
	sink engine.EventSink

	viewW, viewH float32
	input        inputState

	backdrop *Backdrop
	dialog   *Dialog
	title    *Text
	button   *Button
	sliders  []*Slider

	revision uint64
}

// NewRoot builds the control tree.
func NewRoot(opts Options) *Root {
	sink := opts.Sink
	if sink == nil {
		sink = engine.EventSinkFunc(func(engine.Event) {})
	}
	r := &Root{
		sink:     sink,
		backdrop: &Backdrop{},
		dialog:   &Dialog{name: ControlDialog, width: DialogWidth, height: DialogHeight},
		title:    &Text{text: opts.Title},
		button:   &Button{name: ControlButton, label: "Button"},
	}
	for _, c := range []struct {
		name  string
		value float32
	}{
		{"R", opts.Color.R},
		{"G", opts.Color.G},
		{"B", opts.Color.B},
	} {
		s := &Slider{name: c.name, label: c.name, digits: 2, min: 0, max: 1}
		s.SetValue(float64(c.value))
		r.sliders = append(r.sliders, s)
	}
	return r
}

// Backdrop returns the full-viewport texture control.
func (r *Root) Backdrop() *Backdrop {
	return r.backdrop
}

// Dialog returns the dialog.
func (r *Root) Dialog() *Dialog {
	return r.dialog
}

// Slider returns the slider with the given name, or nil.
func (r *Root) Slider(name string) *Slider {
	for _, s := range r.sliders {
		if s.name == name {
			return s
		}
	}
	return nil
}

// Viewport returns the logical viewport size.
func (r *Root) Viewport() (float32, float32) {
	return r.viewW, r.viewH
}

// Revision increases whenever a pass changed something visible.
func (r *Root) Revision() uint64 {
	return r.revision
}

// SetViewport sets the logical size of the interface.
func (r *Root) SetViewport(width, height float32) {
	r.viewW, r.viewH = width, height
}

// SetMouse records the pointer for the next pass.
func (r *Root) SetMouse(x, y float32, buttons engine.Buttons) {
	r.input.set(x, y, buttons)
}

// Update runs one layout pass and consumes pending input. It reports
// whether anything changed; callers repeat it until it settles.
func (r *Root) Update(scale float32) bool {
	if scale <= 0 {
		scale = 1
	}
	changed := r.layout(scale)
	if r.input.fresh {
		r.input.update()
		if r.handleInput() {
			changed = true
		}
	}
	if changed {
		r.revision++
	}
	if d := r.dialog; d.rect != d.reported {
		d.reported = d.rect
		r.sink.Emit(engine.Event{Kind: engine.EventControlUpdated, Control: d.name, Rect: d.rect.event()})
	}
	return changed
}

func (r *Root) layout(scale float32) bool {
	changed := setRect(&r.backdrop.rect, Rect{0, 0, r.viewW, r.viewH})

	d := r.dialog
	x := (r.viewW-d.width)/2 + d.offsetX
	y := (r.viewH-d.height)/2 + d.offsetY
	changed = setRect(&d.rect, Rect{x, y, d.width, d.height}) || changed

	titleW := float32(font.MeasureString(basicfont.Face7x13, r.title.text).Ceil()) / scale
	changed = setRect(&r.title.rect, Rect{x + padding, y, titleW, titleBarHeight}) || changed

	inner := d.width - 2*padding
	row := y + titleBarHeight + padding
	changed = setRect(&r.button.rect, Rect{x + padding, row, inner, buttonHeight}) || changed
	row += buttonHeight + rowSpacing

	for _, s := range r.sliders {
		changed = setRect(&s.rect, Rect{x + padding, row, inner, sliderHeight}) || changed
		track := Rect{x + padding + sliderLabel, row, inner - sliderLabel - sliderValue, sliderHeight}
		changed = setRect(&s.track, track) || changed
		row += sliderHeight + rowSpacing
	}
	return changed
}

func setRect(dst *Rect, v Rect) bool {
	if *dst == v {
		return false
	}
	*dst = v
	return true
}

func (r *Root) handleInput() bool {
	in := &r.input
	changed := false

	if hovered := r.button.rect.Contains(in.x, in.y); hovered != r.button.hovered {
		r.button.hovered = hovered
		changed = true
	}

	if in.pressed {
		switch s := r.sliderAt(in.x, in.y); {
		case r.button.rect.Contains(in.x, in.y):
			r.button.active = true
			r.button.clicks++
			r.sink.Emit(engine.Event{Kind: engine.EventButtonClicked, Control: r.button.name, Text: r.button.label})
			changed = true
		case s != nil:
			s.active = true
			if s.setFromPointer(in.x) {
				r.emitValue(s)
			}
			changed = true
		case r.dialog.titleBar().Contains(in.x, in.y):
			r.dialog.dragging = true
		}
	} else if in.down() {
		for _, s := range r.sliders {
			if s.active && s.setFromPointer(in.x) {
				r.emitValue(s)
				changed = true
			}
		}
		if r.dialog.dragging && (in.deltaX != 0 || in.deltaY != 0) {
			r.dialog.offsetX += in.deltaX
			r.dialog.offsetY += in.deltaY
			changed = true
		}
	}

	if in.released {
		if r.button.active {
			r.button.active = false
			changed = true
		}
		for _, s := range r.sliders {
			if s.active {
				s.active = false
				changed = true
			}
		}
		r.dialog.dragging = false
	}
	return changed
}

func (r *Root) sliderAt(x, y float32) *Slider {
	for _, s := range r.sliders {
		if s.track.Contains(x, y) {
			return s
		}
	}
	return nil
}

func (r *Root) emitValue(s *Slider) {
	r.sink.Emit(engine.Event{Kind: engine.EventValueChanged, Control: s.name, Value: s.value})
}
