package ui

import "github.com/Faultbox/revolve/internal/engine"

// inputState tracks the pointer between layout passes.
type inputState struct {
	x, y    float32
	buttons engine.Buttons

	deltaX, deltaY float32
	pressed        bool
	released       bool

	prevDown bool
	prevX    float32
	prevY    float32

	// fresh is set by SetMouse and cleared once a pass consumed it.
	fresh bool
}

func (i *inputState) set(x, y float32, buttons engine.Buttons) {
	i.x, i.y, i.buttons = x, y, buttons
	i.fresh = true
}

func (i *inputState) down() bool {
	return i.buttons&engine.ButtonLeft != 0
}

// update derives deltas and press/release edges from the previous sample.
func (i *inputState) update() {
	down := i.down()
	i.deltaX = i.x - i.prevX
	i.deltaY = i.y - i.prevY
	i.pressed = down && !i.prevDown
	i.released = !down && i.prevDown

	i.prevDown = down
	i.prevX = i.x
	i.prevY = i.y
	i.fresh = false
}
