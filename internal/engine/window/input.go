package window

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/revolve/internal/engine"
)

// translate converts an SDL event into an engine event. Events the demo
// does not react to report false.
func translate(event sdl.Event) (engine.Event, bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return engine.Event{Kind: engine.EventClose}, true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_CLOSE {
			return engine.Event{Kind: engine.EventClose}, true
		}

	case *sdl.KeyboardEvent:
		if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
			return engine.Event{
				Kind: engine.EventKeyDown,
				Key:  mapKey(e.Keysym.Sym),
				Code: uint32(e.Keysym.Sym),
			}, true
		}
	}
	return engine.Event{}, false
}

func mapKey(sym sdl.Keycode) engine.Key {
	switch sym {
	case sdl.K_ESCAPE:
		return engine.KeyEscape
	case sdl.K_F12:
		return engine.KeyF12
	}
	return engine.KeyUnknown
}

func buttonMask(button uint32) uint32 {
	return 1 << (button - 1)
}

func mapButtons(state uint32) engine.Buttons {
	var b engine.Buttons
	if state&buttonMask(sdl.BUTTON_LEFT) != 0 {
		b |= engine.ButtonLeft
	}
	if state&buttonMask(sdl.BUTTON_RIGHT) != 0 {
		b |= engine.ButtonRight
	}
	if state&buttonMask(sdl.BUTTON_MIDDLE) != 0 {
		b |= engine.ButtonMiddle
	}
	return b
}

// scalePointer converts a window coordinate into drawable pixels.
func scalePointer(v, window, drawable int) int {
	if window <= 0 || window == drawable {
		return v
	}
	return v * drawable / window
}
