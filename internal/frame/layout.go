package frame

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/revolve/internal/engine"
)

// LogicalSize returns the interface coordinate space for a window: a fixed
// logical height and a width following the window aspect ratio, rounded
// down. ok is false for an empty window.
func LogicalSize(appHeight float32, winWidth, winHeight int) (width, height float32, ok bool) {
	if winWidth <= 0 || winHeight <= 0 {
		return 0, 0, false
	}
	height = appHeight
	width = math32.Floor(height * float32(winWidth) / float32(winHeight))
	return width, height, true
}

// MapPointer maps window pixel coordinates into the logical space.
func MapPointer(x, y, winWidth, winHeight int, width, height float32) (float32, float32) {
	return width * float32(x) / float32(winWidth), height * float32(y) / float32(winHeight)
}

// interfaceButtons keeps the buttons the control tree reacts to.
func interfaceButtons(b engine.Buttons) engine.Buttons {
	return b & engine.ButtonLeft
}
