package engine

import "fmt"

// EventKind selects the handlers an event is dispatched to.
type EventKind int

const (
	EventClose EventKind = iota
	EventKeyDown
	EventButtonClicked
	EventValueChanged
	EventControlUpdated
)

func (k EventKind) String() string {
	switch k {
	case EventClose:
		return "close"
	case EventKeyDown:
		return "key_down"
	case EventButtonClicked:
		return "button_clicked"
	case EventValueChanged:
		return "value_changed"
	case EventControlUpdated:
		return "control_updated"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Key is a platform independent key.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyF12
)

// Rect is a control rectangle in logical units.
type Rect struct {
	X, Y, Width, Height float32
}

// Event is a window or interface notification.
type Event struct {
	Kind EventKind

	// key events
	Key  Key
	Code uint32

	// interface events
	Control string
	Text    string
	Value   float64
	Rect    Rect
}

// EventSink receives events on the goroutine that detected them.
type EventSink interface {
	Emit(ev Event)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(ev Event)

// Emit calls f(ev).
func (f EventSinkFunc) Emit(ev Event) {
	f(ev)
}
