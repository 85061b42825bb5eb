package frame

import (
	"go.uber.org/zap"

	"github.com/Faultbox/revolve/internal/capture"
	"github.com/Faultbox/revolve/internal/engine"
	"github.com/Faultbox/revolve/pkg/math"
)

// Parameters is the uniform block of the background pass.
type Parameters struct {
	Transform math.Mat4
	Color     math.Color
	Time      float32
}

// Context is the state event handlers may read and change.
type Context struct {
	Window  engine.Window
	Params  *Parameters
	Capture *capture.Capture
	Log     *zap.Logger
}

// Handler reacts to one event.
type Handler func(ctx *Context, ev engine.Event)

// Events is a handler table keyed by event kind. Handlers run
// synchronously, in registration order, on the goroutine that emits.
type Events struct {
	ctx      *Context
	handlers map[engine.EventKind][]Handler
}

// NewEvents creates an empty table dispatching with ctx.
func NewEvents(ctx *Context) *Events {
	if ctx.Log == nil {
		ctx.Log = zap.NewNop()
	}
	return &Events{ctx: ctx, handlers: make(map[engine.EventKind][]Handler)}
}

// On registers h for kind.
func (e *Events) On(kind engine.EventKind, h Handler) {
	e.handlers[kind] = append(e.handlers[kind], h)
}

// Emit dispatches ev to every handler registered for its kind.
func (e *Events) Emit(ev engine.Event) {
	for _, h := range e.handlers[ev.Kind] {
		h(e.ctx, ev)
	}
}

// Handlers returns the number of handlers registered for kind.
func (e *Events) Handlers(kind engine.EventKind) int {
	return len(e.handlers[kind])
}

// RegisterDefaults installs the demo handlers: close and Esc stop the
// window, F12 saves a screenshot, sliders named R, G and B drive the
// background color, and interface notifications are logged.
func RegisterDefaults(e *Events) {
	e.On(engine.EventClose, func(ctx *Context, _ engine.Event) {
		ctx.Window.Stop()
	})
	e.On(engine.EventKeyDown, func(ctx *Context, ev engine.Event) {
		switch ev.Key {
		case engine.KeyEscape:
			ctx.Window.Stop()
		case engine.KeyF12:
			screenshot(ctx)
		}
	})
	e.On(engine.EventButtonClicked, func(ctx *Context, ev engine.Event) {
		ctx.Log.Info("clicked", zap.String("control", ev.Control), zap.String("text", ev.Text))
	})
	e.On(engine.EventValueChanged, func(ctx *Context, ev engine.Event) {
		v := float32(ev.Value)
		switch ev.Control {
		case "R":
			ctx.Params.Color.R = v
		case "G":
			ctx.Params.Color.G = v
		case "B":
			ctx.Params.Color.B = v
		}
	})
	e.On(engine.EventControlUpdated, func(ctx *Context, ev engine.Event) {
		ctx.Log.Info("dialog updated",
			zap.String("control", ev.Control),
			zap.Float32("x", ev.Rect.X),
			zap.Float32("y", ev.Rect.Y),
			zap.Float32("width", ev.Rect.Width),
			zap.Float32("height", ev.Rect.Height),
		)
	})
}

func screenshot(ctx *Context) {
	if ctx.Capture == nil {
		return
	}
	img, ok := ctx.Window.Grab()
	if !ok {
		ctx.Log.Warn("screenshot grab failed")
		return
	}
	path, err := ctx.Capture.Save(img)
	if err != nil {
		ctx.Log.Warn("screenshot save failed", zap.Error(err))
		return
	}
	ctx.Log.Info("screenshot", zap.String("path", path))
}
