// Package window handles the SDL2 window, its OpenGL context and input.
package window

import (
	"fmt"
	"image"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/revolve/internal/capture"
	"github.com/Faultbox/revolve/internal/engine"
)

func init() {
	// OpenGL calls must be made from the main thread
	runtime.LockOSThread()
}

// Config holds window configuration.
type Config struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
}

// Window wraps the SDL2 window and OpenGL context.
type Window struct {
	config    Config
	log       *zap.Logger
	sdlWindow *sdl.Window
	glContext sdl.GLContext

	sink    engine.EventSink
	running bool
	closed  bool
}

// New creates a window with an OpenGL 4.1 core context.
func New(cfg Config, log *zap.Logger) (*Window, error) {
	if log == nil {
		log = zap.NewNop()
	}
	w := &Window{
		config:  cfg,
		log:     log,
		sink:    engine.EventSinkFunc(func(engine.Event) {}),
		running: true,
	}

	log.Info("initializing SDL2")
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	// Attributes must be set before the window exists. 4.1 core is the
	// newest profile macOS offers.
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 4)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 1)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)
	sdl.GLSetAttribute(sdl.GL_DEPTH_SIZE, 24)

	flags := uint32(sdl.WINDOW_OPENGL | sdl.WINDOW_RESIZABLE | sdl.WINDOW_ALLOW_HIGHDPI)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN
	}

	var err error
	w.sdlWindow, err = sdl.CreateWindow(
		cfg.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width),
		int32(cfg.Height),
		flags,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	w.glContext, err = w.sdlWindow.GLCreateContext()
	if err != nil {
		w.sdlWindow.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}

	interval := 0
	if cfg.VSync {
		interval = 1
	}
	if err := sdl.GLSetSwapInterval(interval); err != nil {
		log.Warn("failed to set swap interval", zap.Int("interval", interval), zap.Error(err))
	}

	log.Info("window created",
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Bool("fullscreen", cfg.Fullscreen),
		zap.Bool("vsync", cfg.VSync),
	)
	return w, nil
}

// SetSink sets the receiver of window events.
func (w *Window) SetSink(sink engine.EventSink) {
	w.sink = sink
}

// PollEvents drains the SDL queue into the sink.
func (w *Window) PollEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if ev, ok := translate(event); ok {
			w.sink.Emit(ev)
		}
	}
}

// Render reports whether the window wants another frame.
func (w *Window) Render() bool {
	return w.running && !w.closed
}

// Size returns the drawable size in pixels.
func (w *Window) Size() (int, int) {
	if w.closed {
		return 0, 0
	}
	width, height := w.sdlWindow.GLGetDrawableSize()
	return int(width), int(height)
}

// Mouse returns the pointer in drawable pixels and the button mask.
func (w *Window) Mouse() (int, int, engine.Buttons) {
	x, y, state := sdl.GetMouseState()
	ww, wh := w.sdlWindow.GetSize()
	dw, dh := w.Size()
	return scalePointer(int(x), int(ww), dw), scalePointer(int(y), int(wh), dh), mapButtons(state)
}

// Present swaps the buffers.
func (w *Window) Present() bool {
	if w.closed {
		return false
	}
	w.sdlWindow.GLSwap()
	return true
}

// Grab reads the back buffer, top row first.
func (w *Window) Grab() (*image.RGBA, bool) {
	width, height := w.Size()
	if width <= 0 || height <= 0 {
		return nil, false
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	gl.ReadBuffer(gl.BACK)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	capture.FlipRows(img)
	return img, true
}

// Stop asks the loop to end after the current frame.
func (w *Window) Stop() {
	if w.running {
		w.log.Info("window stop requested")
	}
	w.running = false
}

// Finished reports whether Finish was called.
func (w *Window) Finished() bool {
	return w.closed
}

// Finish destroys the context and window and shuts SDL down. Later calls
// do nothing.
func (w *Window) Finish() {
	if w.closed {
		return
	}
	w.closed = true
	w.running = false
	w.log.Info("closing window")

	if w.glContext != nil {
		sdl.GLDeleteContext(w.glContext)
	}
	if w.sdlWindow != nil {
		w.sdlWindow.Destroy()
	}
	sdl.Quit()
}
