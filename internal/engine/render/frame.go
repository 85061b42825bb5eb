package render

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/revolve/internal/engine"
	"github.com/Faultbox/revolve/internal/engine/framebuffer"
	"github.com/Faultbox/revolve/internal/engine/gpu"
	"github.com/Faultbox/revolve/pkg/math"
)

// G-buffer attachments.
const (
	gAlbedo = iota
	gNormal
	gPosition
)

// Frame is the set of off-screen targets for one window.
type Frame struct {
	log *zap.Logger

	gbuffer   *framebuffer.Framebuffer
	light     *framebuffer.Framebuffer
	occlusion *framebuffer.Framebuffer
	luminance *framebuffer.Framebuffer
	composite *framebuffer.Framebuffer
	output    *gpu.Texture

	width, height int

	view       math.Mat4
	projection math.Mat4
	frustum    Frustum
	visible    []Object
	lights     []Light // view space
	exposure   float32
}

// NewFrame creates a frame with no targets; Create allocates them.
func NewFrame(log *zap.Logger) *Frame {
	if log == nil {
		log = zap.NewNop()
	}
	return &Frame{log: log, exposure: 1}
}

// Size returns the current target size.
func (f *Frame) Size() (int, int) {
	return f.width, f.height
}

// Create allocates or resizes every target. An empty size fails.
func (f *Frame) Create(_ engine.Device, width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	w, h := int32(width), int32(height)

	if f.gbuffer == nil {
		if err := f.allocate(w, h); err != nil {
			f.log.Error("frame targets", zap.Error(err))
			f.Destroy()
			return false
		}
	} else {
		for _, fb := range f.targets() {
			fb.Resize(w, h)
		}
	}

	f.width, f.height = width, height
	f.output = gpu.WrapTexture(f.composite.ColorTexture(0), width, height)
	return true
}

func (f *Frame) allocate(w, h int32) error {
	var err error
	if f.gbuffer, err = framebuffer.New(w, h, true, framebuffer.RGBA8, framebuffer.RGBA16F, framebuffer.RGBA16F); err != nil {
		return err
	}
	if f.light, err = framebuffer.New(w, h, false, framebuffer.RGBA16F); err != nil {
		return err
	}
	if f.occlusion, err = framebuffer.New(w, h, false, framebuffer.R8); err != nil {
		return err
	}
	lum := framebuffer.R16F
	lum.Mipmapped = true
	if f.luminance, err = framebuffer.New(w, h, false, lum); err != nil {
		return err
	}
	if f.composite, err = framebuffer.New(w, h, false, framebuffer.RGBA8); err != nil {
		return err
	}
	return nil
}

func (f *Frame) targets() []*framebuffer.Framebuffer {
	var out []*framebuffer.Framebuffer
	for _, fb := range []*framebuffer.Framebuffer{f.gbuffer, f.light, f.occlusion, f.luminance, f.composite} {
		if fb != nil {
			out = append(out, fb)
		}
	}
	return out
}

// Flush clears the G-buffer for the geometry pass.
func (f *Frame) Flush(engine.Device) {
	if f.gbuffer == nil {
		return
	}
	f.gbuffer.Bind()
	gl.DepthMask(true)
	f.gbuffer.Clear(0, 0, 0, 0)
	f.gbuffer.Unbind()
}

// CompositeTexture returns the tone mapped output.
func (f *Frame) CompositeTexture() engine.Texture {
	if f.output == nil {
		return nil
	}
	return f.output
}

// Visible returns the objects that passed culling this frame.
func (f *Frame) Visible() []Object {
	return f.visible
}

// Exposure returns the adapted exposure.
func (f *Frame) Exposure() float32 {
	return f.exposure
}

// View returns the view transform of this frame.
func (f *Frame) View() math.Mat4 {
	return f.view
}

// Destroy releases the targets.
func (f *Frame) Destroy() {
	for _, fb := range f.targets() {
		fb.Destroy()
	}
	f.gbuffer, f.light, f.occlusion, f.luminance, f.composite = nil, nil, nil, nil, nil
	f.output = nil
	f.width, f.height = 0, 0
}

func (f *Frame) ready() bool {
	return f.gbuffer != nil && f.width > 0 && f.height > 0
}

func (f *Frame) aspect() float32 {
	if f.height == 0 {
		return 1
	}
	return float32(f.width) / float32(f.height)
}

// frames keeps the render frames of a generic frame list.
func frames(in []engine.Frame) []*Frame {
	out := make([]*Frame, 0, len(in))
	for _, f := range in {
		if rf, ok := f.(*Frame); ok {
			out = append(out, rf)
		}
	}
	return out
}
