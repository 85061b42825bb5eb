// Package gpu implements the engine device contracts on OpenGL 4.1 core.
// Every call must happen on the goroutine that owns the GL context.
package gpu

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/revolve/internal/engine"
	"github.com/Faultbox/revolve/internal/engine/shaders"
)

// Device is the OpenGL device of the current context.
type Device struct {
	name     string
	version  string
	features []string
	log      *zap.Logger

	lost       bool
	dispatches uint64

	// immediate-mode buffers shared by every Command
	vao, vbo, ebo uint32
	ubos          [maxUniformSlots]uint32
	emptyVAO      uint32
	blit          *Pipeline
}

// New initializes OpenGL for the current context.
// IMPORTANT: Must be called AFTER the window created its GL context.
func New(log *zap.Logger) (*Device, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}

	d := &Device{
		name:    gl.GoStr(gl.GetString(gl.RENDERER)),
		version: gl.GoStr(gl.GetString(gl.VERSION)),
		log:     log,
	}
	d.features = queryFeatures(d.version)

	gl.GenVertexArrays(1, &d.vao)
	gl.GenBuffers(1, &d.vbo)
	gl.GenBuffers(1, &d.ebo)
	gl.GenBuffers(int32(len(d.ubos)), &d.ubos[0])
	gl.GenVertexArrays(1, &d.emptyVAO)

	blit, err := d.CreatePipeline(PipelineDesc{
		Name:     "blit",
		Vertex:   shaders.FullscreenVertexShader,
		Fragment: shaders.BlitFragmentShader,
	}, nil)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("creating blit pipeline: %w", err)
	}
	d.blit = blit

	log.Info("OpenGL initialized",
		zap.String("version", d.version),
		zap.String("renderer", d.name),
	)
	return d, nil
}

func queryFeatures(version string) []string {
	features := []string{"gl " + strings.SplitN(version, " ", 2)[0]}

	var n int32
	gl.GetIntegerv(gl.NUM_EXTENSIONS, &n)
	for i := int32(0); i < n; i++ {
		ext := gl.GoStr(gl.GetStringi(gl.EXTENSIONS, uint32(i)))
		switch ext {
		case "GL_ARB_compute_shader", "GL_ARB_get_program_binary",
			"GL_ARB_texture_filter_anisotropic", "GL_EXT_texture_filter_anisotropic",
			"GL_KHR_debug":
			features = append(features, ext)
		}
	}
	return features
}

// Name returns the renderer string.
func (d *Device) Name() string {
	return d.name
}

// Features returns the version and the notable extensions.
func (d *Device) Features() []string {
	return d.features
}

// Check drains the GL error queue. Out of memory loses the device; other
// errors are logged and tolerated.
func (d *Device) Check() bool {
	if d.lost {
		return false
	}
	for i := 0; i < 16; i++ {
		code := gl.GetError()
		if code == gl.NO_ERROR {
			break
		}
		if code == gl.OUT_OF_MEMORY {
			d.log.Error("device out of memory")
			d.lost = true
			return false
		}
		d.log.Warn("GL error", zap.String("code", fmt.Sprintf("0x%04x", code)))
	}
	return true
}

// CreateCompute returns a batch that runs submissions immediately, in order.
// OpenGL 4.1 has no compute queue, so stages record fragment passes.
func (d *Device) CreateCompute() engine.Compute {
	return &Compute{d: d}
}

// CreateCommand returns a command recording into target.
func (d *Device) CreateCommand(target engine.Target) engine.Command {
	return &Command{d: d, target: target}
}

// Dispatches returns the number of compute submissions so far.
func (d *Device) Dispatches() uint64 {
	return d.dispatches
}

// DrawFullscreen draws the gl_VertexID triangle with the bound program.
func (d *Device) DrawFullscreen() {
	gl.BindVertexArray(d.emptyVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)
}

// Close releases the shared buffers.
func (d *Device) Close() {
	if d.blit != nil {
		d.blit.Delete()
		d.blit = nil
	}
	if d.vao != 0 {
		gl.DeleteVertexArrays(1, &d.vao)
		d.vao = 0
	}
	if d.emptyVAO != 0 {
		gl.DeleteVertexArrays(1, &d.emptyVAO)
		d.emptyVAO = 0
	}
	if d.vbo != 0 {
		gl.DeleteBuffers(1, &d.vbo)
		d.vbo = 0
	}
	if d.ebo != 0 {
		gl.DeleteBuffers(1, &d.ebo)
		d.ebo = 0
	}
	if d.ubos[0] != 0 {
		gl.DeleteBuffers(int32(len(d.ubos)), &d.ubos[0])
		d.ubos = [maxUniformSlots]uint32{}
	}
}

// Compute is a compute batch.
type Compute struct {
	d      *Device
	labels []string
}

// Submit runs fn and records label.
func (c *Compute) Submit(label string, fn func()) {
	c.labels = append(c.labels, label)
	c.d.dispatches++
	fn()
}

// Labels returns the submitted labels in order.
func (c *Compute) Labels() []string {
	return c.labels
}
