package render

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/revolve/internal/engine"
	"github.com/Faultbox/revolve/internal/engine/cache"
	"github.com/Faultbox/revolve/internal/engine/gpu"
	"github.com/Faultbox/revolve/internal/engine/shaders"
	"github.com/Faultbox/revolve/pkg/math"
)

// Exposure adaptation parameters.
const (
	exposureKey  = 0.18
	minExposure  = 0.05
	maxExposure  = 8
	adaptionRate = 0.05
)

// Config tunes the renderer.
type Config struct {
	Ambient float32
	// OcclusionRadius is the view-space depth range counted as occluding.
	OcclusionRadius float32
	Log             *zap.Logger
}

// Renderer runs the deferred pipeline.
type Renderer struct {
	world World
	cfg   Config
	log   *zap.Logger

	geometry  *gpu.Pipeline
	light     *gpu.Pipeline
	occlusion *gpu.Pipeline
	luminance *gpu.Pipeline
	composite *gpu.Pipeline
}

// NewRenderer compiles the deferred pipelines. Program binaries are read
// from and written to store when it is not nil.
func NewRenderer(d *gpu.Device, world World, store *cache.Store, cfg Config) (*Renderer, error) {
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.Ambient == 0 {
		cfg.Ambient = 0.08
	}
	if cfg.OcclusionRadius == 0 {
		cfg.OcclusionRadius = 1
	}
	r := &Renderer{world: world, cfg: cfg, log: cfg.Log}

	descs := []struct {
		dst  **gpu.Pipeline
		desc gpu.PipelineDesc
	}{
		{&r.geometry, gpu.PipelineDesc{Name: "gbuffer", Vertex: shaders.GBufferVertexShader, Fragment: shaders.GBufferFragmentShader}},
		{&r.light, gpu.PipelineDesc{Name: "light", Vertex: shaders.FullscreenVertexShader, Fragment: shaders.LightFragmentShader}},
		{&r.occlusion, gpu.PipelineDesc{Name: "occlusion", Vertex: shaders.FullscreenVertexShader, Fragment: shaders.OcclusionFragmentShader}},
		{&r.luminance, gpu.PipelineDesc{Name: "luminance", Vertex: shaders.FullscreenVertexShader, Fragment: shaders.LuminanceFragmentShader}},
		{&r.composite, gpu.PipelineDesc{Name: "composite", Vertex: shaders.FullscreenVertexShader, Fragment: shaders.CompositeFragmentShader}},
	}
	for _, p := range descs {
		pipeline, err := d.CreatePipeline(p.desc, store)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("creating renderer: %w", err)
		}
		*p.dst = pipeline
	}
	return r, nil
}

// DispatchFrames moves the lights into each frame's view space.
func (r *Renderer) DispatchFrames(_ engine.Compute, in []engine.Frame) {
	lights := r.world.Lights()
	for _, f := range frames(in) {
		f.lights = f.lights[:0]
		for _, l := range lights {
			vl := l
			vl.Position = f.view.TransformVec3(l.Position)
			f.lights = append(f.lights, vl)
		}
	}
}

// DrawDeferred draws the visible objects into the G-buffer.
func (r *Renderer) DrawDeferred(_ engine.Device, ef engine.Frame) {
	f, ok := ef.(*Frame)
	if !ok || !f.ready() {
		return
	}
	f.gbuffer.Bind()
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)

	r.geometry.Use()
	r.geometry.SetMat4("uView", f.view)
	r.geometry.SetMat4("uProjection", f.projection)
	r.geometry.SetInt("uDiffuse", 0)
	for _, obj := range f.visible {
		obj.Draw(r.geometry)
	}

	gl.Disable(gl.CULL_FACE)
	gl.Disable(gl.DEPTH_TEST)
	f.gbuffer.Unbind()
}

// DispatchLight accumulates every light additively into the light target.
func (r *Renderer) DispatchLight(d engine.Device, _ engine.Compute, ef engine.Frame) {
	f, ok := ef.(*Frame)
	if !ok || !f.ready() {
		return
	}
	f.light.Bind()
	f.light.Clear(0, 0, 0, 0)

	r.light.Use()
	r.bindGBuffer(f)
	r.light.SetInt("uAlbedo", 0)
	r.light.SetInt("uNormal", 1)
	r.light.SetInt("uPosition", 2)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.ONE, gl.ONE)
	for i, l := range f.lights {
		ambient := float32(0)
		if i == 0 {
			ambient = r.cfg.Ambient
		}
		r.light.SetVec3("uLightPosition", l.Position.X, l.Position.Y, l.Position.Z)
		r.light.SetVec3("uLightColor", l.Color.R, l.Color.G, l.Color.B)
		r.light.SetFloat("uLightIntensity", l.Intensity)
		r.light.SetFloat("uLightRadius", l.Radius)
		r.light.SetFloat("uAmbient", ambient)
		fullscreen(d)
	}
	gl.Disable(gl.BLEND)
	f.light.Unbind()
}

// DispatchOccluder estimates ambient occlusion from the position target.
func (r *Renderer) DispatchOccluder(d engine.Device, _ engine.Compute, ef engine.Frame) {
	f, ok := ef.(*Frame)
	if !ok || !f.ready() {
		return
	}
	f.occlusion.Bind()
	r.occlusion.Use()
	bindTexture(0, f.gbuffer.ColorTexture(gPosition))
	r.occlusion.SetInt("uPosition", 0)
	r.occlusion.SetVec2("uTexelSize", 1/float32(f.width), 1/float32(f.height))
	r.occlusion.SetFloat("uRadius", r.cfg.OcclusionRadius)
	fullscreen(d)
	f.occlusion.Unbind()
}

// DispatchLuminance measures average log luminance and adapts exposure.
func (r *Renderer) DispatchLuminance(d engine.Device, _ engine.Compute, ef engine.Frame) {
	f, ok := ef.(*Frame)
	if !ok || !f.ready() {
		return
	}
	f.luminance.Bind()
	r.luminance.Use()
	bindTexture(0, f.light.ColorTexture(0))
	r.luminance.SetInt("uLight", 0)
	fullscreen(d)
	f.luminance.Unbind()

	f.luminance.GenerateMipmap(0)
	var avg float32
	gl.BindTexture(gl.TEXTURE_2D, f.luminance.ColorTexture(0))
	gl.GetTexImage(gl.TEXTURE_2D, int32(f.luminance.MipLevels()-1), gl.RED, gl.FLOAT, gl.Ptr(&avg))
	gl.BindTexture(gl.TEXTURE_2D, 0)

	f.exposure = adaptExposure(f.exposure, avg, adaptionRate)
}

// DispatchComposite tone maps light and occlusion into the output target.
func (r *Renderer) DispatchComposite(d engine.Device, _ engine.Compute, ef engine.Frame) {
	f, ok := ef.(*Frame)
	if !ok || !f.ready() {
		return
	}
	f.composite.Bind()
	f.composite.Clear(0, 0, 0, 0)
	r.composite.Use()
	bindTexture(0, f.light.ColorTexture(0))
	bindTexture(1, f.occlusion.ColorTexture(0))
	r.composite.SetInt("uLight", 0)
	r.composite.SetInt("uOcclusion", 1)
	r.composite.SetFloat("uExposure", f.exposure)
	fullscreen(d)
	f.composite.Unbind()
}

// TargetFlipped reports that render targets have their origin at the
// bottom left.
func (r *Renderer) TargetFlipped() bool {
	return true
}

// Close releases the pipelines.
func (r *Renderer) Close() {
	for _, p := range []*gpu.Pipeline{r.geometry, r.light, r.occlusion, r.luminance, r.composite} {
		if p != nil {
			p.Delete()
		}
	}
}

func (r *Renderer) bindGBuffer(f *Frame) {
	bindTexture(0, f.gbuffer.ColorTexture(gAlbedo))
	bindTexture(1, f.gbuffer.ColorTexture(gNormal))
	bindTexture(2, f.gbuffer.ColorTexture(gPosition))
}

func bindTexture(unit uint32, id uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, id)
}

type fullscreenDrawer interface {
	DrawFullscreen()
}

func fullscreen(d engine.Device) {
	if fd, ok := d.(fullscreenDrawer); ok {
		fd.DrawFullscreen()
	}
}

// adaptExposure moves exposure toward the value mapping the average log
// luminance to middle grey.
func adaptExposure(current, avgLogLuminance, rate float32) float32 {
	if math32.IsNaN(avgLogLuminance) || math32.IsInf(avgLogLuminance, 0) {
		return current
	}
	target := exposureKey / math32.Exp(avgLogLuminance)
	target = math.Clamp(target, minExposure, maxExposure)
	return current + (target-current)*rate
}
