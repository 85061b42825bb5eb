// Package engine defines the capability contracts the demo drives: window,
// device, scene and render managers, and the interface canvas. Every
// operation reports its outcome explicitly.
package engine

import (
	"errors"
	"image"

	"github.com/Faultbox/revolve/pkg/math"
)

// ErrSetup marks a failed one-time creation step.
var ErrSetup = errors.New("setup failed")

// Buttons is a mouse button mask.
type Buttons uint32

const (
	ButtonLeft Buttons = 1 << iota
	ButtonRight
	ButtonMiddle
)

// Window is a presentable surface with input.
type Window interface {
	// PollEvents pumps the platform queue and dispatches events.
	PollEvents()
	// Render reports whether the window wants another frame.
	Render() bool
	Size() (width, height int)
	Mouse() (x, y int, buttons Buttons)
	Present() bool
	Grab() (*image.RGBA, bool)
	Stop()
	Finish()
}

// Device submits work to the GPU.
type Device interface {
	Name() string
	Features() []string
	// Check reports whether the device is still usable.
	Check() bool
	CreateCompute() Compute
	CreateCommand(target Target) Command
}

// Compute is a compute submission batch.
type Compute interface {
	// Submit records a labelled dispatch.
	Submit(label string, fn func())
}

// Target is the window render target.
type Target interface {
	Begin() bool
	End()
}

// Pipeline is a compiled graphics pipeline.
type Pipeline interface {
	Valid() bool
}

// Texture is a GPU texture handle.
type Texture interface {
	Size() (width, height int)
}

// Command records draw calls into a target.
type Command interface {
	SetPipeline(p Pipeline)
	SetUniform(slot int, data any)
	SetVertices(slot int, vertices []math.Vec2)
	SetIndices(indices []uint16)
	DrawElements(count int)
	// DrawTexture blends tex over the whole target.
	DrawTexture(tex Texture, opts TextureDraw)
}

// TextureDraw controls how DrawTexture samples its texture.
type TextureDraw struct {
	ScaleX, ScaleY float32
	FlipH, FlipV   bool
	Linear         bool
}

// Readiness is the outcome of a non-blocking readiness poll.
type Readiness int

const (
	Ready Readiness = iota
	Pending
	Failed
)

func (r Readiness) String() string {
	switch r {
	case Ready:
		return "ready"
	case Pending:
		return "pending"
	}
	return "failed"
}

// SceneManager owns streamed scene resources. Process runs on the
// background goroutine while Update, Dispatch and Flush run on the main
// one; implementations must tolerate that split.
type SceneManager interface {
	Update(d Device, async *Async) bool
	// Process performs one streaming step and reports whether it did work.
	Process(async *Async) bool
	Dispatch(d Device, c Compute)
	Flush(d Device)
	Terminate()
	Terminated() bool
}

// Scene holds the objects, lights and cameras of one world.
type Scene interface {
	// Create polls whether the scene GPU resources exist, starting their
	// creation on async when needed.
	Create(d Device, async *Async) Readiness
	SetTime(t float64)
	Update(d Device)
	Dispatch(d Device, c Compute)
	Clear()
}

// Graph propagates node transforms into the scene.
type Graph interface {
	UpdateSpatial()
	UpdateScene()
}

// Node is a placed graph node.
type Node interface {
	SetGlobalTransform(m math.Mat4)
	UpdateScene()
}

// Material is a named set of uniforms and textures.
type Material interface {
	SetUniform(name string, v float32)
	SetTexture(name, key string, img *image.RGBA)
	UpdateScene()
}

// RenderManager owns shared render resources.
type RenderManager interface {
	Update()
	Flush(d Device)
}

// Frame is an off-screen render target sized to the window.
type Frame interface {
	Size() (width, height int)
	Create(d Device, width, height int) bool
	Flush(d Device)
	CompositeTexture() Texture
}

// Renderer executes the deferred pipeline for frames.
type Renderer interface {
	DispatchFrames(c Compute, frames []Frame)
	DrawDeferred(d Device, f Frame)
	DispatchLight(d Device, c Compute, f Frame)
	DispatchOccluder(d Device, c Compute, f Frame)
	DispatchLuminance(d Device, c Compute, f Frame)
	DispatchComposite(d Device, c Compute, f Frame)
	TargetFlipped() bool
}

// Spatial maintains acceleration structures for frames.
type Spatial interface {
	DispatchFrames(c Compute, frames []Frame)
	DispatchObjects(c Compute, frames []Frame)
}

// Root is the interface control tree.
type Root interface {
	SetViewport(width, height float32)
	SetMouse(x, y float32, buttons Buttons)
	// Update runs one layout pass and reports whether anything changed.
	Update(scale float32) bool
}

// Backdrop is a full-screen control showing a texture.
type Backdrop interface {
	SetTexture(tex Texture, linear bool)
	SetTextureScale(sx, sy float32)
	SetTextureFlip(h, v bool)
}

// Canvas turns the control tree into draw calls.
type Canvas interface {
	Scale(t Target) float32
	Create(d Device, t Target) bool
	Draw(cmd Command, t Target)
}
