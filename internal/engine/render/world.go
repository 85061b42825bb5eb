// Package render implements the deferred renderer, its per-window frame
// targets and the spatial pass that culls objects for each frame.
package render

import (
	"github.com/Faultbox/revolve/internal/engine/gpu"
	"github.com/Faultbox/revolve/pkg/math"
)

// Camera is a perspective camera.
type Camera struct {
	Position math.Vec3
	Target   math.Vec3
	Up       math.Vec3
	FovY     float32 // radians
	Near     float32
	Far      float32
}

// View returns the world to view transform.
func (c Camera) View() math.Mat4 {
	return math.LookAt(c.Position, c.Target, c.Up)
}

// Projection returns the projection for aspect (width / height).
func (c Camera) Projection(aspect float32) math.Mat4 {
	return math.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// Light is a point light.
type Light struct {
	Position  math.Vec3
	Color     math.Color
	Intensity float32
	Radius    float32
}

// Object is something the geometry pass can draw.
type Object interface {
	// WorldBounds returns the world-space bounding box.
	WorldBounds() math.Box3
	// Resident reports whether the GPU buffers exist.
	Resident() bool
	// Draw issues the draw with p bound.
	Draw(p *gpu.Pipeline)
}

// World is the content a renderer draws.
type World interface {
	Camera() Camera
	Lights() []Light
	Objects() []Object
}
