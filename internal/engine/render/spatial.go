package render

import (
	"github.com/Faultbox/revolve/internal/engine"
)

// Spatial computes the per-frame camera state and the visible object set.
type Spatial struct {
	world  World
	culled int
}

// NewSpatial creates a spatial pass over world.
func NewSpatial(world World) *Spatial {
	return &Spatial{world: world}
}

// DispatchFrames updates the view, projection and frustum of each frame.
func (s *Spatial) DispatchFrames(_ engine.Compute, in []engine.Frame) {
	cam := s.world.Camera()
	for _, f := range frames(in) {
		f.view = cam.View()
		f.projection = cam.Projection(f.aspect())
		f.frustum = FrustumFromMatrix(f.projection.Mul(f.view))
	}
}

// DispatchObjects culls resident objects against each frame's frustum.
func (s *Spatial) DispatchObjects(_ engine.Compute, in []engine.Frame) {
	objects := s.world.Objects()
	s.culled = 0
	for _, f := range frames(in) {
		f.visible = f.visible[:0]
		for _, obj := range objects {
			if !obj.Resident() {
				continue
			}
			if !f.frustum.IntersectsBox(obj.WorldBounds()) {
				s.culled++
				continue
			}
			f.visible = append(f.visible, obj)
		}
	}
}

// Culled returns the number of objects rejected in the last dispatch.
func (s *Spatial) Culled() int {
	return s.culled
}
