package scene

import (
	"sort"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/revolve/internal/engine"
	"github.com/Faultbox/revolve/internal/engine/render"
)

type createState int

const (
	stateIdle createState = iota
	statePreparing
	stateStreaming
	stateReady
	stateFailed
)

// Scene holds the camera, lights and objects of the world.
type Scene struct {
	mgr *Manager
	log *zap.Logger

	camera  render.Camera
	lights  []render.Light
	objects []*Object
	order   []render.Object
	time    float64

	state      createState
	prepared   []*meshUpload
	prepareErr error
}

// New creates an empty scene streaming through mgr.
func New(mgr *Manager, log *zap.Logger) *Scene {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scene{mgr: mgr, log: log}
}

// SetCamera replaces the camera.
func (s *Scene) SetCamera(c render.Camera) {
	s.camera = c
}

// AddLight adds a point light.
func (s *Scene) AddLight(l render.Light) {
	s.lights = append(s.lights, l)
}

// AddObject adds o; its buffers are created by the next Create cycle.
func (s *Scene) AddObject(o *Object) {
	s.objects = append(s.objects, o)
	if s.state == stateReady {
		s.state = stateIdle
	}
}

// Camera returns the camera.
func (s *Scene) Camera() render.Camera {
	return s.camera
}

// Lights returns the lights.
func (s *Scene) Lights() []render.Light {
	return s.lights
}

// Objects returns the objects grouped by material.
func (s *Scene) Objects() []render.Object {
	return s.order
}

// Create polls GPU readiness. The first call prepares the geometry of
// non-resident objects on async; the poll after that finished uploads the
// buffers on the calling goroutine, and the scene is ready when every
// object is resident.
func (s *Scene) Create(_ engine.Device, async *engine.Async) engine.Readiness {
	switch s.state {
	case stateReady:
		return engine.Ready
	case stateFailed:
		return engine.Failed

	case stateIdle:
		var pending []*Object
		for _, o := range s.objects {
			if !o.Resident() {
				pending = append(pending, o)
			}
		}
		if len(pending) == 0 {
			s.state = stateReady
			return engine.Ready
		}
		s.state = statePreparing
		s.prepared, s.prepareErr = nil, nil
		prepare := func() {
			var uploads []*meshUpload
			var err error
			for _, o := range pending {
				u, perr := prepareMesh(o)
				if perr != nil {
					err = multierr.Append(err, perr)
					continue
				}
				uploads = append(uploads, u)
			}
			s.prepared, s.prepareErr = uploads, err
		}
		if async.Valid() {
			async.Go(prepare)
		} else {
			prepare()
		}
		return engine.Pending

	case statePreparing:
		if async.Valid() && async.Busy() {
			return engine.Pending
		}
		if s.prepareErr != nil {
			s.log.Error("scene creation failed", zap.Error(s.prepareErr))
			s.state = stateFailed
			return engine.Failed
		}
		for _, u := range s.prepared {
			s.mgr.uploadMesh(u)
		}
		s.prepared = nil
		s.state = stateStreaming
		fallthrough

	case stateStreaming:
		for _, o := range s.objects {
			if !o.Resident() {
				return engine.Pending
			}
		}
		s.state = stateReady
		s.log.Info("scene ready", zap.Int("objects", len(s.objects)))
		return engine.Ready
	}
	return engine.Failed
}

// SetTime sets the scene time in seconds.
func (s *Scene) SetTime(t float64) {
	s.time = t
}

// Time returns the scene time in seconds.
func (s *Scene) Time() float64 {
	return s.time
}

// Update passes the scene time to every material.
func (s *Scene) Update(engine.Device) {
	for _, o := range s.objects {
		if o.material != nil {
			o.material.SetUniform("uTime", float32(s.time))
		}
	}
}

// Dispatch orders resident objects by material for the geometry pass.
func (s *Scene) Dispatch(engine.Device, engine.Compute) {
	s.order = s.order[:0]
	for _, o := range s.objects {
		if o.Resident() {
			s.order = append(s.order, o)
		}
	}
	sort.SliceStable(s.order, func(i, j int) bool {
		return materialName(s.order[i]) < materialName(s.order[j])
	})
}

func materialName(o render.Object) string {
	if obj, ok := o.(*Object); ok && obj.material != nil {
		return obj.material.name
	}
	return ""
}

// Clear releases every GPU resource and empties the scene.
func (s *Scene) Clear() {
	released := make(map[*Material]bool)
	for _, o := range s.objects {
		o.release()
		if o.material != nil && !released[o.material] {
			o.material.release()
			released[o.material] = true
		}
	}
	s.objects = nil
	s.order = nil
	s.lights = nil
	s.state = stateIdle
}
