package frame

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/revolve/internal/engine"
	"github.com/Faultbox/revolve/internal/texture"
	"github.com/Faultbox/revolve/pkg/math"
)

const testQuantum = 10 * time.Millisecond

func TestStepOrder(t *testing.T) {
	h := newHarness(Options{Quantum: testQuantum})

	require.Equal(t, Continue, h.o.Step())

	want := []string{
		"window.poll", "window.render", "render_manager.update",
		"node.transform", "node.scene", "graph.spatial", "graph.scene",
		"scene.create", "scene.update", "scene_manager.update",
		"compute.streaming", "scene_manager.dispatch",
		"compute.objects", "scene.dispatch",
		"compute.spatial", "spatial.frames", "spatial.objects", "renderer.frames",
		"scene_manager.flush", "render_manager.flush", "frame.flush",
		"renderer.deferred",
		"compute.light", "renderer.light",
		"compute.occlusion", "renderer.occluder",
		"compute.luminance", "renderer.luminance",
		"compute.composite", "renderer.composite",
		"canvas.create",
		"target.begin", "cmd.pipeline", "cmd.draw", "canvas.draw", "target.end",
		"window.present", "device.check",
	}
	assert.Equal(t, want, h.rec.calls)

	wantStates := []State{
		StateUpdateLogic, StateMaybeResize, StateMaybeRefreshTexture,
		StateUpdateGraph, StateUpdateScene, StateDispatchPre, StateFlush,
		StateDrawDeferred, StateDispatchPost, StateUpdateInterface,
		StateRecordAndSubmit, StatePresent,
	}
	assert.Equal(t, wantStates, h.states)
	assert.Equal(t, uint64(1), h.o.Frames())
}

func TestTextureCadence(t *testing.T) {
	h := newHarness(Options{Quantum: testQuantum})

	for i := 1; i <= 30; i++ {
		h.clock.now = time.Duration(i) * testQuantum
		require.Equal(t, Continue, h.o.Step())
		require.Equal(t, uint64(i), h.o.Refreshes(), "step %d", i)
	}

	require.Len(t, h.material.images, 30)
	for i, img := range h.material.images {
		assert.Equal(t, texture.Synthesize(8, uint32(i)).Pix, img.Pix, "frame %d", i)
	}
	assert.Equal(t, 31*testQuantum, h.o.Textures().Deadline())
	assert.Equal(t, uint32(30), h.o.Textures().Frame())
}

func TestTextureNotDueBeforeQuantum(t *testing.T) {
	h := newHarness(Options{Quantum: testQuantum})

	h.clock.now = testQuantum - time.Nanosecond
	h.o.Step()

	assert.Zero(t, h.o.Refreshes())
	assert.Zero(t, h.rec.count("material.texture"))
}

func TestTextureCatchesUpOnePerFrame(t *testing.T) {
	h := newHarness(Options{Quantum: testQuantum})

	h.clock.now = 5 * testQuantum
	h.o.Step()
	assert.Equal(t, uint64(1), h.o.Refreshes())
	assert.Equal(t, 2*testQuantum, h.o.Textures().Deadline())

	for i := 2; i <= 5; i++ {
		h.o.Step()
		assert.Equal(t, uint64(i), h.o.Refreshes())
	}

	h.o.Step()
	assert.Equal(t, uint64(5), h.o.Refreshes())
}

func TestResize(t *testing.T) {
	h := newHarness(Options{})
	h.window.width, h.window.height = 1024, 768

	require.Equal(t, Continue, h.o.Step())

	assert.Equal(t, 1, h.rec.count("frame.create"))
	w, hh := h.frame.Size()
	assert.Equal(t, 1024, w)
	assert.Equal(t, 768, hh)

	h.rec.reset()
	h.o.Step()
	assert.Zero(t, h.rec.count("frame.create"))
}

func TestResizeFailureSkipsFrame(t *testing.T) {
	h := newHarness(Options{})
	h.window.width = 1024
	h.frame.create = false

	assert.Equal(t, Skip, h.o.Step())
	assert.Equal(t, StateMaybeResize, h.o.State())
	assert.Zero(t, h.rec.count("scene.create"))
	assert.Zero(t, h.o.Frames())
}

func TestWindowRenderFalseStops(t *testing.T) {
	h := newHarness(Options{})
	h.window.render = false

	assert.Equal(t, Stop, h.o.Step())
	assert.Equal(t, []string{"window.poll", "window.render"}, h.rec.calls)
}

func TestSceneReadiness(t *testing.T) {
	t.Run("pending skips", func(t *testing.T) {
		h := newHarness(Options{})
		h.scene.readiness = engine.Pending

		assert.Equal(t, Skip, h.o.Step())
		assert.Zero(t, h.rec.count("scene.update"))
		assert.Zero(t, h.rec.count("window.present"))
	})

	t.Run("failed stops", func(t *testing.T) {
		h := newHarness(Options{})
		h.scene.readiness = engine.Failed

		assert.Equal(t, Stop, h.o.Step())
		assert.Zero(t, h.rec.count("scene.update"))
	})
}

func TestSceneManagerFailureStops(t *testing.T) {
	h := newHarness(Options{})
	h.manager.update = false

	assert.Equal(t, Stop, h.o.Step())
	assert.Zero(t, h.rec.count("compute.streaming"))
}

func TestPresentFailures(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		h := newHarness(Options{})
		h.window.present = false
		assert.Equal(t, Stop, h.o.Step())
		assert.Zero(t, h.rec.count("device.check"))
	})

	t.Run("device", func(t *testing.T) {
		h := newHarness(Options{})
		h.device.check = false
		assert.Equal(t, Stop, h.o.Step())
		assert.Zero(t, h.o.Frames())
	})
}

func TestInterfaceMapping(t *testing.T) {
	h := newHarness(Options{AppHeight: 480})
	h.window.mouseX, h.window.mouseY = 400, 300
	h.window.buttons = engine.ButtonLeft | engine.ButtonRight

	require.Equal(t, Continue, h.o.Step())

	assert.Equal(t, float32(640), h.root.width)
	assert.Equal(t, float32(480), h.root.height)
	assert.Equal(t, float32(320), h.root.mouseX)
	assert.Equal(t, float32(240), h.root.mouseY)
	assert.Equal(t, engine.ButtonLeft, h.root.buttons)
	assert.InDelta(t, 0.8, h.backdrop.sx, 1e-6)
	assert.InDelta(t, 0.8, h.backdrop.sy, 1e-6)
	assert.True(t, h.backdrop.flipped)
}

func TestLayoutFixedPoint(t *testing.T) {
	h := newHarness(Options{})
	h.root.changes = 2

	require.Equal(t, Continue, h.o.Step())
	assert.Equal(t, 3, h.root.updates)
}

func TestLayoutPassCap(t *testing.T) {
	h := newHarness(Options{LayoutPasses: 4})
	h.root.changes = -1

	assert.Equal(t, Continue, h.o.Step())
	assert.Equal(t, 4, h.root.updates)
}

func TestEmptyWindowSkipsInterface(t *testing.T) {
	h := newHarness(Options{})
	h.window.width, h.window.height = 0, 0

	assert.Equal(t, Skip, h.o.Step())
	assert.Equal(t, StateUpdateInterface, h.o.State())
	assert.Zero(t, h.rec.count("target.begin"))
}

func TestCanvasFailureSkips(t *testing.T) {
	h := newHarness(Options{})
	h.canvas.create = false

	assert.Equal(t, Skip, h.o.Step())
	assert.Zero(t, h.rec.count("target.begin"))
}

func TestTargetBeginFailureSkips(t *testing.T) {
	h := newHarness(Options{})
	h.target.begin = false

	assert.Equal(t, Skip, h.o.Step())
	assert.Equal(t, StateRecordAndSubmit, h.o.State())
	assert.Zero(t, h.rec.count("cmd.draw"))
	assert.Zero(t, h.rec.count("window.present"))
}

func TestBackgroundPass(t *testing.T) {
	params := &Parameters{Color: math.Color{R: 0.5, G: 0.25, B: 1, A: 1}}
	h := newHarness(Options{Params: params})
	h.clock.now = 2 * time.Second

	require.Equal(t, Continue, h.o.Step())

	cmd := h.device.command
	require.NotNil(t, cmd)
	assert.Equal(t, []math.Vec2{{X: 3, Y: -1}, {X: -1, Y: -1}, {X: -1, Y: 3}}, cmd.vertices)
	assert.Equal(t, []uint16{0, 1, 2}, cmd.indices)
	require.Len(t, cmd.uniforms, 1)

	got := cmd.uniforms[0].(Parameters)
	assert.Equal(t, float32(2), got.Time)
	assert.Equal(t, math.RotateZ(math.Radians(32)), got.Transform)
	assert.Equal(t, params.Color, got.Color)
	assert.Equal(t, 2.0, h.scene.time)
}

func TestNodeTransform(t *testing.T) {
	h := newHarness(Options{})
	h.clock.now = time.Second

	h.o.Step()

	want := math.RotateZ(math.Radians(24)).Mul(math.RotateX(math.Radians(16)))
	assert.Equal(t, want, h.node.transform)
}

func TestNodeTransformAfterLongUptime(t *testing.T) {
	const days = 100 * 24 * time.Hour
	offset := 15*time.Second + 250*time.Millisecond

	early := newHarness(Options{})
	early.clock.now = offset
	early.o.Step()

	late := newHarness(Options{})
	late.clock.now = days + offset
	late.o.Step()

	for i := range early.node.transform {
		assert.InDelta(t, early.node.transform[i], late.node.transform[i], 1e-5, "element %d", i)
	}
	got := late.device.command.uniforms[0].(Parameters)
	want := early.device.command.uniforms[0].(Parameters)
	for i := range want.Transform {
		assert.InDelta(t, want.Transform[i], got.Transform[i], 1e-5, "element %d", i)
	}
}

func TestDegrees(t *testing.T) {
	assert.Equal(t, float32(24), degrees(1, 24))
	assert.Equal(t, float32(6), degrees(15.25, 24))
	assert.Equal(t, float32(6), degrees(8640015.25, 24))
	assert.Equal(t, float32(244), degrees(8640015.25, 16))
}

func TestShutdownOrder(t *testing.T) {
	h := newHarness(Options{})
	clone := h.ref.Clone()

	require.NoError(t, h.o.Shutdown())

	assert.Equal(t, []string{
		"scene_manager.terminate",
		"scene_manager.update",
		"background.wait",
		"scene.clear",
		"window.finish",
	}, h.rec.calls)
	assert.True(t, h.stop.IsSet())
	assert.False(t, h.ref.Valid())
	assert.Equal(t, 1, clone.Refs())
	assert.Equal(t, StateTerminated, h.o.State())

	h.rec.reset()
	require.NoError(t, h.o.Shutdown())
	assert.Empty(t, h.rec.calls)
}

func TestShutdownBackgroundError(t *testing.T) {
	t.Run("canceled is ignored", func(t *testing.T) {
		h := newHarness(Options{})
		h.bg.err = context.Canceled
		assert.NoError(t, h.o.Shutdown())
	})

	t.Run("failure is reported", func(t *testing.T) {
		h := newHarness(Options{})
		boom := errors.New("boom")
		h.bg.err = boom
		err := h.o.Shutdown()
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.True(t, h.window.finished)
	})
}

func TestRunStopsWhenWindowCloses(t *testing.T) {
	h := newHarness(Options{})
	h.window.render = false

	require.NoError(t, h.o.Run(context.Background()))
	assert.Equal(t, StateTerminated, h.o.State())
	assert.True(t, h.stop.IsSet())
}

func TestRunStopsOnCancel(t *testing.T) {
	h := newHarness(Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, h.o.Run(ctx))
	assert.Zero(t, h.rec.count("window.poll"))
	assert.True(t, h.window.finished)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "update_logic", StateUpdateLogic.String())
	assert.Equal(t, "terminated", StateTerminated.String())
	assert.Equal(t, "state(99)", State(99).String())
	assert.Equal(t, "skip", Skip.String())
}
