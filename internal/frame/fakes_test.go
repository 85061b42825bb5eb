package frame

import (
	"image"
	"time"

	"github.com/Faultbox/revolve/internal/engine"
	"github.com/Faultbox/revolve/pkg/math"
)

// recorder collects the names of engine calls in order.
type recorder struct {
	calls []string
}

func (r *recorder) add(name string) {
	r.calls = append(r.calls, name)
}

func (r *recorder) reset() {
	r.calls = nil
}

func (r *recorder) count(name string) int {
	n := 0
	for _, c := range r.calls {
		if c == name {
			n++
		}
	}
	return n
}

type fakeClock struct {
	now time.Duration
}

func (c *fakeClock) Now() time.Duration { return c.now }

type fakeWindow struct {
	rec               *recorder
	width, height     int
	mouseX, mouseY    int
	buttons           engine.Buttons
	render, present   bool
	stopped, finished bool
	grabbed           *image.RGBA
}

func (w *fakeWindow) PollEvents()      { w.rec.add("window.poll") }
func (w *fakeWindow) Render() bool     { w.rec.add("window.render"); return w.render }
func (w *fakeWindow) Size() (int, int) { return w.width, w.height }
func (w *fakeWindow) Mouse() (int, int, engine.Buttons) {
	return w.mouseX, w.mouseY, w.buttons
}
func (w *fakeWindow) Present() bool { w.rec.add("window.present"); return w.present }
func (w *fakeWindow) Grab() (*image.RGBA, bool) {
	return w.grabbed, w.grabbed != nil
}
func (w *fakeWindow) Stop()   { w.stopped = true }
func (w *fakeWindow) Finish() { w.rec.add("window.finish"); w.finished = true }

type fakeCompute struct {
	rec *recorder
}

func (c fakeCompute) Submit(label string, fn func()) {
	c.rec.add("compute." + label)
	fn()
}

type fakeCommand struct {
	rec      *recorder
	uniforms []any
	vertices []math.Vec2
	indices  []uint16
}

func (c *fakeCommand) SetPipeline(engine.Pipeline)      { c.rec.add("cmd.pipeline") }
func (c *fakeCommand) SetUniform(_ int, data any)       { c.uniforms = append(c.uniforms, data) }
func (c *fakeCommand) SetVertices(_ int, v []math.Vec2) { c.vertices = v }
func (c *fakeCommand) SetIndices(ix []uint16)           { c.indices = ix }
func (c *fakeCommand) DrawElements(int)                 { c.rec.add("cmd.draw") }
func (c *fakeCommand) DrawTexture(engine.Texture, engine.TextureDraw) {
	c.rec.add("cmd.texture")
}

type fakeDevice struct {
	rec     *recorder
	check   bool
	command *fakeCommand
}

func (d *fakeDevice) Name() string                  { return "fake" }
func (d *fakeDevice) Features() []string            { return nil }
func (d *fakeDevice) Check() bool                   { d.rec.add("device.check"); return d.check }
func (d *fakeDevice) CreateCompute() engine.Compute { return fakeCompute{rec: d.rec} }
func (d *fakeDevice) CreateCommand(engine.Target) engine.Command {
	d.command = &fakeCommand{rec: d.rec}
	return d.command
}

type fakeTarget struct {
	rec   *recorder
	begin bool
}

func (t *fakeTarget) Begin() bool { t.rec.add("target.begin"); return t.begin }
func (t *fakeTarget) End()        { t.rec.add("target.end") }

type fakePipeline struct{}

func (fakePipeline) Valid() bool { return true }

type fakeSceneManager struct {
	rec        *recorder
	update     bool
	terminated bool
}

func (m *fakeSceneManager) Update(engine.Device, *engine.Async) bool {
	m.rec.add("scene_manager.update")
	return m.update
}
func (m *fakeSceneManager) Process(*engine.Async) bool { return false }
func (m *fakeSceneManager) Dispatch(engine.Device, engine.Compute) {
	m.rec.add("scene_manager.dispatch")
}
func (m *fakeSceneManager) Flush(engine.Device) { m.rec.add("scene_manager.flush") }
func (m *fakeSceneManager) Terminate() {
	m.rec.add("scene_manager.terminate")
	m.terminated = true
}
func (m *fakeSceneManager) Terminated() bool { return m.terminated }

type fakeRenderManager struct{ rec *recorder }

func (m fakeRenderManager) Update()             { m.rec.add("render_manager.update") }
func (m fakeRenderManager) Flush(engine.Device) { m.rec.add("render_manager.flush") }

type fakeTexture struct{}

func (fakeTexture) Size() (int, int) { return 1, 1 }

type fakeFrame struct {
	rec           *recorder
	width, height int
	create        bool
}

func (f *fakeFrame) Size() (int, int) { return f.width, f.height }
func (f *fakeFrame) Create(_ engine.Device, w, h int) bool {
	f.rec.add("frame.create")
	if !f.create {
		return false
	}
	f.width, f.height = w, h
	return true
}
func (f *fakeFrame) Flush(engine.Device)              { f.rec.add("frame.flush") }
func (f *fakeFrame) CompositeTexture() engine.Texture { return fakeTexture{} }

type fakeRenderer struct{ rec *recorder }

func (r fakeRenderer) DispatchFrames(engine.Compute, []engine.Frame) {
	r.rec.add("renderer.frames")
}
func (r fakeRenderer) DrawDeferred(engine.Device, engine.Frame) { r.rec.add("renderer.deferred") }
func (r fakeRenderer) DispatchLight(engine.Device, engine.Compute, engine.Frame) {
	r.rec.add("renderer.light")
}
func (r fakeRenderer) DispatchOccluder(engine.Device, engine.Compute, engine.Frame) {
	r.rec.add("renderer.occluder")
}
func (r fakeRenderer) DispatchLuminance(engine.Device, engine.Compute, engine.Frame) {
	r.rec.add("renderer.luminance")
}
func (r fakeRenderer) DispatchComposite(engine.Device, engine.Compute, engine.Frame) {
	r.rec.add("renderer.composite")
}
func (r fakeRenderer) TargetFlipped() bool { return true }

type fakeSpatial struct{ rec *recorder }

func (s fakeSpatial) DispatchFrames(engine.Compute, []engine.Frame)  { s.rec.add("spatial.frames") }
func (s fakeSpatial) DispatchObjects(engine.Compute, []engine.Frame) { s.rec.add("spatial.objects") }

type fakeScene struct {
	rec       *recorder
	readiness engine.Readiness
	time      float64
}

func (s *fakeScene) Create(engine.Device, *engine.Async) engine.Readiness {
	s.rec.add("scene.create")
	return s.readiness
}
func (s *fakeScene) SetTime(t float64)                      { s.time = t }
func (s *fakeScene) Update(engine.Device)                   { s.rec.add("scene.update") }
func (s *fakeScene) Dispatch(engine.Device, engine.Compute) { s.rec.add("scene.dispatch") }
func (s *fakeScene) Clear()                                 { s.rec.add("scene.clear") }

type fakeGraph struct{ rec *recorder }

func (g fakeGraph) UpdateSpatial() { g.rec.add("graph.spatial") }
func (g fakeGraph) UpdateScene()   { g.rec.add("graph.scene") }

type fakeNode struct {
	rec       *recorder
	transform math.Mat4
}

func (n *fakeNode) SetGlobalTransform(m math.Mat4) { n.transform = m; n.rec.add("node.transform") }
func (n *fakeNode) UpdateScene()                   { n.rec.add("node.scene") }

type fakeMaterial struct {
	rec    *recorder
	images []*image.RGBA
}

func (m *fakeMaterial) SetUniform(string, float32) {}
func (m *fakeMaterial) SetTexture(name, key string, img *image.RGBA) {
	m.rec.add("material.texture")
	m.images = append(m.images, img)
}
func (m *fakeMaterial) UpdateScene() { m.rec.add("material.scene") }

type fakeRoot struct {
	rec            *recorder
	width, height  float32
	mouseX, mouseY float32
	buttons        engine.Buttons
	// changes is the number of Update calls that report a change.
	changes int
	updates int
}

func (r *fakeRoot) SetViewport(w, h float32) { r.width, r.height = w, h }
func (r *fakeRoot) SetMouse(x, y float32, b engine.Buttons) {
	r.mouseX, r.mouseY, r.buttons = x, y, b
}
func (r *fakeRoot) Update(float32) bool {
	r.updates++
	if r.changes < 0 {
		return true
	}
	if r.changes > 0 {
		r.changes--
		return true
	}
	return false
}

type fakeBackdrop struct {
	sx, sy  float32
	flipped bool
}

func (b *fakeBackdrop) SetTexture(engine.Texture, bool) {}
func (b *fakeBackdrop) SetTextureScale(sx, sy float32)  { b.sx, b.sy = sx, sy }
func (b *fakeBackdrop) SetTextureFlip(_, v bool)        { b.flipped = v }

type fakeCanvas struct {
	rec    *recorder
	create bool
}

func (c *fakeCanvas) Scale(engine.Target) float32 { return 1 }
func (c *fakeCanvas) Create(engine.Device, engine.Target) bool {
	c.rec.add("canvas.create")
	return c.create
}
func (c *fakeCanvas) Draw(engine.Command, engine.Target) { c.rec.add("canvas.draw") }

type fakeBackground struct {
	rec *recorder
	err error
}

func (b *fakeBackground) Wait() error {
	b.rec.add("background.wait")
	return b.err
}

// harness is a fully wired orchestrator over fakes that succeed.
type harness struct {
	rec      *recorder
	clock    *fakeClock
	window   *fakeWindow
	device   *fakeDevice
	target   *fakeTarget
	manager  *fakeSceneManager
	ref      *engine.Ref[engine.SceneManager]
	frame    *fakeFrame
	scene    *fakeScene
	node     *fakeNode
	material *fakeMaterial
	root     *fakeRoot
	backdrop *fakeBackdrop
	canvas   *fakeCanvas
	bg       *fakeBackground
	async    *engine.Async
	stop     *engine.TerminationFlag
	states   []State
	o        *Orchestrator
}

func newHarness(opts Options) *harness {
	return newHarnessWith(opts, nil)
}

// newHarnessWith lets wire replace collaborators before the orchestrator
// is built.
func newHarnessWith(opts Options, wire func(d *Deps)) *harness {
	rec := &recorder{}
	h := &harness{
		rec:      rec,
		clock:    &fakeClock{},
		window:   &fakeWindow{rec: rec, width: 800, height: 600, render: true, present: true},
		device:   &fakeDevice{rec: rec, check: true},
		target:   &fakeTarget{rec: rec, begin: true},
		manager:  &fakeSceneManager{rec: rec, update: true},
		frame:    &fakeFrame{rec: rec, width: 800, height: 600, create: true},
		scene:    &fakeScene{rec: rec, readiness: engine.Ready},
		node:     &fakeNode{rec: rec},
		material: &fakeMaterial{rec: rec},
		root:     &fakeRoot{rec: rec},
		backdrop: &fakeBackdrop{},
		canvas:   &fakeCanvas{rec: rec, create: true},
		bg:       &fakeBackground{rec: rec},
		async:    engine.NewAsync(),
		stop:     engine.NewTerminationFlag(),
	}
	h.ref = engine.NewRef[engine.SceneManager](h.manager)

	if opts.AppHeight == 0 {
		opts.AppHeight = 480
	}
	if opts.TextureSize == 0 {
		opts.TextureSize = 8
	}
	opts.Clock = h.clock
	opts.OnState = func(s State) { h.states = append(h.states, s) }

	deps := Deps{
		Window:        h.window,
		Device:        h.device,
		Target:        h.target,
		Pipeline:      fakePipeline{},
		SceneManager:  h.ref,
		RenderManager: fakeRenderManager{rec: rec},
		Frame:         h.frame,
		Renderer:      fakeRenderer{rec: rec},
		Spatial:       fakeSpatial{rec: rec},
		Scene:         h.scene,
		Graph:         fakeGraph{rec: rec},
		Node:          h.node,
		Material:      h.material,
		Root:          h.root,
		Backdrop:      h.backdrop,
		Canvas:        h.canvas,
		MainAsync:     h.async,
		Terminate:     h.stop,
		Background:    h.bg,
	}
	if wire != nil {
		wire(&deps)
	}
	h.o = New(deps, opts)
	return h
}
