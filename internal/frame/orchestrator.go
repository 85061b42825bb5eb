// Package frame sequences one rendered frame: logic update, resize,
// texture refresh, graph and scene update, the two compute batches around
// the deferred draw, the interface pass, recording and presentation.
package frame

import (
	"context"
	"errors"
	"fmt"
	gomath "math"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/revolve/internal/engine"
	"github.com/Faultbox/revolve/internal/texture"
	"github.com/Faultbox/revolve/pkg/math"
)

// State is a step of the frame cycle.
type State int

const (
	StateUpdateLogic State = iota
	StateMaybeResize
	StateMaybeRefreshTexture
	StateUpdateGraph
	StateUpdateScene
	StateDispatchPre
	StateFlush
	StateDrawDeferred
	StateDispatchPost
	StateUpdateInterface
	StateRecordAndSubmit
	StatePresent
	StateTerminated
)

var stateNames = [...]string{
	"update_logic",
	"maybe_resize",
	"maybe_refresh_texture",
	"update_graph",
	"update_scene",
	"dispatch_pre",
	"flush",
	"draw_deferred",
	"dispatch_post",
	"update_interface",
	"record_and_submit",
	"present",
	"terminated",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Result is the outcome of one Step.
type Result int

const (
	// Continue means the frame was presented.
	Continue Result = iota
	// Skip means drawing was skipped this iteration; the loop goes on.
	Skip
	// Stop ends the loop.
	Stop
)

func (r Result) String() string {
	switch r {
	case Continue:
		return "continue"
	case Skip:
		return "skip"
	}
	return "stop"
}

// Background is the joinable background driver.
type Background interface {
	Wait() error
}

// Deps are the engine collaborators the orchestrator drives.
type Deps struct {
	Window   engine.Window
	Device   engine.Device
	Target   engine.Target
	Pipeline engine.Pipeline

	SceneManager  *engine.Ref[engine.SceneManager]
	RenderManager engine.RenderManager
	Frame         engine.Frame
	Renderer      engine.Renderer
	Spatial       engine.Spatial

	Scene    engine.Scene
	Graph    engine.Graph
	Node     engine.Node
	Material engine.Material

	Root     engine.Root
	Backdrop engine.Backdrop
	Canvas   engine.Canvas

	MainAsync  *engine.Async
	Terminate  *engine.TerminationFlag
	Background Background
}

// Options tune the cycle.
type Options struct {
	AppHeight    float32
	TextureSize  int
	Quantum      time.Duration
	LayoutPasses int
	Clock        Clock
	Params       *Parameters
	Log          *zap.Logger
	// OnState is called as each state is entered.
	OnState func(State)
}

// MaxLayoutPasses bounds the interface layout fixed-point iteration.
const MaxLayoutPasses = 32

// Background pass geometry: one triangle covering the viewport.
var (
	backgroundVertices = [3]math.Vec2{{X: 3, Y: -1}, {X: -1, Y: -1}, {X: -1, Y: 3}}
	backgroundIndices  = [3]uint16{0, 1, 2}
)

// Orchestrator runs the frame state machine on the main goroutine.
type Orchestrator struct {
	deps  Deps
	opts  Options
	log   *zap.Logger
	clock Clock

	textures *TextureClock
	params   *Parameters
	pre      engine.PreRaster
	post     engine.PostRaster

	state     State
	frames    uint64
	refreshes uint64
	shutdown  bool
}

// New creates an orchestrator. The texture schedule starts at the clock's
// current time.
func New(deps Deps, opts Options) *Orchestrator {
	if opts.Clock == nil {
		opts.Clock = WallClock()
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Quantum <= 0 {
		opts.Quantum = time.Second / 30
	}
	if opts.LayoutPasses <= 0 {
		opts.LayoutPasses = MaxLayoutPasses
	}
	if opts.TextureSize <= 0 {
		opts.TextureSize = 256
	}
	if opts.Params == nil {
		opts.Params = &Parameters{Color: math.Gray(1)}
	}

	o := &Orchestrator{
		deps:     deps,
		opts:     opts,
		log:      opts.Log,
		clock:    opts.Clock,
		textures: NewTextureClock(opts.Clock.Now(), opts.Quantum),
		params:   opts.Params,
	}
	o.buildBatches()
	return o
}

// buildBatches binds every compute stage to its collaborator.
func (o *Orchestrator) buildBatches() {
	d := o.deps
	o.pre[engine.StageStreaming] = func(c engine.Compute) {
		d.SceneManager.Get().Dispatch(d.Device, c)
	}
	o.pre[engine.StageObjects] = func(c engine.Compute) {
		d.Scene.Dispatch(d.Device, c)
	}
	o.pre[engine.StageSpatial] = func(c engine.Compute) {
		frames := []engine.Frame{d.Frame}
		d.Spatial.DispatchFrames(c, frames)
		d.Spatial.DispatchObjects(c, frames)
		d.Renderer.DispatchFrames(c, frames)
	}

	o.post[engine.StageLight] = func(c engine.Compute) {
		d.Renderer.DispatchLight(d.Device, c, d.Frame)
	}
	o.post[engine.StageOcclusion] = func(c engine.Compute) {
		d.Renderer.DispatchOccluder(d.Device, c, d.Frame)
	}
	o.post[engine.StageLuminance] = func(c engine.Compute) {
		d.Renderer.DispatchLuminance(d.Device, c, d.Frame)
	}
	o.post[engine.StageComposite] = func(c engine.Compute) {
		d.Renderer.DispatchComposite(d.Device, c, d.Frame)
	}
}

func (o *Orchestrator) enter(s State) {
	o.state = s
	if o.opts.OnState != nil {
		o.opts.OnState(s)
	}
}

// State returns the last state entered.
func (o *Orchestrator) State() State {
	return o.state
}

// Frames returns the number of presented frames.
func (o *Orchestrator) Frames() uint64 {
	return o.frames
}

// Refreshes returns the number of texture refreshes so far.
func (o *Orchestrator) Refreshes() uint64 {
	return o.refreshes
}

// Textures returns the texture refresh schedule.
func (o *Orchestrator) Textures() *TextureClock {
	return o.textures
}

// Params returns the background pass parameters.
func (o *Orchestrator) Params() *Parameters {
	return o.params
}

// Step runs one iteration of the frame cycle.
func (o *Orchestrator) Step() Result {
	d := o.deps
	now := o.clock.Now()
	seconds := now.Seconds()

	o.enter(StateUpdateLogic)
	d.Window.PollEvents()
	if !d.Window.Render() {
		return Stop
	}
	d.RenderManager.Update()

	o.enter(StateMaybeResize)
	if !o.resize() {
		return Skip
	}

	o.enter(StateMaybeRefreshTexture)
	o.refreshTexture(now)

	o.enter(StateUpdateGraph)
	spin := math.RotateZ(math.Radians(degrees(seconds, 24)))
	d.Node.SetGlobalTransform(spin.Mul(math.RotateX(math.Radians(degrees(seconds, 16)))))
	d.Node.UpdateScene()
	d.Graph.UpdateSpatial()
	d.Graph.UpdateScene()

	o.enter(StateUpdateScene)
	switch r := d.Scene.Create(d.Device, d.MainAsync); r {
	case engine.Pending:
		return Skip
	case engine.Failed:
		o.log.Error("scene creation failed")
		return Stop
	}
	d.Scene.SetTime(seconds)
	d.Scene.Update(d.Device)
	if !d.SceneManager.Get().Update(d.Device, d.MainAsync) {
		o.log.Error("scene manager update failed")
		return Stop
	}

	o.enter(StateDispatchPre)
	o.pre.Dispatch(d.Device)

	o.enter(StateFlush)
	d.SceneManager.Get().Flush(d.Device)
	d.RenderManager.Flush(d.Device)
	d.Frame.Flush(d.Device)

	o.enter(StateDrawDeferred)
	d.Renderer.DrawDeferred(d.Device, d.Frame)

	o.enter(StateDispatchPost)
	o.post.Dispatch(d.Device)

	o.enter(StateUpdateInterface)
	if !o.updateInterface() {
		return Skip
	}

	o.enter(StateRecordAndSubmit)
	if !o.record(seconds) {
		return Skip
	}

	o.enter(StatePresent)
	if !d.Window.Present() {
		return Stop
	}
	if !d.Device.Check() {
		o.log.Error("device lost")
		return Stop
	}

	o.frames++
	return Continue
}

// resize recreates the frame when the window size changed.
func (o *Orchestrator) resize() bool {
	d := o.deps
	w, h := d.Window.Size()
	fw, fh := d.Frame.Size()
	if fw == w && fh == h {
		return true
	}
	if !d.Frame.Create(d.Device, w, h) {
		o.log.Warn("frame resize failed", zap.Int("width", w), zap.Int("height", h))
		return false
	}
	o.log.Info("frame resized", zap.Int("width", w), zap.Int("height", h))
	return true
}

// refreshTexture regenerates the diffuse texture when the quantum elapsed.
func (o *Orchestrator) refreshTexture(now time.Duration) {
	frame, due := o.textures.Due(now)
	if !due {
		return
	}
	img := texture.Synthesize(o.opts.TextureSize, frame)
	o.deps.Material.SetTexture("diffuse", "procedural", img)
	o.deps.Material.UpdateScene()
	o.refreshes++
}

// updateInterface maps the window into the logical interface space and
// runs layout until it settles.
func (o *Orchestrator) updateInterface() bool {
	d := o.deps
	ww, wh := d.Window.Size()
	width, height, ok := LogicalSize(o.opts.AppHeight, ww, wh)
	if !ok {
		return false
	}
	mx, my, buttons := d.Window.Mouse()
	x, y := MapPointer(mx, my, ww, wh, width, height)

	d.Backdrop.SetTexture(d.Frame.CompositeTexture(), true)
	d.Backdrop.SetTextureScale(width/float32(ww), height/float32(wh))
	d.Backdrop.SetTextureFlip(false, d.Renderer.TargetFlipped())

	d.Root.SetViewport(width, height)
	d.Root.SetMouse(x, y, interfaceButtons(buttons))

	scale := d.Canvas.Scale(d.Target)
	passes := 0
	for d.Root.Update(scale) {
		passes++
		if passes >= o.opts.LayoutPasses {
			o.log.Warn("interface layout did not settle", zap.Int("passes", passes))
			break
		}
	}

	if !d.Canvas.Create(d.Device, d.Target) {
		o.log.Warn("canvas creation failed")
		return false
	}
	return true
}

// degrees returns the angle after seconds at rate degrees per second,
// reduced to one turn before it is narrowed to float32.
func degrees(seconds, rate float64) float32 {
	return float32(gomath.Mod(seconds*rate, 360))
}

// record draws the background triangle and the interface into the target.
func (o *Orchestrator) record(seconds float64) bool {
	d := o.deps
	if !d.Target.Begin() {
		return false
	}
	cmd := d.Device.CreateCommand(d.Target)

	o.params.Transform = math.RotateZ(math.Radians(degrees(seconds, 16)))
	o.params.Time = float32(seconds)

	cmd.SetPipeline(d.Pipeline)
	cmd.SetUniform(0, *o.params)
	cmd.SetVertices(0, backgroundVertices[:])
	cmd.SetIndices(backgroundIndices[:])
	cmd.DrawElements(len(backgroundIndices))

	d.Canvas.Draw(cmd, d.Target)
	d.Target.End()
	return true
}

// Run steps until the window or device stops or ctx is cancelled, then
// shuts down.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.log.Info("main loop started")
	for ctx.Err() == nil {
		if o.Step() == Stop {
			break
		}
	}
	o.log.Info("main loop finished", zap.Uint64("frames", o.frames), zap.Uint64("refreshes", o.refreshes))
	return o.Shutdown()
}

// Shutdown stops streaming, drains the scene manager, joins the background
// driver and only then tears the scene down. Calling it twice is a no-op.
func (o *Orchestrator) Shutdown() error {
	if o.shutdown {
		return nil
	}
	o.shutdown = true
	o.enter(StateTerminated)

	d := o.deps
	mgr := d.SceneManager.Get()
	d.Terminate.Set()
	mgr.Terminate()
	mgr.Update(d.Device, d.MainAsync)

	var err error
	if d.Background != nil {
		if werr := d.Background.Wait(); werr != nil && !errors.Is(werr, context.Canceled) {
			err = multierr.Append(err, fmt.Errorf("background driver: %w", werr))
		}
	}

	d.Scene.Clear()
	d.Window.Finish()
	if d.MainAsync != nil {
		d.MainAsync.Wait()
	}
	d.SceneManager.Release()

	o.log.Info("done")
	return err
}
