// Package main is the entry point of the revolve demo: a textured surface
// of revolution rendered through a deferred pipeline under a small
// interface dialog.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/revolve/internal/capture"
	"github.com/Faultbox/revolve/internal/config"
	"github.com/Faultbox/revolve/internal/engine"
	"github.com/Faultbox/revolve/internal/engine/gpu"
	"github.com/Faultbox/revolve/internal/engine/render"
	"github.com/Faultbox/revolve/internal/engine/scene"
	"github.com/Faultbox/revolve/internal/engine/shaders"
	"github.com/Faultbox/revolve/internal/engine/ui"
	"github.com/Faultbox/revolve/internal/engine/window"
	"github.com/Faultbox/revolve/internal/frame"
	"github.com/Faultbox/revolve/internal/logger"
	"github.com/Faultbox/revolve/internal/mesh"
	"github.com/Faultbox/revolve/internal/process"
	"github.com/Faultbox/revolve/internal/texture"
	"github.com/Faultbox/revolve/pkg/math"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if path := config.WriteConfigPath(); path != "" {
		if err := cfg.SaveTo(path); err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Revolve ===")
	logBuildInfo()

	a, err := setup(cfg)
	if err != nil {
		logger.Error("setup failed", zap.Error(err))
		a.close()
		logger.Sync()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.run(ctx, cfg); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	if err := a.close(); err != nil {
		logger.Warn("releasing resources", zap.Error(err))
	}
	logger.Info("demo closed normally")
}

func logBuildInfo() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	fields := []zap.Field{zap.String("go", info.GoVersion), zap.String("module", info.Main.Path)}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision", "vcs.time", "GOOS", "GOARCH":
			fields = append(fields, zap.String(s.Key, s.Value))
		}
	}
	logger.Info("build", fields...)
}

// app holds everything setup created.
type app struct {
	window   *window.Window
	device   *gpu.Device
	manager  *scene.Manager
	scene    *scene.Scene
	frame    *render.Frame
	renderer *render.Renderer
	canvas   *ui.Canvas
	pipeline *gpu.Pipeline

	deps   frame.Deps
	params *frame.Parameters
	events *frame.Events
}

// setup performs the one-time creation steps. On error the returned app
// holds whatever was created so far.
func setup(cfg *config.Config) (*app, error) {
	a := &app{params: &frame.Parameters{Color: math.Gray(1)}}

	var err error
	a.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	}, logger.Named("window"))
	if err != nil {
		return a, fmt.Errorf("%w: creating window: %v", engine.ErrSetup, err)
	}

	a.device, err = gpu.New(logger.Named("device"))
	if err != nil {
		return a, fmt.Errorf("%w: creating device: %v", engine.ErrSetup, err)
	}
	logger.Info("device",
		zap.String("name", a.device.Name()),
		zap.Strings("features", a.device.Features()),
	)

	var progress func(int)
	if cfg.Engine.Progress {
		progress = logger.Progress("scene_manager")
	}
	a.manager, err = scene.NewManager(scene.ManagerConfig{
		ShaderCache:  cfg.Engine.ShaderCache,
		TextureCache: cfg.Engine.TextureCache,
		Progress:     progress,
		Log:          logger.Named("scene_manager"),
	})
	if err != nil {
		return a, fmt.Errorf("%w: creating scene manager: %v", engine.ErrSetup, err)
	}
	renderManager := render.NewManager(logger.Named("render_manager"))

	// scene
	a.scene = scene.New(a.manager, logger.Named("scene"))
	eye := math.Vec3{X: 12, Y: 12, Z: 6}
	a.scene.SetCamera(render.Camera{
		Position: eye,
		Up:       math.Vec3{Z: 1},
		FovY:     math.Radians(60),
		Near:     0.1,
		Far:      1000,
	})
	a.scene.AddLight(render.Light{Position: eye, Color: math.Gray(1), Intensity: 100, Radius: 1000})

	material := scene.NewMaterial("metal", a.manager)
	material.SetUniform("uRoughness", 0.2)
	material.SetUniform("uMetallic", 0)
	img, ok := a.manager.CachedTexture("procedural")
	if !ok || img.Bounds().Dx() != cfg.Texture.Size {
		img = texture.Synthesize(cfg.Texture.Size, 0)
	}
	material.SetTexture("diffuse", "procedural", img)
	material.UpdateScene()

	m := mesh.Revolve(mesh.Params{
		StepsU:        cfg.Mesh.StepsU,
		StepsV:        cfg.Mesh.StepsV,
		Major:         cfg.Mesh.Major,
		Minor:         cfg.Mesh.Minor,
		TexCoordScale: cfg.Mesh.TexCoordScale,
	})
	logger.Info("mesh",
		zap.Int("vertices", m.VertexCount()),
		zap.Int("indices", m.IndexCount()),
		zap.Stringer("format", m.Geometry.Indices.Format),
	)
	object := scene.NewObject("torus", m, material)
	a.scene.AddObject(object)

	graph := scene.NewGraph()
	node := graph.AddNode(object)

	// renderer
	a.frame = render.NewFrame(logger.Named("frame"))
	a.renderer, err = render.NewRenderer(a.device, a.scene, a.manager.ShaderCache(), render.Config{Log: logger.Named("renderer")})
	if err != nil {
		return a, fmt.Errorf("%w: creating renderer: %v", engine.ErrSetup, err)
	}
	spatial := render.NewSpatial(a.scene)

	a.pipeline, err = a.device.CreatePipeline(gpu.PipelineDesc{
		Name:     "background",
		Vertex:   shaders.BackgroundVertexShader,
		Fragment: shaders.BackgroundFragmentShader,
		Blocks:   []string{"Parameters"},
	}, a.manager.ShaderCache())
	if err != nil {
		return a, fmt.Errorf("%w: creating background pipeline: %v", engine.ErrSetup, err)
	}
	target := gpu.NewTarget(a.window)

	// interface
	a.events = frame.NewEvents(&frame.Context{
		Window:  a.window,
		Params:  a.params,
		Capture: capture.New(cfg.Capture.Dir, cfg.Capture.Prefix),
		Log:     logger.Named("events"),
	})
	frame.RegisterDefaults(a.events)
	a.window.SetSink(a.events)

	root := ui.NewRoot(ui.Options{Title: cfg.Window.Title, Color: a.params.Color, Sink: a.events})
	a.canvas = ui.NewCanvas(root, logger.Named("canvas"))

	a.deps = frame.Deps{
		Window:        a.window,
		Device:        a.device,
		Target:        target,
		Pipeline:      a.pipeline,
		SceneManager:  engine.NewRef[engine.SceneManager](a.manager),
		RenderManager: renderManager,
		Frame:         a.frame,
		Renderer:      a.renderer,
		Spatial:       spatial,
		Scene:         a.scene,
		Graph:         graph,
		Node:          node,
		Material:      material,
		Root:          root,
		Backdrop:      root.Backdrop(),
		Canvas:        a.canvas,
		MainAsync:     engine.NewAsync(),
		Terminate:     engine.NewTerminationFlag(),
	}
	return a, nil
}

// run starts the background driver and loops until the window closes.
func (a *app) run(ctx context.Context, cfg *config.Config) error {
	driver := process.New(a.deps.SceneManager.Clone(), engine.NewAsync(), a.deps.Terminate, process.Config{
		Idle: cfg.Engine.ProcessIdle,
		Log:  logger.Named("process"),
	})
	a.deps.Background = process.Start(ctx, driver)

	o := frame.New(a.deps, frame.Options{
		AppHeight:    float32(cfg.Window.AppHeight),
		TextureSize:  cfg.Texture.Size,
		Quantum:      cfg.Texture.Quantum(),
		LayoutPasses: cfg.Engine.LayoutPasses,
		Params:       a.params,
		Log:          logger.Named("frame"),
	})
	return o.Run(ctx)
}

// close releases what the orchestrator does not own. Once the window is
// finished its context took every GL object with it.
func (a *app) close() error {
	if a.manager != nil && !a.manager.Terminated() {
		a.manager.Terminate()
	}
	if a.window == nil || a.window.Finished() {
		return nil
	}

	var err error
	if a.canvas != nil {
		a.canvas.Close()
	}
	if a.pipeline != nil {
		a.pipeline.Delete()
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.frame != nil {
		a.frame.Destroy()
	}
	if a.device != nil {
		if !a.device.Check() {
			err = multierr.Append(err, errors.New("device lost"))
		}
		a.device.Close()
	}
	a.window.Finish()
	return err
}
