// Package process runs the scene manager streaming loop on a background
// goroutine until termination is signalled.
package process

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/revolve/internal/engine"
)

// DefaultIdle is the pause after a step that found no work.
const DefaultIdle = 1000 * time.Millisecond

// Processor is the part of the scene manager the driver needs.
type Processor interface {
	Process(async *engine.Async) bool
	Terminated() bool
}

// Driver repeatedly advances asynchronous streaming.
type Driver[P Processor] struct {
	ref   *engine.Ref[P]
	async *engine.Async
	stop  *engine.TerminationFlag
	idle  time.Duration
	log   *zap.Logger

	steps int
}

// Config configures a Driver.
type Config struct {
	// Idle is the sleep after an idle step. Zero means DefaultIdle.
	Idle time.Duration
	Log  *zap.Logger
}

// New creates a driver over its own handle to the shared processor.
func New[P Processor](ref *engine.Ref[P], async *engine.Async, stop *engine.TerminationFlag, cfg Config) *Driver[P] {
	if cfg.Idle <= 0 {
		cfg.Idle = DefaultIdle
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	return &Driver[P]{
		ref:   ref,
		async: async,
		stop:  stop,
		idle:  cfg.Idle,
		log:   cfg.Log,
	}
}

// running reports whether the loop should take another step.
func (d *Driver[P]) running() bool {
	return d.ref.Valid() && !d.stop.IsSet() && !d.ref.Get().Terminated()
}

// Run loops until the processor handle is released, the processor
// terminates, the flag is set or ctx is cancelled. In-flight steps are
// not waited on beyond the current call.
func (d *Driver[P]) Run(ctx context.Context) error {
	defer d.ref.Release()

	timer := time.NewTimer(d.idle)
	timer.Stop()
	defer timer.Stop()

	for d.running() {
		d.steps++
		if d.ref.Get().Process(d.async) {
			continue
		}

		timer.Reset(d.idle)
		select {
		case <-timer.C:
		case <-d.stop.Done():
		case <-ctx.Done():
			d.log.Debug("process cancelled", zap.Int("steps", d.steps))
			return ctx.Err()
		}
	}

	d.log.Info("thread done", zap.Int("steps", d.steps))
	return nil
}

// Steps returns the number of Process calls made so far. Only safe after
// Run has returned.
func (d *Driver[P]) Steps() int {
	return d.steps
}

// Group joins the driver goroutine.
type Group struct {
	g *errgroup.Group
}

// Start launches d.Run on its own goroutine.
func Start[P Processor](ctx context.Context, d *Driver[P]) *Group {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return d.Run(gctx) })
	return &Group{g: g}
}

// Wait blocks until the driver has exited.
func (g *Group) Wait() error {
	return g.g.Wait()
}
