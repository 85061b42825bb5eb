package process

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Faultbox/revolve/internal/engine"
)

// stubProcessor reports work for the first busy calls, then idles.
type stubProcessor struct {
	mu         sync.Mutex
	busy       int
	calls      []time.Time
	terminated bool
}

func (s *stubProcessor) Process(*engine.Async) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, time.Now())
	if s.busy > 0 {
		s.busy--
		return true
	}
	return false
}

func (s *stubProcessor) Terminated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminated
}

func (s *stubProcessor) snapshot() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Time(nil), s.calls...)
}

func waitTimeout(t *testing.T, g *Group, d time.Duration) error {
	t.Helper()
	errc := make(chan error, 1)
	go func() { errc <- g.Wait() }()
	select {
	case err := <-errc:
		return err
	case <-time.After(d):
		t.Fatalf("driver did not exit within %v", d)
		return nil
	}
}

func TestDriverSleepsWhenIdleAndStopsPromptly(t *testing.T) {
	const idle = 80 * time.Millisecond
	proc := &stubProcessor{}
	ref := engine.NewRef[Processor](proc)
	stop := engine.NewTerminationFlag()

	d := New(ref.Clone(), engine.NewAsync(), stop, Config{Idle: idle, Log: zaptest.NewLogger(t)})
	g := Start(context.Background(), d)

	time.Sleep(3*idle + idle/2)
	stop.Set()
	stopped := time.Now()

	require.NoError(t, waitTimeout(t, g, idle))
	assert.Less(t, time.Since(stopped), idle, "driver must exit within one idle interval")

	calls := proc.snapshot()
	require.GreaterOrEqual(t, len(calls), 3)
	assert.LessOrEqual(t, len(calls), 5, "idle steps must be spaced by the idle interval")
	for i := 1; i < len(calls); i++ {
		assert.GreaterOrEqual(t, calls[i].Sub(calls[i-1]), idle-5*time.Millisecond, "gap %d", i)
	}

	assert.False(t, ref.Clone().Release(), "driver handle was released, main handle still live")
	assert.Equal(t, 1, ref.Refs())
}

func TestDriverDoesNotSleepWhileBusy(t *testing.T) {
	proc := &stubProcessor{busy: 50}
	ref := engine.NewRef[Processor](proc)
	stop := engine.NewTerminationFlag()

	d := New(ref.Clone(), engine.NewAsync(), stop, Config{Idle: time.Hour})
	g := Start(context.Background(), d)

	require.Eventually(t, func() bool { return len(proc.snapshot()) >= 51 }, time.Second, time.Millisecond)
	stop.Set()
	require.NoError(t, waitTimeout(t, g, time.Second))
	assert.Equal(t, 51, d.Steps())
}

func TestDriverExitsWhenProcessorTerminates(t *testing.T) {
	proc := &stubProcessor{terminated: true}
	d := New(engine.NewRef[Processor](proc), engine.NewAsync(), engine.NewTerminationFlag(), Config{})
	require.NoError(t, d.Run(context.Background()))
	assert.Equal(t, 0, d.Steps())
	assert.Empty(t, proc.snapshot())
}

func TestDriverExitsWhenHandleReleased(t *testing.T) {
	ref := engine.NewRef[Processor](&stubProcessor{})
	ref.Release()
	d := New(ref, engine.NewAsync(), engine.NewTerminationFlag(), Config{})
	require.NoError(t, d.Run(context.Background()))
	assert.Equal(t, 0, d.Steps())
}

func TestDriverCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	proc := &stubProcessor{}
	d := New(engine.NewRef[Processor](proc), engine.NewAsync(), engine.NewTerminationFlag(), Config{Idle: time.Hour})
	g := Start(ctx, d)

	require.Eventually(t, func() bool { return len(proc.snapshot()) == 1 }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, waitTimeout(t, g, time.Second), context.Canceled)
}

func TestDefaultIdle(t *testing.T) {
	d := New(engine.NewRef[Processor](&stubProcessor{}), engine.NewAsync(), engine.NewTerminationFlag(), Config{})
	assert.Equal(t, time.Second, d.idle)
}
