package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCompute struct {
	labels *[]string
}

func (c recordingCompute) Submit(label string, fn func()) {
	*c.labels = append(*c.labels, label)
	fn()
}

type computeDevice struct {
	Device
	labels []string
}

func (d *computeDevice) CreateCompute() Compute {
	return recordingCompute{labels: &d.labels}
}

func TestPreRasterOrder(t *testing.T) {
	var calls []PreRasterStage
	var b PreRaster
	// Assigned out of order on purpose.
	b[StageSpatial] = func(Compute) { calls = append(calls, StageSpatial) }
	b[StageStreaming] = func(Compute) { calls = append(calls, StageStreaming) }
	b[StageObjects] = func(Compute) { calls = append(calls, StageObjects) }

	d := &computeDevice{}
	b.Dispatch(d)

	assert.Equal(t, []PreRasterStage{StageStreaming, StageObjects, StageSpatial}, calls)
	assert.Equal(t, []string{"streaming", "objects", "spatial"}, d.labels)
}

func TestPostRasterOrder(t *testing.T) {
	var calls []PostRasterStage
	var b PostRaster
	for _, s := range []PostRasterStage{StageComposite, StageLuminance, StageLight, StageOcclusion} {
		b[s] = func(Compute) { calls = append(calls, s) }
	}

	d := &computeDevice{}
	b.Dispatch(d)

	assert.Equal(t, []PostRasterStage{StageLight, StageOcclusion, StageLuminance, StageComposite}, calls)
	assert.Equal(t, []string{"light", "occlusion", "luminance", "composite"}, d.labels)
}

func TestPostRasterSkipsEmptyStages(t *testing.T) {
	var b PostRaster
	b[StageComposite] = func(Compute) {}
	d := &computeDevice{}
	b.Dispatch(d)
	assert.Equal(t, []string{"composite"}, d.labels)
}

func TestRef(t *testing.T) {
	r := NewRef("scene")
	c := r.Clone()
	require.Equal(t, 2, r.Refs())
	assert.Equal(t, "scene", c.Get())

	assert.False(t, c.Release())
	assert.False(t, c.Valid())
	assert.True(t, r.Valid())
	assert.False(t, c.Release(), "double release must not drop another reference")
	assert.Equal(t, 1, r.Refs())

	assert.True(t, r.Release())
	assert.Equal(t, 0, r.Refs())

	var nilRef *Ref[string]
	assert.False(t, nilRef.Valid())
}

func TestTerminationFlag(t *testing.T) {
	f := NewTerminationFlag()
	assert.False(t, f.IsSet())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Set()
		}()
	}
	wg.Wait()

	assert.True(t, f.IsSet())
	select {
	case <-f.Done():
	case <-time.After(time.Second):
		t.Fatal("done channel not closed")
	}
}

func TestAsync(t *testing.T) {
	a := NewAsync()
	require.True(t, a.Valid())
	assert.False(t, a.Busy())

	release := make(chan struct{})
	a.Go(func() { <-release })
	assert.True(t, a.Busy())
	assert.Equal(t, 1, a.Pending())

	close(release)
	a.Wait()
	assert.False(t, a.Busy())

	var zero *Async
	assert.False(t, zero.Valid())
}
