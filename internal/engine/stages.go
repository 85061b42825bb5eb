package engine

// PreRasterStage is a compute stage that runs before the deferred draw.
// Stages dispatch in declaration order.
type PreRasterStage uint8

const (
	StageStreaming PreRasterStage = iota // scene manager streaming
	StageObjects                         // per-object scene dispatch
	StageSpatial                         // spatial structures and frame setup
	numPreRasterStages
)

var preRasterNames = [numPreRasterStages]string{"streaming", "objects", "spatial"}

func (s PreRasterStage) String() string {
	if s < numPreRasterStages {
		return preRasterNames[s]
	}
	return "invalid"
}

// PostRasterStage is a compute stage that runs after the deferred draw.
type PostRasterStage uint8

const (
	StageLight PostRasterStage = iota
	StageOcclusion
	StageLuminance
	StageComposite
	numPostRasterStages
)

var postRasterNames = [numPostRasterStages]string{"light", "occlusion", "luminance", "composite"}

func (s PostRasterStage) String() string {
	if s < numPostRasterStages {
		return postRasterNames[s]
	}
	return "invalid"
}

// StageFunc records one stage into a compute batch.
type StageFunc func(c Compute)

// PreRaster holds one function per pre-raster stage. The array is indexed
// by stage, so Dispatch order cannot differ from stage order.
type PreRaster [numPreRasterStages]StageFunc

// Dispatch runs every stage in order on a fresh compute batch from d.
func (b *PreRaster) Dispatch(d Device) {
	c := d.CreateCompute()
	for s, fn := range b {
		if fn != nil {
			c.Submit(PreRasterStage(s).String(), func() { fn(c) })
		}
	}
}

// PostRaster holds one function per post-raster stage.
type PostRaster [numPostRasterStages]StageFunc

// Dispatch runs every stage in order on a fresh compute batch from d.
func (b *PostRaster) Dispatch(d Device) {
	c := d.CreateCompute()
	for s, fn := range b {
		if fn != nil {
			c.Submit(PostRasterStage(s).String(), func() { fn(c) })
		}
	}
}
