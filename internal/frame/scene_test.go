package frame

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Faultbox/revolve/internal/engine"
	"github.com/Faultbox/revolve/internal/engine/scene"
	"github.com/Faultbox/revolve/internal/mesh"
	"github.com/Faultbox/revolve/internal/texture"
)

// sceneWorld is the demo scene on a headless manager.
type sceneWorld struct {
	manager  *scene.Manager
	scene    *scene.Scene
	material *scene.Material
	object   *scene.Object
}

func newSceneWorld(t *testing.T) *sceneWorld {
	t.Helper()
	dir := t.TempDir()
	mgr, err := scene.NewManager(scene.ManagerConfig{
		ShaderCache:  filepath.Join(dir, "shader.cache"),
		TextureCache: filepath.Join(dir, "texture.cache"),
		Headless:     true,
		Log:          zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	w := &sceneWorld{manager: mgr, scene: scene.New(mgr, zaptest.NewLogger(t))}
	w.material = scene.NewMaterial("metal", mgr)
	w.object = scene.NewObject("torus", mesh.Revolve(mesh.Params{
		StepsU: 8, StepsV: 4, Major: 8, Minor: 2, TexCoordScale: 2,
	}), w.material)
	w.scene.AddObject(w.object)
	return w
}

func (w *sceneWorld) wire(d *Deps) {
	graph := scene.NewGraph()
	d.SceneManager = engine.NewRef[engine.SceneManager](w.manager)
	d.Scene = w.scene
	d.Material = w.material
	d.Graph = graph
	d.Node = graph.AddNode(w.object)
}

func TestSceneBecomesReady(t *testing.T) {
	w := newSceneWorld(t)
	h := newHarnessWith(Options{Quantum: testQuantum}, w.wire)

	h.clock.now = testQuantum
	require.Equal(t, Skip, h.o.Step())
	assert.False(t, w.object.Resident())

	h.async.Wait()
	h.clock.now = 2 * testQuantum
	require.Equal(t, Continue, h.o.Step())
	assert.True(t, w.object.Resident())
	assert.Zero(t, w.manager.Pending())
	assert.Equal(t, uint64(1), w.material.Uploads())

	for i := 3; i <= 10; i++ {
		h.clock.now = time.Duration(i) * testQuantum
		require.Equal(t, Continue, h.o.Step(), "step %d", i)
	}
	assert.Equal(t, uint64(10), h.o.Refreshes())
}

func TestRefreshReachesMaterialEachFrame(t *testing.T) {
	w := newSceneWorld(t)
	h := newHarnessWith(Options{Quantum: testQuantum}, w.wire)

	h.o.Step()
	h.async.Wait()
	require.Equal(t, Continue, h.o.Step())
	base := w.material.Uploads()

	for i := 1; i <= 30; i++ {
		h.clock.now = time.Duration(i) * testQuantum
		require.Equal(t, Continue, h.o.Step())
		require.Equal(t, base+uint64(i), w.material.Uploads(), "refresh %d", i)
		require.Zero(t, w.manager.Pending())
	}

	require.True(t, w.manager.Process(engine.NewAsync()))
	cached, ok := w.manager.CachedTexture("procedural")
	require.True(t, ok)
	assert.Equal(t, texture.Synthesize(8, 29).Pix, cached.Pix)
}
