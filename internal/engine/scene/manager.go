// Package scene holds the demo world: a streaming scene manager, the scene
// with its camera, lights and objects, materials and the transform graph.
package scene

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/revolve/internal/engine"
	"github.com/Faultbox/revolve/internal/engine/cache"
)

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	ShaderCache  string
	TextureCache string
	// Progress receives creation progress in percent. May be nil.
	Progress func(percent int)
	// Headless keeps resources on the CPU: uploads mark objects resident
	// and count texture uploads without calling OpenGL.
	Headless bool
	Log      *zap.Logger
}

// Manager streams resources to the GPU. Textures staged by materials are
// prepared in Update and uploaded in Flush, both on the main goroutine.
// Process runs on the background goroutine and only writes uploaded
// textures to the texture cache.
type Manager struct {
	log      *zap.Logger
	shaders  *cache.Store
	textures *cache.Store
	headless bool

	mu      sync.Mutex
	persist []*textureJob // waiting for Process

	// main goroutine only
	staged  []*textureJob
	uploads []*textureJob
	failed  error

	terminated atomic.Bool
	processed  atomic.Uint64
	uploaded   uint64
	coalesced  uint64
}

// NewManager loads the caches. A corrupt cache is logged and replaced.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	progress := cfg.Progress
	if progress == nil {
		progress = func(int) {}
	}

	m := &Manager{log: cfg.Log, headless: cfg.Headless}
	progress(0)

	var err error
	if m.shaders, err = openCache(cfg.ShaderCache, cfg.Log); err != nil {
		return nil, fmt.Errorf("creating scene manager: %w", err)
	}
	progress(50)

	if m.textures, err = openCache(cfg.TextureCache, cfg.Log); err != nil {
		return nil, fmt.Errorf("creating scene manager: %w", err)
	}
	progress(100)

	m.log.Info("scene manager created",
		zap.Int("shader_entries", m.shaders.Len()),
		zap.Int("texture_entries", m.textures.Len()),
		zap.Bool("headless", m.headless),
	)
	return m, nil
}

func openCache(path string, log *zap.Logger) (*cache.Store, error) {
	s, err := cache.Open(path)
	if errors.Is(err, cache.ErrCorrupt) {
		log.Warn("discarding cache", zap.String("path", path), zap.Error(err))
		return s, nil
	}
	return s, err
}

// ShaderCache returns the program binary store.
func (m *Manager) ShaderCache() *cache.Store {
	return m.shaders
}

// CachedTexture returns the texture last streamed under key in a previous
// run.
func (m *Manager) CachedTexture(key string) (*image.RGBA, bool) {
	blob, ok := m.textures.Get(textureCacheKey(key))
	if !ok {
		return nil, false
	}
	img, err := decodeImage(blob)
	if err != nil {
		m.log.Debug("cached texture unusable", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return img, true
}

// stage queues a texture published by a material for the next Update.
// A staged job for the same material slot is replaced.
func (m *Manager) stage(j *textureJob) {
	if m.terminated.Load() {
		return
	}
	for i, q := range m.staged {
		if q.material == j.material && q.name == j.name {
			m.staged[i] = j
			m.coalesced++
			return
		}
	}
	m.staged = append(m.staged, j)
}

// uploadMesh creates the object's buffers on the main goroutine.
func (m *Manager) uploadMesh(u *meshUpload) {
	if m.headless {
		u.object.indexCount = int32(u.count)
		u.object.resident = true
	} else {
		u.object.upload(u)
	}
	m.uploaded++
}

// Process writes uploaded textures to the texture cache, encoding them
// concurrently on async, and reports whether there was work.
func (m *Manager) Process(async *engine.Async) bool {
	m.mu.Lock()
	jobs := m.persist
	m.persist = nil
	m.mu.Unlock()

	if len(jobs) == 0 || m.terminated.Load() {
		return false
	}

	blobs := make([][]byte, len(jobs))
	for i, j := range jobs {
		encode := func() { blobs[i] = encodeImage(j.img) }
		if async.Valid() {
			async.Go(encode)
		} else {
			encode()
		}
	}
	if async.Valid() {
		async.Wait()
	}
	for i, j := range jobs {
		m.textures.Put(textureCacheKey(j.key), blobs[i])
	}

	m.processed.Add(uint64(len(jobs)))
	return true
}

// Update prepares the staged textures for the next Flush. It fails once
// any preparation failed.
func (m *Manager) Update(engine.Device, *engine.Async) bool {
	staged := m.staged
	m.staged = nil
	for _, j := range staged {
		j.prepare()
		if j.err != nil {
			m.failed = multierr.Append(m.failed, j.err)
			continue
		}
		m.uploads = append(m.uploads, j)
	}

	if m.failed != nil {
		m.log.Error("streaming failed", zap.Error(m.failed))
		return false
	}
	return true
}

// Dispatch keeps only the newest pending upload per material slot.
func (m *Manager) Dispatch(engine.Device, engine.Compute) {
	if len(m.uploads) < 2 {
		return
	}
	type slot struct {
		material *Material
		name     string
	}
	latest := make(map[slot]int, len(m.uploads))
	for i, j := range m.uploads {
		latest[slot{j.material, j.name}] = i
	}
	if len(latest) == len(m.uploads) {
		return
	}
	kept := m.uploads[:0]
	for i, j := range m.uploads {
		if latest[slot{j.material, j.name}] == i {
			kept = append(kept, j)
		}
	}
	m.coalesced += uint64(len(m.uploads) - len(kept))
	for i := len(kept); i < len(m.uploads); i++ {
		m.uploads[i] = nil
	}
	m.uploads = kept
}

// Flush uploads the pending textures and hands them to Process for the
// texture cache. Only the newest image per cache key waits there.
func (m *Manager) Flush(engine.Device) {
	if len(m.uploads) == 0 {
		return
	}
	for _, j := range m.uploads {
		if !m.headless {
			j.material.upload(j)
		}
		j.material.uploads++
	}
	m.uploaded += uint64(len(m.uploads))

	if !m.terminated.Load() {
		m.mu.Lock()
		for _, j := range m.uploads {
			m.persist = appendLatest(m.persist, j)
		}
		m.mu.Unlock()
	}
	m.uploads = nil
}

func appendLatest(jobs []*textureJob, j *textureJob) []*textureJob {
	for i, q := range jobs {
		if q.key == j.key {
			jobs[i] = j
			return jobs
		}
	}
	return append(jobs, j)
}

// Terminate stops streaming and writes the caches. Later calls do nothing.
func (m *Manager) Terminate() {
	if !m.terminated.CompareAndSwap(false, true) {
		return
	}
	m.mu.Lock()
	jobs := m.persist
	m.persist = nil
	m.mu.Unlock()
	for _, j := range jobs {
		m.textures.Put(textureCacheKey(j.key), encodeImage(j.img))
	}
	m.staged = nil

	err := multierr.Combine(m.shaders.Save(), m.textures.Save())
	if err != nil {
		m.log.Warn("saving caches", zap.Error(err))
	}
	m.log.Info("scene manager terminated",
		zap.Uint64("processed", m.processed.Load()),
		zap.Uint64("uploaded", m.uploaded),
		zap.Uint64("coalesced", m.coalesced),
	)
}

// Terminated reports whether Terminate was called.
func (m *Manager) Terminated() bool {
	return m.terminated.Load()
}

// Pending returns the number of textures waiting for Update or Flush.
func (m *Manager) Pending() int {
	return len(m.staged) + len(m.uploads)
}
