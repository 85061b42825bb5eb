package scene

import (
	"image"
	"sort"

	"github.com/Faultbox/revolve/internal/engine/gpu"
)

// Material is a named set of float uniforms and textures. Texture slot i
// in sorted name order is bound to texture unit i.
type Material struct {
	name     string
	mgr      *Manager
	uniforms map[string]float32
	textures map[string]*gpu.Texture
	keys     map[string]string
	pending  map[string]*textureJob
	version  uint64
	uploads  uint64
}

// NewMaterial creates a material streaming its textures through mgr.
func NewMaterial(name string, mgr *Manager) *Material {
	return &Material{
		name:     name,
		mgr:      mgr,
		uniforms: make(map[string]float32),
		textures: make(map[string]*gpu.Texture),
		keys:     make(map[string]string),
		pending:  make(map[string]*textureJob),
	}
}

// Name returns the material name.
func (m *Material) Name() string {
	return m.name
}

// SetUniform sets a float shader uniform, e.g. "uRoughness".
func (m *Material) SetUniform(name string, v float32) {
	m.uniforms[name] = v
}

// Uniform returns a uniform value.
func (m *Material) Uniform(name string) (float32, bool) {
	v, ok := m.uniforms[name]
	return v, ok
}

// SetTexture binds img to the texture slot name from the next UpdateScene
// on. key identifies the content for the texture cache.
func (m *Material) SetTexture(name, key string, img *image.RGBA) {
	m.keys[name] = key
	m.pending[name] = &textureJob{material: m, name: name, key: key, img: img}
}

// Key returns the content key last set for a slot.
func (m *Material) Key(name string) string {
	return m.keys[name]
}

// Texture returns the GPU texture of a slot, nil before the first upload.
func (m *Material) Texture(name string) *gpu.Texture {
	return m.textures[name]
}

// UpdateScene publishes the material changes to the scene. New textures
// reach the GPU in the manager's next Update and Flush.
func (m *Material) UpdateScene() {
	m.version++
	if m.mgr == nil {
		return
	}
	names := make([]string, 0, len(m.pending))
	for name := range m.pending {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m.mgr.stage(m.pending[name])
		delete(m.pending, name)
	}
}

// Version counts UpdateScene calls.
func (m *Material) Version() uint64 {
	return m.version
}

// Uploads counts texture uploads that reached the material.
func (m *Material) Uploads() uint64 {
	return m.uploads
}

func (m *Material) upload(j *textureJob) {
	tex, ok := m.textures[j.name]
	if !ok {
		tex = gpu.NewTexture()
		m.textures[j.name] = tex
	}
	tex.Upload(j.levels)
}

func (m *Material) bind(p *gpu.Pipeline) {
	for name, v := range m.uniforms {
		p.SetFloat(name, v)
	}
	names := make([]string, 0, len(m.textures))
	for name := range m.textures {
		names = append(names, name)
	}
	sort.Strings(names)
	for unit, name := range names {
		m.textures[name].Bind(uint32(unit))
	}
}

func (m *Material) release() {
	for name, tex := range m.textures {
		tex.Delete()
		delete(m.textures, name)
	}
}
