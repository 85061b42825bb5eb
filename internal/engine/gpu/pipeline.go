package gpu

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/revolve/internal/engine/cache"
	"github.com/Faultbox/revolve/pkg/math"
)

// PipelineDesc describes a graphics pipeline. Blocks lists uniform block
// names; block i is bound to uniform slot i.
type PipelineDesc struct {
	Name     string
	Vertex   string
	Fragment string
	Blocks   []string
}

// Pipeline is a linked GL program.
type Pipeline struct {
	name     string
	program  uint32
	uniforms map[string]int32
}

// CreatePipeline links desc, reusing a program binary from store when the
// driver accepts it. store may be nil.
func (d *Device) CreatePipeline(desc PipelineDesc, store *cache.Store) (*Pipeline, error) {
	key := programKey(d.name, d.version, desc.Vertex, desc.Fragment)

	var program uint32
	cached := false
	if store != nil {
		if blob, ok := store.Get(key); ok {
			program, cached = loadProgramBinary(blob)
			if !cached {
				d.log.Debug("stale program binary", zap.String("pipeline", desc.Name))
				store.Delete(key)
			}
		}
	}
	if !cached {
		var err error
		program, err = compileProgram(desc.Vertex, desc.Fragment)
		if err != nil {
			return nil, fmt.Errorf("pipeline %s: %w", desc.Name, err)
		}
		if store != nil {
			storeProgramBinary(store, key, program)
		}
	}

	for slot, block := range desc.Blocks {
		idx := gl.GetUniformBlockIndex(program, gl.Str(block+"\x00"))
		if idx == gl.INVALID_INDEX {
			d.log.Warn("uniform block not active",
				zap.String("pipeline", desc.Name),
				zap.String("block", block),
			)
			continue
		}
		gl.UniformBlockBinding(program, idx, uint32(slot))
	}

	d.log.Debug("pipeline created",
		zap.String("pipeline", desc.Name),
		zap.Uint32("program", program),
		zap.Bool("cached", cached),
	)
	return &Pipeline{name: desc.Name, program: program, uniforms: make(map[string]int32)}, nil
}

// Valid reports whether the program exists.
func (p *Pipeline) Valid() bool {
	return p != nil && p.program != 0
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string {
	return p.name
}

// Use binds the program.
func (p *Pipeline) Use() {
	gl.UseProgram(p.program)
}

// Uniform returns the location of name, -1 when inactive.
func (p *Pipeline) Uniform(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.program, gl.Str(name+"\x00"))
	p.uniforms[name] = loc
	return loc
}

// SetInt sets an int or sampler uniform on the bound program.
func (p *Pipeline) SetInt(name string, v int32) {
	gl.Uniform1i(p.Uniform(name), v)
}

// SetFloat sets a float uniform on the bound program.
func (p *Pipeline) SetFloat(name string, v float32) {
	gl.Uniform1f(p.Uniform(name), v)
}

// SetVec2 sets a vec2 uniform on the bound program.
func (p *Pipeline) SetVec2(name string, x, y float32) {
	gl.Uniform2f(p.Uniform(name), x, y)
}

// SetVec3 sets a vec3 uniform on the bound program.
func (p *Pipeline) SetVec3(name string, x, y, z float32) {
	gl.Uniform3f(p.Uniform(name), x, y, z)
}

// SetMat4 sets a mat4 uniform on the bound program.
func (p *Pipeline) SetMat4(name string, m math.Mat4) {
	gl.UniformMatrix4fv(p.Uniform(name), 1, false, m.Ptr())
}

// Delete releases the program.
func (p *Pipeline) Delete() {
	if p.program != 0 {
		gl.DeleteProgram(p.program)
		p.program = 0
	}
}
