package gpu

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/revolve/internal/engine"
	"github.com/Faultbox/revolve/pkg/math"
)

// Command records draws into a target using the device's shared buffers.
type Command struct {
	d        *Device
	target   engine.Target
	pipeline *Pipeline
}

// SetPipeline binds p. Pipelines from other implementations are ignored.
func (c *Command) SetPipeline(p engine.Pipeline) {
	gp, ok := p.(*Pipeline)
	if !ok || !gp.Valid() {
		c.pipeline = nil
		return
	}
	c.pipeline = gp
	gp.Use()
}

// SetUniform uploads data to the uniform block bound at slot.
func (c *Command) SetUniform(slot int, data any) {
	if slot < 0 || slot >= maxUniformSlots {
		c.d.log.Warn("uniform slot out of range", zap.Int("slot", slot))
		return
	}
	buf, err := packUniform(data)
	if err != nil {
		c.d.log.Warn("uniform upload failed", zap.Error(err))
		return
	}
	ubo := c.d.ubos[slot]
	gl.BindBuffer(gl.UNIFORM_BUFFER, ubo)
	gl.BufferData(gl.UNIFORM_BUFFER, len(buf), gl.Ptr(buf), gl.STREAM_DRAW)
	gl.BindBufferBase(gl.UNIFORM_BUFFER, uint32(slot), ubo)
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
}

// SetVertices uploads 2D positions to attribute slot.
func (c *Command) SetVertices(slot int, vertices []math.Vec2) {
	if len(vertices) == 0 {
		return
	}
	gl.BindVertexArray(c.d.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, c.d.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*8, gl.Ptr(vertices), gl.STREAM_DRAW)
	gl.VertexAttribPointerWithOffset(uint32(slot), 2, gl.FLOAT, false, 8, 0)
	gl.EnableVertexAttribArray(uint32(slot))
}

// SetIndices uploads 16-bit indices.
func (c *Command) SetIndices(indices []uint16) {
	if len(indices) == 0 {
		return
	}
	gl.BindVertexArray(c.d.vao)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, c.d.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*2, gl.Ptr(indices), gl.STREAM_DRAW)
}

// DrawElements draws count indexed triangles' vertices.
func (c *Command) DrawElements(count int) {
	if c.pipeline == nil {
		return
	}
	gl.BindVertexArray(c.d.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, int32(count), gl.UNSIGNED_SHORT, 0)
	gl.BindVertexArray(0)
}

// DrawTexture alpha-blends tex over the whole target.
func (c *Command) DrawTexture(tex engine.Texture, opts engine.TextureDraw) {
	t, ok := tex.(*Texture)
	if !ok || t.ID() == 0 {
		return
	}
	sx, sy := opts.ScaleX, opts.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	p := c.d.blit
	p.Use()
	t.Bind(0)
	filter := int32(gl.NEAREST)
	if opts.Linear {
		filter = gl.LINEAR
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter)
	if t.Levels() <= 1 {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filter)
	}
	p.SetInt("uTexture", 0)
	p.SetVec2("uScale", sx, sy)
	p.SetInt("uFlipH", boolInt(opts.FlipH))
	p.SetInt("uFlipV", boolInt(opts.FlipV))
	c.d.DrawFullscreen()

	gl.Disable(gl.BLEND)
	if c.pipeline != nil {
		c.pipeline.Use()
	}
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
