// Package framebuffer provides OpenGL framebuffers with several color
// attachments for the deferred passes.
package framebuffer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Format describes one color attachment.
type Format struct {
	Internal int32
	Format   uint32
	Type     uint32
	// Mipmapped attachments get a full mip chain on Resize.
	Mipmapped bool
}

// Common attachment formats.
var (
	RGBA8   = Format{Internal: gl.RGBA8, Format: gl.RGBA, Type: gl.UNSIGNED_BYTE}
	RGBA16F = Format{Internal: gl.RGBA16F, Format: gl.RGBA, Type: gl.HALF_FLOAT}
	R8      = Format{Internal: gl.R8, Format: gl.RED, Type: gl.UNSIGNED_BYTE}
	R16F    = Format{Internal: gl.R16F, Format: gl.RED, Type: gl.HALF_FLOAT}
)

// Framebuffer manages an offscreen render target with color attachments
// and an optional depth renderbuffer.
type Framebuffer struct {
	fbo      uint32
	colors   []uint32
	formats  []Format
	depthRBO uint32
	depth    bool
	width    int32
	height   int32
}

// New creates a framebuffer of the given size. Sizes below one are clamped.
func New(width, height int32, depth bool, formats ...Format) (*Framebuffer, error) {
	if len(formats) == 0 {
		return nil, fmt.Errorf("framebuffer needs at least one color attachment")
	}
	fb := &Framebuffer{
		formats: formats,
		depth:   depth,
		width:   max(width, 1),
		height:  max(height, 1),
	}
	if err := fb.create(); err != nil {
		return nil, fmt.Errorf("creating framebuffer: %w", err)
	}
	return fb, nil
}

func (fb *Framebuffer) create() error {
	gl.GenFramebuffers(1, &fb.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)

	fb.colors = make([]uint32, len(fb.formats))
	gl.GenTextures(int32(len(fb.colors)), &fb.colors[0])
	drawBuffers := make([]uint32, len(fb.colors))
	for i, tex := range fb.colors {
		fb.allocate(i)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0+uint32(i), gl.TEXTURE_2D, tex, 0)
		drawBuffers[i] = gl.COLOR_ATTACHMENT0 + uint32(i)
	}
	gl.DrawBuffers(int32(len(drawBuffers)), &drawBuffers[0])

	if fb.depth {
		gl.GenRenderbuffers(1, &fb.depthRBO)
		gl.BindRenderbuffer(gl.RENDERBUFFER, fb.depthRBO)
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, fb.width, fb.height)
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, fb.depthRBO)
	}

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		fb.Destroy()
		return fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}
	return nil
}

// allocate (re)creates storage for attachment i at the current size.
func (fb *Framebuffer) allocate(i int) {
	f := fb.formats[i]
	gl.BindTexture(gl.TEXTURE_2D, fb.colors[i])
	gl.TexImage2D(gl.TEXTURE_2D, 0, f.Internal, fb.width, fb.height, 0, f.Format, f.Type, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	if f.Mipmapped {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
		gl.GenerateMipmap(gl.TEXTURE_2D)
	} else {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// Bind makes this framebuffer the current render target.
func (fb *Framebuffer) Bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)
	gl.Viewport(0, 0, fb.width, fb.height)
}

// Unbind restores the default framebuffer.
func (fb *Framebuffer) Unbind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// Clear clears every attachment with the specified color and the depth
// buffer if present.
func (fb *Framebuffer) Clear(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	mask := uint32(gl.COLOR_BUFFER_BIT)
	if fb.depth {
		mask |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(mask)
}

// ColorTexture returns the texture of attachment i.
func (fb *Framebuffer) ColorTexture(i int) uint32 {
	return fb.colors[i]
}

// Attachments returns the number of color attachments.
func (fb *Framebuffer) Attachments() int {
	return len(fb.colors)
}

// Size returns the framebuffer dimensions.
func (fb *Framebuffer) Size() (width, height int32) {
	return fb.width, fb.height
}

// Resize reallocates the attachments if the dimensions changed.
func (fb *Framebuffer) Resize(width, height int32) {
	width, height = max(width, 1), max(height, 1)
	if width == fb.width && height == fb.height {
		return
	}
	fb.width = width
	fb.height = height

	for i := range fb.colors {
		fb.allocate(i)
	}
	if fb.depth {
		gl.BindRenderbuffer(gl.RENDERBUFFER, fb.depthRBO)
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, fb.width, fb.height)
	}
}

// GenerateMipmap rebuilds the mip chain of attachment i.
func (fb *Framebuffer) GenerateMipmap(i int) {
	gl.BindTexture(gl.TEXTURE_2D, fb.colors[i])
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// MipLevels returns the number of levels of a full chain at this size.
func (fb *Framebuffer) MipLevels() int {
	return MipLevels(int(fb.width), int(fb.height))
}

// MipLevels returns the number of levels of a full mip chain.
func MipLevels(width, height int) int {
	n := 1
	for s := max(width, height); s > 1; s >>= 1 {
		n++
	}
	return n
}

// ReadPixels reads attachment 0 as RGBA bytes, bottom row first.
func (fb *Framebuffer) ReadPixels() []byte {
	pixels := make([]byte, fb.width*fb.height*4)

	var prevFBO int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prevFBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)
	gl.ReadBuffer(gl.COLOR_ATTACHMENT0)
	gl.ReadPixels(0, 0, fb.width, fb.height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))

	return pixels
}

// Destroy releases all OpenGL resources.
func (fb *Framebuffer) Destroy() {
	if fb.fbo != 0 {
		gl.DeleteFramebuffers(1, &fb.fbo)
		fb.fbo = 0
	}
	if len(fb.colors) > 0 && fb.colors[0] != 0 {
		gl.DeleteTextures(int32(len(fb.colors)), &fb.colors[0])
		for i := range fb.colors {
			fb.colors[i] = 0
		}
	}
	if fb.depthRBO != 0 {
		gl.DeleteRenderbuffers(1, &fb.depthRBO)
		fb.depthRBO = 0
	}
}
