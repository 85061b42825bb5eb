package gpu

import (
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Texture is a 2D GL texture.
type Texture struct {
	id     uint32
	width  int
	height int
	levels int
	owned  bool
}

// NewTexture allocates an empty texture.
func NewTexture() *Texture {
	t := &Texture{owned: true}
	gl.GenTextures(1, &t.id)
	return t
}

// WrapTexture refers to a texture owned elsewhere.
func WrapTexture(id uint32, width, height int) *Texture {
	return &Texture{id: id, width: width, height: height, levels: 1}
}

// ID returns the GL name.
func (t *Texture) ID() uint32 {
	return t.id
}

// Size returns the level 0 dimensions.
func (t *Texture) Size() (int, int) {
	return t.width, t.height
}

// Levels returns the number of uploaded mip levels.
func (t *Texture) Levels() int {
	return t.levels
}

// Upload replaces the texture with levels, level 0 first. Repeat wrapping
// and trilinear filtering are used when more than one level is given.
func (t *Texture) Upload(levels []*image.RGBA) {
	if len(levels) == 0 {
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	for i, img := range levels {
		b := img.Bounds()
		gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
		gl.TexImage2D(gl.TEXTURE_2D, int32(i), gl.RGBA8, int32(b.Dx()), int32(b.Dy()), 0,
			gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix[img.PixOffset(b.Min.X, b.Min.Y):]))
	}
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)

	minFilter := int32(gl.LINEAR)
	if len(levels) > 1 {
		minFilter = gl.LINEAR_MIPMAP_LINEAR
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAX_LEVEL, int32(len(levels)-1))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	b := levels[0].Bounds()
	t.width, t.height = b.Dx(), b.Dy()
	t.levels = len(levels)
}

// Bind binds the texture to unit.
func (t *Texture) Bind(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
}

// Delete releases an owned texture.
func (t *Texture) Delete() {
	if t.owned && t.id != 0 {
		gl.DeleteTextures(1, &t.id)
	}
	t.id = 0
}
