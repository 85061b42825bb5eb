package scene

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/Faultbox/revolve/internal/mesh"
)

// textureJob is one texture on its way from the CPU to a material slot.
type textureJob struct {
	material *Material
	name     string
	key      string
	img      *image.RGBA
	levels   []*image.RGBA
	err      error
}

func (j *textureJob) prepare() {
	if j.img == nil || j.img.Bounds().Empty() {
		j.err = fmt.Errorf("texture %s: empty image", j.key)
		return
	}
	j.levels = buildMips(j.img)
}

// buildMips returns img followed by successively halved copies down to 1x1.
func buildMips(img *image.RGBA) []*image.RGBA {
	levels := []*image.RGBA{img}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	for w > 1 || h > 1 {
		w, h = max(w/2, 1), max(h/2, 1)
		prev := levels[len(levels)-1]
		next := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.BiLinear.Scale(next, next.Bounds(), prev, prev.Bounds(), draw.Src, nil)
		levels = append(levels, next)
	}
	return levels
}

func textureCacheKey(key string) string {
	return "texture/" + key
}

// encodeImage stores width, height and tightly packed pixels.
func encodeImage(img *image.RGBA) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]byte, 8+w*h*4)
	binary.LittleEndian.PutUint32(out[0:], uint32(w))
	binary.LittleEndian.PutUint32(out[4:], uint32(h))
	for y := 0; y < h; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		copy(out[8+y*w*4:8+(y+1)*w*4], row[:w*4])
	}
	return out
}

var errImageBlob = errors.New("invalid image blob")

func decodeImage(blob []byte) (*image.RGBA, error) {
	if len(blob) < 8 {
		return nil, errImageBlob
	}
	w := int(binary.LittleEndian.Uint32(blob[0:]))
	h := int(binary.LittleEndian.Uint32(blob[4:]))
	if w <= 0 || h <= 0 || len(blob) != 8+w*h*4 {
		return nil, fmt.Errorf("%w: %dx%d with %d bytes", errImageBlob, w, h, len(blob))
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, blob[8:])
	return img, nil
}

// meshUpload is interleaved geometry ready for the GPU.
type meshUpload struct {
	object   *Object
	vertices []byte
	indices  []byte
	format   mesh.IndexFormat
	count    int
}

// prepareMesh interleaves the object's mesh and expands its faces into a
// triangle list in the mesh's index width.
func prepareMesh(o *Object) (*meshUpload, error) {
	m := o.mesh
	if m == nil || m.VertexCount() == 0 || m.Geometry.Indices == nil {
		return nil, fmt.Errorf("object %s: empty mesh", o.name)
	}

	tris := m.Geometry.Indices.Triangles()
	format := m.Geometry.Indices.Format
	indices := make([]byte, len(tris)*format.Size())
	for i, v := range tris {
		if format == mesh.Index16 {
			binary.LittleEndian.PutUint16(indices[i*2:], uint16(v))
		} else {
			binary.LittleEndian.PutUint32(indices[i*4:], v)
		}
	}

	return &meshUpload{
		object:   o,
		vertices: m.Interleave(),
		indices:  indices,
		format:   format,
		count:    len(tris),
	}, nil
}
