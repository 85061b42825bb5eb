// Package texture generates the animated procedural diffuse texture.
package texture

import (
	"hash/fnv"
	"image"

	"github.com/chewxy/math32"
)

// Channel phases added to the pattern value before the cosine.
var phases = [3]float32{0, math32.Pi / 2, math32.Pi}

// Synthesize renders frame of the XOR interference pattern into a new
// size x size RGBA image. The result depends only on its arguments, so
// equal inputs give byte-identical pixels. frame wraps modulo 2^32.
func Synthesize(size int, frame uint32) *image.RGBA {
	if size <= 0 {
		panic("texture: size must be positive")
	}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		row := img.Pix[y*img.Stride:]
		uy := uint32(y)
		for x := 0; x < size; x++ {
			ux := uint32(x)
			v := float32(((ux-(frame^uy))^(uy+(frame^ux)))&255) / 63

			p := row[x*4 : x*4+4 : x*4+4]
			p[0] = channel(v + phases[0])
			p[1] = channel(v + phases[1])
			p[2] = channel(v + phases[2])
			p[3] = 255
		}
	}
	return img
}

// channel maps cos(a) from [-1, 1] to [0, 255], truncating.
func channel(a float32) uint8 {
	return uint8(math32.Cos(a)*127.5 + 127.5)
}

// Fingerprint returns the FNV-64a hash of the image pixels.
func Fingerprint(img *image.RGBA) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(img.Pix)
	return h.Sum64()
}
