package mesh

import (
	"github.com/x448/float16"

	"github.com/Faultbox/revolve/pkg/math"
)

// Basis is a normal and tangent pair packed as eight half floats:
// nx ny | nz 0 | tx ty | tz tw, low half first in each word.
type Basis [4]uint32

func packHalf2(lo, hi float32) uint32 {
	return uint32(float16.Fromfloat32(lo).Bits()) | uint32(float16.Fromfloat32(hi).Bits())<<16
}

func unpackHalf2(w uint32) (float32, float32) {
	return float16.Frombits(uint16(w)).Float32(), float16.Frombits(uint16(w >> 16)).Float32()
}

// PackBasis packs a normal and a tangent into one attribute.
func PackBasis(n math.Vec3, t math.Vec4) Basis {
	return Basis{
		packHalf2(n.X, n.Y),
		packHalf2(n.Z, 0),
		packHalf2(t.X, t.Y),
		packHalf2(t.Z, t.W),
	}
}

// Unpack restores the normal and tangent at half precision.
func (b Basis) Unpack() (math.Vec3, math.Vec4) {
	nx, ny := unpackHalf2(b[0])
	nz, _ := unpackHalf2(b[1])
	tx, ty := unpackHalf2(b[2])
	tz, tw := unpackHalf2(b[3])
	return math.Vec3{X: nx, Y: ny, Z: nz}, math.Vec4{X: tx, Y: ty, Z: tz, W: tw}
}

// packAttributes packs every normal/tangent pair of the mesh.
func packAttributes(normals []math.Vec3, tangents []math.Vec4) []Basis {
	out := make([]Basis, len(normals))
	for i := range normals {
		out[i] = PackBasis(normals[i], tangents[i])
	}
	return out
}
