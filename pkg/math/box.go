package math

// Box3 is an axis-aligned bounding box.
type Box3 struct {
	Min, Max Vec3
}

// BoxHalf returns the box centred on the origin with half-extents h.
func BoxHalf(h Vec3) Box3 {
	return Box3{Min: h.Neg(), Max: h}
}

// Size returns Max - Min.
func (b Box3) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b Box3) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Contains reports whether p lies inside the box, borders included.
func (b Box3) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Transform returns the axis-aligned box enclosing the eight transformed
// corners of b.
func (b Box3) Transform(m Mat4) Box3 {
	out := Box3{Min: Splat3(maxFloat), Max: Splat3(-maxFloat)}
	for i := 0; i < 8; i++ {
		c := Vec3{b.Min.X, b.Min.Y, b.Min.Z}
		if i&1 != 0 {
			c.X = b.Max.X
		}
		if i&2 != 0 {
			c.Y = b.Max.Y
		}
		if i&4 != 0 {
			c.Z = b.Max.Z
		}
		p := m.TransformVec3(c)
		out.Min = Vec3{min(out.Min.X, p.X), min(out.Min.Y, p.Y), min(out.Min.Z, p.Z)}
		out.Max = Vec3{max(out.Max.X, p.X), max(out.Max.Y, p.Y), max(out.Max.Z, p.Z)}
	}
	return out
}

const maxFloat = 3.4028234663852886e+38
