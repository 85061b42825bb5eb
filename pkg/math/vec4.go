package math

// Vec4 is a 4-component vector.
type Vec4 struct {
	X, Y, Z, W float32
}

// XYZ drops the w component.
func (v Vec4) XYZ() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// Color is a linear RGBA color.
type Color struct {
	R, G, B, A float32
}

// Gray returns an opaque color with every channel set to v.
func Gray(v float32) Color {
	return Color{v, v, v, 1}
}
