// Package math provides the float32 vector, matrix and box types shared by
// the mesh builder, the frame loop and the GPU backend.
package math

import "github.com/chewxy/math32"

// Vec2 is a 2D vector: texcoords and clip-space positions.
type Vec2 struct {
	X, Y float32
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Scale returns v * scalar.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Length returns the magnitude.
func (v Vec2) Length() float32 {
	return math32.Hypot(v.X, v.Y)
}
