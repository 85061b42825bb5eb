// Package mesh builds procedural meshes in the engine's multi-stream layout.
package mesh

import (
	"fmt"

	"github.com/Faultbox/revolve/pkg/math"
)

// AttributeType identifies a per-vertex attribute stream.
type AttributeType int

const (
	AttributePosition AttributeType = iota
	AttributeBasis
	AttributeNormal
	AttributeTexCoord
)

func (a AttributeType) String() string {
	switch a {
	case AttributePosition:
		return "position"
	case AttributeBasis:
		return "basis"
	case AttributeNormal:
		return "normal"
	case AttributeTexCoord:
		return "texcoord"
	}
	return fmt.Sprintf("attribute(%d)", int(a))
}

// IndexFormat is the element width of an index buffer.
type IndexFormat int

const (
	Index16 IndexFormat = iota
	Index32
)

// Size returns the element size in bytes.
func (f IndexFormat) Size() int {
	if f == Index16 {
		return 2
	}
	return 4
}

func (f IndexFormat) String() string {
	if f == Index16 {
		return "u16"
	}
	return "u32"
}

// MaxIndex16 is the first vertex count that no longer fits 16-bit indices.
// 0xffff itself stays reserved as the primitive restart value.
const MaxIndex16 = 0xffff

// IndexFormatFor returns the narrowest index format able to address
// vertexCount vertices.
func IndexFormatFor(vertexCount int) IndexFormat {
	if vertexCount < MaxIndex16 {
		return Index16
	}
	return Index32
}

// Primitive is the face type an index buffer describes.
type Primitive int

const (
	Triangle Primitive = iota
	Quadrilateral
)

// Corners returns the number of indices per face.
func (p Primitive) Corners() int {
	if p == Quadrilateral {
		return 4
	}
	return 3
}

// Geometry binds attribute streams to a shared index buffer.
type Geometry struct {
	Streams []AttributeType
	Indices *Indices
	Bounds  math.Box3
}

// Mesh is a procedurally built mesh. Every attribute slice has one entry
// per vertex and all streams are addressed by the same indices.
type Mesh struct {
	Positions []math.Vec3
	Normals   []math.Vec3
	Tangents  []math.Vec4
	TexCoords []math.Vec2
	Basis     []Basis

	Geometry Geometry
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// IndexCount returns the number of indices.
func (m *Mesh) IndexCount() int {
	return m.Geometry.Indices.Len()
}

// Bounds returns the geometry bounding box.
func (m *Mesh) Bounds() math.Box3 {
	return m.Geometry.Bounds
}
