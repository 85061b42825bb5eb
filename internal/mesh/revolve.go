package mesh

import (
	"encoding/binary"
	gomath "math"

	"github.com/chewxy/math32"

	"github.com/Faultbox/revolve/pkg/math"
)

// Params describes a surface of revolution.
type Params struct {
	StepsU uint32 // segments around the major axis
	StepsV uint32 // segments around the minor circle

	Major float32 // distance from the axis to the minor circle centre
	Minor float32 // minor circle radius

	TexCoordScale float32
}

// VertexCount returns (StepsU+1)*(StepsV+1).
func (p Params) VertexCount() int {
	return int(p.StepsU+1) * int(p.StepsV+1)
}

// IndexCount returns StepsU*StepsV*4.
func (p Params) IndexCount() int {
	return int(p.StepsU) * int(p.StepsV) * 4
}

// HalfExtents returns the analytic half size of the surface.
func (p Params) HalfExtents() math.Vec3 {
	r := p.Major + p.Minor
	return math.Vec3{X: r, Y: r, Z: p.Minor}
}

// Revolve builds the surface swept by the minor circle around the Z axis.
// The seam rows and columns are duplicated so texcoords stay continuous.
// Both step counts must be at least one.
func Revolve(p Params) *Mesh {
	if p.StepsU == 0 || p.StepsV == 0 {
		panic("mesh: revolve needs at least one step on each axis")
	}

	numVertices := p.VertexCount()
	m := &Mesh{
		Positions: make([]math.Vec3, 0, numVertices),
		Normals:   make([]math.Vec3, 0, numVertices),
		Tangents:  make([]math.Vec4, 0, numVertices),
		TexCoords: make([]math.Vec2, 0, numVertices),
	}

	isteps := math.Vec2{X: 1 / float32(p.StepsU), Y: 1 / float32(p.StepsV)}
	aspect := p.Major / p.Minor
	const twoPi = 2 * math32.Pi

	for j := uint32(0); j <= p.StepsV; j++ {
		ty := float32(j) * isteps.Y
		sv, cv := math32.Sincos(ty*twoPi - math32.Pi/2)
		z := -cv
		r := sv
		for i := uint32(0); i <= p.StepsU; i++ {
			tx := float32(i) * isteps.X
			su, cu := math32.Sincos(tx * twoPi)
			x := -su
			y := cu

			ring := r*p.Minor + p.Major
			m.Positions = append(m.Positions, math.Vec3{X: x * ring, Y: y * ring, Z: z * p.Minor})
			m.Normals = append(m.Normals, math.Vec3{X: x * r, Y: y * r, Z: z})
			m.Tangents = append(m.Tangents, math.Vec4{X: -y, Y: x, Z: 0, W: 1})
			m.TexCoords = append(m.TexCoords, math.Vec2{X: tx * aspect, Y: ty}.Scale(p.TexCoordScale))
		}
	}

	m.Basis = packAttributes(m.Normals, m.Tangents)

	indices := NewIndices(Quadrilateral, numVertices, p.IndexCount())
	index := 0
	row := p.StepsU + 1
	for j := uint32(0); j < p.StepsV; j++ {
		for i := uint32(0); i < p.StepsU; i++ {
			v := row*j + i
			indices.Set4(index, v, v+1, v+row+1, v+row)
			index += 4
		}
	}

	m.Geometry = Geometry{
		Streams: []AttributeType{AttributePosition, AttributeBasis, AttributeNormal, AttributeTexCoord},
		Indices: indices,
		Bounds:  math.BoxHalf(p.HalfExtents()),
	}
	return m
}

// Stride is the size in bytes of one interleaved vertex:
// position (3 x f32), basis (4 x u32), texcoord (2 x f32).
const Stride = 12 + 16 + 8

// Interleave packs position, basis and texcoord into one little-endian
// vertex buffer with Stride bytes per vertex.
func (m *Mesh) Interleave() []byte {
	out := make([]byte, len(m.Positions)*Stride)
	le := binary.LittleEndian
	for i, p := range m.Positions {
		b := out[i*Stride:]
		le.PutUint32(b[0:], gomath.Float32bits(p.X))
		le.PutUint32(b[4:], gomath.Float32bits(p.Y))
		le.PutUint32(b[8:], gomath.Float32bits(p.Z))
		for k, w := range m.Basis[i] {
			le.PutUint32(b[12+4*k:], w)
		}
		le.PutUint32(b[28:], gomath.Float32bits(m.TexCoords[i].X))
		le.PutUint32(b[32:], gomath.Float32bits(m.TexCoords[i].Y))
	}
	return out
}
