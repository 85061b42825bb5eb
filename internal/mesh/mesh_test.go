package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/revolve/pkg/math"
)

func torus(u, v uint32) Params {
	return Params{StepsU: u, StepsV: v, Major: 8, Minor: 2, TexCoordScale: 2}
}

func TestRevolveCounts(t *testing.T) {
	tests := []struct {
		u, v uint32
	}{
		{1, 1}, {1, 7}, {3, 2}, {64, 32}, {10, 10},
	}
	for _, tt := range tests {
		m := Revolve(torus(tt.u, tt.v))
		assert.Equal(t, int((tt.u+1)*(tt.v+1)), m.VertexCount(), "vertices for %dx%d", tt.u, tt.v)
		assert.Equal(t, int(tt.u*tt.v*4), m.IndexCount(), "indices for %dx%d", tt.u, tt.v)
		assert.Len(t, m.Basis, m.VertexCount())
		assert.Len(t, m.TexCoords, m.VertexCount())
	}
}

func TestRevolveIndexWidth(t *testing.T) {
	small := Revolve(torus(10, 10))
	require.Equal(t, 121, small.VertexCount())
	assert.Equal(t, Index16, small.Geometry.Indices.Format)
	assert.NotNil(t, small.Geometry.Indices.Uint16())

	large := Revolve(torus(300, 300))
	require.Equal(t, 90601, large.VertexCount())
	assert.Equal(t, Index32, large.Geometry.Indices.Format)
	assert.NotNil(t, large.Geometry.Indices.Uint32())
}

func TestIndexFormatThreshold(t *testing.T) {
	assert.Equal(t, Index16, IndexFormatFor(MaxIndex16-1))
	assert.Equal(t, Index32, IndexFormatFor(MaxIndex16))
	assert.Equal(t, Index32, IndexFormatFor(1<<20))
}

func TestRevolveBasis(t *testing.T) {
	m := Revolve(torus(24, 12))
	for i := range m.Normals {
		assert.Equal(t, float32(1), m.Tangents[i].W, "tangent w at %d", i)
		assert.InDelta(t, 0, m.Normals[i].Dot(m.Tangents[i].XYZ()), 1e-5, "n.t at %d", i)
		assert.InDelta(t, 1, m.Normals[i].Length(), 1e-5, "normal length at %d", i)

		n, tan := m.Basis[i].Unpack()
		assert.Equal(t, float32(1), tan.W, "packed tangent w at %d", i)
		assert.InDelta(t, 0, n.Dot(tan.XYZ()), 2e-3, "packed n.t at %d", i)
		assert.InDelta(t, m.Normals[i].X, n.X, 1e-3)
		assert.InDelta(t, m.Normals[i].Z, n.Z, 1e-3)
	}
}

func TestRevolveBounds(t *testing.T) {
	for _, steps := range []uint32{1, 4, 33, 128} {
		m := Revolve(torus(steps, steps))
		want := math.Box3{Min: math.Vec3{X: -10, Y: -10, Z: -2}, Max: math.Vec3{X: 10, Y: 10, Z: 2}}
		assert.Equal(t, want, m.Bounds(), "steps %d", steps)

		grown := math.Box3{Min: want.Min.Sub(math.Splat3(1e-4)), Max: want.Max.Add(math.Splat3(1e-4))}
		for i, p := range m.Positions {
			if !grown.Contains(p) {
				t.Fatalf("steps %d: vertex %d %v outside bounds", steps, i, p)
			}
		}
	}
}

func TestRevolveSharedIndexing(t *testing.T) {
	m := Revolve(torus(3, 2))
	g := m.Geometry
	assert.Equal(t, []AttributeType{AttributePosition, AttributeBasis, AttributeNormal, AttributeTexCoord}, g.Streams)
	assert.Equal(t, Quadrilateral, g.Indices.Primitive)

	// first cell and last cell of a 3x2 grid
	assert.Equal(t, []uint32{0, 1, 5, 4}, []uint32{g.Indices.At(0), g.Indices.At(1), g.Indices.At(2), g.Indices.At(3)})
	n := g.Indices.Len()
	assert.Equal(t, []uint32{6, 7, 11, 10}, []uint32{g.Indices.At(n - 4), g.Indices.At(n - 3), g.Indices.At(n - 2), g.Indices.At(n - 1)})
}

func TestRevolveTexCoords(t *testing.T) {
	m := Revolve(torus(4, 4))
	last := m.TexCoords[len(m.TexCoords)-1]
	// aspect 8/2 = 4, scale 2
	assert.InDelta(t, 8, last.X, 1e-5)
	assert.InDelta(t, 2, last.Y, 1e-5)
}

func TestRevolveSeam(t *testing.T) {
	m := Revolve(torus(16, 8))
	row := 17
	for j := 0; j <= 8; j++ {
		first, last := m.Positions[j*row], m.Positions[j*row+16]
		assert.InDelta(t, first.X, last.X, 1e-4)
		assert.InDelta(t, first.Y, last.Y, 1e-4)
		assert.InDelta(t, first.Z, last.Z, 1e-4)
	}
}

func TestRevolveZeroStepsPanics(t *testing.T) {
	assert.Panics(t, func() { Revolve(torus(0, 4)) })
	assert.Panics(t, func() { Revolve(torus(4, 0)) })
}

func TestTriangles(t *testing.T) {
	ix := NewIndices(Quadrilateral, 4, 4)
	ix.Set4(0, 0, 1, 2, 3)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, ix.Triangles())
}

func TestInterleave(t *testing.T) {
	m := Revolve(torus(2, 2))
	buf := m.Interleave()
	assert.Len(t, buf, m.VertexCount()*Stride)
}

func TestPackHalf2(t *testing.T) {
	exact := map[float32]uint16{0: 0, 1: 0x3c00, -1: 0xbc00, 0.5: 0x3800, 2: 0x4000}
	for f, h := range exact {
		w := packHalf2(f, -f)
		assert.Equal(t, uint32(h), w&0xffff, "encode %v", f)
		lo, hi := unpackHalf2(w)
		assert.Equal(t, f, lo, "decode %v", f)
		assert.Equal(t, -f, hi, "decode %v", -f)
	}
	for _, f := range []float32{0.1, -0.7071, 0.333, 12.5, 3e-4} {
		got, _ := unpackHalf2(packHalf2(f, 0))
		assert.InEpsilon(t, f, got, 1e-3, "round trip %v", f)
	}
	assert.Equal(t, uint32(0x7c00), packHalf2(1e6, 0))
}
