package mesh

// Indices is an index buffer whose element width is picked from the vertex
// count it has to address.
type Indices struct {
	Format    IndexFormat
	Primitive Primitive

	u16 []uint16
	u32 []uint32
}

// NewIndices allocates count indices addressing vertexCount vertices.
func NewIndices(prim Primitive, vertexCount, count int) *Indices {
	ix := &Indices{
		Format:    IndexFormatFor(vertexCount),
		Primitive: prim,
	}
	if ix.Format == Index16 {
		ix.u16 = make([]uint16, count)
	} else {
		ix.u32 = make([]uint32, count)
	}
	return ix
}

// Len returns the number of indices.
func (ix *Indices) Len() int {
	if ix.Format == Index16 {
		return len(ix.u16)
	}
	return len(ix.u32)
}

// At returns index i widened to 32 bits.
func (ix *Indices) At(i int) uint32 {
	if ix.Format == Index16 {
		return uint32(ix.u16[i])
	}
	return ix.u32[i]
}

// Set stores v at position i.
func (ix *Indices) Set(i int, v uint32) {
	if ix.Format == Index16 {
		ix.u16[i] = uint16(v)
		return
	}
	ix.u32[i] = v
}

// Set4 stores one quadrilateral starting at position i.
func (ix *Indices) Set4(i int, a, b, c, d uint32) {
	ix.Set(i, a)
	ix.Set(i+1, b)
	ix.Set(i+2, c)
	ix.Set(i+3, d)
}

// Uint16 returns the raw 16-bit storage, nil for 32-bit buffers.
func (ix *Indices) Uint16() []uint16 {
	return ix.u16
}

// Uint32 returns the raw 32-bit storage, nil for 16-bit buffers.
func (ix *Indices) Uint32() []uint32 {
	return ix.u32
}

// Triangles expands the faces into a triangle list. Quads a,b,c,d become
// a,b,c and a,c,d.
func (ix *Indices) Triangles() []uint32 {
	n := ix.Len()
	if ix.Primitive != Quadrilateral {
		out := make([]uint32, n)
		for i := range out {
			out[i] = ix.At(i)
		}
		return out
	}

	out := make([]uint32, 0, n/4*6)
	for i := 0; i+3 < n; i += 4 {
		a, b, c, d := ix.At(i), ix.At(i+1), ix.At(i+2), ix.At(i+3)
		out = append(out, a, b, c, a, c, d)
	}
	return out
}
