package scene

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/revolve/internal/engine/gpu"
	"github.com/Faultbox/revolve/internal/mesh"
	"github.com/Faultbox/revolve/pkg/math"
)

// Vertex attribute locations of the geometry pass.
const (
	attribPosition = 0
	attribNormal   = 1
	attribTangent  = 2
	attribTexCoord = 3
)

// Object is a mesh drawn with a material.
type Object struct {
	name     string
	mesh     *mesh.Mesh
	material *Material

	model  math.Mat4
	bounds math.Box3

	vao, vbo, ebo uint32
	indexType     uint32
	indexCount    int32
	resident      bool
}

// NewObject creates an object at the origin.
func NewObject(name string, m *mesh.Mesh, mat *Material) *Object {
	o := &Object{name: name, mesh: m, material: mat}
	o.SetModel(math.Identity())
	return o
}

// Name returns the object name.
func (o *Object) Name() string {
	return o.name
}

// Material returns the object's material.
func (o *Object) Material() *Material {
	return o.material
}

// SetModel sets the model transform and updates the world bounds.
func (o *Object) SetModel(m math.Mat4) {
	o.model = m
	if o.mesh != nil {
		o.bounds = o.mesh.Bounds().Transform(m)
	}
}

// Model returns the model transform.
func (o *Object) Model() math.Mat4 {
	return o.model
}

// WorldBounds returns the bounds of the transformed mesh.
func (o *Object) WorldBounds() math.Box3 {
	return o.bounds
}

// Resident reports whether the GPU buffers exist.
func (o *Object) Resident() bool {
	return o.resident
}

// Draw binds the material and draws the triangles.
func (o *Object) Draw(p *gpu.Pipeline) {
	if !o.resident {
		return
	}
	p.SetMat4("uModel", o.model)
	if o.material != nil {
		o.material.bind(p)
	}
	gl.BindVertexArray(o.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, o.indexCount, o.indexType, 0)
	gl.BindVertexArray(0)
}

// upload creates the vertex array: position, packed normal and tangent as
// half floats, then texcoord.
func (o *Object) upload(u *meshUpload) {
	o.release()

	gl.GenVertexArrays(1, &o.vao)
	gl.BindVertexArray(o.vao)

	gl.GenBuffers(1, &o.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(u.vertices), gl.Ptr(u.vertices), gl.STATIC_DRAW)

	gl.VertexAttribPointerWithOffset(attribPosition, 3, gl.FLOAT, false, mesh.Stride, 0)
	gl.EnableVertexAttribArray(attribPosition)
	gl.VertexAttribPointerWithOffset(attribNormal, 4, gl.HALF_FLOAT, false, mesh.Stride, 12)
	gl.EnableVertexAttribArray(attribNormal)
	gl.VertexAttribPointerWithOffset(attribTangent, 4, gl.HALF_FLOAT, false, mesh.Stride, 20)
	gl.EnableVertexAttribArray(attribTangent)
	gl.VertexAttribPointerWithOffset(attribTexCoord, 2, gl.FLOAT, false, mesh.Stride, 28)
	gl.EnableVertexAttribArray(attribTexCoord)

	gl.GenBuffers(1, &o.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, o.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(u.indices), gl.Ptr(u.indices), gl.STATIC_DRAW)

	gl.BindVertexArray(0)

	o.indexType = gl.UNSIGNED_INT
	if u.format == mesh.Index16 {
		o.indexType = gl.UNSIGNED_SHORT
	}
	o.indexCount = int32(u.count)
	o.resident = true
}

// release deletes the GPU buffers.
func (o *Object) release() {
	if o.vao != 0 {
		gl.DeleteVertexArrays(1, &o.vao)
		o.vao = 0
	}
	if o.vbo != 0 {
		gl.DeleteBuffers(1, &o.vbo)
		o.vbo = 0
	}
	if o.ebo != 0 {
		gl.DeleteBuffers(1, &o.ebo)
		o.ebo = 0
	}
	o.resident = false
}
