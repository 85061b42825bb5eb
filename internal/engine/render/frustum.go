package render

import (
	"github.com/Faultbox/revolve/pkg/math"
)

// Plane is n·p + d = 0 with n pointing inside.
type Plane struct {
	Normal math.Vec3
	D      float32
}

// Distance returns the signed distance of p to the plane.
func (pl Plane) Distance(p math.Vec3) float32 {
	return pl.Normal.Dot(p) + pl.D
}

// Frustum is the left, right, bottom, top, near and far planes.
type Frustum [6]Plane

// FrustumFromMatrix extracts the clip planes of a view-projection matrix.
func FrustumFromMatrix(m math.Mat4) Frustum {
	row := func(i int) math.Vec4 {
		return math.Vec4{X: m[i], Y: m[4+i], Z: m[8+i], W: m[12+i]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	planes := [6]math.Vec4{
		add4(r3, r0), sub4(r3, r0),
		add4(r3, r1), sub4(r3, r1),
		add4(r3, r2), sub4(r3, r2),
	}

	var f Frustum
	for i, p := range planes {
		n := p.XYZ()
		l := n.Length()
		if l == 0 {
			continue
		}
		f[i] = Plane{Normal: n.Scale(1 / l), D: p.W / l}
	}
	return f
}

func add4(a, b math.Vec4) math.Vec4 {
	return math.Vec4{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z, W: a.W + b.W}
}

func sub4(a, b math.Vec4) math.Vec4 {
	return math.Vec4{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z, W: a.W - b.W}
}

// IntersectsBox reports whether b is at least partly inside. The test is
// conservative: some boxes near frustum corners pass although outside.
func (f Frustum) IntersectsBox(b math.Box3) bool {
	for _, pl := range f {
		p := b.Min
		if pl.Normal.X >= 0 {
			p.X = b.Max.X
		}
		if pl.Normal.Y >= 0 {
			p.Y = b.Max.Y
		}
		if pl.Normal.Z >= 0 {
			p.Z = b.Max.Z
		}
		if pl.Distance(p) < 0 {
			return false
		}
	}
	return true
}
