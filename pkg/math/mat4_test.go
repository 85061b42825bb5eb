package math

import (
	"testing"
)

func approx(a, b float32) bool {
	d := a - b
	return d < 1e-5 && d > -1e-5
}

func TestIdentity(t *testing.T) {
	m := Identity()
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
	got := m.TransformVec3(Vec3{1, 2, 3})
	if got != (Vec3{6, 12, 18}) {
		t.Errorf("TransformVec3: got %v", got)
	}
}

func TestRotate(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
		in   Vec3
		want Vec3
	}{
		{"z90", RotateZ(Radians(90)), Vec3{1, 0, 0}, Vec3{0, 1, 0}},
		{"x90", RotateX(Radians(90)), Vec3{0, 1, 0}, Vec3{0, 0, 1}},
		{"y90", RotateY(Radians(90)), Vec3{0, 0, 1}, Vec3{1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.TransformVec3(tt.in)
			if !approx(got.X, tt.want.X) || !approx(got.Y, tt.want.Y) || !approx(got.Z, tt.want.Z) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMulComposesRightToLeft(t *testing.T) {
	// Translate after scale: point is scaled first.
	m := Translate(1, 0, 0).Mul(Scale(2, 2, 2))
	got := m.TransformVec3(Vec3{1, 1, 1})
	if got != (Vec3{3, 2, 2}) {
		t.Errorf("got %v, want (3,2,2)", got)
	}
}

func TestPerspectiveMapsNearPlane(t *testing.T) {
	p := Perspective(Radians(60), 1, 1, 100)
	v := p.MulVec4(Vec4{0, 0, -1, 1})
	if !approx(v.Z/v.W, -1) {
		t.Errorf("near plane depth = %v, want -1", v.Z/v.W)
	}
}
