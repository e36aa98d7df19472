package math

import (
	"testing"
)

func TestQuatNormalize(t *testing.T) {
	n := Quat{X: 1, Y: 2, Z: 3, W: 4}.Normalize()
	if l := Sqrt(n.Dot(n)); Abs(l-1) > 1e-5 {
		t.Errorf("normalized length = %v, want 1", l)
	}
	if (Quat{}).Normalize() != QuatIdentity() {
		t.Error("zero quaternion should normalize to identity")
	}
}

func TestQuatSlerpEndpoints(t *testing.T) {
	q1 := QuatIdentity()
	q2 := QuatFromAxisAngle(V3(0, 1, 0), Pi/2)

	if got := q1.Slerp(q2, 0); Abs(got.W-q1.W) > 1e-5 || Abs(got.Y-q1.Y) > 1e-5 {
		t.Errorf("Slerp(0) = %v, want %v", got, q1)
	}
	if got := q1.Slerp(q2, 1); Abs(got.W-q2.W) > 1e-5 || Abs(got.Y-q2.Y) > 1e-5 {
		t.Errorf("Slerp(1) = %v, want %v", got, q2)
	}

	half := q1.Slerp(q2, 0.5)
	if want := Cos(Pi / 8); Abs(half.W-want) > 1e-4 {
		t.Errorf("Slerp(0.5).W = %v, want %v", half.W, want)
	}
}

func TestQuatSlerpShortPath(t *testing.T) {
	q := QuatFromAxisAngle(V3(0, 1, 0), 0.2)
	neg := Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: -q.W}
	got := QuatIdentity().Slerp(neg, 1)
	if !got.ToMat4().ApproxEqual(q.ToMat4(), 1e-5) {
		t.Errorf("slerp to negated quaternion should reach the same rotation")
	}
}

func TestQuatToMat4(t *testing.T) {
	if m := QuatIdentity().ToMat4(); m != Identity() {
		t.Errorf("identity quaternion matrix = %v", m)
	}
	q := QuatFromAxisAngle(V3(0, 1, 0), 0.9)
	if !q.ToMat4().ApproxEqual(RotateY(0.9), 1e-6) {
		t.Errorf("axis-angle Y rotation mismatch")
	}
}

func TestQuatMulComposes(t *testing.T) {
	a := QuatFromAxisAngle(V3(0, 0, 1), 0.3)
	b := QuatFromAxisAngle(V3(0, 0, 1), 0.5)
	want := QuatFromAxisAngle(V3(0, 0, 1), 0.8)
	if got := a.Mul(b); Abs(got.Dot(want)-1) > 1e-5 {
		t.Errorf("a*b = %v, want %v", got, want)
	}
}

func TestQuatFromMat4(t *testing.T) {
	for _, q := range []Quat{
		QuatIdentity(),
		QuatFromAxisAngle(V3(0, 1, 0), 0.9),
		QuatFromAxisAngle(V3(1, 0, 0), Pi),
		QuatFromAxisAngle(V3(0, 1, 0), Pi),
		QuatFromAxisAngle(V3(0, 0, 1), Pi),
		QuatFromAxisAngle(V3(1, 2, 3).Normalize(), 2.5),
	} {
		got := QuatFromMat4(q.ToMat4())
		// q and -q are the same rotation.
		if d := Abs(got.Dot(q)); Abs(d-1) > 1e-5 {
			t.Errorf("QuatFromMat4(%v) = %v", q, got)
		}
	}
}
