package math

import (
	"testing"
)

func TestVec3Cross(t *testing.T) {
	if got := V3(1, 0, 0).Cross(V3(0, 1, 0)); got != V3(0, 0, 1) {
		t.Errorf("Cross() = %v, want (0,0,1)", got)
	}
}

func TestVec3Normalize(t *testing.T) {
	if l := V3(3, 4, 12).Normalize().Length(); Abs(l-1) > 1e-6 {
		t.Errorf("Normalize().Length() = %v", l)
	}
	if (Vec3{}).Normalize() != (Vec3{}) {
		t.Error("zero vector should stay zero")
	}
}

func TestVec3Lerp(t *testing.T) {
	got := Vec3{}.Lerp(V3(10, 20, 30), 0.5)
	if got != V3(5, 10, 15) {
		t.Errorf("Lerp = %v", got)
	}
}

func TestVec3Reflect(t *testing.T) {
	got := V3(1, -1, 0).Reflect(V3(0, 1, 0))
	if got != V3(1, 1, 0) {
		t.Errorf("Reflect = %v", got)
	}
}

func TestVec4Project(t *testing.T) {
	if got := (Vec4{2, 4, 6, 2}).Project(); got != V3(1, 2, 3) {
		t.Errorf("Project = %v", got)
	}
}

func TestMod(t *testing.T) {
	if got := Mod(27, 10); Abs(got-7) > 1e-6 {
		t.Errorf("Mod(27,10) = %v", got)
	}
	if got := Clamp(5, 0, 1); got != 1 {
		t.Errorf("Clamp = %v", got)
	}
}

func TestVec2Length(t *testing.T) {
	if got := (Vec2{3, 4}).Length(); got != 5 {
		t.Errorf("Length() = %v, want 5", got)
	}
}
