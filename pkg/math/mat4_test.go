package math

import (
	"testing"
)

func TestMulIdentity(t *testing.T) {
	m := Translate(V3(1, 2, 3))
	if got := m.Mul(Identity()); got != m {
		t.Errorf("M * I = %v, want %v", got, m)
	}
	if got := Identity().Mul(m); got != m {
		t.Errorf("I * M = %v, want %v", got, m)
	}
}

func TestTranslateColumn(t *testing.T) {
	m := Translate(V3(5, 10, 15))
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
	if got := m.Translation(); got != V3(5, 10, 15) {
		t.Errorf("Translation() = %v", got)
	}
}

func TestTransformPoint(t *testing.T) {
	m := Translate(V3(10, 20, 30)).Mul(Scale(Splat3(2)))
	got := m.TransformPoint(V3(1, 2, 3))
	want := V3(12, 24, 36)
	if !got.ApproxEqual(want, 1e-5) {
		t.Errorf("TransformPoint: got %v, want %v", got, want)
	}
}

func TestTransformDirectionIgnoresTranslation(t *testing.T) {
	m := Translate(V3(10, 20, 30))
	if got := m.TransformDirection(V3(0, 1, 0)); got != V3(0, 1, 0) {
		t.Errorf("TransformDirection = %v", got)
	}
}

func TestRotateY90(t *testing.T) {
	got := RotateY(Pi / 2).TransformPoint(V3(1, 0, 0))
	if !got.ApproxEqual(V3(0, 0, -1), 1e-5) {
		t.Errorf("RotateY 90: got %v, want (0, 0, -1)", got)
	}
}

func TestRotateAxisMatchesRotateY(t *testing.T) {
	a := RotateAxis(V3(0, 1, 0), 0.7)
	b := RotateY(0.7)
	if !a.ApproxEqual(b, 1e-6) {
		t.Errorf("RotateAxis(Y) = %v, want %v", a, b)
	}
}

func TestPerspective(t *testing.T) {
	m := Perspective(Pi/4, 1, 0.1, 100)
	if m[11] != -1 || m[15] != 0 {
		t.Errorf("Perspective w row: m[11]=%f m[15]=%f", m[11], m[15])
	}

	// Points on the near and far planes map to NDC -1 and +1.
	near := m.TransformPoint(V3(0, 0, -0.1))
	far := m.TransformPoint(V3(0, 0, -100))
	if Abs(near.Z+1) > 1e-4 || Abs(far.Z-1) > 1e-3 {
		t.Errorf("depth range: near %f far %f", near.Z, far.Z)
	}
}

func TestLookAtMovesEyeToOrigin(t *testing.T) {
	eye := V3(6, 0, 10)
	v := LookAt(eye, Vec3{}, V3(0, 1, 0))
	if got := v.TransformPoint(eye); !got.ApproxEqual(Vec3{}, 1e-5) {
		t.Errorf("eye in view space = %v, want origin", got)
	}
	// Target lies on -Z.
	got := v.TransformPoint(Vec3{})
	if Abs(got.X) > 1e-5 || Abs(got.Y) > 1e-5 || got.Z >= 0 {
		t.Errorf("target in view space = %v, want on -Z", got)
	}
}

func TestInverse(t *testing.T) {
	m := TRS(V3(1, -2, 3), QuatFromAxisAngle(V3(1, 1, 0).Normalize(), 0.4), V3(2, 3, 0.5))
	if got := m.Mul(m.Inverse()); !got.ApproxEqual(Identity(), 1e-5) {
		t.Errorf("M * M^-1 = %v", got)
	}
	var singular Mat4
	if singular.Inverse() != Identity() {
		t.Error("singular inverse should fall back to identity")
	}
}

func TestTRSOrder(t *testing.T) {
	tr, s := V3(1, 2, 3), V3(2, 2, 2)
	r := QuatFromAxisAngle(V3(0, 0, 1), Pi/2)
	want := Translate(tr).Mul(r.ToMat4()).Mul(Scale(s))
	if got := TRS(tr, r, s); !got.ApproxEqual(want, 1e-6) {
		t.Errorf("TRS = %v, want %v", got, want)
	}
}

func TestNormalMatrixUndoesNonUniformScale(t *testing.T) {
	m := Scale(V3(4, 1, 1))
	n := m.NormalMatrix().TransformDirection(V3(1, 1, 0)).Normalize()
	// A plane x+y=0 stretched along X tilts its normal toward Y.
	if n.Y <= n.X {
		t.Errorf("normal %v should favor Y", n)
	}
}

func TestDecomposeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		tr   Vec3
		r    Quat
		s    Vec3
	}{
		{"identity", Vec3{}, QuatIdentity(), V3(1, 1, 1)},
		{"small angle", V3(1, -2, 3), QuatFromAxisAngle(V3(1, 1, 0).Normalize(), 0.4), V3(2, 3, 0.5)},
		{"half turn x", V3(0, 1, 0), QuatFromAxisAngle(V3(1, 0, 0), 3), V3(1, 1, 1)},
		{"half turn z", V3(5, 0, 0), QuatFromAxisAngle(V3(0, 0, 1), 3.1), V3(0.5, 0.5, 0.5)},
		{"mirror", V3(0, 0, 1), QuatFromAxisAngle(V3(0, 1, 0), 0.7), V3(-1, 2, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := TRS(tt.tr, tt.r, tt.s)
			tr, r, s := m.Decompose()
			if got := TRS(tr, r, s); !got.ApproxEqual(m, 1e-5) {
				t.Errorf("TRS(Decompose(m)) = %v, want %v", got, m)
			}
			if !tr.ApproxEqual(tt.tr, 1e-6) {
				t.Errorf("translation = %v, want %v", tr, tt.tr)
			}
		})
	}
}
