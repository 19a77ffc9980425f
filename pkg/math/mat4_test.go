package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
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

	// Translation lives in column 4 (indices 12, 13, 14)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
	if m.At(0, 3) != 5 {
		t.Errorf("At(0, 3) = %f, want 5", m.At(0, 3))
	}
}

func TestTransformPoint(t *testing.T) {
	m := Translate(10, 20, 30)
	got := m.TransformPoint(Vec3{1, 2, 3})
	want := Vec3{11, 22, 33}
	if got != want {
		t.Errorf("TransformPoint: got %v, want %v", got, want)
	}
}

func TestTranspose(t *testing.T) {
	m := Translate(1, 2, 3).Transpose()
	if m[3] != 1 || m[7] != 2 || m[11] != 3 {
		t.Errorf("Transpose moved translation to %v", m)
	}
	if m.Transpose() != Translate(1, 2, 3) {
		t.Error("double transpose should be a no-op")
	}
}

func TestInverse(t *testing.T) {
	m := Translate(1, 2, 3).Mul(Scale(2, 2, 2))
	if !m.Mul(m.Inverse()).ApproxEqual(Identity(), 1e-9) {
		t.Errorf("M * M^-1 should be identity, got %v", m.Mul(m.Inverse()))
	}
}

func TestInverseSingular(t *testing.T) {
	var zero Mat4
	if zero.Inverse() != Identity() {
		t.Error("singular matrix inverse should fall back to identity")
	}
}

func TestIsIdentity(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
		eps  float64
		want bool
	}{
		{"exact", Identity(), 0, true},
		{"within epsilon", Translate(0.005, 0, 0), 0.01, true},
		{"outside epsilon", Translate(0.02, 0, 0), 0.01, false},
		{"scaled", Scale(1.5, 1, 1), 0.01, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.IsIdentity(tt.eps); got != tt.want {
				t.Errorf("IsIdentity(%v) = %v, want %v", tt.eps, got, tt.want)
			}
		})
	}
}

func TestComposeDecompose(t *testing.T) {
	tests := []struct {
		name string
		t    Vec3
		r    Quat
		s    Vec3
	}{
		{"identity", Vec3{}, QuatIdentity(), Vec3{1, 1, 1}},
		{"translate only", Vec3{1, -2, 3}, QuatIdentity(), Vec3{1, 1, 1}},
		{"rotate y", Vec3{0, 0, 0}, QuatFromAxisAngle(Vec3{0, 1, 0}, math.Pi/3), Vec3{1, 1, 1}},
		{"full", Vec3{4, 5, 6}, QuatFromAxisAngle(Vec3{1, 0, 0}.Normalize(), 1.2), Vec3{2, 3, 4}},
		{"mirrored", Vec3{0, 1, 0}, QuatFromAxisAngle(Vec3{0, 0, 1}, 0.7), Vec3{-1, 2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Compose(tt.t, tt.r, tt.s)
			gt, gr, gs := m.Decompose()
			if !gt.ApproxEqual(tt.t, 1e-9) {
				t.Errorf("translation = %v, want %v", gt, tt.t)
			}
			if !Compose(gt, gr, gs).ApproxEqual(m, 1e-9) {
				t.Errorf("Compose(Decompose(m)) = %v, want %v", Compose(gt, gr, gs), m)
			}
		})
	}
}

func TestDecomposeNegativeDeterminant(t *testing.T) {
	m := Scale(1, -1, 1)
	_, _, s := m.Decompose()
	if s.X >= 0 {
		t.Errorf("expected X scale to carry the reflection, got %v", s)
	}
}
