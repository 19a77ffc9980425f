package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
	if !q.ToMat4().ApproxEqual(Identity(), 1e-12) {
		t.Error("identity quaternion should produce identity matrix")
	}
}

func TestQuatNormalize(t *testing.T) {
	n := Quat{X: 1, Y: 2, Z: 3, W: 4}.Normalize()
	if length := math.Sqrt(n.Dot(n)); math.Abs(length-1) > 1e-9 {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}
}

func TestQuatSlerp(t *testing.T) {
	q1 := QuatIdentity()
	q2 := QuatFromAxisAngle(Vec3{X: 0, Y: 1, Z: 0}, math.Pi/2)

	if r := q1.Slerp(q2, 0); math.Abs(r.W-q1.W) > 0.001 {
		t.Errorf("Slerp at t=0 should equal q1")
	}
	if r := q1.Slerp(q2, 1); math.Abs(r.W-q2.W) > 0.001 {
		t.Errorf("Slerp at t=1 should equal q2")
	}
}

func TestQuatFromMat4RoundTrip(t *testing.T) {
	axes := []Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, Vec3{1, 1, 1}.Normalize()}
	angles := []float64{0.1, 1, math.Pi / 2, 3}
	for _, axis := range axes {
		for _, angle := range angles {
			q := QuatFromAxisAngle(axis, angle)
			got := QuatFromMat4(q.ToMat4())
			// q and -q encode the same rotation
			if math.Abs(math.Abs(got.Dot(q))-1) > 1e-9 {
				t.Errorf("axis %v angle %v: got %v, want %v", axis, angle, got, q)
			}
		}
	}
}

func TestQuatArray(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	if QuatFromArray(q.Array()) != q {
		t.Errorf("array round trip changed %v", q)
	}
}
