package accessor

import (
	"testing"

	"github.com/Faultbox/assetkit/pkg/math"
)

func TestBuilderVec3RoundTrip(t *testing.T) {
	b := NewBuilder(0)
	positions := []math.Vec3{{X: 1, Y: 2, Z: 3}, {X: -4, Y: 5, Z: 0.5}}
	enc := b.AddVec3s(positions, TargetArray)

	if enc.Accessor.Min[0] != -4 || enc.Accessor.Max[1] != 5 {
		t.Errorf("min/max = %v/%v", enc.Accessor.Min, enc.Accessor.Max)
	}

	elems, err := enc.Accessor.Decode([][]byte{b.Bytes()})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	got, err := elems.Vec3s()
	if err != nil {
		t.Fatalf("Vec3s failed: %v", err)
	}
	for i := range positions {
		if got[i] != positions[i] {
			t.Errorf("element %d = %v, want %v", i, got[i], positions[i])
		}
	}
}

func TestBuilderAlignment(t *testing.T) {
	b := NewBuilder(0)
	b.AddUints([]uint32{1, 2, 3}, UnsignedByte, Scalar, TargetElementArray)
	enc := b.AddScalars([]float64{42})

	if off := b.Views[enc.ViewIndex].ByteOffset; off%4 != 0 {
		t.Errorf("second view offset %d is not 4-byte aligned", off)
	}
	if len(b.Bytes())%4 != 0 {
		t.Errorf("buffer length %d is not a multiple of 4", len(b.Bytes()))
	}

	elems, err := enc.Accessor.Decode([][]byte{b.Bytes()})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if v := elems.Floats()[0]; v != 42 {
		t.Errorf("value = %v, want 42", v)
	}
}

func TestBuilderIndices(t *testing.T) {
	b := NewBuilder(3)
	enc := b.AddIndices([]uint32{0, 1, 2, 2, 1, 70000})
	if enc.Accessor.View.Buffer != 3 {
		t.Errorf("view buffer = %d, want 3", enc.Accessor.View.Buffer)
	}
	if enc.Accessor.View.Target != TargetElementArray {
		t.Errorf("target = %d, want element array", enc.Accessor.View.Target)
	}

	buffers := [][]byte{nil, nil, nil, b.Bytes()}
	elems, err := enc.Accessor.Decode(buffers)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	got, err := elems.Uints()
	if err != nil {
		t.Fatalf("Uints failed: %v", err)
	}
	if got[5] != 70000 {
		t.Errorf("last index = %d, want 70000", got[5])
	}
}

func TestBuilderMat4(t *testing.T) {
	b := NewBuilder(0)
	m := math.Translate(1, 2, 3)
	enc := b.AddMat4s([]math.Mat4{m})

	elems, err := enc.Accessor.Decode([][]byte{b.Bytes()})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	got, err := elems.Mat4s()
	if err != nil {
		t.Fatalf("Mat4s failed: %v", err)
	}
	if got[0] != m {
		t.Errorf("matrix = %v, want %v", got[0], m)
	}
}
