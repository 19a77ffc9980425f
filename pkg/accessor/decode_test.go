package accessor

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/Faultbox/assetkit/pkg/math"
)

// makeFloats encodes float32 values little-endian.
func makeFloats(values ...float32) []byte {
	buf := new(bytes.Buffer)
	for _, v := range values {
		binary.Write(buf, binary.LittleEndian, v)
	}
	return buf.Bytes()
}

func TestDecodeVec3Packed(t *testing.T) {
	buf := makeFloats(1, 2, 3, 4, 5, 6)
	acc := Accessor{
		View:          &View{ByteLength: len(buf)},
		ComponentType: Float,
		Type:          Vec3,
		Count:         2,
	}

	elems, err := acc.Decode([][]byte{buf})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	got, err := elems.Vec3s()
	if err != nil {
		t.Fatalf("Vec3s failed: %v", err)
	}
	want := []math.Vec3{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("element %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDecodeInterleaved(t *testing.T) {
	// position (3 floats) + pad float, stride 16
	buf := makeFloats(1, 2, 3, 99, 4, 5, 6, 99)
	acc := Accessor{
		View:          &View{ByteLength: len(buf), ByteStride: 16},
		ComponentType: Float,
		Type:          Vec3,
		Count:         2,
	}
	elems, err := acc.Decode([][]byte{buf})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	f := elems.Floats()
	want := []float64{1, 2, 3, 4, 5, 6}
	for i := range want {
		if f[i] != want[i] {
			t.Fatalf("Floats() = %v, want %v", f, want)
		}
	}
}

func TestDecodeBounds(t *testing.T) {
	const bufLen = 64
	buf := make([]byte, bufLen)

	types := []struct {
		ct  ComponentType
		typ Type
	}{
		{UnsignedByte, Scalar},
		{UnsignedShort, Vec2},
		{Float, Vec3},
		{Float, Vec4},
		{Short, Vec3},
	}
	for _, tt := range types {
		elem := tt.ct.Size() * tt.typ.Components()
		for _, stride := range []int{0, 1, elem, elem + 4, 20} {
			for _, offset := range []int{0, 4, 16} {
				for count := 1; count <= 8; count++ {
					acc := Accessor{
						View:          &View{ByteOffset: offset, ByteStride: stride},
						ComponentType: tt.ct,
						Type:          tt.typ,
						Count:         count,
					}
					eff := stride
					if eff < elem {
						eff = elem
					}
					fits := offset+(count-1)*eff+elem <= bufLen

					_, err := acc.Decode([][]byte{buf})
					if fits && err != nil {
						t.Errorf("%v %v stride=%d offset=%d count=%d: unexpected error %v",
							tt.ct, tt.typ, stride, offset, count, err)
					}
					if !fits && !errors.Is(err, ErrExceedsBounds) {
						t.Errorf("%v %v stride=%d offset=%d count=%d: got %v, want ErrExceedsBounds",
							tt.ct, tt.typ, stride, offset, count, err)
					}
				}
			}
		}
	}
}

func TestDecodeAccessorOffsetAddsToView(t *testing.T) {
	buf := makeFloats(0, 0, 7)
	acc := Accessor{
		View:          &View{ByteOffset: 4},
		ByteOffset:    4,
		ComponentType: Float,
		Type:          Scalar,
		Count:         1,
	}
	elems, err := acc.Decode([][]byte{buf})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if v := elems.Floats()[0]; v != 7 {
		t.Errorf("value = %v, want 7", v)
	}

	acc.Count = 2
	if _, err := acc.Decode([][]byte{buf}); !errors.Is(err, ErrExceedsBounds) {
		t.Errorf("got %v, want ErrExceedsBounds", err)
	}
}

func TestDecodeMissingBuffer(t *testing.T) {
	acc := Accessor{View: &View{Buffer: 2}, ComponentType: Float, Type: Scalar, Count: 1}
	if _, err := acc.Decode([][]byte{{0, 0, 0, 0}}); !errors.Is(err, ErrMissingBufferData) {
		t.Errorf("got %v, want ErrMissingBufferData", err)
	}

	noView := Accessor{ComponentType: Float, Type: Scalar, Count: 1}
	if _, err := noView.Decode(nil); !errors.Is(err, ErrMissingBufferData) {
		t.Errorf("got %v, want ErrMissingBufferData", err)
	}
}

func TestDecodeUnsupportedComponent(t *testing.T) {
	acc := Accessor{View: &View{}, ComponentType: 1234, Type: Scalar, Count: 1}
	if _, err := acc.Decode([][]byte{make([]byte, 8)}); !errors.Is(err, ErrUnsupportedComponent) {
		t.Errorf("got %v, want ErrUnsupportedComponent", err)
	}
}

// sparseFixture builds a buffer holding u16 indices [1, 3] followed by two
// VEC2 float values.
func sparseFixture() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, []uint16{1, 3})
	buf.Write(makeFloats(10, 11, 30, 31))
	return buf.Bytes()
}

func TestDecodeSparseWithoutBaseView(t *testing.T) {
	buf := sparseFixture()
	acc := Accessor{
		ComponentType: Float,
		Type:          Vec2,
		Count:         4,
		Sparse: &Sparse{
			Count:   2,
			Indices: &SparseIndices{View: &View{}, ComponentType: UnsignedShort},
			Values:  &SparseValues{View: &View{ByteOffset: 4}},
		},
	}
	elems, err := acc.Decode([][]byte{buf})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	want := []float64{0, 0, 10, 11, 0, 0, 30, 31}
	got := elems.Floats()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Floats() = %v, want %v", got, want)
		}
	}
}

func TestDecodeSparseOverStridedBase(t *testing.T) {
	// Base: 4 VEC2 floats with stride 12 (one float of padding each).
	base := makeFloats(1, 1, -1, 2, 2, -1, 3, 3, -1, 4, 4, -1)
	overlay := sparseFixture()
	acc := Accessor{
		View:          &View{Buffer: 0, ByteStride: 12},
		ComponentType: Float,
		Type:          Vec2,
		Count:         4,
		Sparse: &Sparse{
			Count:   2,
			Indices: &SparseIndices{View: &View{Buffer: 1}, ComponentType: UnsignedShort},
			// Sparse values are always tightly packed.
			Values: &SparseValues{View: &View{Buffer: 1, ByteOffset: 4}},
		},
	}
	elems, err := acc.Decode([][]byte{base, overlay})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	want := []float64{1, 1, 10, 11, 3, 3, 30, 31}
	got := elems.Floats()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Floats() = %v, want %v", got, want)
		}
	}
}

func TestDecodeSparseErrors(t *testing.T) {
	buf := sparseFixture()
	tests := []struct {
		name   string
		sparse Sparse
		want   error
	}{
		{
			name:   "indices without values",
			sparse: Sparse{Count: 2, Indices: &SparseIndices{View: &View{}, ComponentType: UnsignedShort}},
			want:   ErrBrokenSparseDataAccess,
		},
		{
			name:   "values without indices",
			sparse: Sparse{Count: 2, Values: &SparseValues{View: &View{ByteOffset: 4}}},
			want:   ErrBrokenSparseDataAccess,
		},
		{
			name: "index out of range",
			sparse: Sparse{
				Count:   2,
				Indices: &SparseIndices{View: &View{}, ComponentType: UnsignedShort},
				Values:  &SparseValues{View: &View{ByteOffset: 4}},
			},
			want: ErrExceedsBounds,
		},
		{
			name: "values past buffer end",
			sparse: Sparse{
				Count:   2,
				Indices: &SparseIndices{View: &View{}, ComponentType: UnsignedShort},
				Values:  &SparseValues{View: &View{ByteOffset: 12}},
			},
			want: ErrExceedsBounds,
		},
		{
			name: "float indices",
			sparse: Sparse{
				Count:   2,
				Indices: &SparseIndices{View: &View{}, ComponentType: Float},
				Values:  &SparseValues{View: &View{ByteOffset: 4}},
			},
			want: ErrUnsupportedComponent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count := 4
			if tt.name == "index out of range" {
				count = 2
			}
			sp := tt.sparse
			acc := Accessor{ComponentType: Float, Type: Vec2, Count: count, Sparse: &sp}
			if _, err := acc.Decode([][]byte{buf}); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeRemapped(t *testing.T) {
	buf := makeFloats(0, 10, 20, 30)
	acc := Accessor{View: &View{}, ComponentType: Float, Type: Scalar, Count: 4}

	elems, err := acc.DecodeRemapped([][]byte{buf}, []uint32{3, 1})
	if err != nil {
		t.Fatalf("DecodeRemapped failed: %v", err)
	}
	got := elems.Floats()
	if elems.Count != 2 || got[0] != 30 || got[1] != 10 {
		t.Errorf("remapped = %v (count %d), want [30 10]", got, elems.Count)
	}

	if _, err := acc.DecodeRemapped([][]byte{buf}, []uint32{4}); !errors.Is(err, ErrExceedsBounds) {
		t.Errorf("got %v, want ErrExceedsBounds", err)
	}
}

func TestNormalization(t *testing.T) {
	tests := []struct {
		name       string
		ct         ComponentType
		raw        []byte
		normalized bool
		want       float64
	}{
		{"ubyte declared", UnsignedByte, []byte{255}, true, 1},
		{"ubyte raw", UnsignedByte, []byte{255}, false, 255},
		{"ushort declared", UnsignedShort, []byte{0xff, 0xff}, true, 1},
		{"byte min clamps", Byte, []byte{0x80}, true, -1},
		{"short half", Short, []byte{0x00, 0x00}, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := Accessor{View: &View{}, ComponentType: tt.ct, Type: Scalar, Count: 1, Normalized: tt.normalized}
			elems, err := acc.Decode([][]byte{tt.raw})
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if got := elems.Floats()[0]; got != tt.want {
				t.Errorf("Floats()[0] = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestColorsFromUnsignedBytes(t *testing.T) {
	acc := Accessor{View: &View{}, ComponentType: UnsignedByte, Type: Vec3, Count: 1}
	elems, err := acc.Decode([][]byte{{255, 0, 51}})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	colors, err := elems.Colors()
	if err != nil {
		t.Fatalf("Colors failed: %v", err)
	}
	want := math.Color4{R: 1, G: 0, B: 0.2, A: 1}
	if colors[0] != want {
		t.Errorf("color = %v, want %v", colors[0], want)
	}
}

func TestShapeMismatch(t *testing.T) {
	acc := Accessor{View: &View{}, ComponentType: Float, Type: Vec2, Count: 1}
	elems, err := acc.Decode([][]byte{makeFloats(1, 2)})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if _, err := elems.Vec3s(); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("got %v, want ErrUnsupportedType", err)
	}
	if _, err := elems.Uints(); !errors.Is(err, ErrUnsupportedComponent) {
		t.Errorf("got %v, want ErrUnsupportedComponent", err)
	}
}
