package accessor

import (
	"encoding/binary"
	gomath "math"

	"github.com/Faultbox/assetkit/pkg/math"
)

// Builder appends typed arrays to one binary buffer, creating one view and
// accessor per array. Views start on 4-byte boundaries.
type Builder struct {
	// Buffer is the buffer index recorded in created views.
	Buffer int
	Data   []byte
	Views  []View
}

// Encoded is an accessor created by a Builder together with the index of
// its view in Builder.Views.
type Encoded struct {
	ViewIndex int
	Accessor  Accessor
}

// NewBuilder returns a builder writing into the given buffer index.
func NewBuilder(buffer int) *Builder {
	return &Builder{Buffer: buffer}
}

func (b *Builder) align() {
	for len(b.Data)%4 != 0 {
		b.Data = append(b.Data, 0)
	}
}

// AddView appends raw bytes as a new view and returns its index.
func (b *Builder) AddView(data []byte, stride int, target Target) int {
	b.align()
	b.Views = append(b.Views, View{
		Buffer:     b.Buffer,
		ByteOffset: len(b.Data),
		ByteLength: len(data),
		ByteStride: stride,
		Target:     target,
	})
	b.Data = append(b.Data, data...)
	return len(b.Views) - 1
}

func (b *Builder) add(raw []byte, ct ComponentType, typ Type, count int, target Target, min, max []float64) Encoded {
	stride := 0
	// Vertex attribute views carry an explicit stride.
	if target == TargetArray {
		stride = ct.Size() * typ.Components()
	}
	vi := b.AddView(raw, stride, target)
	view := b.Views[vi]
	return Encoded{
		ViewIndex: vi,
		Accessor: Accessor{
			View:          &view,
			ComponentType: ct,
			Type:          typ,
			Count:         count,
			Min:           min,
			Max:           max,
		},
	}
}

func bounds(values []float64, n int) (min, max []float64) {
	min = make([]float64, n)
	max = make([]float64, n)
	if len(values) == 0 {
		return min, max
	}
	copy(min, values[:n])
	copy(max, values[:n])
	for i, v := range values {
		c := i % n
		min[c] = gomath.Min(min[c], v)
		max[c] = gomath.Max(max[c], v)
	}
	return min, max
}

// AddFloats writes float32 components grouped by typ.
func (b *Builder) AddFloats(values []float64, typ Type, target Target) Encoded {
	n := typ.Components()
	raw := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(raw[i*4:], gomath.Float32bits(float32(v)))
	}
	min, max := bounds(values, n)
	return b.add(raw, Float, typ, len(values)/n, target, min, max)
}

// AddUints writes integer components of type ct grouped by typ.
func (b *Builder) AddUints(values []uint32, ct ComponentType, typ Type, target Target) Encoded {
	n := typ.Components()
	size := ct.Size()
	raw := make([]byte, size*len(values))
	fv := make([]float64, len(values))
	for i, v := range values {
		switch size {
		case 1:
			raw[i] = uint8(v)
		case 2:
			binary.LittleEndian.PutUint16(raw[i*2:], uint16(v))
		default:
			binary.LittleEndian.PutUint32(raw[i*4:], v)
		}
		fv[i] = float64(v)
	}
	min, max := bounds(fv, n)
	return b.add(raw, ct, typ, len(values)/n, target, min, max)
}

// AddIndices writes face indices as UNSIGNED_INT scalars.
func (b *Builder) AddIndices(indices []uint32) Encoded {
	return b.AddUints(indices, UnsignedInt, Scalar, TargetElementArray)
}

// AddVec3s writes VEC3 float elements.
func (b *Builder) AddVec3s(v []math.Vec3, target Target) Encoded {
	flat := make([]float64, 0, len(v)*3)
	for _, e := range v {
		flat = append(flat, e.X, e.Y, e.Z)
	}
	return b.AddFloats(flat, Vec3, target)
}

// AddVec2s writes the X and Y of each vector as VEC2 float elements.
func (b *Builder) AddVec2s(v []math.Vec3, target Target) Encoded {
	flat := make([]float64, 0, len(v)*2)
	for _, e := range v {
		flat = append(flat, e.X, e.Y)
	}
	return b.AddFloats(flat, Vec2, target)
}

// AddVec4s writes VEC4 float elements.
func (b *Builder) AddVec4s(v [][4]float64, target Target) Encoded {
	flat := make([]float64, 0, len(v)*4)
	for _, e := range v {
		flat = append(flat, e[:]...)
	}
	return b.AddFloats(flat, Vec4, target)
}

// AddColors writes RGBA float colors.
func (b *Builder) AddColors(c []math.Color4) Encoded {
	flat := make([]float64, 0, len(c)*4)
	for _, e := range c {
		flat = append(flat, e.R, e.G, e.B, e.A)
	}
	return b.AddFloats(flat, Vec4, TargetArray)
}

// AddMat4s writes MAT4 float elements in column-major order.
func (b *Builder) AddMat4s(m []math.Mat4) Encoded {
	flat := make([]float64, 0, len(m)*16)
	for _, e := range m {
		flat = append(flat, e[:]...)
	}
	return b.AddFloats(flat, Mat4, TargetNone)
}

// AddScalars writes SCALAR float elements.
func (b *Builder) AddScalars(v []float64) Encoded {
	return b.AddFloats(v, Scalar, TargetNone)
}

// Bytes returns the buffer contents padded to a multiple of 4 bytes.
func (b *Builder) Bytes() []byte {
	b.align()
	return b.Data
}
