package accessor

import (
	"encoding/binary"
	"fmt"
	gomath "math"

	"github.com/Faultbox/assetkit/pkg/math"
)

// Elements is a decoded accessor: Count tightly packed little-endian
// elements with any sparse overlay already applied.
type Elements struct {
	ComponentType ComponentType
	Type          Type
	Count         int
	Normalized    bool
	Raw           []byte
}

// Decode reads every element of the accessor from buffers.
func (a *Accessor) Decode(buffers [][]byte) (*Elements, error) {
	return a.decode(buffers, nil)
}

// DecodeRemapped reads the elements listed in remap, in remap order.
// Every remap entry must be smaller than the accessor count.
func (a *Accessor) DecodeRemapped(buffers [][]byte, remap []uint32) (*Elements, error) {
	return a.decode(buffers, remap)
}

func (a *Accessor) decode(buffers [][]byte, remap []uint32) (*Elements, error) {
	elem := a.ElementSize()
	if a.ComponentType.Size() == 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedComponent, uint32(a.ComponentType))
	}
	if elem == 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, a.Type)
	}
	if a.Count < 0 {
		return nil, fmt.Errorf("%w: negative count %d", ErrExceedsBounds, a.Count)
	}

	raw, err := a.readBase(buffers, elem)
	if err != nil {
		return nil, err
	}
	if a.Sparse != nil {
		if err := a.applySparse(buffers, raw, elem); err != nil {
			return nil, err
		}
	}

	count := a.Count
	if remap != nil {
		out := make([]byte, len(remap)*elem)
		for i, src := range remap {
			if int(src) >= a.Count {
				return nil, fmt.Errorf("%w: remap index %d, count %d", ErrExceedsBounds, src, a.Count)
			}
			copy(out[i*elem:(i+1)*elem], raw[int(src)*elem:(int(src)+1)*elem])
		}
		raw = out
		count = len(remap)
	}

	return &Elements{
		ComponentType: a.ComponentType,
		Type:          a.Type,
		Count:         count,
		Normalized:    a.Normalized,
		Raw:           raw,
	}, nil
}

func bufferAt(buffers [][]byte, idx int) ([]byte, error) {
	if idx < 0 || idx >= len(buffers) || buffers[idx] == nil {
		return nil, fmt.Errorf("%w: buffer %d", ErrMissingBufferData, idx)
	}
	return buffers[idx], nil
}

func (a *Accessor) readBase(buffers [][]byte, elem int) ([]byte, error) {
	if a.View == nil {
		if a.Sparse == nil {
			return nil, fmt.Errorf("%w: accessor has neither a buffer view nor sparse data", ErrMissingBufferData)
		}
		return make([]byte, a.Count*elem), nil
	}

	data, err := bufferAt(buffers, a.View.Buffer)
	if err != nil {
		return nil, err
	}
	if a.Count == 0 {
		return []byte{}, nil
	}

	stride := a.Stride()
	start := a.ByteOffset + a.View.ByteOffset
	end := start + (a.Count-1)*stride + elem
	if start < 0 || end > len(data) {
		return nil, fmt.Errorf("%w: need %d bytes, buffer has %d", ErrExceedsBounds, end, len(data))
	}

	out := make([]byte, a.Count*elem)
	if stride == elem {
		copy(out, data[start:end])
		return out, nil
	}
	for i := 0; i < a.Count; i++ {
		src := start + i*stride
		copy(out[i*elem:(i+1)*elem], data[src:src+elem])
	}
	return out, nil
}

func sliceView(buffers [][]byte, view *View, offset, n int) ([]byte, error) {
	if view == nil {
		return nil, ErrBrokenSparseDataAccess
	}
	data, err := bufferAt(buffers, view.Buffer)
	if err != nil {
		return nil, err
	}
	start := view.ByteOffset + offset
	if start < 0 || start+n > len(data) {
		return nil, fmt.Errorf("%w: need %d bytes, buffer has %d", ErrExceedsBounds, start+n, len(data))
	}
	return data[start : start+n], nil
}

func (a *Accessor) applySparse(buffers [][]byte, base []byte, elem int) error {
	sp := a.Sparse
	if sp.Indices == nil || sp.Values == nil {
		return ErrBrokenSparseDataAccess
	}
	if sp.Count == 0 {
		return nil
	}

	idxType := sp.Indices.ComponentType
	switch idxType {
	case UnsignedByte, UnsignedShort, UnsignedInt:
	default:
		return fmt.Errorf("%w: sparse indices of type %v", ErrUnsupportedComponent, idxType)
	}
	idxSize := idxType.Size()

	indices, err := sliceView(buffers, sp.Indices.View, sp.Indices.ByteOffset, sp.Count*idxSize)
	if err != nil {
		return fmt.Errorf("sparse indices: %w", err)
	}
	values, err := sliceView(buffers, sp.Values.View, sp.Values.ByteOffset, sp.Count*elem)
	if err != nil {
		return fmt.Errorf("sparse values: %w", err)
	}

	for i := 0; i < sp.Count; i++ {
		idx := int(readUint(indices[i*idxSize:], idxType))
		if idx >= a.Count {
			return fmt.Errorf("%w: sparse index %d, count %d", ErrExceedsBounds, idx, a.Count)
		}
		copy(base[idx*elem:(idx+1)*elem], values[i*elem:(i+1)*elem])
	}
	return nil
}

func readUint(b []byte, ct ComponentType) uint32 {
	switch ct {
	case UnsignedByte, Byte:
		return uint32(b[0])
	case UnsignedShort, Short:
		return uint32(binary.LittleEndian.Uint16(b))
	default:
		return binary.LittleEndian.Uint32(b)
	}
}

// Components returns the number of components per element.
func (e *Elements) Components() int {
	return e.Type.Components()
}

// Component returns the raw value of flat component i.
func (e *Elements) Component(i int) float64 {
	size := e.ComponentType.Size()
	b := e.Raw[i*size:]
	switch e.ComponentType {
	case Byte:
		return float64(int8(b[0]))
	case UnsignedByte:
		return float64(b[0])
	case Short:
		return float64(int16(binary.LittleEndian.Uint16(b)))
	case UnsignedShort:
		return float64(binary.LittleEndian.Uint16(b))
	case UnsignedInt:
		return float64(binary.LittleEndian.Uint32(b))
	default:
		return float64(gomath.Float32frombits(binary.LittleEndian.Uint32(b)))
	}
}

// normalize maps an integer component to [0,1] or [-1,1].
func (e *Elements) normalize(v float64) float64 {
	switch e.ComponentType {
	case Byte:
		return gomath.Max(v/127, -1)
	case UnsignedByte:
		return v / 255
	case Short:
		return gomath.Max(v/32767, -1)
	case UnsignedShort:
		return v / 65535
	case UnsignedInt:
		return v / 4294967295
	default:
		return v
	}
}

// Floats returns all components as float64, normalized when the accessor
// declares normalized integers.
func (e *Elements) Floats() []float64 {
	return e.floats(e.Normalized)
}

// NormalizedFloats returns all components, always mapping integers to the
// unit range. Used for attributes whose integer encodings are normalized
// by definition (colors, texture coordinates, weights).
func (e *Elements) NormalizedFloats() []float64 {
	return e.floats(true)
}

func (e *Elements) floats(normalize bool) []float64 {
	n := e.Count * e.Components()
	out := make([]float64, n)
	for i := range out {
		v := e.Component(i)
		if normalize {
			v = e.normalize(v)
		}
		out[i] = v
	}
	return out
}

// Uints returns all components of an integer accessor.
func (e *Elements) Uints() ([]uint32, error) {
	if e.ComponentType == Float {
		return nil, fmt.Errorf("%w: expected integer components, got %v", ErrUnsupportedComponent, e.ComponentType)
	}
	out := make([]uint32, e.Count*e.Components())
	size := e.ComponentType.Size()
	for i := range out {
		out[i] = readUint(e.Raw[i*size:], e.ComponentType)
	}
	return out, nil
}

func (e *Elements) expect(types ...Type) error {
	for _, t := range types {
		if e.Type == t {
			return nil
		}
	}
	return fmt.Errorf("%w: got %v, want %v", ErrUnsupportedType, e.Type, types)
}

// Vec3s returns VEC3 elements.
func (e *Elements) Vec3s() ([]math.Vec3, error) {
	if err := e.expect(Vec3); err != nil {
		return nil, err
	}
	f := e.Floats()
	out := make([]math.Vec3, e.Count)
	for i := range out {
		out[i] = math.Vec3{X: f[i*3], Y: f[i*3+1], Z: f[i*3+2]}
	}
	return out, nil
}

// Vec4s returns VEC4 elements.
func (e *Elements) Vec4s() ([][4]float64, error) {
	if err := e.expect(Vec4); err != nil {
		return nil, err
	}
	f := e.Floats()
	out := make([][4]float64, e.Count)
	for i := range out {
		copy(out[i][:], f[i*4:i*4+4])
	}
	return out, nil
}

// TexCoords returns VEC2 or VEC3 texture coordinates as Vec3, normalizing
// integer encodings, together with the source component count.
func (e *Elements) TexCoords() ([]math.Vec3, int, error) {
	if err := e.expect(Vec2, Vec3); err != nil {
		return nil, 0, err
	}
	f := e.NormalizedFloats()
	n := e.Components()
	out := make([]math.Vec3, e.Count)
	for i := range out {
		out[i].X = f[i*n]
		out[i].Y = f[i*n+1]
		if n == 3 {
			out[i].Z = f[i*n+2]
		}
	}
	return out, n, nil
}

// Colors returns VEC3 or VEC4 colors, normalizing integer encodings.
// VEC3 colors get an alpha of 1.
func (e *Elements) Colors() ([]math.Color4, error) {
	if err := e.expect(Vec3, Vec4); err != nil {
		return nil, err
	}
	f := e.NormalizedFloats()
	n := e.Components()
	out := make([]math.Color4, e.Count)
	for i := range out {
		c := math.Color4{R: f[i*n], G: f[i*n+1], B: f[i*n+2], A: 1}
		if n == 4 {
			c.A = f[i*n+3]
		}
		out[i] = c
	}
	return out, nil
}

// Mat4s returns MAT4 elements in column-major order.
func (e *Elements) Mat4s() ([]math.Mat4, error) {
	if err := e.expect(Mat4); err != nil {
		return nil, err
	}
	f := e.Floats()
	out := make([]math.Mat4, e.Count)
	for i := range out {
		copy(out[i][:], f[i*16:i*16+16])
	}
	return out, nil
}

// Quats returns VEC4 elements as quaternions in (x, y, z, w) order.
func (e *Elements) Quats() ([]math.Quat, error) {
	v, err := e.Vec4s()
	if err != nil {
		return nil, err
	}
	out := make([]math.Quat, len(v))
	for i := range v {
		out[i] = math.QuatFromArray(v[i])
	}
	return out, nil
}

// Scalars returns SCALAR elements as float64.
func (e *Elements) Scalars() ([]float64, error) {
	if err := e.expect(Scalar); err != nil {
		return nil, err
	}
	return e.Floats(), nil
}
