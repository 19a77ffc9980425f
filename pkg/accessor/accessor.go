// Package accessor reads and writes typed element arrays stored in raw
// glTF buffers.
package accessor

import (
	"errors"
	"fmt"
)

// Accessor errors.
var (
	ErrExceedsBounds          = errors.New("accessor exceeds buffer bounds")
	ErrMissingBufferData      = errors.New("missing buffer data")
	ErrBrokenSparseDataAccess = errors.New("broken sparse data access")
	ErrUnsupportedComponent   = errors.New("unsupported component type")
	ErrUnsupportedType        = errors.New("unsupported accessor type")
)

// ComponentType is the numeric type of one element component, using the
// GL enum values found in glTF files.
type ComponentType uint32

const (
	Byte          ComponentType = 5120
	UnsignedByte  ComponentType = 5121
	Short         ComponentType = 5122
	UnsignedShort ComponentType = 5123
	UnsignedInt   ComponentType = 5125
	Float         ComponentType = 5126
)

// Size returns the component size in bytes, 0 for unknown types.
func (c ComponentType) Size() int {
	switch c {
	case Byte, UnsignedByte:
		return 1
	case Short, UnsignedShort:
		return 2
	case UnsignedInt, Float:
		return 4
	default:
		return 0
	}
}

// String returns the GL name of the component type.
func (c ComponentType) String() string {
	switch c {
	case Byte:
		return "BYTE"
	case UnsignedByte:
		return "UNSIGNED_BYTE"
	case Short:
		return "SHORT"
	case UnsignedShort:
		return "UNSIGNED_SHORT"
	case UnsignedInt:
		return "UNSIGNED_INT"
	case Float:
		return "FLOAT"
	default:
		return fmt.Sprintf("ComponentType(%d)", uint32(c))
	}
}

// Type is the element shape.
type Type int

const (
	Scalar Type = iota
	Vec2
	Vec3
	Vec4
	Mat2
	Mat3
	Mat4
)

var typeNames = [...]string{"SCALAR", "VEC2", "VEC3", "VEC4", "MAT2", "MAT3", "MAT4"}

// Components returns the number of components per element.
func (t Type) Components() int {
	switch t {
	case Scalar:
		return 1
	case Vec2:
		return 2
	case Vec3:
		return 3
	case Vec4, Mat2:
		return 4
	case Mat3:
		return 9
	case Mat4:
		return 16
	default:
		return 0
	}
}

// String returns the glTF spelling of the type.
func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType parses a glTF accessor type name.
func ParseType(s string) (Type, error) {
	for i, n := range typeNames {
		if n == s {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedType, s)
}

// Target is the buffer view binding hint.
type Target uint32

const (
	TargetNone         Target = 0
	TargetArray        Target = 34962
	TargetElementArray Target = 34963
)

// View is a slice of a buffer.
type View struct {
	Buffer     int
	ByteOffset int
	ByteLength int
	// ByteStride is zero for tightly packed elements.
	ByteStride int
	Target     Target
}

// SparseIndices locates the indices of a sparse overlay.
type SparseIndices struct {
	View          *View
	ByteOffset    int
	ComponentType ComponentType
}

// SparseValues locates the values of a sparse overlay.
type SparseValues struct {
	View       *View
	ByteOffset int
}

// Sparse is an overlay replacing Count elements of the base array.
type Sparse struct {
	Count   int
	Indices *SparseIndices
	Values  *SparseValues
}

// Accessor describes a typed run of elements inside a buffer.
type Accessor struct {
	// View is nil for accessors without a base view, which read as zeros
	// when a sparse overlay is present.
	View          *View
	ByteOffset    int
	ComponentType ComponentType
	Type          Type
	Count         int
	Normalized    bool
	Min           []float64
	Max           []float64
	Sparse        *Sparse
}

// ElementSize returns the packed size of one element in bytes.
func (a *Accessor) ElementSize() int {
	return a.ComponentType.Size() * a.Type.Components()
}

// Stride returns the distance between element starts in the base view.
// Strides smaller than the element size are treated as packed.
func (a *Accessor) Stride() int {
	elem := a.ElementSize()
	if a.View != nil && a.View.ByteStride > elem {
		return a.View.ByteStride
	}
	return elem
}
