package scene

import (
	"fmt"

	"github.com/Faultbox/assetkit/pkg/math"
)

// MetadataType tags the dynamic type of a metadata value.
type MetadataType int

const (
	MetaBool MetadataType = iota
	MetaInt32
	MetaUint64
	MetaFloat32
	MetaFloat64
	MetaString
	MetaVec3
	MetaNested
)

// MetadataEntry is one typed value.
type MetadataEntry struct {
	Type   MetadataType
	Bool   bool
	Int    int64
	Uint   uint64
	Float  float64
	String string
	Vec3   math.Vec3
	Nested *Metadata
}

// Metadata is an insertion-ordered string-keyed map of typed values.
type Metadata struct {
	keys   []string
	values map[string]MetadataEntry
}

// Set stores v under key, keeping the key's original position on replace.
func (m *Metadata) Set(key string, v MetadataEntry) {
	if m.values == nil {
		m.values = make(map[string]MetadataEntry)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// SetString stores a string value.
func (m *Metadata) SetString(key, v string) {
	m.Set(key, MetadataEntry{Type: MetaString, String: v})
}

// SetFloat stores a float64 value.
func (m *Metadata) SetFloat(key string, v float64) {
	m.Set(key, MetadataEntry{Type: MetaFloat64, Float: v})
}

// SetBool stores a bool value.
func (m *Metadata) SetBool(key string, v bool) {
	m.Set(key, MetadataEntry{Type: MetaBool, Bool: v})
}

// SetInt stores an int32 value.
func (m *Metadata) SetInt(key string, v int32) {
	m.Set(key, MetadataEntry{Type: MetaInt32, Int: int64(v)})
}

// SetNested stores a nested metadata map.
func (m *Metadata) SetNested(key string, v *Metadata) {
	m.Set(key, MetadataEntry{Type: MetaNested, Nested: v})
}

// Get returns the entry stored under key.
func (m *Metadata) Get(key string) (MetadataEntry, bool) {
	if m == nil || m.values == nil {
		return MetadataEntry{}, false
	}
	v, ok := m.values[key]
	return v, ok
}

// GetString returns the string stored under key.
func (m *Metadata) GetString(key string) (string, bool) {
	v, ok := m.Get(key)
	if !ok || v.Type != MetaString {
		return "", false
	}
	return v.String, true
}

// GetFloat returns the float stored under key, accepting either width.
func (m *Metadata) GetFloat(key string) (float64, bool) {
	v, ok := m.Get(key)
	if !ok || (v.Type != MetaFloat64 && v.Type != MetaFloat32) {
		return 0, false
	}
	return v.Float, true
}

// Keys returns the keys in insertion order.
func (m *Metadata) Keys() []string {
	if m == nil {
		return nil
	}
	return m.keys
}

// Len returns the number of entries.
func (m *Metadata) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Format renders the entry value for display.
func (e MetadataEntry) Format() string {
	switch e.Type {
	case MetaBool:
		return fmt.Sprint(e.Bool)
	case MetaInt32:
		return fmt.Sprint(e.Int)
	case MetaUint64:
		return fmt.Sprint(e.Uint)
	case MetaFloat32, MetaFloat64:
		return fmt.Sprint(e.Float)
	case MetaString:
		return e.String
	case MetaVec3:
		return fmt.Sprintf("(%g, %g, %g)", e.Vec3.X, e.Vec3.Y, e.Vec3.Z)
	case MetaNested:
		return fmt.Sprintf("{%d entries}", e.Nested.Len())
	default:
		return "?"
	}
}
