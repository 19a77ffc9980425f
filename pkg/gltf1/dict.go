package gltf1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"

	"cogentcore.org/core/base/ordmap"
)

// Dict is a JSON object keyed by string ids. Keys keep document order on
// decode and insertion order on encode.
type Dict[V any] struct {
	m *ordmap.Map[string, V]
}

// Len returns the number of entries.
func (d *Dict[V]) Len() int {
	return d.m.Len()
}

// IsZero reports whether the dictionary is empty, for omitzero.
func (d Dict[V]) IsZero() bool {
	return d.m.Len() == 0
}

// Get returns the value stored under key.
func (d *Dict[V]) Get(key string) (V, bool) {
	if d.m == nil {
		var zero V
		return zero, false
	}
	return d.m.ValueByKeyTry(key)
}

// Has reports whether key is present.
func (d *Dict[V]) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

// Set stores v under key. Replacing keeps the key's position.
func (d *Dict[V]) Set(key string, v V) {
	if d.m == nil {
		d.m = ordmap.New[string, V]()
	}
	d.m.Add(key, v)
}

// Keys returns the keys in order.
func (d *Dict[V]) Keys() []string {
	if d.m == nil {
		return nil
	}
	return d.m.Keys()
}

// All iterates entries in order.
func (d *Dict[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		if d.m == nil {
			return
		}
		for _, kv := range d.m.Order {
			if !yield(kv.Key, kv.Value) {
				return
			}
		}
	}
}

// MarshalJSON writes entries in order.
func (d Dict[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if d.m != nil {
		for i, kv := range d.m.Order {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(kv.Key)
			if err != nil {
				return nil, err
			}
			val, err := json.Marshal(kv.Value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", kv.Key, err)
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object, keeping key order.
func (d *Dict[V]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	d.m = ordmap.New[string, V]()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected key, got %v", tok)
		}
		var v V
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		d.m.Add(key, v)
	}
	_, err = dec.Token()
	return err
}
