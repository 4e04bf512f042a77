package value

import (
	"bytes"
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Map is an insertion-ordered name → Value map. Pipeline parameter lists and
// variable declarations both use it: resolution is by name, but declaration
// order must survive serialization.
type Map struct {
	om *orderedmap.OrderedMap[string, Value]
}

// NewMap returns an empty ordered map.
func NewMap() *Map {
	return &Map{om: orderedmap.New[string, Value]()}
}

// Set inserts or replaces an entry. Replacing keeps the original position.
func (m *Map) Set(name string, v Value) *Map {
	m.om.Set(name, v)
	return m
}

// Get returns the entry for name.
func (m *Map) Get(name string) (Value, bool) {
	return m.om.Get(name)
}

// Has reports whether name is present.
func (m *Map) Has(name string) bool {
	_, ok := m.om.Get(name)
	return ok
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil || m.om == nil {
		return 0
	}
	return m.om.Len()
}

// Keys returns the names in insertion order.
func (m *Map) Keys() []string {
	keys := make([]string, 0, m.Len())
	m.Each(func(name string, _ Value) {
		keys = append(keys, name)
	})
	return keys
}

// Each visits entries in insertion order.
func (m *Map) Each(fn func(name string, v Value)) {
	if m == nil || m.om == nil {
		return
	}
	for pair := m.om.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Clone returns a shallow copy preserving order.
func (m *Map) Clone() *Map {
	out := NewMap()
	m.Each(func(name string, v Value) {
		out.Set(name, v)
	})
	return out
}

// Equal reports whether both maps hold equal values under the same names in
// the same order.
func (m *Map) Equal(other *Map) bool {
	if m.Len() != other.Len() {
		return false
	}
	a, b := m.om.Oldest(), other.om.Oldest()
	for a != nil && b != nil {
		if a.Key != b.Key || !a.Value.Equal(b.Value) {
			return false
		}
		a, b = a.Next(), b.Next()
	}
	return a == nil && b == nil
}

// MarshalJSON renders the map as a JSON object in insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	var err error
	m.Each(func(name string, v Value) {
		if err != nil {
			return
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, kerr := json.Marshal(name)
		if kerr != nil {
			err = kerr
			return
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, verr := json.Marshal(v)
		if verr != nil {
			err = verr
			return
		}
		buf.Write(val)
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML renders the map as a YAML mapping in insertion order.
func (m *Map) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	var err error
	m.Each(func(name string, v Value) {
		if err != nil {
			return
		}
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: name}
		valNode := &yaml.Node{}
		if e := valNode.Encode(v.Interface()); e != nil {
			err = e
			return
		}
		node.Content = append(node.Content, keyNode, valNode)
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// MarshalJSON renders the value as plain JSON, with variable references in
// their `$name` source form.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindObject {
		// Field order is part of the definition; encode manually.
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, f := range v.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(f.Name)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			val, err := json.Marshal(f.Value)
			if err != nil {
				return nil, err
			}
			buf.Write(val)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	}
	if v.kind == KindArray {
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, e := range v.elems {
			if i > 0 {
				buf.WriteByte(',')
			}
			val, err := json.Marshal(e)
			if err != nil {
				return nil, err
			}
			buf.Write(val)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	}
	return json.Marshal(v.Interface())
}

// MarshalYAML renders the value as plain YAML data.
func (v Value) MarshalYAML() (any, error) {
	if v.kind == KindObject {
		node := &yaml.Node{Kind: yaml.MappingNode}
		for _, f := range v.fields {
			keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: f.Name}
			valNode := &yaml.Node{}
			inner, err := f.Value.MarshalYAML()
			if err != nil {
				return nil, err
			}
			if err := valNode.Encode(inner); err != nil {
				return nil, err
			}
			node.Content = append(node.Content, keyNode, valNode)
		}
		return node, nil
	}
	return v.Interface(), nil
}
