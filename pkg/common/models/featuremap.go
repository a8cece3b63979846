package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FeatureMap maps canonical feature names to scalar-or-null values while
// remembering insertion order. encoding/json sorts plain map keys, which loses
// the schema ordering that callers of the completion path rely on, so
// FeatureMap marshals entries in the order they were set.
type FeatureMap struct {
	keys   []string
	values map[string]interface{}
}

func NewFeatureMap() *FeatureMap {
	return &FeatureMap{values: make(map[string]interface{})}
}

// Set inserts or overwrites a value. First insertion fixes the key's position.
func (m *FeatureMap) Set(key string, value interface{}) {
	if m.values == nil {
		m.values = make(map[string]interface{})
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *FeatureMap) Get(key string) (interface{}, bool) {
	if m == nil || m.values == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

func (m *FeatureMap) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

func (m *FeatureMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

func (m *FeatureMap) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Plain returns an unordered copy for callers that do not care about ordering,
// such as the gorm JSONMap columns.
func (m *FeatureMap) Plain() map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

func (m *FeatureMap) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valueBytes, err := json.Marshal(m.values[key])
		if err != nil {
			return nil, fmt.Errorf("marshaling feature %q: %w", key, err)
		}
		buf.Write(valueBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving its key order.
func (m *FeatureMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("feature map must be a JSON object")
	}

	m.keys = nil
	m.values = make(map[string]interface{})
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key := keyTok.(string)

		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return err
		}
		if num, ok := value.(json.Number); ok {
			if f, err := num.Float64(); err == nil {
				value = f
			} else {
				value = num.String()
			}
		}
		m.Set(key, value)
	}
	_, err = dec.Token() // closing brace
	return err
}
