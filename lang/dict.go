package lang

import (
	"bytes"
	"encoding/json"
	"iter"
	"reflect"

	"github.com/goccy/go-yaml"
	"github.com/shopspring/decimal"
)

// Dict is a map that preserves insertion order.
// It is the runtime form of a dictionary literal.
//
// Numeric keys are normalized, so 2, 2.0 and int64(2) address the same entry.
type Dict struct {
	keys  []any
	vals  []any
	index map[any]int
}

// NewDict returns an empty Dict.
func NewDict() *Dict {
	return &Dict{index: make(map[any]int)}
}

type numKey string

type textKey struct {
	typ  string
	text string
}

func dictKey(k any) any {
	if k == nil {
		return nil
	}

	if d, ok := k.(decimal.Decimal); ok {
		return numKey(d.String())
	}

	if d, ok := numericDecimal(k); ok {
		return numKey(d.String())
	}

	// NaN never equals itself, so it and the infinities key by text.
	if !nonFinite(k) && reflect.ValueOf(k).Comparable() {
		return k
	}

	return textKey{typ: typeName(k), text: formatText(k)}
}

// Set adds or replaces the entry for k. A replaced entry keeps its position.
func (d *Dict) Set(k, v any) {
	if d.index == nil {
		d.index = make(map[any]int)
	}

	key := dictKey(k)
	if i, ok := d.index[key]; ok {
		d.vals[i] = v

		return
	}

	d.index[key] = len(d.keys)
	d.keys = append(d.keys, k)
	d.vals = append(d.vals, v)
}

// Get returns the value stored for k.
func (d *Dict) Get(k any) (any, bool) {
	if d == nil {
		return nil, false
	}

	i, ok := d.index[dictKey(k)]
	if !ok {
		return nil, false
	}

	return d.vals[i], true
}

// ContainsKey reports whether k has an entry.
func (d *Dict) ContainsKey(k any) bool {
	_, ok := d.Get(k)

	return ok
}

// Len returns the number of entries.
func (d *Dict) Len() int {
	if d == nil {
		return 0
	}

	return len(d.keys)
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []any { return append([]any(nil), d.keys...) }

// Values returns the values in insertion order.
func (d *Dict) Values() []any { return append([]any(nil), d.vals...) }

// All iterates over the entries in insertion order.
func (d *Dict) All() iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		for i, k := range d.keys {
			if !yield(k, d.vals[i]) {
				return
			}
		}
	}
}

// MarshalJSON encodes d as a JSON object with keys in insertion order.
func (d *Dict) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(formatText(k))
		if err != nil {
			return nil, err
		}

		val, err := json.Marshal(Plain(d.vals[i]))
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// MarshalYAML encodes d as a YAML mapping with keys in insertion order.
func (d *Dict) MarshalYAML() (any, error) {
	ms := make(yaml.MapSlice, 0, len(d.keys))
	for i, k := range d.keys {
		ms = append(ms, yaml.MapItem{Key: Plain(k), Value: Plain(d.vals[i])})
	}

	return ms, nil
}
