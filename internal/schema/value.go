// Package schema decodes CloudFormation resource schema documents into an
// ordered JSON value model. Key order is preserved so that generated
// declarations follow the order authors wrote.
package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// ValueKind identifies the JSON kind of a Value.
type ValueKind uint8

const (
	Null ValueKind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k ValueKind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "invalid"
	}
}

// Value is a decoded JSON value.
type Value struct {
	Kind ValueKind

	// Bool is set for Bool values.
	Bool bool
	// Str holds the string for String values and the raw literal text for
	// Number values.
	Str string
	// Arr holds the elements of an Array.
	Arr []Value
	// Obj holds the members of an Object.
	Obj *Map
}

// Map is a JSON object that remembers key insertion order.
type Map struct {
	keys []string
	vals map[string]Value
}

// NewMap returns an empty ordered object.
func NewMap() *Map {
	return &Map{vals: make(map[string]Value)}
}

// Len returns the number of members.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns member names in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return m.keys
}

// Get returns the named member.
func (m *Map) Get(name string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.vals[name]
	return v, ok
}

// Has reports whether the named member exists.
func (m *Map) Has(name string) bool {
	_, ok := m.Get(name)
	return ok
}

// Set adds or replaces a member. Replacing keeps the original position.
func (m *Map) Set(name string, v Value) {
	if _, ok := m.vals[name]; !ok {
		m.keys = append(m.keys, name)
	}
	m.vals[name] = v
}

// Delete removes a member.
func (m *Map) Delete(name string) {
	if _, ok := m.vals[name]; !ok {
		return
	}
	delete(m.vals, name)
	for i, k := range m.keys {
		if k == name {
			m.keys = append(m.keys[:i:i], m.keys[i+1:]...)
			break
		}
	}
}

// Clone returns a shallow copy: member values are shared.
func (m *Map) Clone() *Map {
	c := &Map{keys: make([]string, 0, m.Len()), vals: make(map[string]Value, m.Len())}
	for _, k := range m.Keys() {
		c.Set(k, m.vals[k])
	}
	return c
}

// StringValue builds a String value.
func StringValue(s string) Value { return Value{Kind: String, Str: s} }

// NumberValue builds a Number value from its literal text.
func NumberValue(raw string) Value { return Value{Kind: Number, Str: raw} }

// BoolValue builds a Bool value.
func BoolValue(b bool) Value { return Value{Kind: Bool, Bool: b} }

// ObjectValue wraps an ordered object.
func ObjectValue(m *Map) Value { return Value{Kind: Object, Obj: m} }

// ArrayValue wraps a list of values.
func ArrayValue(vs ...Value) Value { return Value{Kind: Array, Arr: vs} }

// Float returns the numeric value of a Number.
func (v Value) Float() (float64, bool) {
	if v.Kind != Number {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.Str, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Int returns the integral value of a Number.
func (v Value) Int() (int, bool) {
	f, ok := v.Float()
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// Strings returns the string elements of an Array (or a single String as a
// one-element list). Non-string elements are skipped.
func (v Value) Strings() []string {
	switch v.Kind {
	case String:
		return []string{v.Str}
	case Array:
		out := make([]string, 0, len(v.Arr))
		for _, e := range v.Arr {
			if e.Kind == String {
				out = append(out, e.Str)
			}
		}
		return out
	default:
		return nil
	}
}

// Equal reports deep equality. Object member order is not significant;
// numbers compare by value.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case Null:
		return true
	case Bool:
		return v.Bool == o.Bool
	case String:
		return v.Str == o.Str
	case Number:
		a, aok := v.Float()
		b, bok := o.Float()
		if aok && bok {
			return a == b
		}
		return v.Str == o.Str
	case Array:
		if len(v.Arr) != len(o.Arr) {
			return false
		}
		for i := range v.Arr {
			if !v.Arr[i].Equal(o.Arr[i]) {
				return false
			}
		}
		return true
	case Object:
		if v.Obj.Len() != o.Obj.Len() {
			return false
		}
		for _, k := range v.Obj.Keys() {
			a, _ := v.Obj.Get(k)
			b, ok := o.Obj.Get(k)
			if !ok || !a.Equal(b) {
				return false
			}
		}
		return true
	}
	return false
}

// String returns the compact JSON text of the value.
func (v Value) String() string {
	return string(v.AppendJSON(nil))
}

// MarshalJSON encodes the value preserving member order.
func (v Value) MarshalJSON() ([]byte, error) {
	return v.AppendJSON(nil), nil
}

// AppendJSON appends the compact JSON text of the value to dst.
func (v Value) AppendJSON(dst []byte) []byte {
	switch v.Kind {
	case Null:
		return append(dst, "null"...)
	case Bool:
		return strconv.AppendBool(dst, v.Bool)
	case Number:
		return append(dst, v.Str...)
	case String:
		return appendQuoted(dst, v.Str)
	case Array:
		dst = append(dst, '[')
		for i, e := range v.Arr {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = e.AppendJSON(dst)
		}
		return append(dst, ']')
	case Object:
		dst = append(dst, '{')
		for i, k := range v.Obj.Keys() {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = appendQuoted(dst, k)
			dst = append(dst, ':')
			e, _ := v.Obj.Get(k)
			dst = e.AppendJSON(dst)
		}
		return append(dst, '}')
	}
	return dst
}

func appendQuoted(dst []byte, s string) []byte {
	b, err := json.Marshal(s)
	if err != nil {
		// Invalid UTF-8 cannot come out of the decoder; fall back to Go quoting.
		return strconv.AppendQuote(dst, s)
	}
	return append(dst, b...)
}

// Parse decodes a single JSON value, preserving object member order.
func Parse(data []byte) (Value, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(data))
	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.ReadToken(); !errors.Is(err, io.EOF) {
		return Value{}, fmt.Errorf("unexpected data after top-level value")
	}
	return v, nil
}

func decodeValue(dec *jsontext.Decoder) (Value, error) {
	tok, err := dec.ReadToken()
	if err != nil {
		return Value{}, err
	}
	switch tok.Kind() {
	case 'n':
		return Value{Kind: Null}, nil
	case 't', 'f':
		return BoolValue(tok.Bool()), nil
	case '"':
		return StringValue(tok.String()), nil
	case '0':
		return NumberValue(tok.String()), nil
	case '[':
		var elems []Value
		for dec.PeekKind() != ']' {
			e, err := decodeValue(dec)
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, e)
		}
		if _, err := dec.ReadToken(); err != nil {
			return Value{}, err
		}
		return Value{Kind: Array, Arr: elems}, nil
	case '{':
		m := NewMap()
		for dec.PeekKind() != '}' {
			name, err := dec.ReadToken()
			if err != nil {
				return Value{}, err
			}
			e, err := decodeValue(dec)
			if err != nil {
				return Value{}, err
			}
			m.Set(name.String(), e)
		}
		if _, err := dec.ReadToken(); err != nil {
			return Value{}, err
		}
		return ObjectValue(m), nil
	default:
		return Value{}, fmt.Errorf("unexpected token %v", tok.Kind())
	}
}
