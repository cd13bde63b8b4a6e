// Package dynamic implements the engine's dynamically-typed value (spec
// §3, §6): a small tagged union general enough to describe any
// Thinknode-style payload, with a canonical "native" encoding used both
// as the wire format and as the byte stream folded into request and
// blob identities.
package dynamic

import (
	"time"

	"github.com/urlofmar/cradle-sub001/internal/cerr"
)

// Kind tags a Value's active alternative.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindBlob
	KindTimestamp
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBlob:
		return "blob"
	case KindTimestamp:
		return "timestamp"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is the dynamic tagged union (spec §3 "Dynamic value"). The zero
// Value is Nil.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	blob []byte
	t    time.Time
	list []Value
	m    *Map
}

// Nil returns the nil value.
func Nil() Value { return Value{kind: KindNil} }

// Bool wraps a bool.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Int wraps a signed integer.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Float wraps a float64.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// String wraps a string.
func String(v string) Value { return Value{kind: KindString, s: v} }

// Blob wraps an opaque byte string (spec §3 "blob").
func Blob(v []byte) Value { return Value{kind: KindBlob, blob: v} }

// Timestamp wraps a point in time, always normalized to UTC so two
// Values constructed from the same instant in different locations
// encode identically.
func Timestamp(v time.Time) Value { return Value{kind: KindTimestamp, t: v.UTC()} }

// List wraps an ordered sequence of Values.
func List(items ...Value) Value { return Value{kind: KindList, list: items} }

// FromMap wraps an already-built Map.
func FromMap(m *Map) Value { return Value{kind: KindMap, m: m} }

// Kind reports the active alternative.
func (v Value) Kind() Kind { return v.kind }

func (v Value) AsBool() (bool, bool)          { return v.b, v.kind == KindBool }
func (v Value) AsInt() (int64, bool)          { return v.i, v.kind == KindInt }
func (v Value) AsFloat() (float64, bool)      { return v.f, v.kind == KindFloat }
func (v Value) AsString() (string, bool)      { return v.s, v.kind == KindString }
func (v Value) AsBlob() ([]byte, bool)        { return v.blob, v.kind == KindBlob }
func (v Value) AsTimestamp() (time.Time, bool) { return v.t, v.kind == KindTimestamp }
func (v Value) AsList() ([]Value, bool)       { return v.list, v.kind == KindList }
func (v Value) AsMap() (*Map, bool)           { return v.m, v.kind == KindMap }

// Equals reports deep structural equality (spec §3: dynamic values
// compare by structure, maps compare by content regardless of
// insertion order).
func (v Value) Equals(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindBlob:
		return string(v.blob) == string(o.blob)
	case KindTimestamp:
		return v.t.Equal(o.t)
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equals(o.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		return v.m.Equals(o.m)
	default:
		return false
	}
}

// TypeMismatch builds the standard error for an unexpected Kind,
// mirroring spec §7's type_mismatch taxonomy entry.
func TypeMismatch(expected, actual Kind) error {
	return cerr.New(cerr.TypeMismatch, "dynamic value type mismatch").
		With("expected", expected.String()).With("actual", actual.String())
}

// ByteSize estimates the deep size of a Value in bytes, for use as a
// cache.SizeOf implementation by the service facade (spec §4.4/§4.8).
func ByteSize(v any) int {
	dv, ok := v.(Value)
	if !ok {
		return 0
	}
	return dv.byteSize()
}

func (v Value) byteSize() int {
	const base = 16
	switch v.kind {
	case KindString:
		return base + len(v.s)
	case KindBlob:
		return base + len(v.blob)
	case KindList:
		n := base
		for _, e := range v.list {
			n += e.byteSize()
		}
		return n
	case KindMap:
		if v.m == nil {
			return base
		}
		n := base
		for _, k := range v.m.Keys() {
			val, _ := v.m.Get(k)
			n += len(k) + val.byteSize()
		}
		return n
	default:
		return base
	}
}
