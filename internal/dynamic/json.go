package dynamic

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"time"

	"github.com/urlofmar/cradle-sub001/internal/cerr"
)

// blobMarker and timestampMarker key single-entry wrapper objects used
// to round-trip the two Kinds JSON has no native representation for
// (spec §6: "blobs and timestamps are carried as tagged JSON objects").
const (
	blobMarker      = "$blob"
	timestampMarker = "$timestamp"
)

// ToJSON renders v as plain encoding/json-compatible data (spec §6 JSON
// adapter), suitable for json.Marshal.
func ToJSON(v Value) any {
	switch v.kind {
	case KindNil:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindBlob:
		return map[string]any{blobMarker: base64.StdEncoding.EncodeToString(v.blob)}
	case KindTimestamp:
		return map[string]any{timestampMarker: v.t.Format(time.RFC3339Nano)}
	case KindList:
		out := make([]any, len(v.list))
		for i, e := range v.list {
			out[i] = ToJSON(e)
		}
		return out
	case KindMap:
		out := make(map[string]any, v.m.Len())
		for _, k := range v.m.Keys() {
			val, _ := v.m.Get(k)
			out[k] = ToJSON(val)
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON renders v as JSON bytes.
func MarshalJSON(v Value) ([]byte, error) {
	b, err := json.Marshal(ToJSON(v))
	if err != nil {
		return nil, cerr.Wrap(cerr.Parse, err, "marshaling dynamic value to JSON")
	}
	return b, nil
}

// FromJSON converts decoded JSON data (as produced by encoding/json's
// default any-decoding: nil, bool, float64, string, []any, map[string]any)
// into a Value, recognizing the blob/timestamp wrapper objects ToJSON
// emits. A number with an integral value within int64 range becomes an
// Int; any other number becomes a Float.
func FromJSON(data any) (Value, error) {
	switch x := data.(type) {
	case nil:
		return Nil(), nil
	case bool:
		return Bool(x), nil
	case float64:
		if x == math.Trunc(x) && x >= -(1<<63) && x < 1<<63 {
			return Int(int64(x)), nil
		}
		return Float(x), nil
	case string:
		return String(x), nil
	case []any:
		items := make([]Value, len(x))
		for i, e := range x {
			v, err := FromJSON(e)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return List(items...), nil
	case map[string]any:
		if len(x) == 1 {
			if raw, ok := x[blobMarker]; ok {
				s, ok := raw.(string)
				if !ok {
					return Value{}, cerr.New(cerr.Parse, "$blob wrapper value must be a base64 string")
				}
				b, err := base64.StdEncoding.DecodeString(s)
				if err != nil {
					return Value{}, cerr.Wrap(cerr.Parse, err, "decoding $blob base64 payload")
				}
				return Blob(b), nil
			}
			if raw, ok := x[timestampMarker]; ok {
				s, ok := raw.(string)
				if !ok {
					return Value{}, cerr.New(cerr.Parse, "$timestamp wrapper value must be a string")
				}
				t, err := time.Parse(time.RFC3339Nano, s)
				if err != nil {
					return Value{}, cerr.Wrap(cerr.Parse, err, "parsing $timestamp payload")
				}
				return Timestamp(t), nil
			}
		}
		m := NewMap()
		for k, e := range x {
			v, err := FromJSON(e)
			if err != nil {
				return Value{}, err
			}
			m.Set(k, v)
		}
		return FromMap(m), nil
	default:
		return Value{}, cerr.New(cerr.TypeMismatch, "unsupported JSON decode type for dynamic value")
	}
}

// UnmarshalJSON parses JSON bytes into a Value.
func UnmarshalJSON(b []byte) (Value, error) {
	var data any
	if err := json.Unmarshal(b, &data); err != nil {
		return Value{}, cerr.Wrap(cerr.Parse, err, "unmarshaling JSON into dynamic value")
	}
	return FromJSON(data)
}
