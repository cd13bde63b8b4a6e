package dynamic

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"time"

	"github.com/urlofmar/cradle-sub001/internal/cerr"
)

// DecodeNative parses the canonical native encoding written by
// WriteNative/EncodeNative (spec §6 testable property 6:
// decode(encode(v)) == v).
func DecodeNative(b []byte) (Value, error) {
	r := bytes.NewReader(b)
	v, err := readNative(r)
	if err != nil {
		return Value{}, err
	}
	if r.Len() != 0 {
		return Value{}, cerr.New(cerr.Parse, "trailing bytes after native value").With("remaining", r.Len())
	}
	return v, nil
}

func readNative(r *bytes.Reader) (Value, error) {
	tagByte, err := r.ReadByte()
	if err != nil {
		return Value{}, cerr.Wrap(cerr.Parse, err, "reading native value tag")
	}
	switch Kind(tagByte) {
	case KindNil:
		return Nil(), nil
	case KindBool:
		b, err := r.ReadByte()
		if err != nil {
			return Value{}, cerr.Wrap(cerr.Parse, err, "reading native bool")
		}
		return Bool(b != 0), nil
	case KindInt:
		u, err := readUint64(r)
		if err != nil {
			return Value{}, err
		}
		return Int(int64(u)), nil
	case KindFloat:
		u, err := readUint64(r)
		if err != nil {
			return Value{}, err
		}
		return Float(math.Float64frombits(u)), nil
	case KindString:
		b, err := readBytes(r)
		if err != nil {
			return Value{}, err
		}
		return String(string(b)), nil
	case KindBlob:
		b, err := readBytes(r)
		if err != nil {
			return Value{}, err
		}
		return Blob(b), nil
	case KindTimestamp:
		u, err := readUint64(r)
		if err != nil {
			return Value{}, err
		}
		return Timestamp(time.Unix(0, int64(u)).UTC()), nil
	case KindList:
		n, err := readUint64(r)
		if err != nil {
			return Value{}, err
		}
		items := make([]Value, 0, n)
		for i := uint64(0); i < n; i++ {
			e, err := readNative(r)
			if err != nil {
				return Value{}, err
			}
			items = append(items, e)
		}
		return List(items...), nil
	case KindMap:
		n, err := readUint64(r)
		if err != nil {
			return Value{}, err
		}
		m := NewMap()
		for i := uint64(0); i < n; i++ {
			kb, err := readBytes(r)
			if err != nil {
				return Value{}, err
			}
			val, err := readNative(r)
			if err != nil {
				return Value{}, err
			}
			m.Set(string(kb), val)
		}
		return FromMap(m), nil
	default:
		return Value{}, cerr.New(cerr.Parse, "unknown native value tag").With("tag", tagByte)
	}
}

func readUint64(r *bytes.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, cerr.Wrap(cerr.Parse, err, "reading native uint64")
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

func readBytes(r *bytes.Reader) ([]byte, error) {
	n, err := readUint64(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, cerr.Wrap(cerr.Parse, err, "reading native byte string")
	}
	return buf, nil
}
