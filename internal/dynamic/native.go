package dynamic

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/urlofmar/cradle-sub001/internal/id"
)

// WriteNative streams v's canonical "native" encoding to w (spec §6): a
// tagged, length-prefixed byte stream that round-trips exactly
// (testable property 6). Map entries are written in the map's own
// insertion order (spec §6/§3 "stable ordering of map keys by
// insertion") — two maps holding the same pairs in different build
// orders are structurally Equals but are not guaranteed to share a
// native encoding or id; only Equals treats maps as unordered content.
func WriteNative(w io.Writer, v Value) {
	w.Write([]byte{byte(v.kind)})
	switch v.kind {
	case KindNil:
	case KindBool:
		if v.b {
			w.Write([]byte{1})
		} else {
			w.Write([]byte{0})
		}
	case KindInt:
		writeUint64(w, uint64(v.i))
	case KindFloat:
		writeUint64(w, math.Float64bits(v.f))
	case KindString:
		writeBytes(w, []byte(v.s))
	case KindBlob:
		writeBytes(w, v.blob)
	case KindTimestamp:
		writeUint64(w, uint64(v.t.UnixNano()))
	case KindList:
		writeUint64(w, uint64(len(v.list)))
		for _, e := range v.list {
			WriteNative(w, e)
		}
	case KindMap:
		keys := v.m.Keys()
		writeUint64(w, uint64(len(keys)))
		for _, k := range keys {
			writeBytes(w, []byte(k))
			val, _ := v.m.Get(k)
			WriteNative(w, val)
		}
	}
}

// EncodeNative returns v's canonical native encoding as a byte slice.
func EncodeNative(v Value) []byte {
	var buf bytes.Buffer
	WriteNative(&buf, v)
	return buf.Bytes()
}

// Part folds v's native encoding into an id digest (spec §4.1's "complex
// arguments feed their canonical native encoding").
func Part(v Value) id.Part {
	return id.FromBytes(EncodeNative(v))
}

func writeUint64(w io.Writer, u uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], u)
	w.Write(buf[:])
}

func writeBytes(w io.Writer, b []byte) {
	writeUint64(w, uint64(len(b)))
	w.Write(b)
}
