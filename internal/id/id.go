// Package id implements the content-addressed identifier discipline used
// as the cache key throughout the engine (spec §3, §4.1): structural
// equality, ordering, hashing, streaming, and a SHA-256 composite used to
// derive request fingerprints.
package id

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"io"
	"math"
)

// variantTag orders Id variants for cross-variant comparison: first by
// this stable tag, then by variant-internal order (spec §4.1).
type variantTag uint8

const (
	tagRefBool variantTag = iota
	tagRefInt
	tagRefFloat
	tagRefString
	tagTuple
	tagDigest
)

// Id is the polymorphic content-addressed key. Implementations must be
// immutable once constructed; Clone returns a deep copy suitable for a
// CapturedId to outlive the original.
type Id interface {
	Clone() Id
	Equals(other Id) bool
	Less(other Id) bool
	Hash() uint64
	Stream(w io.Writer)
	tag() variantTag
}

func compareTag(a, b Id) int {
	ta, tb := a.tag(), b.tag()
	switch {
	case ta < tb:
		return -1
	case ta > tb:
		return 1
	default:
		return 0
	}
}

// ---- by-reference ids over primitives/strings ------------------------

type refBool struct{ v bool }
type refInt struct{ v int64 }
type refFloat struct{ v float64 }
type refString struct{ v string }

// NewBool returns a by-reference id over a bool.
func NewBool(v bool) Id { return refBool{v} }

// NewInt returns a by-reference id over an integer.
func NewInt(v int64) Id { return refInt{v} }

// NewFloat returns a by-reference id over a float.
func NewFloat(v float64) Id { return refFloat{v} }

// NewString returns a by-reference id over a string.
func NewString(v string) Id { return refString{v} }

func (r refBool) Clone() Id   { return r }
func (r refInt) Clone() Id    { return r }
func (r refFloat) Clone() Id  { return r }
func (r refString) Clone() Id { return r }

func (r refBool) tag() variantTag   { return tagRefBool }
func (r refInt) tag() variantTag    { return tagRefInt }
func (r refFloat) tag() variantTag  { return tagRefFloat }
func (r refString) tag() variantTag { return tagRefString }

func (r refBool) Equals(o Id) bool {
	other, ok := o.(refBool)
	return ok && other.v == r.v
}
func (r refInt) Equals(o Id) bool {
	other, ok := o.(refInt)
	return ok && other.v == r.v
}
func (r refFloat) Equals(o Id) bool {
	other, ok := o.(refFloat)
	return ok && other.v == r.v
}
func (r refString) Equals(o Id) bool {
	other, ok := o.(refString)
	return ok && other.v == r.v
}

func (r refBool) Less(o Id) bool {
	if c := compareTag(r, o); c != 0 {
		return c < 0
	}
	return !r.v && o.(refBool).v
}
func (r refInt) Less(o Id) bool {
	if c := compareTag(r, o); c != 0 {
		return c < 0
	}
	return r.v < o.(refInt).v
}
func (r refFloat) Less(o Id) bool {
	if c := compareTag(r, o); c != 0 {
		return c < 0
	}
	return r.v < o.(refFloat).v
}
func (r refString) Less(o Id) bool {
	if c := compareTag(r, o); c != 0 {
		return c < 0
	}
	return r.v < o.(refString).v
}

func (r refBool) Stream(w io.Writer) {
	w.Write([]byte{byte(tagRefBool)})
	if r.v {
		w.Write([]byte{1})
	} else {
		w.Write([]byte{0})
	}
}
func (r refInt) Stream(w io.Writer) {
	w.Write([]byte{byte(tagRefInt)})
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(r.v))
	w.Write(buf[:])
}
func (r refFloat) Stream(w io.Writer) {
	w.Write([]byte{byte(tagRefFloat)})
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64FromFloat(r.v))
	w.Write(buf[:])
}
func (r refString) Stream(w io.Writer) {
	w.Write([]byte{byte(tagRefString)})
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(len(r.v)))
	w.Write(buf[:])
	io.WriteString(w, r.v)
}

func (r refBool) Hash() uint64   { return streamHash(r) }
func (r refInt) Hash() uint64    { return streamHash(r) }
func (r refFloat) Hash() uint64  { return streamHash(r) }
func (r refString) Hash() uint64 { return streamHash(r) }

// ---- tuples -------------------------------------------------------------

type tupleId struct{ elems []Id }

// NewTuple returns an id over an ordered tuple of sub-ids.
func NewTuple(elems ...Id) Id {
	cloned := make([]Id, len(elems))
	for i, e := range elems {
		cloned[i] = e.Clone()
	}
	return tupleId{elems: cloned}
}

func (t tupleId) tag() variantTag { return tagTuple }

func (t tupleId) Clone() Id {
	cloned := make([]Id, len(t.elems))
	for i, e := range t.elems {
		cloned[i] = e.Clone()
	}
	return tupleId{elems: cloned}
}

func (t tupleId) Equals(o Id) bool {
	other, ok := o.(tupleId)
	if !ok || len(other.elems) != len(t.elems) {
		return false
	}
	for i := range t.elems {
		if !t.elems[i].Equals(other.elems[i]) {
			return false
		}
	}
	return true
}

func (t tupleId) Less(o Id) bool {
	if c := compareTag(t, o); c != 0 {
		return c < 0
	}
	other := o.(tupleId)
	n := len(t.elems)
	if len(other.elems) < n {
		n = len(other.elems)
	}
	for i := 0; i < n; i++ {
		if t.elems[i].Less(other.elems[i]) {
			return true
		}
		if other.elems[i].Less(t.elems[i]) {
			return false
		}
	}
	return len(t.elems) < len(other.elems)
}

func (t tupleId) Stream(w io.Writer) {
	w.Write([]byte{byte(tagTuple)})
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(len(t.elems)))
	w.Write(buf[:])
	for _, e := range t.elems {
		e.Stream(w)
	}
}

func (t tupleId) Hash() uint64 { return streamHash(t) }

// ---- SHA-256 digests over an ordered sequence of parts -------------------

type digestId struct{ sum [32]byte }

// Part is a single input folded into a digest composite (spec §4.1).
type Part interface{ feed(h io.Writer) }

type idPart struct{ id Id }

func (p idPart) feed(h io.Writer) { p.id.Stream(h) }

type bytesPart struct{ b []byte }

func (p bytesPart) feed(h io.Writer) { h.Write(p.b) }

// FromId folds a sub-id's canonical stream into the digest — used for
// "complex" arguments per spec §4.1.
func FromId(sub Id) Part { return idPart{id: sub} }

// FromBytes folds raw bytes into the digest — used for primitive/string
// arguments per spec §4.1 (e.g. a function tag).
func FromBytes(b []byte) Part { return bytesPart{b: b} }

// FromString is a convenience wrapper over FromBytes.
func FromString(s string) Part { return bytesPart{b: []byte(s)} }

// NewDigest computes id = SHA-256(tag, parts...), matching Apply's
// "SHA-256(function-tag, args' ids…)" and Meta's "SHA-256(\"meta\",
// producer's id)" (spec §3).
func NewDigest(tag string, parts ...Part) Id {
	h := sha256.New()
	h.Write([]byte(tag))
	for _, p := range parts {
		p.feed(h)
	}
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return digestId{sum: sum}
}

func (d digestId) tag() variantTag { return tagDigest }
func (d digestId) Clone() Id       { return d }

func (d digestId) Equals(o Id) bool {
	other, ok := o.(digestId)
	return ok && other.sum == d.sum
}

func (d digestId) Less(o Id) bool {
	if c := compareTag(d, o); c != 0 {
		return c < 0
	}
	other := o.(digestId)
	return bytes.Compare(d.sum[:], other.sum[:]) < 0
}

func (d digestId) Stream(w io.Writer) {
	w.Write([]byte{byte(tagDigest)})
	w.Write(d.sum[:])
}

func (d digestId) Hash() uint64 { return streamHash(d) }

// String renders the digest as hex, useful for debugging and for
// snapshot() key_strings (spec §4.4).
func (d digestId) String() string { return fmt.Sprintf("%x", d.sum) }

// ---- shared helpers -------------------------------------------------------

func streamHash(i Id) uint64 {
	h := fnv.New64a()
	i.Stream(h)
	return h.Sum64()
}

func uint64FromFloat(f float64) uint64 {
	return math.Float64bits(f)
}
