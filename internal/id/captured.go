package id

import (
	"bytes"
	"encoding/hex"
)

// CapturedId is an owning container holding one deep-cloned Id value by
// stable reference; captured ids compare equal iff the underlying ids
// compare equal (spec §3). The cache indexes records through a
// CapturedId's StableKey rather than a raw pointer: Go maps cannot carry a
// custom hash/equality function, so the "pointer-to-captured-id with a
// deref'ing hasher" scheme from the source is realized here as design
// note (c) — a map keyed by the id's own canonical byte stream — which
// still gives O(1) lookup without cloning the probing key (see DESIGN.md).
type CapturedId struct {
	id Id
}

// Capture deep-clones id into a new CapturedId.
func Capture(v Id) *CapturedId {
	return &CapturedId{id: v.Clone()}
}

// Id returns the captured id by reference.
func (c *CapturedId) Id() Id { return c.id }

// Equals reports structural equality with another CapturedId.
func (c *CapturedId) Equals(o *CapturedId) bool {
	if c == o {
		return true
	}
	if c == nil || o == nil {
		return false
	}
	return c.id.Equals(o.id)
}

// StableKey returns the canonical byte-stream encoding of the captured
// id, suitable as a Go map key (see type doc).
func (c *CapturedId) StableKey() string {
	return StableKey(c.id)
}

// StableKey returns the canonical byte-stream encoding of v, suitable as
// a Go map key for any Id (not just a CapturedId).
func StableKey(v Id) string {
	var buf bytes.Buffer
	v.Stream(&buf)
	return buf.String()
}

// DebugString renders v as a hex string for logging and for the
// key_string field of a cache snapshot() entry (spec §4.4).
func DebugString(v Id) string {
	return hex.EncodeToString([]byte(StableKey(v)))
}
