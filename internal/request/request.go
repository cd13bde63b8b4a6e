// Package request implements the request graph (spec §3, §4.5): lazy
// value-producing descriptions — Value, Apply, and Meta — whose ids are
// derived purely structurally, giving equal-fingerprint requests a single
// shared cache entry and in-flight job (the core deduplication guarantee,
// spec testable property 3).
package request

import (
	"fmt"

	"github.com/urlofmar/cradle-sub001/internal/dynamic"
	"github.com/urlofmar/cradle-sub001/internal/id"
)

// Request is a lazy description of a value (spec Glossary). Cycles are
// forbidden by construction: requests are built bottom-up out of
// immutable values, so a meta-request's producer cannot reference its own
// product (spec §9).
type Request interface {
	// Fingerprint returns this request's content-addressed id, computed
	// once at construction from the request's shape and its
	// sub-requests' ids (spec §3 invariant).
	Fingerprint() id.Id
}

// Func is the function a Apply request invokes once all of its argument
// requests have resolved.
type Func func(args []any) (any, error)

type valueRequest struct {
	v  any
	fp id.Id
}

// Value wraps an already-resolved value. Its id is a by-reference id over
// v (spec §3): equal primitive/string values share an id; []byte and
// dynamic.Value get a digest of their content. Any other value gets a
// digest of its type and %#v rendering, which gives equal content a
// shared id only where that rendering contains no pointers; a pointer is
// rendered as its address, so equal content behind different pointers
// gets different ids.
func Value(v any) Request {
	return valueRequest{v: v, fp: valueFingerprint(v)}
}

func (r valueRequest) Fingerprint() id.Id { return r.fp }

type applyRequest struct {
	tag  string
	fn   Func
	args []Request
	fp   id.Id
}

// Apply builds a request that resolves each of args, then invokes fn with
// their resolved values once all are ready. tag identifies fn for id
// derivation: id = SHA-256(tag, args' ids…) (spec §3) — so ordering of
// args matters (testable property 5) and two Apply requests over the
// same tag and argument ids, in the same order, share a fingerprint
// regardless of whether they share the same fn value.
func Apply(tag string, fn Func, args ...Request) Request {
	parts := make([]id.Part, len(args))
	for i, a := range args {
		parts[i] = id.FromId(a.Fingerprint())
	}
	return applyRequest{tag: tag, fn: fn, args: args, fp: id.NewDigest(tag, parts...)}
}

func (r applyRequest) Fingerprint() id.Id { return r.fp }

type metaRequest struct {
	producer Request
	fp       id.Id
}

// Meta builds a request whose producer resolves to *another* Request,
// which is then resolved in turn (spec §3). id = SHA-256("meta",
// producer's id).
func Meta(producer Request) Request {
	return metaRequest{producer: producer, fp: id.NewDigest("meta", id.FromId(producer.Fingerprint()))}
}

func (r metaRequest) Fingerprint() id.Id { return r.fp }

// valueFingerprint derives a by-reference-style id for an arbitrary Go
// value passed to Value().
func valueFingerprint(v any) id.Id {
	switch x := v.(type) {
	case id.Id:
		return x
	case bool:
		return id.NewBool(x)
	case int:
		return id.NewInt(int64(x))
	case int64:
		return id.NewInt(x)
	case float64:
		return id.NewFloat(x)
	case string:
		return id.NewString(x)
	case []byte:
		return id.NewDigest("blob", id.FromBytes(x))
	case dynamic.Value:
		// A dynamic.Value's map/list kinds hold a *Map pointer, so the
		// generic %#v fallback below would fingerprint it by that
		// pointer's address instead of its content. Its own canonical
		// native encoding is the content digest (spec §4.1 "complex
		// arguments feed their canonical native encoding").
		return id.NewDigest("value", dynamic.Part(x))
	default:
		return id.NewDigest("value", id.FromString(fmt.Sprintf("%T:%#v", v, v)))
	}
}
