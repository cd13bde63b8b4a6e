// Package progress implements the encoded-progress and cooperative
// cancellation primitives (spec §4.2): an atomic int representing an
// advisory float in [0,1], a check-in cancellation probe, and a reporter
// callback that writes through to a record's progress field.
package progress

import (
	"sync/atomic"

	"github.com/urlofmar/cradle-sub001/internal/cerr"
)

// none is the encoded sentinel meaning "not reported" (spec §4.2).
const none int32 = -1

// Encoded holds one signed integer ∈ [-1, 1000]; -1 means absent,
// otherwise value/1000 is the reported fraction. The zero value decodes
// as a reported 0; NewEncoded starts out "not reported".
type Encoded struct {
	v atomic.Int32
}

// NewEncoded returns an Encoded initialized to "not reported".
func NewEncoded() *Encoded {
	e := &Encoded{}
	e.v.Store(none)
	return e
}

// Encode multiplies a float in [0,1] by 1000 and stores it.
func (e *Encoded) Encode(fraction float64) {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	e.v.Store(int32(fraction*1000 + 0.5))
}

// Reset stores the "not reported" sentinel.
func (e *Encoded) Reset() {
	e.v.Store(none)
}

// Decode returns (fraction, true) if progress has been reported, or
// (0, false) if it is absent.
func (e *Encoded) Decode() (float64, bool) {
	raw := e.v.Load()
	if raw < 0 {
		return 0, false
	}
	return float64(raw) / 1000, true
}

// CheckIn is a cooperative cancellation/health-probe call-site a job
// invokes periodically; it fails with a Canceled error if cancellation
// has been requested (spec §4.2).
type CheckIn func() error

// NewCheckIn builds a CheckIn backed by a cancellation flag.
func NewCheckIn(canceled func() bool) CheckIn {
	return func() error {
		if canceled() {
			return cerr.New(cerr.Canceled, "job canceled at check-in")
		}
		return nil
	}
}

// Reporter is a callable receiving a float in [0,1]; it writes through to
// an Encoded via Relaxed atomic store (spec §4.2).
type Reporter func(fraction float64)

// NewReporter returns a Reporter that writes to e.
func NewReporter(e *Encoded) Reporter {
	return func(fraction float64) { e.Encode(fraction) }
}
