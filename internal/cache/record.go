// Package cache implements the concurrent, typed immutable cache (spec
// §3, §4.4): a per-entry state machine with polling, waiters, progress,
// and failure, fronted by an LRU eviction policy that interacts with live
// reference counts.
package cache

import (
	"container/list"
	"context"
	"sync/atomic"

	"github.com/urlofmar/cradle-sub001/internal/id"
	"github.com/urlofmar/cradle-sub001/internal/progress"
)

// EntryState is a Record's lifecycle state (spec §3).
type EntryState int32

const (
	Loading EntryState = iota
	Ready
	Failed
)

func (s EntryState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// JobHandle is the minimal surface a Record needs from an in-flight job
// controller: cancellation. executor.Handle satisfies this.
type JobHandle interface {
	Cancel()
}

// Record is one cache entry (spec §3 "Cache entry (Record)").
//
// state and Progress are atomics so external observers (UI, supervisors)
// can poll them without acquiring the cache mutex; every other field is
// mutable only under the owning Cache's mutex. A reader that makes a
// decision based on a polled state must re-acquire the mutex and re-check
// state before touching any other field (spec §4.4 "Concurrency" rule).
type Record struct {
	key      *id.CapturedId
	state    atomic.Int32
	Progress *progress.Encoded

	// guarded by the owning Cache's mutex:
	refCount  uint32
	data      any
	size      int
	err       error
	job       JobHandle
	listElem  *list.Element // non-nil iff refCount == 0
	doneOnce  bool
	done      chan struct{}
}

func newRecord(key *id.CapturedId) *Record {
	return &Record{
		key:      key,
		Progress: progress.NewEncoded(),
		done:     make(chan struct{}),
	}
}

// Key returns the record's captured id.
func (r *Record) Key() *id.CapturedId { return r.key }

// State returns the record's current lifecycle state via an atomic load.
func (r *Record) State() EntryState { return EntryState(r.state.Load()) }

// Wait blocks until the record reaches Ready or Failed, or ctx is done.
// It is the explicit-notify implementation chosen for the "wake waiting
// calculation jobs" open question (spec §9): publish/fail close r.done
// exactly once under the cache mutex. Wait checks State() once before
// blocking; a closed channel cannot wake spuriously, so after it closes
// Wait returns without reading State() again. Callers read the outcome
// through Cache.Data.
func (r *Record) Wait(ctx context.Context) error {
	if r.State() != Loading {
		return nil
	}
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done returns the channel closed when the record becomes Ready or Failed.
func (r *Record) Done() <-chan struct{} { return r.done }
