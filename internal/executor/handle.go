package executor

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Handle is the controller side of a submitted job: it lets an external
// caller monitor state/progress and request cancellation.
type Handle struct {
	ID     uuid.UUID
	Hidden bool

	state     atomic.Int32
	cancelReq atomic.Bool

	mu     sync.Mutex
	err    error
	result any
	done   chan struct{}
}

func newHandle(hidden bool) *Handle {
	h := &Handle{
		ID:     uuid.New(),
		Hidden: hidden,
		done:   make(chan struct{}),
	}
	h.state.Store(int32(Queued))
	return h
}

// State returns the job's current lifecycle state.
func (h *Handle) State() State { return State(h.state.Load()) }

// Cancel requests cooperative cancellation; the job observes this at its
// next check-in call (spec §5).
func (h *Handle) Cancel() { h.cancelReq.Store(true) }

// CancelRequested reports whether Cancel has been called.
func (h *Handle) CancelRequested() bool { return h.cancelReq.Load() }

// Err returns the job's terminal error, if any, once Done is closed.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Done is closed once the job reaches a terminal state (Completed,
// Failed, or Canceled).
func (h *Handle) Done() <-chan struct{} { return h.done }

// Result returns the job's return value once Done is closed with state
// Completed.
func (h *Handle) Result() any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result
}

func (h *Handle) setRunning() { h.state.Store(int32(Running)) }

func (h *Handle) finish(final State, err error) {
	h.mu.Lock()
	h.err = err
	h.mu.Unlock()
	h.state.Store(int32(final))
	close(h.done)
}
