// Package executor implements the bounded worker-pool scheduler (spec
// §4.3): a priority-ordered job queue, per-thread executor state (plain or
// HTTP-connection-affine), and a controller handle for monitoring and
// cooperative cancellation.
package executor

import (
	"github.com/urlofmar/cradle-sub001/internal/progress"
)

// State is a Job's lifecycle state (spec §4.3).
type State int32

const (
	Queued State = iota
	Running
	Completed
	Failed
	Canceled
)

func (s State) String() string {
	switch s {
	case Queued:
		return "queued"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Canceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Job is the contract a unit of work submitted to a Pool must satisfy.
type Job interface {
	// InputsReady reports whether the job's inputs had all resolved at
	// submission time. The pool itself never parks or busy-polls a
	// dequeued job waiting on this — a bounded pool has no free worker
	// to run whatever the job is waiting on, which is exactly the
	// deadlock spec §4.3 rule 2 forbids. The rule is enforced by the
	// caller instead: a job must not be handed to Submit until its
	// inputs are actually ready (request.Resolver.scheduleApply gathers
	// an Apply's arguments off the pool before ever submitting its
	// job), so InputsReady is true for every job this pool runs and
	// Execute never blocks a worker goroutine on sub-resolution.
	InputsReady() bool
	// Execute runs the job to completion (or until check-in reports
	// cancellation), invoking reporter as progress becomes known.
	Execute(checkIn progress.CheckIn, reporter progress.Reporter) (any, error)
	// Describe returns a short human-readable label for logging/UI.
	Describe() string
}

// ConnectionAware is implemented by jobs that want the HTTP connection
// owned by their assigned worker thread (spec §4.6 connection affinity).
// SetConnection is called with a nil value when the job runs on a
// compute-only worker.
type ConnectionAware interface {
	SetConnection(conn any)
}
