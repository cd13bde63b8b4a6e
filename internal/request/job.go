package request

import (
	"context"

	"github.com/urlofmar/cradle-sub001/internal/cache"
	"github.com/urlofmar/cradle-sub001/internal/id"
	"github.com/urlofmar/cradle-sub001/internal/progress"
)

// applyJob is the executor.Job submitted once an Apply request's
// arguments have all resolved (spec §4.3 rule 2). Resolver.scheduleApply
// gathers those arguments off the pool before ever submitting this job,
// so InputsReady is true by construction and Execute never blocks a
// worker goroutine waiting on a sub-request.
type applyJob struct {
	resolver *Resolver
	r        applyRequest
	args     []any
	rec      *cache.Record
	ctx      context.Context
}

func (j *applyJob) InputsReady() bool { return true }

func (j *applyJob) Describe() string {
	return "apply:" + id.DebugString(j.r.Fingerprint())
}

func (j *applyJob) Execute(checkIn progress.CheckIn, reporter progress.Reporter) (any, error) {
	if err := checkIn(); err != nil {
		j.resolver.c.Fail(j.rec, err)
		return nil, err
	}
	val, err := j.r.fn(j.args)
	if err != nil {
		j.resolver.c.Fail(j.rec, err)
		return nil, err
	}
	// Write through before publishing so a waiter that wakes the instant
	// the record goes Ready can never observe a disk entry still missing.
	j.resolver.diskPut(j.ctx, j.r.Fingerprint(), val)
	j.resolver.c.Publish(j.rec, val)
	return val, nil
}
