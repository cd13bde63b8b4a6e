package service

import (
	"context"

	"github.com/urlofmar/cradle-sub001/internal/executor"
	"github.com/urlofmar/cradle-sub001/internal/progress"
)

// TaskFunc is ad-hoc work submitted directly to the compute pool,
// bypassing the request graph — used for facade-level operations that
// are not cacheable by content (e.g. a one-off disk-cache flush).
type TaskFunc func(checkIn progress.CheckIn, reporter progress.Reporter) (any, error)

type taskJob struct {
	label string
	fn    TaskFunc
}

func (j taskJob) InputsReady() bool { return true }
func (j taskJob) Describe() string  { return j.label }
func (j taskJob) Execute(checkIn progress.CheckIn, reporter progress.Reporter) (any, error) {
	return j.fn(checkIn, reporter)
}

// Task is an awaitable handle over a TaskFunc submitted via SubmitTask.
type Task struct {
	handle *executor.Handle
}

// Await blocks until the task finishes or ctx is done.
func (t *Task) Await(ctx context.Context) (any, error) {
	select {
	case <-t.handle.Done():
		return t.handle.Result(), t.handle.Err()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel requests cooperative cancellation of the task.
func (t *Task) Cancel() { t.handle.Cancel() }

// SubmitTask runs fn on the compute pool and returns an awaitable Task.
func (s *Core) SubmitTask(label string, fn TaskFunc) *Task {
	h := s.Compute.Submit(taskJob{label: label, fn: fn}, 0, 0, nil)
	return &Task{handle: h}
}
