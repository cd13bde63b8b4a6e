package httpconn

import (
	"time"

	"github.com/urlofmar/cradle-sub001/internal/executor"
)

// WorkerExecutor is an executor.Executor that owns one persistent
// Connection for the lifetime of its worker goroutine (spec §4.6
// connection affinity: "each HTTP worker thread owns exactly one
// connection for its lifetime").
type WorkerExecutor struct {
	conn Connection
}

// NewWorkerExecutorFactory returns a factory suitable for
// executor.NewPool's newExecutor parameter, constructing one fresh
// Connection per worker with the given per-request timeout.
func NewWorkerExecutorFactory(timeout time.Duration) func() executor.Executor {
	return func() executor.Executor {
		return &WorkerExecutor{conn: NewConnection(timeout)}
	}
}

func (e *WorkerExecutor) Connection() any { return e.conn }
func (e *WorkerExecutor) Close()          { e.conn.Close() }
