package executor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/urlofmar/cradle-sub001/internal/progress"
)

type fnJob struct {
	run func(checkIn progress.CheckIn, reporter progress.Reporter) (any, error)
}

func (j *fnJob) InputsReady() bool { return true }
func (j *fnJob) Execute(checkIn progress.CheckIn, reporter progress.Reporter) (any, error) {
	return j.run(checkIn, reporter)
}
func (j *fnJob) Describe() string { return "fnJob" }

func TestPoolRunsJobToCompletion(t *testing.T) {
	pool := NewPool(1, nil)
	defer pool.Shutdown()

	h := pool.Submit(&fnJob{run: func(progress.CheckIn, progress.Reporter) (any, error) {
		return 42, nil
	}}, 0, 0, nil)

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("job did not complete")
	}
	require.Equal(t, Completed, h.State())
	require.Equal(t, 42, h.Result())
}

func TestZeroWorkersSkipQueueStillRuns(t *testing.T) {
	pool := NewPool(0, nil)
	defer pool.Shutdown()

	ran := make(chan struct{})
	h := pool.Submit(&fnJob{run: func(progress.CheckIn, progress.Reporter) (any, error) {
		close(ran)
		return nil, nil
	}}, 0, SkipQueue, nil)

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("on-demand job never ran")
	}
	<-h.Done()
	require.Equal(t, Completed, h.State())
}

func TestPriorityOrdering(t *testing.T) {
	pool := NewPool(1, nil)
	defer pool.Shutdown()

	start := make(chan struct{})
	var order []int
	done := make(chan struct{})

	// Block the single worker until both jobs are queued, so priority
	// ordering is deterministic.
	blocker := pool.Submit(&fnJob{run: func(progress.CheckIn, progress.Reporter) (any, error) {
		<-start
		return nil, nil
	}}, 100, 0, nil)

	h1 := pool.Submit(&fnJob{run: func(progress.CheckIn, progress.Reporter) (any, error) {
		order = append(order, 1)
		return nil, nil
	}}, 1, 0, nil)
	h2 := pool.Submit(&fnJob{run: func(progress.CheckIn, progress.Reporter) (any, error) {
		order = append(order, 2)
		close(done)
		return nil, nil
	}}, 5, 0, nil)

	close(start)
	<-blocker.Done()
	<-h1.Done()
	<-h2.Done()
	<-done
	require.Equal(t, []int{2, 1}, order)
}

func TestCancellationBeforeDequeue(t *testing.T) {
	pool := NewPool(1, nil)
	defer pool.Shutdown()

	start := make(chan struct{})
	blocker := pool.Submit(&fnJob{run: func(progress.CheckIn, progress.Reporter) (any, error) {
		<-start
		return nil, nil
	}}, 0, 0, nil)

	ran := false
	h := pool.Submit(&fnJob{run: func(progress.CheckIn, progress.Reporter) (any, error) {
		ran = true
		return nil, nil
	}}, 0, 0, nil)
	h.Cancel()

	close(start)
	<-blocker.Done()
	<-h.Done()

	require.Equal(t, Canceled, h.State())
	require.False(t, ran)
}

func TestShutdownDrainsQueue(t *testing.T) {
	pool := NewPool(0, nil)
	h := pool.Submit(&fnJob{run: func(progress.CheckIn, progress.Reporter) (any, error) {
		return nil, nil
	}}, 0, 0, nil)
	pool.Shutdown()
	<-h.Done()
	require.Equal(t, Canceled, h.State())
}
