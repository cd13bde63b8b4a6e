package executor

import (
	"container/heap"
	"sync"

	"github.com/urlofmar/cradle-sub001/internal/cerr"
	"github.com/urlofmar/cradle-sub001/internal/progress"
)

// Executor is the per-worker-thread state a Pool parameterizes its
// workers with: stateless for compute workers, one persistent HTTP
// connection for HTTP-affinity workers (spec §4.3, §4.6).
type Executor interface {
	// Connection returns the resource handed to ConnectionAware jobs,
	// or nil for a basic (compute) executor.
	Connection() any
	// Close releases any resource owned by this executor when its
	// worker shuts down.
	Close()
}

// BasicExecutor is the stateless executor used by compute-pool workers.
type BasicExecutor struct{}

func (BasicExecutor) Connection() any { return nil }
func (BasicExecutor) Close()          {}

// Flags modify how a submitted job is scheduled (spec §4.3).
type Flags uint8

const (
	// SkipQueue runs the job inline on an on-demand goroutine instead
	// of through the pool's worker queue.
	SkipQueue Flags = 1 << iota
	// HideFromUI marks the job as not relevant to progress UIs.
	HideFromUI
)

// Pool owns a fixed set of worker goroutines drawing from a single
// priority-ordered queue (spec §4.3).
type Pool struct {
	mu           sync.Mutex
	cond         *sync.Cond
	queue        jobHeap
	seq          uint64
	shuttingDown bool
	newExecutor  func() Executor
	wg           sync.WaitGroup
}

// NewPool starts a pool with the given worker count (floor 0; 0 workers
// still accepts SkipQueue submissions per spec S5) and an executor
// factory invoked once per worker goroutine.
func NewPool(workers int, newExecutor func() Executor) *Pool {
	if workers < 0 {
		workers = 0
	}
	if newExecutor == nil {
		newExecutor = func() Executor { return BasicExecutor{} }
	}
	p := &Pool{newExecutor: newExecutor}
	p.cond = sync.NewCond(&p.mu)
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.runWorker()
	}
	return p
}

// Submit enqueues job at the given priority. reporter may be nil. The
// returned Handle observes the job's lifecycle.
func (p *Pool) Submit(job Job, priority int, flags Flags, reporter progress.Reporter) *Handle {
	h := newHandle(flags&HideFromUI != 0)
	rep := func(float64) {}
	if reporter != nil {
		rep = reporter
	}

	p.mu.Lock()
	if p.shuttingDown {
		p.mu.Unlock()
		h.finish(Canceled, cerr.New(cerr.Canceled, "pool is shutting down; submission rejected"))
		return h
	}
	if flags&SkipQueue != 0 {
		p.mu.Unlock()
		go p.runItem(&item{job: job, handle: h, reporter: rep}, BasicExecutor{})
		return h
	}
	p.seq++
	heap.Push(&p.queue, &item{job: job, priority: priority, seq: p.seq, handle: h, reporter: rep})
	p.mu.Unlock()
	p.cond.Signal()
	return h
}

// Shutdown drains the queue: queued jobs are signaled canceled without
// running, and further submissions are rejected (spec §4.3 rule 5).
// Jobs already running are not signaled to cancel; Shutdown waits for
// the worker goroutines to finish them. SkipQueue jobs already started
// run on their own goroutines and are not waited for.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	p.shuttingDown = true
	remaining := p.queue
	p.queue = nil
	p.mu.Unlock()
	p.cond.Broadcast()

	for _, it := range remaining {
		it.handle.finish(Canceled, cerr.New(cerr.Canceled, "pool shut down before job was dequeued"))
	}
	p.wg.Wait()
}

func (p *Pool) runWorker() {
	defer p.wg.Done()
	lowerWorkerPriority()
	ex := p.newExecutor()
	defer ex.Close()

	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.shuttingDown {
			p.cond.Wait()
		}
		if len(p.queue) == 0 && p.shuttingDown {
			p.mu.Unlock()
			return
		}
		it := heap.Pop(&p.queue).(*item)
		p.mu.Unlock()

		p.runItem(it, ex)
	}
}

func (p *Pool) runItem(it *item, ex Executor) {
	h := it.handle

	// Cancellation is checked before dequeue and at every check-in
	// (spec §4.3 rule 3); this is the "before dequeue" checkpoint.
	if h.CancelRequested() {
		h.finish(Canceled, cerr.New(cerr.Canceled, "job canceled before execution"))
		return
	}

	if ca, ok := it.job.(ConnectionAware); ok {
		ca.SetConnection(ex.Connection())
	}

	h.setRunning()
	checkIn := progress.NewCheckIn(h.CancelRequested)
	result, err := it.job.Execute(checkIn, it.reporter)
	if err != nil {
		if cerr.Is(err, cerr.Canceled) {
			h.finish(Canceled, err)
		} else {
			h.finish(Failed, err)
		}
		return
	}
	h.mu.Lock()
	h.result = result
	h.mu.Unlock()
	h.finish(Completed, nil)
}
