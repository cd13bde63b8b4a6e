package request

import (
	"context"
	"sync"

	"github.com/urlofmar/cradle-sub001/internal/cache"
	"github.com/urlofmar/cradle-sub001/internal/cerr"
	"github.com/urlofmar/cradle-sub001/internal/dynamic"
	"github.com/urlofmar/cradle-sub001/internal/executor"
	"github.com/urlofmar/cradle-sub001/internal/id"
	"github.com/urlofmar/cradle-sub001/internal/progress"
)

// DiskCache is the narrow capability the resolver needs from the
// external disk-cache proxy (spec §4.8): a byte-string get/put keyed by
// a request's stable fingerprint. internal/diskcache.Store satisfies
// this without request needing to import it.
type DiskCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Resolver implements the resolution algorithm of spec §4.5: probe the
// cache, invoke the continuation synchronously on a Ready/Failed hit,
// subscribe on a Loading hit, and — for the probe that created the
// record — construct and submit the work needed to produce it.
type Resolver struct {
	c    *cache.Cache
	pool *executor.Pool
	disk DiskCache
}

// NewResolver bundles a cache and the compute pool used to run Apply and
// Meta jobs. Value requests never touch the pool: they publish inline
// (spec §4.5 "Value(v): publish v immediately").
func NewResolver(c *cache.Cache, pool *executor.Pool) *Resolver {
	return &Resolver{c: c, pool: pool}
}

// SetDiskCache wires an external disk-cache proxy into the resolution
// path (spec §4.8): a freshly-created record's miss path consults disk
// before submitting a compute job, and a successful Apply/Meta
// resolution writes its dynamic.Value result through to disk. Requests
// resolving to a non-dynamic.Value Go type are untouched by either path.
func (rv *Resolver) SetDiskCache(d DiskCache) { rv.disk = d }

// Continuation receives a resolved request's value or its terminal error.
type Continuation func(value any, err error)

// Resolve drives r to Ready or Failed and invokes k exactly once. If the
// cache entry is already Ready or Failed, k runs synchronously on the
// calling goroutine (spec §4.5 step 3); otherwise it runs from a
// goroutine that waits on the record (spec §4.5 step 2).
func (rv *Resolver) Resolve(ctx context.Context, r Request, k Continuation) {
	ptr, created := rv.c.Probe(r.Fingerprint())

	if created {
		if vr, ok := r.(valueRequest); ok {
			rv.c.Publish(ptr.Record, vr.v)
		} else if !rv.diskHit(ctx, ptr.Record, r.Fingerprint()) {
			rv.schedule(ctx, r, ptr.Record)
		}
	}

	switch ptr.Record.State() {
	case cache.Ready, cache.Failed:
		data, err := rv.c.Data(ptr.Record)
		ptr.Drop()
		k(data, err)
	default:
		go func() {
			defer ptr.Drop()
			if err := ptr.Record.Wait(ctx); err != nil {
				k(nil, err)
				return
			}
			data, err := rv.c.Data(ptr.Record)
			k(data, err)
		}()
	}
}

// ResolveSync blocks until r resolves and returns its value or error,
// the synchronous entry point used by scheduleApply/scheduleMeta to
// gather sub-requests off the pool and by top-level callers (spec
// testable properties S1-S3).
func (rv *Resolver) ResolveSync(ctx context.Context, r Request) (any, error) {
	done := make(chan struct{})
	var val any
	var rerr error
	rv.Resolve(ctx, r, func(v any, err error) {
		val, rerr = v, err
		close(done)
	})
	<-done
	return val, rerr
}

// resolveAll resolves every request in rs concurrently and waits for all
// of them, so no record's Wait outlives this call's context use. If any
// failed, it returns the error of the first failing request in rs order.
func (rv *Resolver) resolveAll(ctx context.Context, rs []Request) ([]any, error) {
	results := make([]any, len(rs))
	errs := make([]error, len(rs))
	var wg sync.WaitGroup
	for i, r := range rs {
		wg.Add(1)
		go func(i int, r Request) {
			defer wg.Done()
			results[i], errs[i] = rv.ResolveSync(ctx, r)
		}(i, r)
	}
	wg.Wait()
	for _, e := range errs {
		if e != nil {
			return nil, e
		}
	}
	return results, nil
}

// schedule constructs and starts the work needed to produce a freshly
// created record's value, for the one probe that created it (spec §4.3
// rule 2 / §4.5 step 1). Gathering a request's sub-requests never runs on
// a pool worker: only an Apply's own function body is pool work, and it
// is submitted after its arguments are already Ready, so InputsReady is
// true for every job this resolver ever hands the pool and no worker
// blocks waiting on a child job the pool has no free worker to run.
func (rv *Resolver) schedule(ctx context.Context, r Request, rec *cache.Record) {
	switch req := r.(type) {
	case applyRequest:
		rv.scheduleApply(ctx, req, rec)
	case metaRequest:
		rv.scheduleMeta(ctx, req, rec)
	}
}

// scheduleApply resolves r's arguments off the pool, then submits a job
// that only ever invokes r.fn on already-resolved values.
func (rv *Resolver) scheduleApply(ctx context.Context, r applyRequest, rec *cache.Record) {
	go func() {
		args, err := rv.resolveAll(ctx, r.args)
		if err != nil {
			rv.c.Fail(rec, err)
			return
		}
		job := &applyJob{resolver: rv, r: r, args: args, rec: rec, ctx: ctx}
		handle := rv.pool.Submit(job, 0, 0, progress.NewReporter(rec.Progress))
		rv.c.AttachJob(rec, handle)
	}()
}

// scheduleMeta resolves a Meta request's producer and then its product,
// entirely off the pool: a meta-request does no compute-pool work of its
// own, it only chains two resolutions (spec §3 "Meta(p): resolve p to
// obtain r'; then resolve r'").
func (rv *Resolver) scheduleMeta(ctx context.Context, r metaRequest, rec *cache.Record) {
	go func() {
		producerVal, err := rv.ResolveSync(ctx, r.producer)
		if err != nil {
			rv.c.Fail(rec, err)
			return
		}
		nextReq, ok := producerVal.(Request)
		if !ok {
			rv.c.Fail(rec, errMetaProducerNotRequest)
			return
		}
		val, err := rv.ResolveSync(ctx, nextReq)
		if err != nil {
			rv.c.Fail(rec, err)
			return
		}
		rv.diskPut(ctx, r.Fingerprint(), val)
		rv.c.Publish(rec, val)
	}()
}

// diskHit consults the disk-cache proxy for fingerprint before a newly
// created record would otherwise need a compute job (spec §4.8: "the
// miss path consults the disk cache before submitting a job"). It
// publishes rec and returns true on a decodable hit; any miss, read
// error, or undecodable blob leaves rec untouched and returns false so
// the caller falls back to normal job submission.
func (rv *Resolver) diskHit(ctx context.Context, rec *cache.Record, fingerprint id.Id) bool {
	if rv.disk == nil {
		return false
	}
	raw, ok, err := rv.disk.Get(ctx, id.StableKey(fingerprint))
	if err != nil || !ok {
		return false
	}
	v, err := dynamic.DecodeNative(raw)
	if err != nil {
		return false
	}
	rv.c.Publish(rec, v)
	return true
}

// diskPut writes a freshly computed dynamic.Value through to the
// disk-cache proxy on successful publish (spec §4.8: "writes through on
// publish"). Results of any other Go type are not disk-cacheable and are
// silently skipped.
func (rv *Resolver) diskPut(ctx context.Context, fingerprint id.Id, val any) {
	if rv.disk == nil {
		return
	}
	v, ok := val.(dynamic.Value)
	if !ok {
		return
	}
	rv.disk.Put(ctx, id.StableKey(fingerprint), dynamic.EncodeNative(v))
}

var errMetaProducerNotRequest = cerr.New(cerr.TypeMismatch, "meta request's producer did not resolve to a Request")
