package cache

import (
	"container/list"
	"sync"

	"github.com/urlofmar/cradle-sub001/internal/id"
)

// SizeOf estimates the deep size in bytes of a published value; the
// service facade supplies a domain-appropriate implementation (e.g. the
// dynamic value package's byte-size walker) at construction time.
type SizeOf func(data any) int

// Cache is the concurrent, typed in-memory cache (spec §4.4). One coarse
// mutex protects the record map, the eviction list, and every Record
// field except State and Progress, which are atomics (spec "Concurrency").
type Cache struct {
	mu sync.Mutex

	records   map[string]*Record
	evictList *list.List // elements are *Record; front = oldest
	totalSize uint64
	sizeOf    SizeOf
}

// New constructs an empty Cache. sizeOf may be nil, in which case
// published records are tracked with size 0 (eviction never reclaims
// based on size, but clear_unused still works as a no-op budget check).
func New(sizeOf SizeOf) *Cache {
	if sizeOf == nil {
		sizeOf = func(any) int { return 0 }
	}
	return &Cache{
		records:   make(map[string]*Record),
		evictList: list.New(),
		sizeOf:    sizeOf,
	}
}

// Pointer is a reference-counted handle to a Record returned by Probe.
// Its Drop decrements the record's ref_count; at 0 the record is appended
// to the eviction list (spec §4.4 "Public contract").
type Pointer struct {
	cache  *Cache
	Record *Record
}

// Drop releases this handle's hold on the record.
func (p *Pointer) Drop() {
	p.cache.drop(p.Record)
}

// Probe returns a reference-counted handle to the record for key,
// creating one in Loading state if none existed. At most one creation
// wins under concurrent probes; all other concurrent probers of the same
// key observe the winner's record (spec §4.4, testable property 3).
// created reports whether this call is the one that created the record
// (and is therefore responsible for constructing and submitting a job).
func (c *Cache) Probe(key id.Id) (ptr *Pointer, created bool) {
	sk := id.StableKey(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	if rec, ok := c.records[sk]; ok {
		rec.refCount++
		if rec.listElem != nil {
			c.evictList.Remove(rec.listElem)
			c.totalSize -= uint64(rec.size)
			rec.listElem = nil
		}
		return &Pointer{cache: c, Record: rec}, false
	}

	rec := newRecord(id.Capture(key))
	rec.refCount = 1
	c.records[sk] = rec
	return &Pointer{cache: c, Record: rec}, true
}

// AttachJob associates job as the in-flight job handle for a Loading
// record created by Probe (only the creator of a fresh Loading record
// should call this).
func (c *Cache) AttachJob(rec *Record, job JobHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec.job = job
}

func (c *Cache) drop(rec *Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if rec.refCount == 0 {
		return
	}
	rec.refCount--
	if rec.refCount == 0 {
		rec.listElem = c.evictList.PushBack(rec)
		c.totalSize += uint64(rec.size)
	}
}

// Publish transitions a Loading record to Ready, installs data, clears
// progress, and drops the job handle, then wakes any waiters (spec §4.4).
func (c *Cache) Publish(rec *Record, data any) {
	c.mu.Lock()
	rec.data = data
	rec.size = c.sizeOf(data)
	if rec.listElem != nil {
		// released while Loading: listed with size 0 until now.
		c.totalSize += uint64(rec.size)
	}
	rec.job = nil
	rec.Progress.Reset()
	rec.state.Store(int32(Ready))
	closeOnce(rec)
	c.mu.Unlock()
}

// Fail transitions a Loading record to the terminal Failed state,
// recording err, clearing progress, and dropping the job handle, then
// wakes any waiters (spec §4.4). Failed is terminal: there is no
// self-retry (spec §3 invariant 4); the caller may evict and re-insert.
func (c *Cache) Fail(rec *Record, err error) {
	c.mu.Lock()
	rec.err = err
	rec.job = nil
	rec.Progress.Reset()
	rec.state.Store(int32(Failed))
	closeOnce(rec)
	c.mu.Unlock()
}

func closeOnce(rec *Record) {
	if !rec.doneOnce {
		rec.doneOnce = true
		close(rec.done)
	}
}

// Data returns the published value and any terminal error. It must be
// called under a state check: callers should poll Record.State(), and on
// Ready/Failed call Data to read the authoritative value under lock (spec
// §4.4 "if a decision is made on the basis of a polled state, the reader
// must re-acquire the mutex").
func (c *Cache) Data(rec *Record) (data any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return rec.data, rec.err
}

// ClearUnused evicts from the head of the eviction list while
// total_size > maxBytes (spec §4.4). Records still Loading are passed
// over and stay listed, so an in-flight job whose last reference was
// dropped still runs to completion and publishes into its record.
// Evicted job handles (there are none, by construction, for Ready/Failed
// records, but the ordering is kept general) are dropped after the mutex
// is released, to avoid re-entrant mutex acquisition if a handle's
// cleanup path touches another record (spec §5 "Deadlock discipline").
func (c *Cache) ClearUnused(maxBytes uint64) {
	c.mu.Lock()
	var evicted []JobHandle
	for e := c.evictList.Front(); e != nil && c.totalSize > maxBytes; {
		next := e.Next()
		rec := e.Value.(*Record)
		if rec.State() == Loading {
			e = next
			continue
		}
		c.evictList.Remove(e)
		e = next
		rec.listElem = nil
		c.totalSize -= uint64(rec.size)
		delete(c.records, rec.key.StableKey())
		if rec.job != nil {
			evicted = append(evicted, rec.job)
			rec.job = nil
		}
	}
	c.mu.Unlock()

	for _, job := range evicted {
		job.Cancel()
	}
}

// SnapshotEntry is one row of a Cache snapshot (spec §4.4).
type SnapshotEntry struct {
	KeyString string
	IsReady   bool
	Size      int
}

// Snapshot returns two lists: in-use records (ref_count > 0), in no
// defined order, and pending-eviction records (on the eviction list,
// oldest first).
func (c *Cache) Snapshot() (inUse, pendingEviction []SnapshotEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, rec := range c.records {
		entry := SnapshotEntry{
			KeyString: id.DebugString(rec.key.Id()),
			IsReady:   rec.State() == Ready,
			Size:      rec.size,
		}
		if rec.listElem != nil {
			continue
		}
		inUse = append(inUse, entry)
	}
	for e := c.evictList.Front(); e != nil; e = e.Next() {
		rec := e.Value.(*Record)
		pendingEviction = append(pendingEviction, SnapshotEntry{
			KeyString: id.DebugString(rec.key.Id()),
			IsReady:   rec.State() == Ready,
			Size:      rec.size,
		})
	}
	return inUse, pendingEviction
}

// TotalSize returns the current eviction-list total size (spec invariant
// 2: eviction_list.total_size == Σ size over listed records).
func (c *Cache) TotalSize() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalSize
}
