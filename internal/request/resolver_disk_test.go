package request

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/urlofmar/cradle-sub001/internal/dynamic"
	"github.com/urlofmar/cradle-sub001/internal/id"
)

// fakeDisk is an in-memory stand-in for internal/diskcache.Store, scoped
// to this package's tests so request need not import diskcache.
type fakeDisk struct {
	mu    sync.Mutex
	blobs map[string][]byte
	gets  atomic.Int32
}

func newFakeDisk() *fakeDisk { return &fakeDisk{blobs: make(map[string][]byte)} }

func (d *fakeDisk) Get(_ context.Context, key string) ([]byte, bool, error) {
	d.gets.Add(1)
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.blobs[key]
	return v, ok, nil
}

func (d *fakeDisk) Put(_ context.Context, key string, value []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	d.blobs[key] = cp
	return nil
}

func TestResolveWritesDynamicValueResultsThroughToDisk(t *testing.T) {
	rv := newTestResolver(t)
	disk := newFakeDisk()
	rv.SetDiskCache(disk)

	req := Apply("greet", func(args []any) (any, error) {
		return dynamic.String("hello"), nil
	})

	v, err := rv.ResolveSync(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, dynamic.String("hello"), v)

	raw, ok, err := disk.Get(context.Background(), id.StableKey(req.Fingerprint()))
	require.NoError(t, err)
	require.True(t, ok)
	decoded, err := dynamic.DecodeNative(raw)
	require.NoError(t, err)
	require.True(t, decoded.Equals(dynamic.String("hello")))
}

func TestResolveConsultsDiskBeforeSubmittingJob(t *testing.T) {
	rv := newTestResolver(t)
	disk := newFakeDisk()
	rv.SetDiskCache(disk)

	req := Apply("precomputed", func(args []any) (any, error) {
		return dynamic.String("hello"), nil
	})
	require.NoError(t, disk.Put(context.Background(), id.StableKey(req.Fingerprint()), dynamic.EncodeNative(dynamic.String("from-disk"))))

	var calls atomic.Int32
	job := Apply("precomputed", func(args []any) (any, error) {
		calls.Add(1)
		return dynamic.String("hello"), nil
	})
	// job shares req's fingerprint (same tag, no args) so resolving it
	// must hit the pre-seeded disk entry instead of running fn.
	require.True(t, req.Fingerprint().Equals(job.Fingerprint()))

	v, err := rv.ResolveSync(context.Background(), job)
	require.NoError(t, err)
	require.True(t, v.(dynamic.Value).Equals(dynamic.String("from-disk")))
	require.Equal(t, int32(0), calls.Load())
}

func TestNonDynamicValueResultsSkipDiskWriteThrough(t *testing.T) {
	rv := newTestResolver(t)
	disk := newFakeDisk()
	rv.SetDiskCache(disk)

	req := Apply("plain-int", func(args []any) (any, error) {
		return 7, nil
	})

	v, err := rv.ResolveSync(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 7, v)

	_, ok, err := disk.Get(context.Background(), id.StableKey(req.Fingerprint()))
	require.NoError(t, err)
	require.False(t, ok)
}
