package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/urlofmar/cradle-sub001/internal/diskcache"
	"github.com/urlofmar/cradle-sub001/internal/dynamic"
	"github.com/urlofmar/cradle-sub001/internal/id"
	"github.com/urlofmar/cradle-sub001/internal/progress"
	"github.com/urlofmar/cradle-sub001/internal/request"
)

func newTestCore(t *testing.T) *Core {
	t.Helper()
	cfg := DefaultConfig()
	cfg.ComputeWorkers = 2
	cfg.HTTPWorkers = 0
	s := New(cfg)
	t.Cleanup(s.Shutdown)
	return s
}

func TestCoreResolvesRequest(t *testing.T) {
	s := newTestCore(t)
	req := request.Apply("double", func(args []any) (any, error) {
		return args[0].(int) * 2, nil
	}, request.Value(21))

	v, err := s.Resolve(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func TestCoreReclaimUnusedUpdatesMetrics(t *testing.T) {
	s := newTestCore(t)
	req := request.Value("hello")
	_, err := s.Resolve(context.Background(), req)
	require.NoError(t, err)

	s.ReclaimUnused()
	require.NotNil(t, s.Metrics().Registry())

	// the released "hello" record is pending eviction (its size is 0,
	// far under the limit), so the gauge reports one such entry.
	families, err := s.Metrics().Registry().Gather()
	require.NoError(t, err)
	pending := -1.0
	for _, mf := range families {
		if mf.GetName() != "cradle_cache_entries" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "state" && l.GetValue() == "pending_eviction" {
					pending = m.GetGauge().GetValue()
				}
			}
		}
	}
	require.Equal(t, 1.0, pending)
}

func TestCoreWiresDiskCacheIntoResolver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ComputeWorkers = 2
	cfg.HTTPWorkers = 0
	cfg.Disk = diskcache.NewNoopStore()
	s := New(cfg)
	t.Cleanup(s.Shutdown)

	req := request.Apply("greet", func(args []any) (any, error) {
		return dynamic.String("hi"), nil
	})
	v, err := s.Resolve(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, dynamic.String("hi"), v)

	raw, ok, err := cfg.Disk.Get(context.Background(), id.StableKey(req.Fingerprint()))
	require.NoError(t, err)
	require.True(t, ok)
	decoded, err := dynamic.DecodeNative(raw)
	require.NoError(t, err)
	require.True(t, decoded.Equals(dynamic.String("hi")))
}

func TestCoreSubmitTaskIsAwaitable(t *testing.T) {
	s := newTestCore(t)
	task := s.SubmitTask("add", func(checkIn progress.CheckIn, reporter progress.Reporter) (any, error) {
		return 1 + 1, nil
	})
	v, err := task.Await(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, v)
}
