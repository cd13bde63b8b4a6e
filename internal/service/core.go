// Package service implements the ServiceCore facade (spec §4.8): the
// single entry point bundling the immutable cache, the compute pool, the
// HTTP-affinity pool, and the disk-cache proxy, exposing request
// resolution and ad-hoc awaitable tasks to callers (the WebSocket
// gateway, the admin surface, and cmd/cradle-server).
package service

import (
	"context"
	"time"

	"github.com/urlofmar/cradle-sub001/internal/cache"
	"github.com/urlofmar/cradle-sub001/internal/diskcache"
	"github.com/urlofmar/cradle-sub001/internal/dynamic"
	"github.com/urlofmar/cradle-sub001/internal/executor"
	"github.com/urlofmar/cradle-sub001/internal/httpconn"
	"github.com/urlofmar/cradle-sub001/internal/request"
)

// ImmutableCacheConfig parameterizes the shared cache (spec §6).
type ImmutableCacheConfig struct {
	// UnusedSizeLimitBytes is the cap passed to Cache.ClearUnused; the
	// cache itself never shrinks automatically (spec §4.4 rule: eviction
	// only runs on an explicit clear_unused call).
	UnusedSizeLimitBytes uint64
}

// Config bundles every knob ServiceCore needs to start (spec §6).
type Config struct {
	Cache          ImmutableCacheConfig
	ComputeWorkers int
	HTTPWorkers    int
	HTTPTimeout    time.Duration
	// Disk is the disk-cache proxy the resolver's miss path consults
	// before submitting a job and writes through to on publish (spec
	// §4.8). Nil disables disk-cache participation entirely.
	Disk diskcache.Store
}

// DefaultConfig returns sane defaults for local development (spec §6
// "Defaults").
func DefaultConfig() Config {
	return Config{
		Cache:          ImmutableCacheConfig{UnusedSizeLimitBytes: 256 << 20},
		ComputeWorkers: 4,
		HTTPWorkers:    4,
		HTTPTimeout:    30 * time.Second,
	}
}

// Core is the ServiceCore facade (spec §4.8).
type Core struct {
	cfg      Config
	Cache    *cache.Cache
	Compute  *executor.Pool
	HTTP     *executor.Pool
	Resolver *request.Resolver
	metrics  *Metrics
}

// New constructs a ServiceCore with its own cache and worker pools.
func New(cfg Config) *Core {
	c := cache.New(dynamic.ByteSize)
	compute := executor.NewPool(cfg.ComputeWorkers, nil)
	httpPool := executor.NewPool(cfg.HTTPWorkers, httpconn.NewWorkerExecutorFactory(cfg.HTTPTimeout))
	rv := request.NewResolver(c, compute)
	if cfg.Disk != nil {
		rv.SetDiskCache(cfg.Disk)
	}

	return &Core{
		cfg:      cfg,
		Cache:    c,
		Compute:  compute,
		HTTP:     httpPool,
		Resolver: rv,
		metrics:  NewMetrics(),
	}
}

// Resolve resolves r against the shared cache, deduplicating with any
// other in-flight or completed resolution of an equal-fingerprint
// request (spec §4.5).
func (s *Core) Resolve(ctx context.Context, r request.Request) (any, error) {
	start := time.Now()
	v, err := s.Resolver.ResolveSync(ctx, r)
	s.metrics.ObserveResolve(time.Since(start), err == nil)
	return v, err
}

// ReclaimUnused runs the cache's eviction pass against the configured
// size limit (spec §4.4 clear_unused); callers typically invoke this
// periodically from a background goroutine.
func (s *Core) ReclaimUnused() {
	s.Cache.ClearUnused(s.cfg.Cache.UnusedSizeLimitBytes)
	inUse, pending := s.Cache.Snapshot()
	s.metrics.SetCacheEntries(len(inUse), len(pending))
	s.metrics.SetCacheBytes(s.Cache.TotalSize())
}

// Metrics exposes the facade's Prometheus collector for the admin
// surface to register (spec §4.8/§6).
func (s *Core) Metrics() *Metrics { return s.metrics }

// Shutdown drains and stops both worker pools (spec §4.3 rule 5).
func (s *Core) Shutdown() {
	s.Compute.Shutdown()
	s.HTTP.Shutdown()
}
