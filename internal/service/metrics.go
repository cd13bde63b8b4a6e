package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the facade's Prometheus collector set, grounded on the
// teacher's internal/monitoring package (one struct of named
// collectors, registered once at startup, updated from plain methods).
type Metrics struct {
	registry *prometheus.Registry

	resolveTotal    *prometheus.CounterVec
	resolveDuration prometheus.Histogram
	cacheEntries    *prometheus.GaugeVec
	cacheBytes      prometheus.Gauge
}

// NewMetrics constructs and registers the facade's collectors against a
// private registry (the admin surface mounts it at /metrics).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		resolveTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cradle",
			Name:      "resolve_total",
			Help:      "Total request resolutions, by outcome.",
		}, []string{"outcome"}),
		resolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cradle",
			Name:      "resolve_duration_seconds",
			Help:      "Latency of request resolution from the caller's perspective.",
			Buckets:   prometheus.DefBuckets,
		}),
		cacheEntries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "cradle",
			Name:      "cache_entries",
			Help:      "Cache entry count, by eviction-list membership.",
		}, []string{"state"}),
		cacheBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cradle",
			Name:      "cache_bytes",
			Help:      "Total bytes tracked on the cache's eviction list.",
		}),
	}
	reg.MustRegister(m.resolveTotal, m.resolveDuration, m.cacheEntries, m.cacheBytes)
	return m
}

// Registry returns the collector registry for the admin surface to mount.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveResolve records one Resolve call's latency and outcome.
func (m *Metrics) ObserveResolve(d time.Duration, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.resolveTotal.WithLabelValues(outcome).Inc()
	m.resolveDuration.Observe(d.Seconds())
}

// SetCacheEntries records the current in-use and pending-eviction entry
// counts (spec §4.4 snapshot).
func (m *Metrics) SetCacheEntries(inUse, pendingEviction int) {
	m.cacheEntries.WithLabelValues("in_use").Set(float64(inUse))
	m.cacheEntries.WithLabelValues("pending_eviction").Set(float64(pendingEviction))
}

// SetCacheBytes records the cache's current total tracked size.
func (m *Metrics) SetCacheBytes(total uint64) {
	m.cacheBytes.Set(float64(total))
}
