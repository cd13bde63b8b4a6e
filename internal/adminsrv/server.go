// Package adminsrv implements the admin/debug HTTP surface (spec §4.8,
// §6): a Prometheus metrics endpoint and a cache snapshot endpoint,
// grounded on the teacher's internal/api/server.go gorilla/mux router
// construction.
package adminsrv

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/urlofmar/cradle-sub001/internal/cache"
	"github.com/urlofmar/cradle-sub001/internal/service"
)

// Server is the admin HTTP surface. ServerConfig.Open/Port (spec §6)
// decide whether and where cmd/cradle-server mounts it.
type Server struct {
	core   *service.Core
	Router *mux.Router
}

// New builds the admin router: GET /healthz, GET /metrics, GET
// /debug/cache.
func New(core *service.Core) *Server {
	s := &Server{core: core, Router: mux.NewRouter()}
	s.Router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.Router.Handle("/metrics", promhttp.HandlerFor(core.Metrics().Registry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)
	s.Router.HandleFunc("/debug/cache", s.handleCacheSnapshot).Methods(http.MethodGet)
	return s
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// cacheSnapshotResponse mirrors spec §4.4's snapshot() shape.
type cacheSnapshotResponse struct {
	InUse           []cache.SnapshotEntry `json:"in_use"`
	PendingEviction []cache.SnapshotEntry `json:"pending_eviction"`
	TotalSizeBytes  uint64                `json:"total_size_bytes"`
}

func (s *Server) handleCacheSnapshot(w http.ResponseWriter, r *http.Request) {
	inUse, pending := s.core.Cache.Snapshot()
	resp := cacheSnapshotResponse{
		InUse:           inUse,
		PendingEviction: pending,
		TotalSizeBytes:  s.core.Cache.TotalSize(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
