package adminsrv

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/urlofmar/cradle-sub001/internal/request"
	"github.com/urlofmar/cradle-sub001/internal/service"
)

func newTestServer(t *testing.T) (*httptest.Server, *service.Core) {
	t.Helper()
	cfg := service.DefaultConfig()
	cfg.ComputeWorkers = 1
	cfg.HTTPWorkers = 0
	core := service.New(cfg)
	t.Cleanup(core.Shutdown)
	srv := httptest.NewServer(New(core).Router)
	t.Cleanup(srv.Close)
	return srv, core
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCacheSnapshotEndpoint(t *testing.T) {
	srv, core := newTestServer(t)
	_, err := core.Resolve(context.Background(), request.Value(7))
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/debug/cache")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Contains(t, body, "in_use")
}
