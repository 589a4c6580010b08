package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarluq/holicache/internal/hybrid"
	"github.com/omarluq/holicache/internal/local"
	"github.com/omarluq/holicache/internal/metrics"
	"github.com/omarluq/holicache/internal/server"
)

type fakeSource struct {
	status hybrid.Status
	err    error
}

func (f fakeSource) Status(context.Context) (hybrid.Status, error) { return f.status, f.err }
func (f fakeSource) Stats() hybrid.Stats                           { return f.status.Hybrid }

func sample() hybrid.Status {
	return hybrid.Status{
		Hybrid: hybrid.Stats{SupabaseHits: 2, LocalHits: 1, IsSupabaseAvailable: true},
		Local:  local.Status{TotalEntries: 3},
	}
}

func TestRoutes_Healthz(t *testing.T) {
	t.Parallel()

	h := server.Routes(fakeSource{status: sample()}, nil, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["isSupabaseAvailable"])
}

func TestRoutes_Status(t *testing.T) {
	t.Parallel()

	h := server.Routes(fakeSource{status: sample()}, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/status", http.NoBody)
	req.Header.Set("X-Request-ID", "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))

	var status hybrid.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, uint64(2), status.Hybrid.SupabaseHits)
	assert.Equal(t, 3, status.Local.TotalEntries)
}

func TestRoutes_StatusError(t *testing.T) {
	t.Parallel()

	h := server.Routes(fakeSource{err: errors.New("disk gone")}, nil, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", http.NoBody))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "disk gone")
}

func TestRoutes_MetricsAndMethods(t *testing.T) {
	t.Parallel()

	src := fakeSource{status: sample()}
	reg, err := metrics.NewRegistry(metrics.NewCollector(src, nil))
	require.NoError(t, err)
	h := server.Routes(src, reg, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `holicache_http_requests_total{code="200",route="/healthz"} 1`)
	assert.Contains(t, rec.Body.String(), `holicache_lookups_total{tier="local"} 1`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/status", http.NoBody))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", http.NoBody))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_ServeAndShutdown(t *testing.T) {
	t.Parallel()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := server.NewServer(l.Addr().String(), server.Routes(fakeSource{status: sample()}, nil, nil), 0)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(l) }()

	resp, err := http.Get("http://" + l.Addr().String() + "/healthz")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	assert.NoError(t, <-done)
}
