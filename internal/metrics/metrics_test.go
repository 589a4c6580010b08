package metrics_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarluq/holicache/internal/cache"
	"github.com/omarluq/holicache/internal/hybrid"
	"github.com/omarluq/holicache/internal/local"
	"github.com/omarluq/holicache/internal/metrics"
)

type staticSource struct {
	status hybrid.Status
	err    error
}

func (s staticSource) Status(context.Context) (hybrid.Status, error) {
	return s.status, s.err
}

func sampleStatus() hybrid.Status {
	return hybrid.Status{
		Hybrid: hybrid.Stats{
			LastSupabaseCheck:   time.Unix(1_700_000_000, 0),
			SupabaseHits:        5,
			LocalHits:           3,
			MemoryHits:          2,
			Misses:              1,
			Errors:              4,
			IsSupabaseAvailable: true,
		},
		Local:  local.Status{TotalEntries: 7, LastModified: time.Unix(1_700_000_100, 0)},
		Memory: &cache.Stats{Hits: 2, Misses: 9, KeyCount: 6, BytesUsed: 1024, Evictions: 1},
	}
}

func TestCollector_Values(t *testing.T) {
	t.Parallel()

	c := metrics.NewCollector(staticSource{status: sampleStatus()}, nil)

	expected := `
# HELP holicache_lookups_total Description lookups by the tier that answered them.
# TYPE holicache_lookups_total counter
holicache_lookups_total{tier="local"} 3
holicache_lookups_total{tier="memory"} 2
holicache_lookups_total{tier="miss"} 1
holicache_lookups_total{tier="remote"} 5
# HELP holicache_remote_available Whether the remote store was reachable at the last check.
# TYPE holicache_remote_available gauge
holicache_remote_available 1
# HELP holicache_remote_errors_total Remote reads that failed after all retries.
# TYPE holicache_remote_errors_total counter
holicache_remote_errors_total 4
# HELP holicache_local_entries Records in the local tier.
# TYPE holicache_local_entries gauge
holicache_local_entries 7
# HELP holicache_memory_keys Records held in the memory tier.
# TYPE holicache_memory_keys gauge
holicache_memory_keys 6
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"holicache_lookups_total",
		"holicache_remote_available",
		"holicache_remote_errors_total",
		"holicache_local_entries",
		"holicache_memory_keys",
	)
	require.NoError(t, err)
}

func TestCollector_NoMemoryTier(t *testing.T) {
	t.Parallel()

	status := sampleStatus()
	status.Memory = nil
	c := metrics.NewCollector(staticSource{status: status}, nil)

	// scrape errors, 4 lookups, errors, up, last check, local entries, local modified
	assert.Equal(t, 10, testutil.CollectAndCount(c))
	assert.Zero(t, testutil.CollectAndCount(c, "holicache_memory_keys"))
}

func TestCollector_StatusError(t *testing.T) {
	t.Parallel()

	src := staticSource{err: errors.New("local unreadable")}

	expected := `
# HELP holicache_scrape_errors_total Scrapes that could not read the engine status.
# TYPE holicache_scrape_errors_total counter
holicache_scrape_errors_total 1
`
	c := metrics.NewCollector(src, nil)
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "holicache_scrape_errors_total"))

	c = metrics.NewCollector(src, nil)
	assert.Zero(t, testutil.CollectAndCount(c, "holicache_local_entries"))
	assert.Equal(t, 4, testutil.CollectAndCount(c, "holicache_lookups_total"))
}

func TestRegistry_HandlerAndInstrument(t *testing.T) {
	t.Parallel()

	reg, err := metrics.NewRegistry(metrics.NewCollector(staticSource{status: sampleStatus()}, nil))
	require.NoError(t, err)

	ok := reg.Instrument("/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	ok.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	srv := httptest.NewServer(reg.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, `holicache_http_requests_total{code="204",route="/healthz"} 1`)
	assert.Contains(t, text, `holicache_lookups_total{tier="remote"} 5`)
	assert.Contains(t, text, "go_goroutines")
}

func TestRegistry_WithoutCollector(t *testing.T) {
	t.Parallel()

	reg, err := metrics.NewRegistry(nil)
	require.NoError(t, err)

	families, err := reg.Gatherer().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		assert.False(t, strings.HasPrefix(mf.GetName(), "holicache_lookups"), mf.GetName())
	}
}
