package remote_test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarluq/holicache/internal/content"
	"github.com/omarluq/holicache/internal/health"
	"github.com/omarluq/holicache/internal/remote"
	"github.com/omarluq/holicache/internal/remote/remotetest"
)

func TestGetBatch_GroupsByCountryAndLocale(t *testing.T) {
	t.Parallel()

	srv := remotetest.NewServer(t)
	srv.Seed(
		row("New Year", "Japan", "ko"),
		row("Golden Week", "Japan", "ko"),
		row("Christmas", "France", "en"),
	)
	client := newClient(t, srv)

	keys := []content.Key{
		content.NewKey("New Year", "Japan", "ko"),
		content.NewKey("Christmas", "France", "en"),
		content.NewKey("Missing Day", "Japan", "ko"),
		content.NewKey("Golden Week", "Japan", "ko"),
	}

	results, err := client.GetBatch(context.Background(), keys)
	require.NoError(t, err)
	require.Len(t, results, len(keys))

	require.NotNil(t, results[0])
	assert.Equal(t, "New Year", results[0].HolidayName)
	require.NotNil(t, results[1])
	assert.Equal(t, "Christmas", results[1].HolidayName)
	assert.Nil(t, results[2])
	require.NotNil(t, results[3])
	assert.Equal(t, "Golden Week", results[3].HolidayName)

	assert.Equal(t, int64(2), srv.Requests(), "one IN query per (country, locale) group")
	for _, q := range srv.Queries() {
		assert.Contains(t, q, "holiday_name=in.")
	}
}

func TestGetBatch_GroupFailureFallsBackPerItem(t *testing.T) {
	t.Parallel()

	srv := remotetest.NewServer(t)
	srv.Seed(row("Tet", "Vietnam", "ko"), row("Songkran", "Thailand", "ko"))
	srv.FailWhen(func(r *http.Request) bool {
		return strings.Contains(r.URL.Query().Get("holiday_name"), "in.") &&
			r.URL.Query().Get("country_name") == "eq.Vietnam"
	})
	client := newClient(t, srv)

	keys := []content.Key{
		content.NewKey("Tet", "Vietnam", "ko"),
		content.NewKey("Songkran", "Thailand", "ko"),
	}
	results, err := client.GetBatch(context.Background(), keys)
	require.NoError(t, err)
	require.NotNil(t, results[0], "failed group should be recovered by per-item get")
	assert.Equal(t, "Tet", results[0].HolidayName)
	require.NotNil(t, results[1])

	// Vietnam group query + its per-item get + Thailand group query.
	assert.Equal(t, int64(3), srv.Requests())
}

func TestGetBatch_PerItemFailuresAreJoined(t *testing.T) {
	t.Parallel()

	srv := remotetest.NewServer(t)
	srv.Seed(row("Vesak", "Sri Lanka", "ko"))
	srv.FailWhen(func(r *http.Request) bool {
		return r.URL.Query().Get("country_name") == "eq.Nepal"
	})
	client := newClient(t, srv)

	keys := []content.Key{
		content.NewKey("Vesak", "Sri Lanka", "ko"),
		content.NewKey("Dashain", "Nepal", "ko"),
	}
	results, err := client.GetBatch(context.Background(), keys)
	require.Error(t, err)
	require.NotNil(t, results[0], "healthy group is still returned")
	assert.Nil(t, results[1])
}

func TestGetBatch_AboveThresholdFetchesIndividually(t *testing.T) {
	t.Parallel()

	srv := remotetest.NewServer(t)
	keys := make([]content.Key, 0, 25)
	for i := range 25 {
		name := fmt.Sprintf("Day %d", i)
		srv.Seed(row(name, "Brazil", "ko"))
		keys = append(keys, content.NewKey(name, "Brazil", "ko"))
	}
	client := newClient(t, srv)

	results, err := client.GetBatch(context.Background(), keys)
	require.NoError(t, err)
	for i, r := range results {
		require.NotNil(t, r, "result %d", i)
		assert.Equal(t, keys[i].Holiday, r.HolidayName)
	}
	assert.Equal(t, int64(25), srv.Requests())
	for _, q := range srv.Queries() {
		assert.NotContains(t, q, "in.")
	}
}

func TestGetBatch_CustomThreshold(t *testing.T) {
	t.Parallel()

	srv := remotetest.NewServer(t)
	cfg := srv.Config()
	cfg.BatchThreshold = 1
	logger := zerolog.Nop()
	client, err := remote.New(cfg, health.CircuitBreakerConfig{}, &logger)
	require.NoError(t, err)

	keys := []content.Key{content.NewKey("A", "Peru", "ko"), content.NewKey("B", "Peru", "ko")}
	_, err = client.GetBatch(context.Background(), keys)
	require.NoError(t, err)
	assert.Equal(t, int64(2), srv.Requests())
}

func TestGetBatch_Empty(t *testing.T) {
	t.Parallel()

	srv := remotetest.NewServer(t)
	client := newClient(t, srv)

	results, err := client.GetBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, int64(0), srv.Requests())
}
