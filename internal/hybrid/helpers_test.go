package hybrid_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/omarluq/holicache/internal/cache"
	"github.com/omarluq/holicache/internal/content"
	"github.com/omarluq/holicache/internal/health"
	"github.com/omarluq/holicache/internal/hybrid"
	"github.com/omarluq/holicache/internal/local"
	"github.com/omarluq/holicache/internal/remote"
)

var errRemoteDown = errors.New("simulated remote outage")

// fakeRemote is an in-memory RemoteStore with call counters and switchable
// failures.
type fakeRemote struct {
	rows        map[string]remote.Row
	failReads   error
	failWrites  error
	pingErr     error
	updates     []remote.Fields
	getCalls    int
	createCalls int
	updateCalls int
	batchCalls  int
	pingCalls   int
	nextID      int
	breaker     health.State
	mu          sync.Mutex
}

var (
	_ hybrid.RemoteStore     = (*fakeRemote)(nil)
	_ hybrid.CircuitReporter = (*fakeRemote)(nil)
)

func newFakeRemote() *fakeRemote {
	return &fakeRemote{rows: map[string]remote.Row{}}
}

func (f *fakeRemote) seed(holiday, countryValue, locale, body string, confidence float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	key := content.NewKey(holiday, countryValue, locale)
	f.rows[key.String()] = remote.Row{
		ID:          fmt.Sprintf("row-%d", f.nextID),
		HolidayName: holiday,
		CountryName: countryValue,
		Locale:      locale,
		Description: body,
		Confidence:  confidence,
	}
}

func (f *fakeRemote) setFailReads(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failReads = err
}

func (f *fakeRemote) setFailWrites(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrites = err
}

func (f *fakeRemote) setBreaker(state health.State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.breaker = state
}

func (f *fakeRemote) BreakerState() health.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.breaker
}

func (f *fakeRemote) counts() (gets, creates, updates, batches int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCalls, f.createCalls, f.updateCalls, f.batchCalls
}

func (f *fakeRemote) row(key content.Key) (remote.Row, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[key.String()]
	return r, ok
}

func (f *fakeRemote) Get(_ context.Context, key content.Key) (remote.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.failReads != nil {
		return remote.Row{}, f.failReads
	}
	r, ok := f.rows[key.String()]
	if !ok {
		return remote.Row{}, remote.ErrNotFound
	}
	return r, nil
}

func (f *fakeRemote) Create(_ context.Context, row remote.Row) (remote.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.failWrites != nil {
		return remote.Row{}, f.failWrites
	}
	key := content.NewKey(row.HolidayName, row.CountryName, row.Locale).String()
	if _, ok := f.rows[key]; ok {
		return remote.Row{}, remote.ErrDuplicate
	}
	f.nextID++
	row.ID = fmt.Sprintf("row-%d", f.nextID)
	f.rows[key] = row
	return row, nil
}

func (f *fakeRemote) Update(_ context.Context, id string, fields remote.Fields) (remote.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	f.updates = append(f.updates, fields)
	if f.failWrites != nil {
		return remote.Row{}, f.failWrites
	}
	for k, r := range f.rows {
		if r.ID != id {
			continue
		}
		if v, ok := fields["description"].(string); ok {
			r.Description = v
		}
		if v, ok := fields["confidence"].(float64); ok {
			r.Confidence = v
		}
		if v, ok := fields["is_manual"].(bool); ok {
			r.IsManual = v
		}
		if v, ok := fields["last_used"].(time.Time); ok {
			r.LastUsed = &v
		}
		f.rows[k] = r
		return r, nil
	}
	return remote.Row{}, remote.ErrNotFound
}

func (f *fakeRemote) GetBatch(_ context.Context, keys []content.Key) ([]*remote.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls++
	out := make([]*remote.Row, len(keys))
	if f.failReads != nil {
		return out, f.failReads
	}
	for i, k := range keys {
		if r, ok := f.rows[k.String()]; ok {
			out[i] = &r
		}
	}
	return out, nil
}

func (f *fakeRemote) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pingCalls++
	return f.pingErr
}

// newLocal opens a JSON store in a temp dir with read-touches off so tests
// control every disk write.
func newLocal(t *testing.T) (local.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "holiday-descriptions.json")
	touch := false
	store, err := local.New(local.Config{Path: path, TouchOnRead: &touch, ReadTTLMS: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

type fixture struct {
	engine *hybrid.Engine
	remote *fakeRemote
	local  local.Store
	path   string
	sleeps []time.Duration
	mu     sync.Mutex
}

func (f *fixture) delays() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.sleeps...)
}

type fixtureOption func(*hybrid.Deps, *hybrid.Options)

func withoutRemote() fixtureOption {
	return func(d *hybrid.Deps, o *hybrid.Options) {
		d.Remote = nil
		o.RemoteEnabled = false
	}
}

func withMemory(t *testing.T) fixtureOption {
	t.Helper()
	memory, err := cache.New(cache.Config{Mode: cache.ModeSingle, Ristretto: cache.DefaultRistrettoConfig()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = memory.Close() })
	return func(d *hybrid.Deps, _ *hybrid.Options) {
		d.Memory = memory
	}
}

func withRetries(n int) fixtureOption {
	return func(_ *hybrid.Deps, o *hybrid.Options) {
		o.RetryAttempts = n
	}
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	store, path := newLocal(t)
	f := &fixture{remote: newFakeRemote(), local: store, path: path}

	deps := hybrid.Deps{Remote: f.remote, Local: store}
	options := hybrid.Options{
		RemoteEnabled:   true,
		FallbackToLocal: true,
		RetryAttempts:   2,
		RetryDelay:      100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(&deps, &options)
	}

	engine, err := hybrid.New(deps, options)
	require.NoError(t, err)
	engine.SetSleep(func(_ context.Context, d time.Duration) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.sleeps = append(f.sleeps, d)
		return nil
	})
	t.Cleanup(func() { _ = engine.Close() })
	f.engine = engine
	return f
}

func localRecord(holiday, countryValue, locale, body string, confidence float64) content.Record {
	return content.Record{
		ID:         "local-" + holiday,
		Holiday:    holiday,
		Country:    countryValue,
		Locale:     locale,
		Body:       body,
		Confidence: confidence,
	}
}
