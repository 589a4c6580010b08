package local_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarluq/holicache/internal/local"
)

func newBoltStore(t *testing.T, clock *local.FakeClock, touch bool) local.Store {
	t.Helper()
	cfg := local.Config{Backend: local.BackendBolt, Path: filepath.Join(t.TempDir(), "cache.db")}
	if !touch {
		cfg.TouchOnRead = noTouch()
	}
	store, err := local.NewBoltStoreForTest(cfg, clock.Now)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return store
}

func TestBoltStore_SetGetDelete(t *testing.T) {
	t.Parallel()

	store := newBoltStore(t, local.NewFakeClock(epoch), false)
	ctx := context.Background()

	rec := sampleRecord("Lunar New Year", "KR", "ko")
	require.NoError(t, store.Set(ctx, rec))

	got, err := store.Get(ctx, rec.Key())
	require.NoError(t, err)
	assert.Equal(t, rec.Body, got.Body)
	assert.Equal(t, "KR", got.Country)

	existed, err := store.Delete(ctx, rec.Key())
	require.NoError(t, err)
	assert.True(t, existed)

	_, err = store.Get(ctx, rec.Key())
	assert.ErrorIs(t, err, local.ErrNotFound)
}

func TestBoltStore_Status(t *testing.T) {
	t.Parallel()

	clock := local.NewFakeClock(epoch)
	store := newBoltStore(t, clock, false)
	ctx := context.Background()

	clock.Advance(time.Minute)
	for i := range 3 {
		require.NoError(t, store.Set(ctx, sampleRecord(fmt.Sprintf("Day %d", i), "Italy", "ko")))
	}

	status, err := store.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, status.TotalEntries)
	assert.True(t, status.LastModified.Equal(epoch.Add(time.Minute)))
}

func TestBoltStore_TouchOnRead(t *testing.T) {
	t.Parallel()

	clock := local.NewFakeClock(epoch)
	store := newBoltStore(t, clock, true)
	ctx := context.Background()

	rec := sampleRecord("Holi", "India", "en")
	require.NoError(t, store.Set(ctx, rec))

	clock.Advance(2 * time.Hour)
	_, err := store.Get(ctx, rec.Key())
	require.NoError(t, err)
	local.WaitTouches(store)

	got, err := store.Get(ctx, rec.Key())
	require.NoError(t, err)
	assert.True(t, got.LastUsedAt.Equal(epoch.Add(2*time.Hour)))
}

func TestBoltStore_ConcurrentSets(t *testing.T) {
	t.Parallel()

	store := newBoltStore(t, local.NewFakeClock(epoch), false)
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := range writers {
		go func() {
			defer wg.Done()
			if err := store.Set(ctx, sampleRecord(fmt.Sprintf("Fest %d", i), "Spain", "ko")); err != nil {
				t.Errorf("Set error = %v", err)
			}
		}()
	}
	wg.Wait()

	status, err := store.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, writers, status.TotalEntries)
}

func TestNew_Factory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     local.Config
		wantErr bool
	}{
		{"default json", local.Config{Path: filepath.Join(t.TempDir(), "a.json")}, false},
		{"bolt", local.Config{Backend: local.BackendBolt, Path: filepath.Join(t.TempDir(), "b.db")}, false},
		{"unknown backend", local.Config{Backend: "redis"}, true},
		{"negative ttl", local.Config{ReadTTLMS: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := local.New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, store.Close())
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	var cfg local.Config
	assert.Equal(t, local.BackendJSON, cfg.GetBackend())
	assert.Equal(t, local.DefaultPath, cfg.GetPath())
	assert.Equal(t, 5*time.Minute, cfg.GetReadTTL())
	assert.True(t, cfg.IsTouchOnRead())
}
