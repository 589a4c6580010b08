package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/rs/zerolog"

	"github.com/omarluq/holicache/internal/content"
)

// ristrettoCache implements Cache on a typed Ristretto cache. Cost is the
// approximate byte size of each record.
type ristrettoCache struct {
	cache  *ristretto.Cache[string, content.Record]
	log    zerolog.Logger
	ttl    time.Duration
	closed atomic.Bool
	mu     sync.RWMutex
}

var (
	_ Cache         = (*ristrettoCache)(nil)
	_ StatsProvider = (*ristrettoCache)(nil)
)

func newRistrettoCache(cfg RistrettoConfig, ttl time.Duration) (*ristrettoCache, error) {
	log := logger().With().Str("backend", "ristretto").Logger()

	bufferItems := cfg.BufferItems
	if bufferItems <= 0 {
		bufferItems = 64
	}

	c, err := ristretto.NewCache(&ristretto.Config[string, content.Record]{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: bufferItems,
		Metrics:     true,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to create ristretto cache")
		return nil, err
	}

	log.Info().
		Int64("num_counters", cfg.NumCounters).
		Int64("max_cost", cfg.MaxCost).
		Dur("ttl", ttl).
		Msg("ristretto cache created")

	return &ristrettoCache{cache: c, log: log, ttl: ttl}, nil
}

// Get returns the record stored under key.
func (r *ristrettoCache) Get(ctx context.Context, key string) (content.Record, error) {
	if err := ctx.Err(); err != nil {
		return content.Record{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed.Load() {
		return content.Record{}, ErrClosed
	}

	rec, found := r.cache.Get(key)
	r.log.Debug().Str("key", key).Bool("hit", found).Msg("cache get")
	if !found {
		return content.Record{}, ErrNotFound
	}
	return rec, nil
}

// Set stores rec for the configured TTL and waits for the write buffer to
// drain so the record is visible to the next Get.
func (r *ristrettoCache) Set(ctx context.Context, key string, rec content.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed.Load() {
		return ErrClosed
	}

	admitted := r.cache.SetWithTTL(key, rec, cost(&rec), r.ttl)
	r.cache.Wait()

	r.log.Debug().Str("key", key).Bool("admitted", admitted).Msg("cache set")
	return nil
}

// Delete removes key.
func (r *ristrettoCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed.Load() {
		return ErrClosed
	}

	r.cache.Del(key)
	r.log.Debug().Str("key", key).Msg("cache delete")
	return nil
}

// Close drains pending writes and releases the cache.
func (r *ristrettoCache) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed.Swap(true) {
		return nil
	}

	r.cache.Wait()
	r.cache.Close()
	r.log.Info().Msg("ristretto cache closed")
	return nil
}

// Stats returns current cache statistics.
func (r *ristrettoCache) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed.Load() {
		return Stats{}
	}

	m := r.cache.Metrics
	return Stats{
		Hits:      m.Hits(),
		Misses:    m.Misses(),
		KeyCount:  m.KeysAdded() - m.KeysEvicted(),
		BytesUsed: m.CostAdded() - m.CostEvicted(),
		Evictions: m.KeysEvicted(),
	}
}
