// Package cache is the optional in-process memory tier that sits in front of
// the remote and local description stores.
//
// Two backends are available:
//   - Single mode (Ristretto): bounded, cost-based in-memory cache with TTL
//   - Disabled mode (Noop): stores nothing, every Get misses
//
// All implementations are safe for concurrent use.
//
// Basic usage:
//
//	c, err := cache.New(cache.Config{Mode: cache.ModeSingle, Ristretto: cache.DefaultRistrettoConfig()})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer c.Close()
//
//	_ = c.Set(ctx, key.String(), record)
//	rec, err := c.Get(ctx, key.String())
//	if errors.Is(err, cache.ErrNotFound) {
//		// miss
//	}
package cache

import (
	"context"

	"github.com/omarluq/holicache/internal/content"
)

// Cache holds recently served description records keyed by composite key.
type Cache interface {
	// Get returns the record stored under key.
	// Returns ErrNotFound on a miss and ErrClosed after Close.
	Get(ctx context.Context, key string) (content.Record, error)

	// Set stores rec under key for the configured TTL. A successful Set is
	// visible to the next Get unless the admission policy rejected it.
	Set(ctx context.Context, key string, rec content.Record) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources. Close is idempotent.
	Close() error
}

// Stats provides cache statistics for observability.
type Stats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	KeyCount  uint64 `json:"key_count"`
	BytesUsed uint64 `json:"bytes_used"`
	Evictions uint64 `json:"evictions"`
}

// StatsProvider is implemented by backends that track statistics.
type StatsProvider interface {
	Stats() Stats
}

// cost approximates the memory held by rec, in bytes.
func cost(rec *content.Record) int64 {
	const overhead = 128
	return int64(len(rec.ID) + len(rec.Holiday) + len(rec.Country) + len(rec.Locale) + len(rec.Body) + overhead)
}
