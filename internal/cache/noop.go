package cache

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/omarluq/holicache/internal/content"
)

// noopCache stores nothing. It backs ModeDisabled.
type noopCache struct {
	log    zerolog.Logger
	closed atomic.Bool
}

var (
	_ Cache         = (*noopCache)(nil)
	_ StatsProvider = (*noopCache)(nil)
)

func newNoopCache() *noopCache {
	log := logger().With().Str("backend", "noop").Logger()
	log.Debug().Msg("memory tier disabled")
	return &noopCache{log: log}
}

// Get always misses.
func (c *noopCache) Get(_ context.Context, _ string) (content.Record, error) {
	if c.closed.Load() {
		return content.Record{}, ErrClosed
	}
	return content.Record{}, ErrNotFound
}

// Set discards rec.
func (c *noopCache) Set(_ context.Context, _ string, _ content.Record) error {
	if c.closed.Load() {
		return ErrClosed
	}
	return nil
}

// Delete is a no-op.
func (c *noopCache) Delete(_ context.Context, _ string) error {
	if c.closed.Load() {
		return ErrClosed
	}
	return nil
}

// Close marks the cache as closed.
func (c *noopCache) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		c.log.Debug().Msg("noop cache closed")
	}
	return nil
}

// Stats is always zero.
func (c *noopCache) Stats() Stats {
	return Stats{}
}
