package hybrid

import (
	"sync/atomic"
	"time"

	"github.com/omarluq/holicache/internal/cache"
	"github.com/omarluq/holicache/internal/local"
)

// Stats is a point-in-time copy of the engine counters together with the
// remote health flag.
type Stats struct {
	LastSupabaseCheck   time.Time `json:"lastSupabaseCheck"`
	SupabaseHits        uint64    `json:"supabaseHits"`
	LocalHits           uint64    `json:"localHits"`
	MemoryHits          uint64    `json:"memoryHits"`
	Misses              uint64    `json:"misses"`
	Errors              uint64    `json:"errors"`
	IsSupabaseAvailable bool      `json:"isSupabaseAvailable"`
}

// Status combines engine stats with the local tier's status. RemoteCircuit
// is the remote breaker state ("closed", "half-open", "open") when the remote
// store reports one.
type Status struct {
	Memory        *cache.Stats `json:"memory,omitempty"`
	RemoteCircuit string       `json:"remoteCircuit,omitempty"`
	Hybrid        Stats        `json:"hybrid"`
	Local         local.Status `json:"local"`
}

type counters struct {
	remoteHits atomic.Uint64
	localHits  atomic.Uint64
	memoryHits atomic.Uint64
	misses     atomic.Uint64
	errors     atomic.Uint64
}

func (c *counters) reset() {
	c.remoteHits.Store(0)
	c.localHits.Store(0)
	c.memoryHits.Store(0)
	c.misses.Store(0)
	c.errors.Store(0)
}

// Stats returns the current counters and health flag.
func (e *Engine) Stats() Stats {
	s := Stats{
		SupabaseHits: e.counters.remoteHits.Load(),
		LocalHits:    e.counters.localHits.Load(),
		MemoryHits:   e.counters.memoryHits.Load(),
		Misses:       e.counters.misses.Load(),
		Errors:       e.counters.errors.Load(),
	}
	if e.health != nil {
		hs := e.health.Status()
		s.IsSupabaseAvailable = hs.Healthy
		s.LastSupabaseCheck = hs.LastCheck
	}
	return s
}

// ResetStats zeroes the counters. The health flag and last check time are
// not counters and are left alone.
func (e *Engine) ResetStats() {
	e.counters.reset()
	e.logger.Debug().Msg("stats reset")
}
