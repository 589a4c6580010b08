// Package hybrid resolves holiday descriptions across three tiers: an
// optional in-process memory cache, the authoritative remote store and the
// local on-disk fallback.
//
// Reads try memory, then remote (with retries, only while the remote is
// healthy), then local under the key as given and under each alternate
// country form. Writes go to remote best-effort and to local always; the
// call only fails when both tiers fail.
package hybrid

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/omarluq/holicache/internal/cache"
	"github.com/omarluq/holicache/internal/content"
	"github.com/omarluq/holicache/internal/health"
	"github.com/omarluq/holicache/internal/local"
	"github.com/omarluq/holicache/internal/remote"
)

// remoteTouchTimeout bounds the background last_used update after a remote hit.
const remoteTouchTimeout = 10 * time.Second

// RemoteStore is the subset of the remote client the engine uses.
type RemoteStore interface {
	Get(ctx context.Context, key content.Key) (remote.Row, error)
	Create(ctx context.Context, row remote.Row) (remote.Row, error)
	Update(ctx context.Context, id string, fields remote.Fields) (remote.Row, error)
	GetBatch(ctx context.Context, keys []content.Key) ([]*remote.Row, error)
	Ping(ctx context.Context) error
}

// CircuitReporter is implemented by remote stores that sit behind a circuit
// breaker. *remote.Client satisfies it.
type CircuitReporter interface {
	BreakerState() health.State
}

// HealthMonitor tracks whether the remote tier is reachable.
type HealthMonitor interface {
	EnsureFresh(ctx context.Context) bool
	MarkUnhealthy(err error)
	Invalidate()
	Status() health.Status
}

// Deps are the collaborators of an Engine. Local is required; a nil Remote
// disables the remote tier and a nil Memory disables the memory tier. When
// Remote is set without Health, the engine probes on demand with a monitor
// of its own.
type Deps struct {
	Remote RemoteStore
	Health HealthMonitor
	Local  local.Store
	Memory cache.Cache
	Logger *zerolog.Logger
}

// Engine is the hybrid description cache. It is safe for concurrent use.
type Engine struct {
	remote   RemoteStore
	health   HealthMonitor
	owned    *health.Monitor
	local    local.Store
	memory   cache.Cache
	logger   *zerolog.Logger
	opts     atomic.Pointer[Options]
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
	counters counters
	pending  sync.WaitGroup
	closeMu  sync.RWMutex
	closed   bool
}

// New creates an Engine.
func New(deps Deps, opts Options) (*Engine, error) {
	if deps.Local == nil {
		return nil, errors.New("hybrid: local store is required")
	}
	logger := deps.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	log := logger.With().Str("component", "hybrid").Logger()

	e := &Engine{
		remote: deps.Remote,
		health: deps.Health,
		local:  deps.Local,
		memory: deps.Memory,
		logger: &log,
		now:    time.Now,
		sleep:  sleepContext,
	}
	if e.remote != nil && e.health == nil {
		background := false
		e.owned = health.NewMonitor(e.remote, health.MonitorConfig{Enabled: &background}, &log)
		e.health = e.owned
	}
	e.opts.Store(&opts)

	log.Info().
		Bool("remote", e.remote != nil && opts.RemoteEnabled).
		Bool("memory", e.memory != nil).
		Bool("fallback_to_local", opts.FallbackToLocal).
		Int("retry_attempts", opts.attempts()).
		Dur("retry_delay", opts.RetryDelay).
		Msg("hybrid engine created")
	return e, nil
}

// Options returns the options currently in effect.
func (e *Engine) Options() Options {
	return *e.opts.Load()
}

// UpdateOptions replaces the options for subsequent calls.
func (e *Engine) UpdateOptions(opts Options) {
	e.opts.Store(&opts)
	e.logger.Info().
		Bool("remote_enabled", opts.RemoteEnabled).
		Bool("fallback_to_local", opts.FallbackToLocal).
		Int("retry_attempts", opts.attempts()).
		Dur("retry_delay", opts.RetryDelay).
		Msg("engine options updated")
}

// GetDescription returns the description for key and whether one was found.
// Failures in any tier are logged and counted, never returned.
func (e *Engine) GetDescription(ctx context.Context, key content.Key) (content.Record, bool) {
	key.Locale = content.NormalizeLocale(key.Locale)
	if err := key.Validate(); err != nil {
		e.counters.errors.Add(1)
		e.logger.Debug().Err(err).Str("key", key.String()).Msg("invalid key")
		return content.Record{}, false
	}

	if rec, ok := e.fromMemory(ctx, key); ok {
		e.counters.memoryHits.Add(1)
		return rec, true
	}

	opts := e.Options()
	if e.remoteUsable(ctx, &opts) {
		row, err := e.getRemote(ctx, key, &opts)
		switch {
		case err == nil:
			e.counters.remoteHits.Add(1)
			rec := recordFromRow(&row)
			e.remember(ctx, key, &rec)
			e.touchRemote(row.ID)
			e.logger.Debug().Str("key", key.String()).Str("tier", "remote").Msg("description hit")
			return rec, true
		case errors.Is(err, remote.ErrNotFound):
			e.logger.Debug().Str("key", key.String()).Msg("remote miss")
		default:
			e.remoteFailed(err, "remote read failed, falling back to local")
		}
	}

	if opts.FallbackToLocal {
		if rec, ok := e.getLocal(ctx, key); ok {
			return rec, true
		}
	}

	e.counters.misses.Add(1)
	e.logger.Debug().Str("key", key.String()).Msg("description miss")
	return content.Record{}, false
}

// GetDescriptions resolves keys in one pass and returns one entry per key
// in input order; nil means not found. Remote lookups share a single batch
// call, and only the keys it did not answer go through the local chain.
func (e *Engine) GetDescriptions(ctx context.Context, keys []content.Key) []*content.Record {
	keys = slices.Clone(keys)
	results := make([]*content.Record, len(keys))
	pending := make([]int, 0, len(keys))
	for i := range keys {
		keys[i].Locale = content.NormalizeLocale(keys[i].Locale)
		if err := keys[i].Validate(); err != nil {
			e.counters.errors.Add(1)
			e.counters.misses.Add(1)
			continue
		}
		if rec, ok := e.fromMemory(ctx, keys[i]); ok {
			e.counters.memoryHits.Add(1)
			results[i] = &rec
			continue
		}
		pending = append(pending, i)
	}

	opts := e.Options()
	if len(pending) > 0 && e.remoteUsable(ctx, &opts) {
		batch := make([]content.Key, len(pending))
		for j, i := range pending {
			batch[j] = keys[i]
		}
		rows, err := e.remote.GetBatch(ctx, batch)
		if err != nil {
			e.remoteFailed(err, "remote batch read partially failed")
		}
		remaining := pending[:0]
		for j, i := range pending {
			if j >= len(rows) || rows[j] == nil {
				remaining = append(remaining, i)
				continue
			}
			e.counters.remoteHits.Add(1)
			rec := recordFromRow(rows[j])
			e.remember(ctx, keys[i], &rec)
			e.touchRemote(rows[j].ID)
			results[i] = &rec
		}
		pending = remaining
	}

	for _, i := range pending {
		if opts.FallbackToLocal {
			if rec, ok := e.getLocal(ctx, keys[i]); ok {
				results[i] = &rec
				continue
			}
		}
		e.counters.misses.Add(1)
	}
	return results
}

// InvalidateHealthCache makes the next remote access re-probe.
func (e *Engine) InvalidateHealthCache() {
	if e.health != nil {
		e.health.Invalidate()
	}
}

// Status returns engine stats with the local and memory tier status.
func (e *Engine) Status(ctx context.Context) (Status, error) {
	st := Status{Hybrid: e.Stats()}
	if cr, ok := e.remote.(CircuitReporter); ok {
		st.RemoteCircuit = cr.BreakerState().String()
	}
	if sp, ok := e.memory.(cache.StatsProvider); ok {
		ms := sp.Stats()
		st.Memory = &ms
	}
	ls, err := e.local.Status(ctx)
	if err != nil {
		return st, err
	}
	st.Local = ls
	return st, nil
}

// Close waits for background remote updates and stops the engine's own
// health monitor. The stores passed in Deps are not closed.
func (e *Engine) Close() error {
	e.closeMu.Lock()
	if e.closed {
		e.closeMu.Unlock()
		return nil
	}
	e.closed = true
	e.closeMu.Unlock()

	e.pending.Wait()
	if e.owned != nil {
		e.owned.Stop()
	}
	e.logger.Info().Msg("hybrid engine closed")
	return nil
}

func (e *Engine) remoteUsable(ctx context.Context, opts *Options) bool {
	if !opts.RemoteEnabled || e.remote == nil {
		return false
	}
	if !e.health.EnsureFresh(ctx) {
		e.logger.Debug().Msg("remote unhealthy, skipping")
		return false
	}
	return true
}

// getRemote tries the remote read up to opts.RetryAttempts times with a
// linear backoff. ErrNotFound and an open circuit end the loop early.
func (e *Engine) getRemote(ctx context.Context, key content.Key, opts *Options) (remote.Row, error) {
	attempts := opts.attempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		row, err := e.remote.Get(ctx, key)
		if err == nil || errors.Is(err, remote.ErrNotFound) || errors.Is(err, health.ErrCircuitOpen) {
			return row, err
		}
		lastErr = err
		e.logger.Debug().Err(err).
			Str("key", key.String()).
			Int("attempt", attempt).
			Int("max_attempts", attempts).
			Msg("remote read attempt failed")
		if attempt == attempts {
			break
		}
		if err := e.sleep(ctx, opts.RetryDelay*time.Duration(attempt)); err != nil {
			return remote.Row{}, err
		}
	}
	return remote.Row{}, lastErr
}

// getLocal looks key up in the local tier as given, then under each
// alternate country form, stopping at the first hit.
func (e *Engine) getLocal(ctx context.Context, key content.Key) (content.Record, bool) {
	for _, variant := range key.Variants() {
		rec, err := e.local.Get(ctx, variant)
		if err == nil {
			e.counters.localHits.Add(1)
			e.remember(ctx, key, &rec)
			e.logger.Debug().
				Str("key", key.String()).
				Str("matched", variant.String()).
				Str("tier", "local").
				Msg("description hit")
			return rec, true
		}
		if !errors.Is(err, local.ErrNotFound) {
			e.counters.errors.Add(1)
			e.logger.Warn().Err(err).Str("key", variant.String()).Msg("local read failed")
		}
	}
	return content.Record{}, false
}

func (e *Engine) remoteFailed(err error, msg string) {
	e.counters.errors.Add(1)
	e.logger.Warn().Err(err).Msg(msg)
	if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		e.health.MarkUnhealthy(err)
	}
}

func (e *Engine) fromMemory(ctx context.Context, key content.Key) (content.Record, bool) {
	if e.memory == nil {
		return content.Record{}, false
	}
	rec, err := e.memory.Get(ctx, key.String())
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			e.logger.Debug().Err(err).Str("key", key.String()).Msg("memory read failed")
		}
		return content.Record{}, false
	}
	return rec, true
}

func (e *Engine) remember(ctx context.Context, key content.Key, rec *content.Record) {
	if e.memory == nil {
		return
	}
	if err := e.memory.Set(ctx, key.String(), *rec); err != nil {
		e.logger.Debug().Err(err).Str("key", key.String()).Msg("memory write failed")
	}
}

func (e *Engine) forget(ctx context.Context, key content.Key) {
	if e.memory == nil {
		return
	}
	for _, variant := range key.Variants() {
		if err := e.memory.Delete(ctx, variant.String()); err != nil {
			e.logger.Debug().Err(err).Str("key", variant.String()).Msg("memory delete failed")
		}
	}
}

// touchRemote bumps last_used on the row in the background.
func (e *Engine) touchRemote(id string) {
	if id == "" {
		return
	}
	e.closeMu.RLock()
	defer e.closeMu.RUnlock()
	if e.closed {
		return
	}

	e.pending.Add(1)
	go func() {
		defer e.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), remoteTouchTimeout)
		defer cancel()
		fields := remote.Fields{"last_used": e.now().UTC()}
		if _, err := e.remote.Update(ctx, id, fields); err != nil {
			e.logger.Debug().Err(err).Str("id", id).Msg("remote last_used update failed")
		}
	}()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
