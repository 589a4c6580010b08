package health

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Prober checks whether a dependency is reachable.
// Implementations should be cheap: a single-row select, not a real query.
type Prober interface {
	Ping(ctx context.Context) error
}

// Status is the externally visible health state: a flag and when it was last
// confirmed by a probe.
type Status struct {
	LastCheck time.Time `json:"lastSupabaseCheck"`
	Healthy   bool      `json:"isSupabaseAvailable"`
}

// Monitor caches the reachability of one dependency.
//
// A background loop probes every interval. Request paths read the cached flag
// and only probe themselves when the result is older than the interval or was
// invalidated. Request-time failures flip the flag immediately without
// resetting the loop's schedule.
type Monitor struct {
	ctx       context.Context
	prober    Prober
	logger    *zerolog.Logger
	cancel    context.CancelFunc
	now       func() time.Time
	probes    singleflight.Group
	config    MonitorConfig
	wg        sync.WaitGroup
	lastCheck atomic.Int64
	healthy   atomic.Bool
	stale     atomic.Bool
	started   atomic.Bool
}

// NewMonitor creates a Monitor for prober. Call Start to begin background probing.
func NewMonitor(prober Prober, cfg MonitorConfig, logger *zerolog.Logger) *Monitor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		prober: prober,
		config: cfg,
		logger: logger,
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start runs an initial probe and then re-probes on a fixed interval until
// Stop is called. Calling Start more than once has no effect.
func (m *Monitor) Start() {
	if !m.started.CompareAndSwap(false, true) {
		return
	}

	m.Check(m.ctx)

	if !m.config.IsEnabled() {
		if m.logger != nil {
			m.logger.Info().Msg("health monitor background probing disabled")
		}
		return
	}

	interval := m.config.GetInterval()
	ticker := time.NewTicker(interval)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer ticker.Stop()

		if m.logger != nil {
			m.logger.Info().Dur("interval", interval).Msg("health monitor started")
		}

		for {
			select {
			case <-m.ctx.Done():
				if m.logger != nil {
					m.logger.Info().Msg("health monitor stopped")
				}
				return
			case <-ticker.C:
				m.Check(m.ctx)
			}
		}
	}()
}

// Stop stops background probing and waits for the loop to exit.
func (m *Monitor) Stop() {
	m.cancel()
	m.wg.Wait()
}

// Check probes now and records the result. Concurrent callers share one probe.
func (m *Monitor) Check(ctx context.Context) bool {
	v, _, _ := m.probes.Do("probe", func() (any, error) {
		err := m.probe(ctx)
		m.record(err)
		return err == nil, nil
	})
	healthy, _ := v.(bool)
	return healthy
}

// EnsureFresh returns the cached flag, probing first if the last result is
// older than the interval or was invalidated.
func (m *Monitor) EnsureFresh(ctx context.Context) bool {
	last := m.lastCheck.Load()
	if last == 0 || m.stale.Load() || m.now().Sub(time.Unix(0, last)) >= m.config.GetInterval() {
		return m.Check(ctx)
	}
	return m.healthy.Load()
}

// Healthy returns the cached flag without probing.
func (m *Monitor) Healthy() bool {
	return m.healthy.Load()
}

// LastCheck returns when the flag was last set by a probe.
func (m *Monitor) LastCheck() time.Time {
	last := m.lastCheck.Load()
	if last == 0 {
		return time.Time{}
	}
	return time.Unix(0, last).UTC()
}

// Status returns the flag and last probe time together.
func (m *Monitor) Status() Status {
	return Status{Healthy: m.Healthy(), LastCheck: m.LastCheck()}
}

// MarkUnhealthy records a request-time failure. The flag flips immediately;
// the probe schedule and last check time are left alone.
func (m *Monitor) MarkUnhealthy(err error) {
	if m.healthy.Swap(false) && m.logger != nil {
		m.logger.Warn().Err(err).Msg("remote marked unhealthy after request failure")
	}
}

// Invalidate forces the next EnsureFresh to probe.
func (m *Monitor) Invalidate() {
	m.stale.Store(true)
}

func (m *Monitor) probe(ctx context.Context) error {
	if m.prober == nil {
		return ErrNoProber
	}
	ctx, cancel := context.WithTimeout(ctx, m.config.GetProbeTimeout())
	defer cancel()
	if err := m.prober.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrProbeFailed, err)
	}
	return nil
}

func (m *Monitor) record(err error) {
	healthy := err == nil
	was := m.healthy.Swap(healthy)
	m.lastCheck.Store(m.now().UnixNano())
	m.stale.Store(false)

	if m.logger == nil {
		return
	}
	switch {
	case healthy && !was:
		m.logger.Info().Msg("remote reachable")
	case !healthy && was:
		m.logger.Warn().Err(err).Msg("remote unreachable")
	case !healthy:
		m.logger.Debug().Err(err).Msg("remote still unreachable")
	}
}
