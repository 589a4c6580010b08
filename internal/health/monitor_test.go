package health_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/omarluq/holicache/internal/health"
)

// mockProber counts probes and fails while failing is set.
type mockProber struct {
	calls   atomic.Int32
	failing atomic.Bool
}

func (p *mockProber) Ping(_ context.Context) error {
	p.calls.Add(1)
	if p.failing.Load() {
		return errors.New("connection refused")
	}
	return nil
}

type manualClock struct {
	now time.Time
	mu  sync.Mutex
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func disabledLoop() health.MonitorConfig {
	off := false
	return health.MonitorConfig{Enabled: &off}
}

func TestMonitorInitialProbeOnStart(t *testing.T) {
	t.Parallel()

	prober := &mockProber{}
	logger := zerolog.Nop()
	monitor := health.NewMonitor(prober, disabledLoop(), &logger)
	t.Cleanup(monitor.Stop)

	if monitor.Healthy() {
		t.Fatal("monitor should start unhealthy before any probe")
	}
	if !monitor.LastCheck().IsZero() {
		t.Fatal("LastCheck should be zero before any probe")
	}

	monitor.Start()

	if !monitor.Healthy() {
		t.Error("expected healthy after successful initial probe")
	}
	if monitor.LastCheck().IsZero() {
		t.Error("expected LastCheck to be set")
	}
	if got := prober.calls.Load(); got != 1 {
		t.Errorf("expected 1 probe, got %d", got)
	}
}

func TestMonitorEnsureFreshUsesCache(t *testing.T) {
	t.Parallel()

	prober := &mockProber{}
	clock := &manualClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	monitor := health.NewMonitor(prober, disabledLoop(), nil)
	monitor.SetClock(clock.Now)

	ctx := context.Background()
	if !monitor.EnsureFresh(ctx) {
		t.Fatal("first EnsureFresh should probe and succeed")
	}
	for i := 0; i < 10; i++ {
		monitor.EnsureFresh(ctx)
	}
	if got := prober.calls.Load(); got != 1 {
		t.Errorf("expected cached result within interval, got %d probes", got)
	}

	clock.Advance(time.Minute)
	monitor.EnsureFresh(ctx)
	if got := prober.calls.Load(); got != 2 {
		t.Errorf("expected re-probe after interval, got %d probes", got)
	}
}

func TestMonitorMarkUnhealthyKeepsSchedule(t *testing.T) {
	t.Parallel()

	prober := &mockProber{}
	clock := &manualClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	monitor := health.NewMonitor(prober, disabledLoop(), nil)
	monitor.SetClock(clock.Now)

	ctx := context.Background()
	monitor.EnsureFresh(ctx)
	before := monitor.LastCheck()

	monitor.MarkUnhealthy(errors.New("query timeout"))

	if monitor.Healthy() {
		t.Error("expected unhealthy immediately after MarkUnhealthy")
	}
	if !monitor.LastCheck().Equal(before) {
		t.Error("MarkUnhealthy must not change LastCheck")
	}
	if monitor.EnsureFresh(ctx) {
		t.Error("EnsureFresh within interval should return the cached false")
	}
	if got := prober.calls.Load(); got != 1 {
		t.Errorf("expected no extra probe, got %d", got)
	}
}

func TestMonitorInvalidateForcesProbe(t *testing.T) {
	t.Parallel()

	prober := &mockProber{}
	monitor := health.NewMonitor(prober, disabledLoop(), nil)

	ctx := context.Background()
	monitor.EnsureFresh(ctx)
	monitor.MarkUnhealthy(errors.New("blip"))

	monitor.Invalidate()
	if !monitor.EnsureFresh(ctx) {
		t.Error("expected re-probe after Invalidate to restore health")
	}
	if got := prober.calls.Load(); got != 2 {
		t.Errorf("expected 2 probes, got %d", got)
	}
}

func TestMonitorFailingProbe(t *testing.T) {
	t.Parallel()

	prober := &mockProber{}
	prober.failing.Store(true)
	monitor := health.NewMonitor(prober, disabledLoop(), nil)

	if monitor.Check(context.Background()) {
		t.Error("expected Check to report unhealthy")
	}
	status := monitor.Status()
	if status.Healthy || status.LastCheck.IsZero() {
		t.Errorf("unexpected status %+v", status)
	}
}

func TestMonitorNilProber(t *testing.T) {
	t.Parallel()

	monitor := health.NewMonitor(nil, disabledLoop(), nil)
	if monitor.Check(context.Background()) {
		t.Error("monitor without prober must be unhealthy")
	}
}

func TestMonitorBackgroundLoop(t *testing.T) {
	t.Parallel()

	prober := &mockProber{}
	monitor := health.NewMonitor(prober, health.MonitorConfig{IntervalMS: 20}, nil)
	monitor.Start()

	deadline := time.Now().Add(2 * time.Second)
	for prober.calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	monitor.Stop()

	if got := prober.calls.Load(); got < 3 {
		t.Fatalf("expected at least 3 probes from the loop, got %d", got)
	}

	after := prober.calls.Load()
	time.Sleep(60 * time.Millisecond)
	if got := prober.calls.Load(); got != after {
		t.Errorf("probes continued after Stop: %d -> %d", after, got)
	}
}
