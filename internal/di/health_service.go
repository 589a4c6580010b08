package di

import (
	"sync"

	"github.com/samber/do/v2"

	"github.com/omarluq/holicache/internal/health"
)

// HealthService wraps the remote reachability monitor. Monitor is nil when
// there is no remote client.
type HealthService struct {
	Monitor   *health.Monitor
	startedMu sync.Mutex
	started   bool
}

// NewHealth creates the monitor for the remote client. Background probing
// is not started until Start is called, so one-shot CLI commands only probe
// on demand.
func NewHealth(i do.Injector) (*HealthService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	loggerSvc := do.MustInvoke[*LoggerService](i)
	remoteSvc := do.MustInvoke[*RemoteService](i)

	if remoteSvc.Client == nil {
		return &HealthService{}, nil
	}

	log := loggerSvc.Logger.With().Str("component", "health").Logger()
	monitor := health.NewMonitor(remoteSvc.Client, cfgSvc.Get().Health.Monitor, &log)
	return &HealthService{Monitor: monitor}, nil
}

// Start begins background probing if a monitor exists.
func (h *HealthService) Start() {
	h.startedMu.Lock()
	defer h.startedMu.Unlock()
	if h.Monitor == nil || h.started {
		return
	}
	h.started = true
	h.Monitor.Start()
}

// Shutdown implements do.Shutdowner for graceful monitor cleanup.
func (h *HealthService) Shutdown() error {
	h.startedMu.Lock()
	defer h.startedMu.Unlock()
	if h.Monitor != nil && h.started {
		h.Monitor.Stop()
		h.started = false
	}
	return nil
}
