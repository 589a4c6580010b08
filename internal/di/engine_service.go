package di

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/omarluq/holicache/internal/compat"
	"github.com/omarluq/holicache/internal/config"
	"github.com/omarluq/holicache/internal/hybrid"
	"github.com/omarluq/holicache/internal/remote"
)

var _ hybrid.CircuitReporter = (*remote.Client)(nil)

// EngineService wraps the hybrid engine and the flat-API facade over it.
type EngineService struct {
	Engine *hybrid.Engine
	Facade *compat.Facade
}

// NewEngine assembles the engine from the tiers, installs its facade as the
// compat default and keeps its options in step with config reloads.
func NewEngine(i do.Injector) (*EngineService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	loggerSvc := do.MustInvoke[*LoggerService](i)
	localSvc := do.MustInvoke[*LocalService](i)
	memorySvc := do.MustInvoke[*MemoryService](i)
	remoteSvc := do.MustInvoke[*RemoteService](i)
	healthSvc := do.MustInvoke[*HealthService](i)

	deps := hybrid.Deps{
		Local:  localSvc.Store,
		Memory: memorySvc.Cache,
		Logger: loggerSvc.Logger,
	}
	// Only assign non-nil pointers: a typed nil in an interface would read
	// as a configured tier.
	if remoteSvc.Client != nil {
		deps.Remote = remoteSvc.Client
	}
	if healthSvc.Monitor != nil {
		deps.Health = healthSvc.Monitor
	}

	engine, err := hybrid.New(deps, cfgSvc.Get().EngineOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	cfgSvc.Runtime().Subscribe(func(cfg *config.Config) {
		engine.UpdateOptions(cfg.EngineOptions())
		loggerSvc.Logger.Info().Msg("engine options reloaded")
	})

	facade := compat.NewFacade(engine)
	compat.SetDefault(facade)

	return &EngineService{Engine: engine, Facade: facade}, nil
}

// Shutdown uninstalls the compat default and closes the engine.
func (e *EngineService) Shutdown() error {
	if compat.Default() == e.Facade {
		compat.SetDefault(nil)
	}
	return e.Engine.Close()
}
