package di

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/omarluq/holicache/internal/metrics"
)

// MetricsService wraps the Prometheus registry.
type MetricsService struct {
	Registry *metrics.Registry
}

// NewMetrics creates the registry with the engine collector.
func NewMetrics(i do.Injector) (*MetricsService, error) {
	loggerSvc := do.MustInvoke[*LoggerService](i)
	engineSvc := do.MustInvoke[*EngineService](i)

	reg, err := metrics.NewRegistry(metrics.NewCollector(engineSvc.Engine, loggerSvc.Logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics registry: %w", err)
	}
	return &MetricsService{Registry: reg}, nil
}
