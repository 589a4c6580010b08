package di

import (
	"github.com/samber/do/v2"

	"github.com/omarluq/holicache/internal/server"
)

// ServerService wraps the ops HTTP server.
type ServerService struct {
	Server *server.Server
}

// NewServer builds the ops server on the configured listen address.
func NewServer(i do.Injector) (*ServerService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	loggerSvc := do.MustInvoke[*LoggerService](i)
	engineSvc := do.MustInvoke[*EngineService](i)
	metricsSvc := do.MustInvoke[*MetricsService](i)

	cfg := cfgSvc.Get().Server
	handler := server.Routes(engineSvc.Engine, metricsSvc.Registry, loggerSvc.Logger)
	readTimeout := cfg.GetReadTimeoutOption().OrElse(0)
	return &ServerService{Server: server.NewServer(cfg.GetListen(), handler, readTimeout)}, nil
}
