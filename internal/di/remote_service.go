package di

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/omarluq/holicache/internal/remote"
)

// RemoteService wraps the remote store client. Client is nil when the remote
// tier is switched off or has no connection details.
type RemoteService struct {
	Client *remote.Client
}

// NewRemote connects to the remote store when it is enabled and configured.
func NewRemote(i do.Injector) (*RemoteService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	loggerSvc := do.MustInvoke[*LoggerService](i)

	cfg := cfgSvc.Get()
	if !cfg.Remote.IsEnabled() {
		loggerSvc.Logger.Info().Msg("remote tier disabled by config")
		return &RemoteService{}, nil
	}
	if !cfg.Remote.IsConfigured() {
		loggerSvc.Logger.Warn().Msg("remote tier has no url or service key, running local only")
		return &RemoteService{}, nil
	}

	client, err := remote.New(cfg.Remote, cfg.Health.CircuitBreaker, loggerSvc.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create remote client: %w", err)
	}
	return &RemoteService{Client: client}, nil
}
