package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samber/do/v2"

	"github.com/omarluq/holicache/internal/config"
)

// ConfigService holds the live configuration and its optional file watcher.
type ConfigService struct {
	runtime *config.Runtime
	watcher *config.Watcher
	path    string
}

// Get returns the current configuration.
func (c *ConfigService) Get() *config.Config {
	return c.runtime.Get()
}

// Runtime returns the hot-reloadable configuration holder.
func (c *ConfigService) Runtime() *config.Runtime {
	return c.runtime
}

// Path returns the config file path, or "" when running on defaults.
func (c *ConfigService) Path() string {
	return c.path
}

// StartWatching begins watching the config file for changes. Reloaded
// configs that pass validation are stored in the runtime. The context
// controls the watcher lifecycle.
func (c *ConfigService) StartWatching(ctx context.Context, logger *zerolog.Logger) {
	if c.path == "" {
		return
	}

	watcher, err := config.NewWatcher(c.path, config.WithLogger(logger))
	if err != nil {
		logger.Warn().Err(err).Str("path", c.path).Msg("config watcher creation failed, hot-reload disabled")
		return
	}
	c.watcher = watcher
	watcher.OnReload(c.runtime.Store)

	go func() {
		if err := watcher.Watch(ctx); err != nil {
			logger.Error().Err(err).Msg("config watcher error")
		}
	}()

	logger.Info().Str("path", c.path).Msg("config file watcher started")
}

// Shutdown implements do.Shutdowner for graceful watcher cleanup.
func (c *ConfigService) Shutdown() error {
	if c.watcher != nil {
		return c.watcher.Close()
	}
	return nil
}

// NewConfig loads and validates the configuration from the config path.
// With an empty path the defaults are used, still subject to environment
// overrides.
func NewConfig(i do.Injector) (*ConfigService, error) {
	path := do.MustInvokeNamed[string](i, ConfigPathKey)

	var cfg *config.Config
	if path == "" {
		cfg = &config.Config{}
		if err := config.ApplyEnv(cfg); err != nil {
			return nil, err
		}
	} else {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
		cfg = loaded
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &ConfigService{
		runtime: config.NewRuntime(cfg),
		path:    path,
	}, nil
}
