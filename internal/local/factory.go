package local

import (
	"fmt"
	"time"
)

// New creates a Store for the configured backend.
// It returns an error if the configuration is invalid or the backend cannot
// be opened. A JSON store never fails to open: its file is created on the
// first write.
func New(cfg Config) (Store, error) {
	log := logger().With().Str("component", "local_factory").Logger()
	start := time.Now()

	if err := cfg.Validate(); err != nil {
		log.Debug().Err(err).Str("backend", string(cfg.Backend)).Msg("local factory: validation failed")
		return nil, err
	}

	var store Store
	var err error

	switch cfg.GetBackend() {
	case BackendJSON:
		store = newJSONStore(&cfg, time.Now)
	case BackendBolt:
		store, err = newBoltStore(&cfg, time.Now)
	default:
		return nil, fmt.Errorf("local: unknown backend %q", cfg.Backend)
	}

	if err != nil {
		log.Error().Err(err).Str("backend", string(cfg.GetBackend())).Msg("local factory: backend initialization failed")
		return nil, err
	}

	log.Info().
		Str("backend", string(cfg.GetBackend())).
		Str("path", cfg.GetPath()).
		Dur("init_time", time.Since(start)).
		Msg("local factory: backend initialized")

	return store, nil
}
