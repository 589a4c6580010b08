package cache

import (
	"fmt"
	"time"
)

// New creates a Cache for cfg. An empty mode yields the noop backend.
func New(cfg Config) (Cache, error) {
	log := logger().With().Str("component", "cache_factory").Logger()
	start := time.Now()

	if err := cfg.Validate(); err != nil {
		log.Debug().Err(err).Str("mode", string(cfg.Mode)).Msg("cache factory: validation failed")
		return nil, err
	}

	mode := cfg.GetMode()
	var (
		c   Cache
		err error
	)
	switch mode {
	case ModeSingle:
		c, err = newRistrettoCache(cfg.GetRistretto(), cfg.GetTTL())
	case ModeDisabled:
		c = newNoopCache()
	default:
		return nil, fmt.Errorf("cache: unknown mode %q", mode)
	}
	if err != nil {
		log.Error().Err(err).Str("mode", string(mode)).Msg("cache factory: backend initialization failed")
		return nil, err
	}

	log.Info().
		Str("mode", string(mode)).
		Dur("ttl", cfg.GetTTL()).
		Dur("init_time", time.Since(start)).
		Msg("cache factory: backend initialized")

	return c, nil
}
