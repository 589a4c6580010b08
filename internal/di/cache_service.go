package di

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/omarluq/holicache/internal/cache"
)

// MemoryService wraps the optional in-process memory tier. Cache is nil
// when the tier is disabled.
type MemoryService struct {
	Cache cache.Cache
}

// NewMemory creates the memory tier based on configuration.
func NewMemory(i do.Injector) (*MemoryService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	_ = do.MustInvoke[*LoggerService](i)

	cfg := cfgSvc.Get().Memory
	if !cfg.IsEnabled() {
		return &MemoryService{}, nil
	}

	c, err := cache.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory tier: %w", err)
	}
	return &MemoryService{Cache: c}, nil
}

// Shutdown implements do.Shutdowner for graceful cache cleanup.
func (m *MemoryService) Shutdown() error {
	if m.Cache != nil {
		return m.Cache.Close()
	}
	return nil
}
