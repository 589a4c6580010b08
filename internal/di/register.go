package di

import "github.com/samber/do/v2"

// RegisterSingletons registers all service providers as singletons.
// Services are registered in dependency order:
// 1. Config (no dependencies)
// 2. Logger (depends on Config)
// 3. Local (depends on Config, Logger)
// 4. Memory (depends on Config, Logger)
// 5. Remote (depends on Config, Logger) - nil client when disabled
// 6. Health (depends on Config, Logger, Remote)
// 7. Engine (depends on all tiers and Health)
// 8. Generator (depends on Config, Logger, Engine)
// 9. Metrics (depends on Engine)
// 10. Server (depends on Config, Logger, Engine, Metrics).
func RegisterSingletons(i do.Injector) {
	do.Provide(i, NewConfig)
	do.Provide(i, NewLogger)
	do.Provide(i, NewLocal)
	do.Provide(i, NewMemory)
	do.Provide(i, NewRemote)
	do.Provide(i, NewHealth)
	do.Provide(i, NewEngine)
	do.Provide(i, NewGenerator)
	do.Provide(i, NewMetrics)
	do.Provide(i, NewServer)
}
