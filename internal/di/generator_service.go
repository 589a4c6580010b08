package di

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/omarluq/holicache/internal/generator"
)

// GeneratorService wraps the resolve-and-save service.
type GeneratorService struct {
	Service *generator.Service
}

// NewGenerator builds the producer chain from configuration: the curated
// table when a path is set, then the template fallback when enabled.
func NewGenerator(i do.Injector) (*GeneratorService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	loggerSvc := do.MustInvoke[*LoggerService](i)
	engineSvc := do.MustInvoke[*EngineService](i)

	cfg := cfgSvc.Get().Generator
	var chain generator.Chain
	if path, ok := cfg.GetStaticPathOption().Get(); ok {
		static, err := generator.LoadStatic(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load curated descriptions: %w", err)
		}
		loggerSvc.Logger.Info().Str("path", path).Int("entries", static.Len()).Msg("curated descriptions loaded")
		chain = append(chain, static)
	}
	if cfg.IsTemplateEnabled() {
		chain = append(chain, generator.Template{})
	}

	var gen generator.Generator
	if len(chain) > 0 {
		gen = chain
	}
	return &GeneratorService{Service: generator.NewService(engineSvc.Engine, gen, loggerSvc.Logger)}, nil
}
