package di

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/omarluq/holicache/internal/local"
)

// LocalService wraps the local description tier.
type LocalService struct {
	Store local.Store
}

// NewLocal opens the configured local backend.
func NewLocal(i do.Injector) (*LocalService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	// The local package logs through its package logger, set by NewLogger.
	_ = do.MustInvoke[*LoggerService](i)

	store, err := local.New(cfgSvc.Get().Local)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	return &LocalService{Store: store}, nil
}

// Shutdown waits for pending touches and closes the store.
func (l *LocalService) Shutdown() error {
	return l.Store.Close()
}
