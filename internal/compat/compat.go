// Package compat keeps the flat function API older callers use:
// get, set and invalidate by plain strings, plus a status snapshot.
//
// Callers can hold their own *Facade, or use the package functions, which
// delegate to the facade installed with SetDefault.
package compat

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/omarluq/holicache/internal/content"
	"github.com/omarluq/holicache/internal/hybrid"
)

// ErrNoDefault is returned by the package functions before SetDefault.
var ErrNoDefault = errors.New("compat: no default facade installed")

// Engine is what the facade needs from the hybrid engine.
type Engine interface {
	GetDescription(ctx context.Context, key content.Key) (content.Record, bool)
	SetDescription(ctx context.Context, rec content.Record) error
	Invalidate(ctx context.Context, key content.Key) bool
	InvalidateHealthCache()
	Status(ctx context.Context) (hybrid.Status, error)
}

// Facade adapts an Engine to the flat API.
type Facade struct {
	engine Engine
	now    func() time.Time
}

// NewFacade wraps engine.
func NewFacade(engine Engine) *Facade {
	return &Facade{engine: engine, now: time.Now}
}

// GetCachedDescription returns the description, or nil when there is none.
// An empty locale means ko.
func (f *Facade) GetCachedDescription(ctx context.Context, holiday, countryValue, locale string) *content.Record {
	rec, ok := f.engine.GetDescription(ctx, content.NewKey(holiday, countryValue, locale))
	if !ok {
		return nil
	}
	return &rec
}

// SetCachedDescription stores a description with both timestamps set to now.
func (f *Facade) SetCachedDescription(
	ctx context.Context,
	id, holiday, countryValue, locale, body string,
	confidence float64,
) error {
	now := f.now().UTC()
	err := f.engine.SetDescription(ctx, content.Record{
		ID:          id,
		Holiday:     holiday,
		Country:     countryValue,
		Locale:      content.NormalizeLocale(locale),
		Body:        body,
		Confidence:  confidence,
		GeneratedAt: now,
		LastUsedAt:  now,
	})
	f.engine.InvalidateHealthCache()
	return err
}

// InvalidateCachedDescription drops the local and memory copies. It never fails.
func (f *Facade) InvalidateCachedDescription(ctx context.Context, holiday, countryValue, locale string) {
	f.engine.Invalidate(ctx, content.NewKey(holiday, countryValue, locale))
	f.engine.InvalidateHealthCache()
}

// GetCacheStatus returns engine stats and local tier status.
func (f *Facade) GetCacheStatus(ctx context.Context) (hybrid.Status, error) {
	return f.engine.Status(ctx)
}

var defaultFacade atomic.Pointer[Facade]

// SetDefault installs f for the package functions. Passing nil uninstalls it.
func SetDefault(f *Facade) {
	defaultFacade.Store(f)
}

// Default returns the installed facade, or nil.
func Default() *Facade {
	return defaultFacade.Load()
}

// GetCachedDescription calls the default facade. It returns nil when no
// facade is installed.
func GetCachedDescription(ctx context.Context, holiday, countryValue, locale string) *content.Record {
	f := Default()
	if f == nil {
		return nil
	}
	return f.GetCachedDescription(ctx, holiday, countryValue, locale)
}

// SetCachedDescription calls the default facade.
func SetCachedDescription(ctx context.Context, id, holiday, countryValue, locale, body string, confidence float64) error {
	f := Default()
	if f == nil {
		return ErrNoDefault
	}
	return f.SetCachedDescription(ctx, id, holiday, countryValue, locale, body, confidence)
}

// InvalidateCachedDescription calls the default facade, if any.
func InvalidateCachedDescription(ctx context.Context, holiday, countryValue, locale string) {
	if f := Default(); f != nil {
		f.InvalidateCachedDescription(ctx, holiday, countryValue, locale)
	}
}

// GetCacheStatus calls the default facade.
func GetCacheStatus(ctx context.Context) (hybrid.Status, error) {
	f := Default()
	if f == nil {
		return hybrid.Status{}, ErrNoDefault
	}
	return f.GetCacheStatus(ctx)
}
