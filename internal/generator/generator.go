// Package generator produces holiday descriptions when no tier has one and
// saves them without overwriting better content.
package generator

import (
	"context"
	"errors"

	"github.com/omarluq/holicache/internal/content"
)

// ErrNoContent is returned by a Generator that has nothing for a key.
var ErrNoContent = errors.New("generator: no content for key")

// Result is a generated description.
type Result struct {
	Body       string
	Confidence float64
}

// Generator produces a description for a key.
type Generator interface {
	Generate(ctx context.Context, key content.Key) (Result, error)
}

// Func adapts a function to the Generator interface.
type Func func(ctx context.Context, key content.Key) (Result, error)

// Generate calls f(ctx, key).
func (f Func) Generate(ctx context.Context, key content.Key) (Result, error) {
	return f(ctx, key)
}

// Chain tries each generator in order and returns the first result.
// Generators reporting ErrNoContent are skipped silently; other failures are
// collected and returned only if no generator succeeds.
type Chain []Generator

// Generate implements Generator.
func (c Chain) Generate(ctx context.Context, key content.Key) (Result, error) {
	var errs []error
	for _, g := range c {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		res, err := g.Generate(ctx, key)
		switch {
		case err == nil:
			return res, nil
		case errors.Is(err, ErrNoContent):
		default:
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return Result{}, errors.Join(errs...)
	}
	return Result{}, ErrNoContent
}
