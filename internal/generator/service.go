package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/omarluq/holicache/internal/content"
)

// Store is where the service reads and writes descriptions.
// *hybrid.Engine satisfies it.
type Store interface {
	GetDescription(ctx context.Context, key content.Key) (content.Record, bool)
	SetDescription(ctx context.Context, rec content.Record) error
}

// Source says where Resolve found a description.
type Source string

// Resolve sources.
const (
	SourceCache     Source = "cache"
	SourceGenerated Source = "generated"
)

// Service saves descriptions without downgrading existing content and
// generates missing ones on demand.
type Service struct {
	store  Store
	gen    Generator
	logger *zerolog.Logger
	now    func() time.Time
	flight singleflight.Group
}

// NewService creates a Service. A nil gen makes Resolve return ErrNoContent
// on a miss.
func NewService(store Store, gen Generator, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	log := logger.With().Str("component", "generator").Logger()
	return &Service{store: store, gen: gen, logger: &log, now: time.Now}
}

// Save writes rec unless that would replace better content. A non-manual
// write is skipped when the existing record is manual or has a confidence
// at least as high. Manual writes always go through. Save reports whether
// the write happened.
func (s *Service) Save(ctx context.Context, rec content.Record) (bool, error) {
	if err := rec.Validate(); err != nil {
		return false, err
	}

	if !rec.IsManual() {
		if existing, ok := s.store.GetDescription(ctx, rec.Key()); ok {
			if existing.IsManual() || existing.Confidence >= rec.Confidence {
				s.logger.Debug().
					Str("key", rec.Key().String()).
					Bool("existing_manual", existing.IsManual()).
					Float64("existing_confidence", existing.Confidence).
					Float64("incoming_confidence", rec.Confidence).
					Msg("save skipped, existing description is at least as good")
				return false, nil
			}
		}
	}

	if err := s.store.SetDescription(ctx, rec); err != nil {
		return false, err
	}
	return true, nil
}

// Resolve returns the stored description for key, generating and saving one
// when there is none. Concurrent misses for the same key share one
// generation.
func (s *Service) Resolve(ctx context.Context, key content.Key) (content.Record, Source, error) {
	key.Locale = content.NormalizeLocale(key.Locale)
	if err := key.Validate(); err != nil {
		return content.Record{}, "", err
	}
	if rec, ok := s.store.GetDescription(ctx, key); ok {
		return rec, SourceCache, nil
	}
	if s.gen == nil {
		return content.Record{}, "", ErrNoContent
	}

	v, err, _ := s.flight.Do(key.String(), func() (any, error) {
		res, err := s.gen.Generate(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("generator: %s: %w", key.String(), err)
		}
		now := s.now().UTC()
		rec := content.Record{
			Holiday:     key.Holiday,
			Country:     key.Country.Value,
			Locale:      key.Locale,
			Body:        res.Body,
			Confidence:  res.Confidence,
			GeneratedAt: now,
			LastUsedAt:  now,
		}
		if _, err := s.Save(ctx, rec); err != nil {
			s.logger.Warn().Err(err).Str("key", key.String()).Msg("generated description not saved")
		}
		return rec, nil
	})
	if err != nil {
		return content.Record{}, "", err
	}
	rec, _ := v.(content.Record)
	return rec, SourceGenerated, nil
}
