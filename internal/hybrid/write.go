package hybrid

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/omarluq/holicache/internal/content"
	"github.com/omarluq/holicache/internal/remote"
)

// SetDescription writes rec to the remote tier when it is enabled and
// healthy, then to the local tier unconditionally. An existing remote row is
// always overwritten; callers that must not downgrade content check first.
//
// The write succeeds if either tier accepted it. When both fail the returned
// *WriteError names both causes.
func (e *Engine) SetDescription(ctx context.Context, rec content.Record) error {
	rec.Locale = content.NormalizeLocale(rec.Locale)
	if err := rec.Validate(); err != nil {
		return err
	}
	now := e.now().UTC()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.GeneratedAt.IsZero() {
		rec.GeneratedAt = now
	}
	if rec.LastUsedAt.IsZero() {
		rec.LastUsedAt = now
	}
	key := rec.Key()

	remoteErr := e.writeRemote(ctx, &rec)
	switch {
	case remoteErr == nil:
	case errors.Is(remoteErr, ErrRemoteDisabled), errors.Is(remoteErr, ErrRemoteUnavailable):
		e.logger.Debug().Err(remoteErr).Str("key", key.String()).Msg("remote write skipped")
	default:
		e.remoteFailed(remoteErr, "remote write failed")
	}

	localErr := e.local.Set(ctx, rec)
	if localErr != nil {
		e.counters.errors.Add(1)
		e.logger.Warn().Err(localErr).Str("key", key.String()).Msg("local write failed")
	}

	e.forget(ctx, key)

	if remoteErr != nil && localErr != nil {
		return &WriteError{Remote: remoteErr, Local: localErr}
	}
	e.logger.Debug().
		Str("key", key.String()).
		Bool("remote", remoteErr == nil).
		Bool("local", localErr == nil).
		Msg("description written")
	return nil
}

// Invalidate removes key from the local tier, under the key as given and
// every alternate country form, and from the memory tier. The remote row is
// left for the next read. It reports whether any local entry was removed.
// Failures are logged, never returned.
func (e *Engine) Invalidate(ctx context.Context, key content.Key) bool {
	key.Locale = content.NormalizeLocale(key.Locale)
	if err := key.Validate(); err != nil {
		e.logger.Debug().Err(err).Msg("invalidate: invalid key")
		return false
	}

	removed := false
	for _, variant := range key.Variants() {
		existed, err := e.local.Delete(ctx, variant)
		if err != nil {
			e.logger.Warn().Err(err).Str("key", variant.String()).Msg("local invalidate failed")
			continue
		}
		removed = removed || existed
	}
	e.forget(ctx, key)

	e.logger.Debug().Str("key", key.String()).Bool("removed", removed).Msg("description invalidated")
	return removed
}

// writeRemote creates or overwrites the remote row for rec.
func (e *Engine) writeRemote(ctx context.Context, rec *content.Record) error {
	opts := e.Options()
	if !opts.RemoteEnabled || e.remote == nil {
		return ErrRemoteDisabled
	}
	if !e.health.EnsureFresh(ctx) {
		return ErrRemoteUnavailable
	}

	key := rec.Key()
	existing, err := e.remote.Get(ctx, key)
	switch {
	case err == nil:
		return e.updateRemote(ctx, existing.ID, rec)
	case !errors.Is(err, remote.ErrNotFound):
		return err
	}

	_, err = e.remote.Create(ctx, rowFromRecord(rec))
	if !errors.Is(err, remote.ErrDuplicate) {
		return err
	}

	// Lost a race with another writer; overwrite what it created.
	existing, err = e.remote.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("hybrid: re-read after duplicate: %w", err)
	}
	return e.updateRemote(ctx, existing.ID, rec)
}

func (e *Engine) updateRemote(ctx context.Context, id string, rec *content.Record) error {
	_, err := e.remote.Update(ctx, id, fieldsFromRecord(rec))
	return err
}
