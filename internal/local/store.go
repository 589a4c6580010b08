// Package local provides the on-disk fallback tier for holiday descriptions.
//
// Two backends are available:
//   - JSON (default): one pretty-printed document mapping composite keys to
//     records, with an in-process snapshot reused for a short TTL
//   - Bolt: an embedded bbolt database with one record per key
//
// Both backends serialize writes so concurrent upserts of different keys are
// never lost, and both treat a missing store as empty.
//
// Basic usage:
//
//	store, err := local.New(local.Config{Backend: local.BackendJSON, Path: "data/descriptions.json"})
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	rec, err := store.Get(ctx, content.NewKey("Chuseok", "South Korea", "ko"))
//	if errors.Is(err, local.ErrNotFound) {
//		// not cached locally
//	}
package local

import (
	"context"
	"errors"
	"time"

	"github.com/omarluq/holicache/internal/content"
)

// Standard errors for local store operations.
var (
	// ErrNotFound is returned when no record is stored under a key.
	ErrNotFound = errors.New("local: record not found")

	// ErrClosed is returned when operations are attempted on a closed store.
	ErrClosed = errors.New("local: store is closed")
)

// Store is the local description tier.
// All implementations must be safe for concurrent use.
type Store interface {
	// Get returns the record stored under the exact key.
	// Returns ErrNotFound if nothing is stored there. A missing or unreadable
	// backing file reads as an empty store, never as an error.
	Get(ctx context.Context, key content.Key) (content.Record, error)

	// Set upserts rec under rec.Key().
	Set(ctx context.Context, rec content.Record) error

	// Delete removes the record under key and reports whether one existed.
	Delete(ctx context.Context, key content.Key) (bool, error)

	// Touch updates the record's last-used time in the background.
	// Failures are logged and never reported.
	Touch(key content.Key)

	// Status reports the entry count and last modification time.
	Status(ctx context.Context) (Status, error)

	// Close waits for background touches and releases resources.
	// Close is idempotent.
	Close() error
}

// Status summarizes the local tier.
type Status struct {
	LastModified time.Time `json:"lastModified"`
	TotalEntries int       `json:"totalEntries"`
}
