package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/omarluq/holicache/internal/content"
)

// document is the on-disk shape: composite key to record.
type document map[string]content.Record

// jsonStore keeps every record in one JSON file.
//
// Reads are served from a snapshot that is reloaded once it is older than
// readTTL; concurrent reloads share one disk read. Writes are serialized by
// writeMu and always start from the file on disk, then replace it atomically.
// Snapshots are never mutated after publication.
type jsonStore struct {
	loadedAt    time.Time
	now         func() time.Time
	snapshot    document
	log         zerolog.Logger
	path        string
	loads       singleflight.Group
	pending     sync.WaitGroup
	readTTL     time.Duration
	mu          sync.RWMutex
	closeMu     sync.RWMutex
	writeMu     sync.Mutex
	closed      atomic.Bool
	touchOnRead bool
}

var _ Store = (*jsonStore)(nil)

func newJSONStore(cfg *Config, now func() time.Time) *jsonStore {
	return &jsonStore{
		path:        cfg.GetPath(),
		readTTL:     cfg.GetReadTTL(),
		touchOnRead: cfg.IsTouchOnRead(),
		now:         now,
		log:         logger().With().Str("backend", "json").Logger(),
	}
}

// Get returns the record stored under key.
func (s *jsonStore) Get(ctx context.Context, key content.Key) (content.Record, error) {
	if err := ctx.Err(); err != nil {
		return content.Record{}, err
	}
	if s.closed.Load() {
		return content.Record{}, ErrClosed
	}

	doc := s.load()
	rec, ok := doc[key.String()]
	if !ok {
		s.log.Debug().Str("key", key.String()).Bool("hit", false).Msg("local get")
		return content.Record{}, ErrNotFound
	}

	s.log.Debug().Str("key", key.String()).Bool("hit", true).Msg("local get")
	if s.touchOnRead {
		s.Touch(key)
	}
	return rec, nil
}

// Set upserts rec under its own key.
func (s *jsonStore) Set(ctx context.Context, rec content.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	key := rec.Key().String()
	err := s.mutate(func(doc document) (document, bool) {
		next := maps.Clone(doc)
		next[key] = rec
		return next, true
	})
	if err != nil {
		return err
	}

	s.log.Debug().Str("key", key).Msg("local set")
	return nil
}

// Delete removes the record under key.
func (s *jsonStore) Delete(ctx context.Context, key content.Key) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if s.closed.Load() {
		return false, ErrClosed
	}

	k := key.String()
	var existed bool
	err := s.mutate(func(doc document) (document, bool) {
		if _, existed = doc[k]; !existed {
			return doc, false
		}
		next := maps.Clone(doc)
		delete(next, k)
		return next, true
	})
	if err != nil {
		return false, err
	}

	s.log.Debug().Str("key", k).Bool("existed", existed).Msg("local delete")
	return existed, nil
}

// Touch bumps lastUsed for key in the background.
func (s *jsonStore) Touch(key content.Key) {
	s.closeMu.RLock()
	defer s.closeMu.RUnlock()
	if s.closed.Load() {
		return
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		k := key.String()
		err := s.mutate(func(doc document) (document, bool) {
			rec, ok := doc[k]
			if !ok {
				return doc, false
			}
			next := maps.Clone(doc)
			rec.LastUsedAt = s.now().UTC()
			next[k] = rec
			return next, true
		})
		if err != nil {
			s.log.Warn().Err(err).Str("key", k).Msg("local touch failed")
		}
	}()
}

// Status reports the entry count and file modification time.
func (s *jsonStore) Status(ctx context.Context) (Status, error) {
	if err := ctx.Err(); err != nil {
		return Status{}, err
	}
	if s.closed.Load() {
		return Status{}, ErrClosed
	}

	status := Status{TotalEntries: len(s.load())}
	info, err := os.Stat(s.path)
	switch {
	case err == nil:
		status.LastModified = info.ModTime().UTC()
	case errors.Is(err, fs.ErrNotExist):
	default:
		return Status{}, fmt.Errorf("local: stat %s: %w", s.path, err)
	}
	return status, nil
}

// Close waits for pending touches. It is idempotent.
func (s *jsonStore) Close() error {
	s.closeMu.Lock()
	wasClosed := s.closed.Swap(true)
	s.closeMu.Unlock()
	if wasClosed {
		return nil
	}
	s.pending.Wait()
	s.log.Info().Msg("json store closed")
	return nil
}

// load returns the current snapshot, reloading it from disk when stale.
func (s *jsonStore) load() document {
	s.mu.RLock()
	if s.snapshot != nil && s.now().Sub(s.loadedAt) < s.readTTL {
		doc := s.snapshot
		s.mu.RUnlock()
		return doc
	}
	s.mu.RUnlock()

	v, _, shared := s.loads.Do("load", func() (any, error) {
		// Holding the writer lock keeps a slow reload from publishing a
		// document older than one a concurrent write just published.
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
		doc := s.readFile()
		s.publish(doc)
		return doc, nil
	})
	if shared {
		s.log.Debug().Msg("local reload coalesced")
	}
	doc, _ := v.(document)
	return doc
}

// mutate applies fn to the on-disk document under the writer lock and
// persists the result when fn reports a change.
func (s *jsonStore) mutate(fn func(document) (document, bool)) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next, changed := fn(s.readFile())
	if !changed {
		return nil
	}
	if err := s.writeFile(next); err != nil {
		return err
	}
	s.publish(next)
	return nil
}

func (s *jsonStore) publish(doc document) {
	s.mu.Lock()
	s.snapshot = doc
	s.loadedAt = s.now()
	s.mu.Unlock()
}

// readFile loads the document from disk. A missing file is an empty store;
// an unreadable or malformed one is logged and also treated as empty.
func (s *jsonStore) readFile() document {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("local cache file unreadable, treating as empty")
		}
		return document{}
	}

	doc := document{}
	if len(data) == 0 {
		return doc
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("local cache file malformed, treating as empty")
		return document{}
	}
	return doc
}

// writeFile replaces the document on disk via a temp file and rename.
func (s *jsonStore) writeFile(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("local: encode document: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("local: create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("local: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// Best effort; after a successful rename the temp name is gone.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("local: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("local: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("local: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("local: replace %s: %w", s.path, err)
	}
	return nil
}
