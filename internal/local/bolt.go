package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	bolt "go.etcd.io/bbolt"

	"github.com/omarluq/holicache/internal/content"
)

var descriptionsBucket = []byte("descriptions")

// boltStore keeps one JSON-encoded record per key in a bbolt database.
// bbolt serializes write transactions, so upserts are atomic per key.
type boltStore struct {
	now          func() time.Time
	db           *bolt.DB
	log          zerolog.Logger
	pending      sync.WaitGroup
	lastModified atomic.Int64
	mu           sync.RWMutex
	closed       atomic.Bool
	touchOnRead  bool
}

var _ Store = (*boltStore)(nil)

func newBoltStore(cfg *Config, now func() time.Time) (*boltStore, error) {
	log := logger().With().Str("backend", "bolt").Logger()
	path := cfg.GetPath()

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("local: create directory for %s: %w", path, err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("local: open bolt database %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(descriptionsBucket)
		return createErr
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("local: create bucket: %w", err)
	}

	s := &boltStore{
		db:          db,
		now:         now,
		touchOnRead: cfg.IsTouchOnRead(),
		log:         log,
	}
	if info, statErr := os.Stat(path); statErr == nil {
		s.lastModified.Store(info.ModTime().UnixNano())
	}

	log.Info().Str("path", path).Msg("bolt store opened")
	return s, nil
}

// Get returns the record stored under key.
func (s *boltStore) Get(ctx context.Context, key content.Key) (content.Record, error) {
	if err := ctx.Err(); err != nil {
		return content.Record{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed.Load() {
		return content.Record{}, ErrClosed
	}

	var rec content.Record
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(descriptionsBucket).Get([]byte(key.String()))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &rec)
	})
	switch {
	case errors.Is(err, ErrNotFound):
		s.log.Debug().Str("key", key.String()).Bool("hit", false).Msg("local get")
		return content.Record{}, ErrNotFound
	case err != nil:
		// A record that cannot be decoded reads as absent.
		s.log.Warn().Err(err).Str("key", key.String()).Msg("local record malformed, treating as missing")
		return content.Record{}, ErrNotFound
	}

	s.log.Debug().Str("key", key.String()).Bool("hit", true).Msg("local get")
	if s.touchOnRead {
		s.scheduleTouch(key)
	}
	return rec, nil
}

// Set upserts rec under its own key.
func (s *boltStore) Set(ctx context.Context, rec content.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("local: encode record: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed.Load() {
		return ErrClosed
	}

	key := rec.Key().String()
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(descriptionsBucket).Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("local: put %s: %w", key, err)
	}

	s.markModified()
	s.log.Debug().Str("key", key).Msg("local set")
	return nil
}

// Delete removes the record under key.
func (s *boltStore) Delete(ctx context.Context, key content.Key) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed.Load() {
		return false, ErrClosed
	}

	k := []byte(key.String())
	var existed bool
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(descriptionsBucket)
		if b.Get(k) == nil {
			return nil
		}
		existed = true
		return b.Delete(k)
	})
	if err != nil {
		return false, fmt.Errorf("local: delete %s: %w", key.String(), err)
	}

	if existed {
		s.markModified()
	}
	s.log.Debug().Str("key", key.String()).Bool("existed", existed).Msg("local delete")
	return existed, nil
}

// Touch bumps lastUsed for key in the background.
func (s *boltStore) Touch(key content.Key) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed.Load() {
		return
	}
	s.scheduleTouch(key)
}

// scheduleTouch must be called with s.mu held for reading.
func (s *boltStore) scheduleTouch(key content.Key) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		k := []byte(key.String())
		err := s.db.Update(func(tx *bolt.Tx) error {
			b := tx.Bucket(descriptionsBucket)
			data := b.Get(k)
			if data == nil {
				return nil
			}
			var rec content.Record
			if err := json.Unmarshal(data, &rec); err != nil {
				return err
			}
			rec.LastUsedAt = s.now().UTC()
			updated, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			return b.Put(k, updated)
		})
		if err != nil {
			s.log.Warn().Err(err).Str("key", key.String()).Msg("local touch failed")
		}
	}()
}

// Status reports the key count and last write time.
func (s *boltStore) Status(ctx context.Context) (Status, error) {
	if err := ctx.Err(); err != nil {
		return Status{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed.Load() {
		return Status{}, ErrClosed
	}

	var status Status
	err := s.db.View(func(tx *bolt.Tx) error {
		status.TotalEntries = tx.Bucket(descriptionsBucket).Stats().KeyN
		return nil
	})
	if err != nil {
		return Status{}, fmt.Errorf("local: read stats: %w", err)
	}
	if ns := s.lastModified.Load(); ns != 0 {
		status.LastModified = time.Unix(0, ns).UTC()
	}
	return status, nil
}

// Close waits for pending touches and closes the database.
// Close is idempotent.
func (s *boltStore) Close() error {
	s.mu.Lock()
	if s.closed.Swap(true) {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	s.pending.Wait()
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("local: close bolt database: %w", err)
	}
	s.log.Info().Msg("bolt store closed")
	return nil
}

func (s *boltStore) markModified() {
	s.lastModified.Store(s.now().UnixNano())
}
