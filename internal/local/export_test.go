package local

import (
	"sync"
	"time"
)

// Exported for testing in external test package (local_test).

// NewJSONStoreForTest creates a JSON store with an injectable clock.
func NewJSONStoreForTest(cfg Config, now func() time.Time) Store {
	return newJSONStore(&cfg, now)
}

// NewBoltStoreForTest creates a bolt store with an injectable clock.
func NewBoltStoreForTest(cfg Config, now func() time.Time) (Store, error) {
	return newBoltStore(&cfg, now)
}

// WaitTouches blocks until background touches scheduled so far complete.
func WaitTouches(s Store) {
	switch st := s.(type) {
	case *jsonStore:
		st.pending.Wait()
	case *boltStore:
		st.pending.Wait()
	}
}

// FakeClock is a manually advanced clock for snapshot TTL tests.
type FakeClock struct {
	now time.Time
	mu  sync.Mutex
}

// NewFakeClock starts a clock at t.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
