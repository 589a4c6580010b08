package cache

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// NewRistrettoCacheForTest exports the ristretto constructor.
var NewRistrettoCacheForTest = newRistrettoCache

// NewNoopCacheForTest exports the noop constructor.
var NewNoopCacheForTest = newNoopCache

// SmallTestRistrettoConfig is a lightweight configuration for tests.
func SmallTestRistrettoConfig() RistrettoConfig {
	return RistrettoConfig{NumCounters: 1000, MaxCost: 1 << 20, BufferItems: 64}
}

// NewTestRistrettoCache creates a ristretto cache closed by t.Cleanup.
func NewTestRistrettoCache(t *testing.T, ttl time.Duration) Cache {
	t.Helper()
	c, err := newRistrettoCache(SmallTestRistrettoConfig(), ttl)
	if err != nil {
		t.Fatalf("newRistrettoCache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// CaptureLogger installs a debug logger writing to the returned buffer and
// restores the previous logger on cleanup.
func CaptureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	l := zerolog.New(&buf).Level(zerolog.DebugLevel)

	loggerMu.Lock()
	prev := Logger
	Logger = l
	loggerMu.Unlock()

	t.Cleanup(func() {
		loggerMu.Lock()
		Logger = prev
		loggerMu.Unlock()
	})
	return &buf
}
