package local

import (
	"errors"
	"fmt"
	"time"
)

// Backend selects the local storage engine.
type Backend string

const (
	// BackendJSON stores every record in one JSON document (default).
	BackendJSON Backend = "json"

	// BackendBolt stores records in an embedded bbolt database.
	BackendBolt Backend = "bolt"
)

// Default configuration values.
const (
	DefaultPath        = "data/holiday-descriptions.json"
	DefaultReadTTLMS   = 300000 // 5 minutes
	DefaultTouchOnRead = true
)

// Config defines local store configuration.
type Config struct {
	TouchOnRead *bool   `yaml:"touch_on_read" toml:"touch_on_read"`
	Backend     Backend `yaml:"backend" toml:"backend"`
	Path        string  `yaml:"path" toml:"path" env:"HOLICACHE_LOCAL_PATH"`
	ReadTTLMS   int     `yaml:"read_ttl_ms" toml:"read_ttl_ms"`
}

// GetBackend returns the configured backend or BackendJSON.
func (c *Config) GetBackend() Backend {
	if c.Backend == "" {
		return BackendJSON
	}
	return c.Backend
}

// GetPath returns the configured path or DefaultPath.
func (c *Config) GetPath() string {
	if c.Path == "" {
		return DefaultPath
	}
	return c.Path
}

// GetReadTTL returns how long a loaded JSON snapshot is reused.
// Returns the 5 minute default if not set or negative.
func (c *Config) GetReadTTL() time.Duration {
	if c.ReadTTLMS <= 0 {
		return time.Duration(DefaultReadTTLMS) * time.Millisecond
	}
	return time.Duration(c.ReadTTLMS) * time.Millisecond
}

// IsTouchOnRead returns whether reads bump lastUsed. Defaults to true.
func (c *Config) IsTouchOnRead() bool {
	if c.TouchOnRead == nil {
		return DefaultTouchOnRead
	}
	return *c.TouchOnRead
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.GetBackend() {
	case BackendJSON, BackendBolt:
	default:
		return fmt.Errorf("local: unknown backend %q", c.Backend)
	}
	if c.ReadTTLMS < 0 {
		return errors.New("local: read_ttl_ms must not be negative")
	}
	return nil
}
