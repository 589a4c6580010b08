package cache

import (
	"errors"
	"fmt"
	"time"
)

// Mode represents the cache operating mode.
type Mode string

const (
	// ModeSingle uses a local Ristretto cache.
	ModeSingle Mode = "single"

	// ModeDisabled turns the memory tier off.
	ModeDisabled Mode = "disabled"
)

// DefaultTTLMS is how long a record stays in memory when TTLMS is unset.
const DefaultTTLMS = 5 * 60 * 1000

// Config defines memory tier configuration.
// Use Validate() to check for configuration errors before creating a cache.
type Config struct {
	Mode      Mode            `yaml:"mode" toml:"mode"`
	Ristretto RistrettoConfig `yaml:"ristretto" toml:"ristretto"`
	TTLMS     int             `yaml:"ttl_ms" toml:"ttl_ms"`
}

// RistrettoConfig configures the Ristretto local cache.
type RistrettoConfig struct {
	// NumCounters is the number of 4-bit access counters.
	// Recommended: 10x expected max items.
	NumCounters int64 `yaml:"num_counters" toml:"num_counters"`

	// MaxCost is the total byte budget for cached records.
	MaxCost int64 `yaml:"max_cost" toml:"max_cost"`

	// BufferItems is the number of keys per Get buffer. 64 is a good default.
	BufferItems int64 `yaml:"buffer_items" toml:"buffer_items"`
}

// GetMode returns the mode, defaulting to ModeDisabled.
func (c *Config) GetMode() Mode {
	if c.Mode == "" {
		return ModeDisabled
	}
	return c.Mode
}

// GetTTL returns the record TTL.
func (c *Config) GetTTL() time.Duration {
	if c.TTLMS > 0 {
		return time.Duration(c.TTLMS) * time.Millisecond
	}
	return DefaultTTLMS * time.Millisecond
}

// IsEnabled reports whether records are actually kept in memory.
func (c *Config) IsEnabled() bool {
	return c.GetMode() != ModeDisabled
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.TTLMS < 0 {
		return errors.New("cache: ttl_ms must not be negative")
	}
	switch c.GetMode() {
	case ModeSingle:
		if c.Ristretto.MaxCost < 0 {
			return errors.New("cache: ristretto.max_cost must not be negative")
		}
		if c.Ristretto.NumCounters < 0 {
			return errors.New("cache: ristretto.num_counters must not be negative")
		}
	case ModeDisabled:
	default:
		return fmt.Errorf("cache: unknown mode %q", c.Mode)
	}
	return nil
}

// GetRistretto returns the Ristretto settings with zero fields replaced by
// DefaultRistrettoConfig values.
func (c *Config) GetRistretto() RistrettoConfig {
	rc := c.Ristretto
	def := DefaultRistrettoConfig()
	if rc.NumCounters <= 0 {
		rc.NumCounters = def.NumCounters
	}
	if rc.MaxCost <= 0 {
		rc.MaxCost = def.MaxCost
	}
	if rc.BufferItems <= 0 {
		rc.BufferItems = def.BufferItems
	}
	return rc
}

// DefaultRistrettoConfig returns a RistrettoConfig sized for roughly ten
// thousand descriptions.
func DefaultRistrettoConfig() RistrettoConfig {
	return RistrettoConfig{
		NumCounters: 100_000,
		MaxCost:     16 << 20, // 16 MB.
		BufferItems: 64,
	}
}
