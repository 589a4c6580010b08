package hybrid

import (
	"errors"
	"time"
)

// Default engine settings.
const (
	DefaultRetryAttempts   = 2
	DefaultRetryDelayMS    = 1000
	DefaultFallbackToLocal = true
)

// Config is the engine section of the configuration file.
type Config struct {
	FallbackToLocal *bool `yaml:"fallback_to_local" toml:"fallback_to_local"`
	RetryAttempts   int   `yaml:"retry_attempts" toml:"retry_attempts"`
	RetryDelayMS    int   `yaml:"retry_delay_ms" toml:"retry_delay_ms"`
}

// IsFallbackToLocal returns whether reads fall back to the local tier.
// Defaults to true.
func (c *Config) IsFallbackToLocal() bool {
	if c.FallbackToLocal == nil {
		return DefaultFallbackToLocal
	}
	return *c.FallbackToLocal
}

// GetRetryAttempts returns how many times a remote read is tried.
func (c *Config) GetRetryAttempts() int {
	if c.RetryAttempts > 0 {
		return c.RetryAttempts
	}
	return DefaultRetryAttempts
}

// GetRetryDelay returns the base delay of the linear retry backoff.
func (c *Config) GetRetryDelay() time.Duration {
	if c.RetryDelayMS > 0 {
		return time.Duration(c.RetryDelayMS) * time.Millisecond
	}
	return DefaultRetryDelayMS * time.Millisecond
}

// Validate rejects negative values.
func (c *Config) Validate() error {
	if c.RetryAttempts < 0 {
		return errors.New("engine: retry_attempts must not be negative")
	}
	if c.RetryDelayMS < 0 {
		return errors.New("engine: retry_delay_ms must not be negative")
	}
	return nil
}

// Options returns the resolved engine options. remoteEnabled comes from the
// remote section, which owns the on/off switch.
func (c *Config) Options(remoteEnabled bool) Options {
	return Options{
		RemoteEnabled:   remoteEnabled,
		FallbackToLocal: c.IsFallbackToLocal(),
		RetryAttempts:   c.GetRetryAttempts(),
		RetryDelay:      c.GetRetryDelay(),
	}
}

// Options controls engine behavior and can be replaced at runtime with
// Engine.UpdateOptions.
type Options struct {
	RetryDelay      time.Duration
	RetryAttempts   int
	RemoteEnabled   bool
	FallbackToLocal bool
}

// DefaultOptions returns the defaults with the remote tier enabled.
func DefaultOptions() Options {
	var c Config
	return c.Options(true)
}

func (o Options) attempts() int {
	return max(o.RetryAttempts, 1)
}
