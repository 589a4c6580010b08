// Package health tracks reachability of the remote description store.
//
// The package implements:
//   - A connection monitor that probes on a fixed interval and caches the
//     boolean result, so request paths never probe on every call
//   - A circuit breaker (CLOSED -> OPEN -> HALF-OPEN -> CLOSED) that stops
//     hammering a remote that keeps failing
package health

import "time"

// Default configuration values.
const (
	DefaultFailureThreshold = 5     // consecutive failures to open circuit
	DefaultOpenDurationMS   = 30000 // 30 seconds before half-open
	DefaultHalfOpenProbes   = 3     // probes allowed in half-open state
	DefaultCheckIntervalMS  = 60000 // 60 seconds between reachability probes
	DefaultProbeTimeoutMS   = 5000  // 5 seconds per probe
	DefaultMonitorEnabled   = true  // background probing enabled by default
)

// CircuitBreakerConfig defines circuit breaker behavior.
type CircuitBreakerConfig struct {
	// FailureThreshold is the number of consecutive failures before opening the circuit.
	// Default: 5
	FailureThreshold int `yaml:"failure_threshold" toml:"failure_threshold"`

	// OpenDurationMS is how long the circuit stays open before half-open.
	// Default: 30000 (30 seconds)
	OpenDurationMS int `yaml:"open_duration_ms" toml:"open_duration_ms"`

	// HalfOpenProbes is the number of requests allowed in half-open state.
	// Default: 3
	HalfOpenProbes int `yaml:"half_open_probes" toml:"half_open_probes"`
}

// GetFailureThreshold returns the configured failure threshold or default 5.
func (c *CircuitBreakerConfig) GetFailureThreshold() int {
	if c.FailureThreshold <= 0 {
		return DefaultFailureThreshold
	}
	return c.FailureThreshold
}

// GetOpenDuration returns the open duration as time.Duration.
// Returns default 30s if not set or negative.
func (c *CircuitBreakerConfig) GetOpenDuration() time.Duration {
	if c.OpenDurationMS <= 0 {
		return time.Duration(DefaultOpenDurationMS) * time.Millisecond
	}
	return time.Duration(c.OpenDurationMS) * time.Millisecond
}

// GetHalfOpenProbes returns the configured half-open probes or default 3.
func (c *CircuitBreakerConfig) GetHalfOpenProbes() int {
	if c.HalfOpenProbes <= 0 {
		return DefaultHalfOpenProbes
	}
	return c.HalfOpenProbes
}

// MonitorConfig defines background reachability probing.
type MonitorConfig struct {
	Enabled        *bool `yaml:"enabled" toml:"enabled"`
	IntervalMS     int   `yaml:"interval_ms" toml:"interval_ms"`
	ProbeTimeoutMS int   `yaml:"probe_timeout_ms" toml:"probe_timeout_ms"`
}

// GetInterval returns the probe interval, which is also how long a result
// stays fresh. Returns default 60s if not set or negative.
func (c *MonitorConfig) GetInterval() time.Duration {
	if c.IntervalMS <= 0 {
		return time.Duration(DefaultCheckIntervalMS) * time.Millisecond
	}
	return time.Duration(c.IntervalMS) * time.Millisecond
}

// GetProbeTimeout returns the per-probe timeout. Default 5s.
func (c *MonitorConfig) GetProbeTimeout() time.Duration {
	if c.ProbeTimeoutMS <= 0 {
		return time.Duration(DefaultProbeTimeoutMS) * time.Millisecond
	}
	return time.Duration(c.ProbeTimeoutMS) * time.Millisecond
}

// IsEnabled returns whether background probing is enabled.
// Returns true by default if not explicitly set.
func (c *MonitorConfig) IsEnabled() bool {
	if c.Enabled == nil {
		return DefaultMonitorEnabled
	}
	return *c.Enabled
}

// Config combines monitor and circuit breaker configuration.
type Config struct {
	Monitor        MonitorConfig        `yaml:"monitor" toml:"monitor"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker" toml:"circuit_breaker"`
}
