package config

import (
	"net"
	"strings"
)

// Valid logging levels.
var validLogLevels = map[string]bool{
	"":      true, // Empty defaults to info
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Valid logging formats.
var validLogFormats = map[string]bool{
	"":        true, // Empty defaults to json
	"json":    true,
	"console": true,
	"text":    true, // Alias for console
	"pretty":  true,
}

// Validate checks the configuration for errors.
// It validates every section and returns a ValidationError containing all
// errors found, or nil if valid.
func (c *Config) Validate() error {
	errs := &ValidationError{}

	validateRemote(c, errs)
	errs.Section(c.Local.Validate())
	errs.Section(c.Memory.Validate())
	errs.Section(c.Engine.Validate())
	validateHealth(c, errs)
	validateRetryBudget(c, errs)
	validateLogging(c, errs)
	validateServer(c, errs)

	return errs.ToError()
}

// validateRemote validates the remote store section. A disabled remote tier
// needs no connection details.
func validateRemote(c *Config, errs *ValidationError) {
	r := &c.Remote
	if !r.IsEnabled() {
		return
	}
	if r.URL != "" && !strings.HasPrefix(r.URL, "http://") && !strings.HasPrefix(r.URL, "https://") {
		errs.Field("remote.url", "must be an http(s) URL (got %q)", r.URL)
	}
	if r.URL != "" && r.ServiceKey == "" {
		errs.Field("remote.service_key", "is required when remote.url is set")
	}
	if r.BatchThreshold < 0 {
		errs.Field("remote.batch_threshold", "must be >= 0")
	}
	if r.HealthTTLMS < 0 {
		errs.Field("remote.health_ttl_ms", "must be >= 0")
	}
}

// validateHealth validates the health monitor and circuit breaker section.
func validateHealth(c *Config, errs *ValidationError) {
	h := &c.Health
	if h.Monitor.IntervalMS < 0 {
		errs.Field("health.monitor.interval_ms", "must be >= 0")
	}
	if h.Monitor.ProbeTimeoutMS < 0 {
		errs.Field("health.monitor.probe_timeout_ms", "must be >= 0")
	}
	if h.CircuitBreaker.FailureThreshold < 0 {
		errs.Field("health.circuit_breaker.failure_threshold", "must be >= 0")
	}
	if h.CircuitBreaker.OpenDurationMS < 0 {
		errs.Field("health.circuit_breaker.open_duration_ms", "must be >= 0")
	}
	if h.CircuitBreaker.HalfOpenProbes < 0 {
		errs.Field("health.circuit_breaker.half_open_probes", "must be >= 0")
	}
}

// validateRetryBudget requires the breaker to tolerate a full round of read
// retries. A lower threshold opens the circuit mid-round and ErrCircuitOpen
// ends the round early, so retry_attempts would not be honored.
func validateRetryBudget(c *Config, errs *ValidationError) {
	if !c.Remote.IsEnabled() || !c.Remote.IsConfigured() || c.Engine.RetryAttempts < 0 || c.Health.CircuitBreaker.FailureThreshold < 0 {
		return
	}
	threshold := c.Health.CircuitBreaker.GetFailureThreshold()
	retries := c.Engine.GetRetryAttempts()
	if threshold < retries {
		errs.Field("health.circuit_breaker.failure_threshold",
			"must be >= engine.retry_attempts (got %d < %d)", threshold, retries)
	}
}

// validateLogging validates the logging configuration section.
func validateLogging(c *Config, errs *ValidationError) {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs.Field("logging.level", "is invalid (got %q, valid: debug, info, warn, error)", c.Logging.Level)
	}
	if !validLogFormats[strings.ToLower(c.Logging.Format)] {
		errs.Field("logging.format", "is invalid (got %q, valid: json, console, text, pretty)", c.Logging.Format)
	}
}

// validateServer validates the server configuration section. An empty
// listen address falls back to DefaultListen.
func validateServer(c *Config, errs *ValidationError) {
	if c.Server.Listen != "" {
		validateListenAddress(c.Server.Listen, errs)
	}
	if c.Server.ReadTimeoutMS < 0 {
		errs.Field("server.read_timeout_ms", "must be >= 0")
	}
	if c.Server.ShutdownTimeoutMS < 0 {
		errs.Field("server.shutdown_timeout_ms", "must be >= 0")
	}
}

// validateListenAddress validates a listen address in host:port format.
func validateListenAddress(addr string, errs *ValidationError) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		errs.Field("server.listen", "must be in host:port format (got %q)", addr)
		return
	}

	if host != "" && net.ParseIP(host) == nil && strings.ContainsAny(host, " \t\n") {
		errs.Field("server.listen", "host contains invalid characters")
	}

	if port == "" {
		errs.Field("server.listen", "port is required")
	}
}
