package health

import "errors"

// Sentinel errors for health tracking.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open and rejecting requests.
	ErrCircuitOpen = errors.New("health: circuit breaker is open")

	// ErrProbeFailed is returned when a reachability probe fails.
	ErrProbeFailed = errors.New("health: probe failed")

	// ErrNoProber is returned when a monitor is asked to probe without a target.
	ErrNoProber = errors.New("health: no prober configured")
)
