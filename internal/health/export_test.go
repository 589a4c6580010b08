package health

import "time"

// NewTestBreaker creates a circuit breaker named "remote-test" without logging.
func NewTestBreaker(threshold, openMS, halfOpen int) *CircuitBreaker {
	return NewCircuitBreaker("remote-test", CircuitBreakerConfig{
		FailureThreshold: threshold,
		OpenDurationMS:   openMS,
		HalfOpenProbes:   halfOpen,
	}, nil)
}

// SetClock replaces the monitor's clock (for testing).
func (m *Monitor) SetClock(now func() time.Time) {
	m.now = now
}
