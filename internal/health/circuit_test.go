package health_test

import (
	"errors"
	"testing"
	"time"

	"github.com/omarluq/holicache/internal/health"
)

var (
	errNotFound  = errors.New("not found")
	errTransport = errors.New("dial tcp: connection refused")
)

func isNotFound(err error) bool { return errors.Is(err, errNotFound) }

func fail() error { return errTransport }

func succeed() error { return nil }

func TestNewCircuitBreakerStartsClosed(t *testing.T) {
	t.Parallel()

	breaker := health.NewTestBreaker(0, 0, 0)

	if breaker.State() != health.StateClosed {
		t.Errorf("expected initial state CLOSED, got %s", breaker.State().String())
	}
}

func TestCircuitBreakerOpensAfterThresholdFailures(t *testing.T) {
	t.Parallel()

	breaker := health.NewTestBreaker(3, 1000, 1)

	for i := 0; i < 3; i++ {
		if err := breaker.Run(fail, isNotFound); !errors.Is(err, errTransport) {
			t.Fatalf("iteration %d: Run returned %v, want the transport error", i, err)
		}
	}

	if breaker.State() != health.StateOpen {
		t.Errorf("expected state OPEN after 3 failures, got %s", breaker.State().String())
	}

	ran := false
	err := breaker.Run(func() error {
		ran = true
		return nil
	}, isNotFound)
	if !errors.Is(err, health.ErrCircuitOpen) {
		t.Errorf("expected health.ErrCircuitOpen, got %v", err)
	}
	if ran {
		t.Error("fn should not run while the circuit is open")
	}
}

func TestCircuitBreakerTransitionsToHalfOpenAfterTimeout(t *testing.T) {
	t.Parallel()

	breaker := health.NewTestBreaker(2, 100, 1)

	_ = breaker.Run(fail, nil)
	_ = breaker.Run(fail, nil)
	if breaker.State() != health.StateOpen {
		t.Fatalf("expected OPEN, got %s", breaker.State().String())
	}

	time.Sleep(150 * time.Millisecond)

	if breaker.State() != health.StateHalfOpen {
		t.Errorf("expected HALF-OPEN after timeout, got %s", breaker.State().String())
	}

	if err := breaker.Run(succeed, nil); err != nil {
		t.Fatalf("expected probe to be allowed in half-open state, got %v", err)
	}
	if breaker.State() != health.StateClosed {
		t.Errorf("expected CLOSED after successful probe, got %s", breaker.State().String())
	}
}

func TestCircuitBreakerRunIgnoresBenignErrors(t *testing.T) {
	t.Parallel()

	breaker := health.NewTestBreaker(2, 1000, 1)

	for i := 0; i < 5; i++ {
		err := breaker.Run(func() error { return errNotFound }, isNotFound)
		if !errors.Is(err, errNotFound) {
			t.Fatalf("Run returned %v, want errNotFound", err)
		}
	}
	if breaker.State() != health.StateClosed {
		t.Errorf("benign errors should not open the circuit, got %s", breaker.State().String())
	}

	_ = breaker.Run(fail, isNotFound)
	_ = breaker.Run(fail, isNotFound)

	err := breaker.Run(func() error {
		t.Error("fn should not run while the circuit is open")
		return nil
	}, isNotFound)
	if !errors.Is(err, health.ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
}
