package remote

import (
	"errors"
	"strings"
)

// Standard errors for remote store operations.
//
// Use errors.Is to check for these errors:
//
//	row, err := client.Get(ctx, key)
//	if errors.Is(err, remote.ErrNotFound) {
//		// not stored remotely
//	}
var (
	// ErrNotFound is returned when no row matches. It is an expected outcome,
	// not a transport failure.
	ErrNotFound = errors.New("remote: row not found")

	// ErrDuplicate is returned when an insert violates the unique key.
	ErrDuplicate = errors.New("remote: duplicate row")

	// ErrNotConfigured is returned when the client has no URL or key.
	ErrNotConfigured = errors.New("remote: url and service key are required")
)

// PostgREST and Postgres error codes, as they appear in postgrest-go errors
// formatted "(code) message".
const (
	codeNoRows         = "PGRST116"
	codeUniqueViolated = "23505"
)

// classify maps store error codes onto the package sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}
	switch errorCode(err) {
	case codeNoRows:
		return errors.Join(ErrNotFound, err)
	case codeUniqueViolated:
		return errors.Join(ErrDuplicate, err)
	default:
		return err
	}
}

// errorCode extracts "code" from a postgrest-go "(code) message" error.
func errorCode(err error) string {
	msg := err.Error()
	if !strings.HasPrefix(msg, "(") {
		return ""
	}
	end := strings.IndexByte(msg, ')')
	if end < 0 {
		return ""
	}
	return msg[1:end]
}

// isBenign reports errors that must not count against the circuit breaker.
func isBenign(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicate)
}
