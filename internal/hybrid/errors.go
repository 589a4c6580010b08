package hybrid

import (
	"errors"
	"fmt"
)

// Reasons a remote write was skipped. Either one counts as the remote cause
// of a WriteError.
var (
	ErrRemoteDisabled    = errors.New("hybrid: remote tier disabled")
	ErrRemoteUnavailable = errors.New("hybrid: remote tier unavailable")
)

// WriteError is returned by SetDescription when neither tier accepted the
// write.
type WriteError struct {
	Remote error
	Local  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("hybrid: write failed on both tiers: remote: %v; local: %v", e.Remote, e.Local)
}

// Unwrap exposes both causes to errors.Is and errors.As.
func (e *WriteError) Unwrap() []error {
	return []error{e.Remote, e.Local}
}
