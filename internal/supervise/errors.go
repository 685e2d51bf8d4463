package supervise

import (
	"errors"
	"fmt"
)

// Common errors returned by supervision operations
var (
	// ErrBackendUnavailable indicates no backend's native facility could
	// be installed or started; fatal for start.
	ErrBackendUnavailable = errors.New("supervise: no usable backend")

	// ErrStopVerification indicates a backend still shows live evidence
	// after its termination call returned. Non-fatal.
	ErrStopVerification = errors.New("supervise: backend still active after stop")

	// ErrServiceWrite indicates the service-definition artifact could not
	// be written, typically for lack of privilege.
	ErrServiceWrite = errors.New("supervise: writing service definition")
)

// OpError represents a failed backend operation
type OpError struct {
	// Backend is the backend the operation ran against
	Backend Backend
	// Op is the operation that failed
	Op string
	// Err is the underlying error
	Err error
}

// Error returns a formatted error message
func (e *OpError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *OpError) Unwrap() error {
	return e.Err
}
