package agent

import (
	"fmt"
)

// BackendError reports a failed call to the analytics backend. Status is the
// HTTP status code, or 0 for transport-level failures.
type BackendError struct {
	Op     string
	Status int
	Detail string
}

func (e *BackendError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("backend %s: status %d: %s", e.Op, e.Status, e.Detail)
	}
	return fmt.Sprintf("backend %s: %s", e.Op, e.Detail)
}

// SessionError reports that a backend session could not be obtained even
// after the single re-creation attempt.
type SessionError struct {
	Cause error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("could not obtain backend session: %v", e.Cause)
}

func (e *SessionError) Unwrap() error {
	return e.Cause
}
