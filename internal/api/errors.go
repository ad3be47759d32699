package api

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that a referenced user or expense does not exist at
// the external store.
var ErrNotFound = errors.New("not found")

// ValidationError reports malformed input caught at the boundary, before
// any call to the external store is made.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// TransportError reports that the external store was unreachable or returned
// an error status. Message carries the store's human-readable explanation
// when one was available.
type TransportError struct {
	Status  int // HTTP status, 0 when the store was unreachable
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("store request failed: %s", e.Message)
	case e.Err != nil:
		return fmt.Sprintf("store unreachable: %v", e.Err)
	default:
		return fmt.Sprintf("store request failed: status %d", e.Status)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }
