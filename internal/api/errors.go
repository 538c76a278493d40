package api

import (
	"errors"
	"fmt"
)

// MalformedRequestError reports a sync request that lacks data the hook
// needs, such as the parent, the children map or a tracked child kind.
type MalformedRequestError struct {
	Reason string
}

// Error implements the error interface for MalformedRequestError.
func (e *MalformedRequestError) Error() string {
	return fmt.Sprintf("malformed sync request: %s", e.Reason)
}

// IsMalformedRequest checks if an error is or wraps a MalformedRequestError.
func IsMalformedRequest(err error) bool {
	var malformed *MalformedRequestError
	return errors.As(err, &malformed)
}
