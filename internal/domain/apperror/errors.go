// Package apperror holds the structured error kinds shared by every
// service. Errors are raised at the point of violation, before any
// mutation; the enclosing transaction rolls back in full. Translation to
// transport status codes happens only at the API layer.
package apperror

import "fmt"

// ValidationError reports a malformed or incomplete payload. The caller
// can recover by fixing its input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AuthorizationError reports that the actor does not hold the role the
// operation requires.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

// NotFoundError reports an unknown entity id.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// InvariantViolationError signals corrupted state that validation should
// have made unreachable. Treated as a bug, logged, never swallowed.
type InvariantViolationError struct {
	Message string
}

func (e *InvariantViolationError) Error() string { return e.Message }
