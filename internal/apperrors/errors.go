// Package apperrors defines the error taxonomy shared by all services.
// Handlers map these to HTTP statuses; none of them is swallowed internally.
package apperrors

import "fmt"

// ValidationError flags malformed input. Never auto-retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// NotFoundError flags a missing entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// StateConflictError flags a wrong-status transition or a stale version. The
// caller must reload the entity and may retry.
type StateConflictError struct {
	Entity   string
	ID       string
	Expected string
	Actual   string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("%s %s: expected %s, got %s", e.Entity, e.ID, e.Expected, e.Actual)
}

// AuthorizationError flags an insufficient actor role.
type AuthorizationError struct {
	Action string
	Role   string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("role %q may not %s", e.Role, e.Action)
}

// RateLimitError flags an exhausted allowance, e.g. the postponement cap.
type RateLimitError struct {
	Entity string
	ID     string
	Reason string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit on %s %s: %s", e.Entity, e.ID, e.Reason)
}
