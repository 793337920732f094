package domain

import "errors"

// Error kinds shared across service and transport layers. Services wrap
// these with context via fmt.Errorf("...: %w", Err...); the HTTP layer maps
// them to status codes with errors.Is.
var (
	// ErrValidation: missing or malformed input, nothing mutated.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized: caller identity header missing.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden: caller identity present but not allowed.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound: unknown id, or id not owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrConflict: duplicate lead or requirement already closed.
	ErrConflict = errors.New("conflict")
	// ErrDependency: a remote collaborator call failed or timed out.
	ErrDependency = errors.New("dependency unavailable")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// NewError builds an error carrying a user-facing message that still matches
// the given kind under errors.Is.
func NewError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}
