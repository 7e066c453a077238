package domain

import "errors"

var (
	// ErrNotFound is returned when a member, song or rehearsal date does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalid is matched by every *ValidationError.
	ErrInvalid = errors.New("invalid input")
	// ErrForbidden is returned for leader-only operations requested by a regular member.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError is a user-correctable input problem detected before any write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// Invalid builds a *ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
