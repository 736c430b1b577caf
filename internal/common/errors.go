// Package common holds the errors, logging setup and retry policy shared by
// the reduzer packages.
package common

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is wrapped by storage lookups for a missing project or row.
	ErrNotFound = errors.New("not found")
	// ErrInvalidConfig is wrapped by every configuration validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError is a failure caused by the invocation rather than the program:
// a bad flag, an unknown project, a file that is not a Reduzer export.
// Message says what to fix; Err keeps the underlying cause for errors.Is.
type UserError struct {
	Err     error
	Message string
}

func (e *UserError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError wraps cause (which may be nil) with a message for the user.
func NewUserError(message string, cause error) error {
	return &UserError{Message: message, Err: cause}
}

// IsUserError reports whether err was caused by the invocation.
func IsUserError(err error) bool {
	var ue *UserError
	return errors.As(err, &ue)
}
