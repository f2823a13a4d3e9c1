// Package common defines shared constants and sentinel errors used across
// GoalKeeper components. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnavailable  = errors.New("storage unavailable")
	ErrorUnauthorized = errors.New("invalid username or password")

	// Input validation errors. The wrapping error carries the field detail.
	ErrorValidation = errors.New("validation error")

	// Session errors (invalid, expired or revoked session cookie).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
)

// DetailError attaches a client-facing message to one of the sentinels above.
// errors.Is matches the sentinel; Error returns only the message.
type DetailError struct {
	Kind error
	Msg  string
}

func (e *DetailError) Error() string { return e.Msg }

func (e *DetailError) Unwrap() error { return e.Kind }

// Detail returns a DetailError of the given kind with a formatted message.
func Detail(kind error, format string, args ...any) error {
	return &DetailError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
