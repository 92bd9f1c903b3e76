package models

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation error")
	ErrAuth       = errors.New("not authorized")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
)

// Error is a domain error whose message is safe to show to the user.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func Validationf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func Authf(format string, args ...any) error {
	return &Error{Kind: ErrAuth, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// Message returns the user-facing message of a domain error, or fallback for
// anything else.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return fallback
}

// IsExpected reports whether err is one of the domain error kinds.
func IsExpected(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrAuth) ||
		errors.Is(err, ErrConflict) || errors.Is(err, ErrNotFound)
}
