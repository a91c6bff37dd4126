package service

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map each kind to one status code.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrMissingFields       = errors.New("missing fields")
	ErrInvalidAddress      = errors.New("invalid address")
	ErrNotConfigured       = errors.New("not configured")
	ErrTransactionMismatch = errors.New("transaction mismatch")
	ErrSigningFailure      = errors.New("signing failure")
	ErrPersistenceFailure  = errors.New("persistence failure")
	ErrDuplicateGame       = errors.New("duplicate game")
	ErrReceiptUnavailable  = errors.New("receipt unavailable")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrCanceled            = errors.New("request canceled")
)

// Error carries a kind, a caller-safe message and the underlying cause.
// Message is what the API returns; Err is only logged.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newError(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Kind returns the kind of err, or nil if err was not produced by this package.
func Kind(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return nil
}

// PublicMessage returns the text that may be shown to a caller.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}
