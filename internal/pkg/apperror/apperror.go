// Package apperror defines the failure kinds shared by every domain.
package apperror

import "errors"

// Kinds. Domain errors wrap exactly one of these.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConcurrency marks lock or commit failures caused by contention. Safe to retry.
	ErrConcurrency = errors.New("concurrent modification")
	ErrConflict    = errors.New("unique constraint violation")
	// ErrForbidden marks a caller acting on a record that is not theirs.
	ErrForbidden = errors.New("forbidden")
)

// Error is a domain error tagged with a kind.
type Error struct {
	Kind    error
	Message string
}

// New returns a domain error of the given kind.
func New(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// KindOf reports which kind err belongs to, or nil when it carries none.
func KindOf(err error) error {
	for _, kind := range []error{ErrNotFound, ErrInvalidArgument, ErrConcurrency, ErrConflict, ErrForbidden} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// IsRetryable reports whether err is a contention failure.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrency)
}
