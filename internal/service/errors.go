package service

import (
	"errors"
	"fmt"

	"github.com/storefront/backend/internal/model"
	"github.com/storefront/backend/internal/repository"
)

var (
	// ErrNotFound is returned when the target record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the actor may not perform the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidInput wraps request validation failures.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict is returned when the project changed since the caller read it.
	ErrConflict = errors.New("project was modified concurrently")
	// ErrNoPMAvailable is returned by project creation when the PM pool is empty.
	ErrNoPMAvailable = errors.New("no project manager available")
)

// RetryableError marks a failure of a backing store that the caller may
// retry unchanged.
type RetryableError struct {
	Op  string
	Err error
}

func (e *RetryableError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err (or anything it wraps) is retryable.
func IsRetryable(err error) bool {
	var r *RetryableError
	return errors.As(err, &r)
}

func retryable(op string, err error) error {
	return &RetryableError{Op: op, Err: err}
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...)
}

// storeErr maps repository sentinels onto service errors. Anything else is
// an infrastructure failure and is marked retryable.
func storeErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrConflict):
		return ErrConflict
	case errors.Is(err, repository.ErrDuplicate):
		return invalidf("%s: already exists", op)
	default:
		return retryable(op, err)
	}
}

func requireRole(actor model.Actor, roles ...model.Role) error {
	if actor.UserID == "" {
		return ErrForbidden
	}
	for _, r := range roles {
		if actor.Role == r {
			return nil
		}
	}
	return ErrForbidden
}
