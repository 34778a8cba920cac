// Package commonerrors defines the error taxonomy used across the module so that callers
// can reason about failures using errors.Is rather than string matching.
package commonerrors

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrUnknown        = errors.New("unknown")
	ErrNotImplemented = errors.New("not implemented")
	ErrUndefined      = errors.New("undefined")
	ErrInvalid        = errors.New("invalid")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrTimeout        = errors.New("timeout")
	ErrCancelled      = errors.New("cancelled")
	ErrExhausted      = errors.New("exhausted")
	ErrRollback       = errors.New("rollback failure")
	ErrMarshalling    = errors.New("unserialisable")
	ErrUnexpected     = errors.New("unexpected")
)

// New returns an error described by description which satisfies errors.Is(err, baseError).
func New(baseError error, description string) error {
	if description == "" {
		return baseError
	}
	return fmt.Errorf("%w: %v", baseError, description)
}

// Newf is similar to New but with formatting directives.
func Newf(baseError error, format string, args ...any) error {
	return New(baseError, fmt.Sprintf(format, args...))
}

// WrapError wraps wrappedError so that the result matches both baseError and wrappedError.
func WrapError(baseError, wrappedError error, description string) error {
	if wrappedError == nil {
		return New(baseError, description)
	}
	if description == "" {
		return fmt.Errorf("%w: %w", baseError, wrappedError)
	}
	return fmt.Errorf("%w: %v: %w", baseError, description, wrappedError)
}

// UndefinedVariable returns an ErrUndefined about the named variable.
func UndefinedVariable(name string) error {
	return Newf(ErrUndefined, "missing %v", name)
}

// Any returns whether target corresponds to any of the errors provided.
func Any(target error, err ...error) bool {
	for _, e := range err {
		if errors.Is(e, target) || errors.Is(target, e) {
			return true
		}
	}
	return false
}

// None returns whether target corresponds to none of the errors provided.
func None(target error, err ...error) bool {
	return !Any(target, err...)
}

// Ignore returns nil if err corresponds to any of the errors to ignore.
func Ignore(err error, ignore ...error) error {
	if Any(err, ignore...) {
		return nil
	}
	return err
}

// ConvertContextError converts errors reported by contexts into the module taxonomy:
// deadline expiry becomes ErrTimeout and cancellation becomes ErrCancelled.
func ConvertContextError(err error) error {
	switch {
	case err == nil:
		return nil
	case Any(err, ErrTimeout, ErrCancelled):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return WrapError(ErrTimeout, err, "")
	case errors.Is(err, context.Canceled):
		return WrapError(ErrCancelled, err, "")
	default:
		return err
	}
}
