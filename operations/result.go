package operations

import (
	"github.com/tkuchel/codex-operations-go/commonerrors"
)

// Result is the default IResult implementation.
type Result struct {
	err error
}

// Success returns a successful result.
func Success() IResult {
	return &Result{}
}

// Failure returns a failed result caused by err.
func Failure(err error) IResult {
	if err == nil {
		err = commonerrors.New(commonerrors.ErrUnexpected, "failure reported without a cause")
	}
	return &Result{err: err}
}

// Failuref returns a failed result described by a formatted message and matching baseError.
func Failuref(baseError error, format string, args ...any) IResult {
	return &Result{err: commonerrors.Newf(baseError, format, args...)}
}

// FromError converts an error into a result: nil means success.
func FromError(err error) IResult {
	return &Result{err: err}
}

func (r *Result) IsSuccess() bool {
	return r.err == nil
}

func (r *Result) ErrorMessage() string {
	if r.err == nil {
		return ""
	}
	return r.err.Error()
}

func (r *Result) Fault() error {
	return r.err
}

// TypedResult is a result carrying a typed success value.
type TypedResult[T any] struct {
	Result
	value T
}

// SuccessWithValue returns a successful result carrying value.
func SuccessWithValue[T any](value T) ITypedResult[T] {
	return &TypedResult[T]{value: value}
}

func (r *TypedResult[T]) Value() T {
	return r.value
}

// resultError converts an action outcome into an error. A nil result counts as success.
func resultError(result IResult) error {
	if result == nil || result.IsSuccess() {
		return nil
	}
	if fault := result.Fault(); fault != nil {
		return fault
	}
	if message := result.ErrorMessage(); message != "" {
		return commonerrors.New(commonerrors.ErrUnexpected, message)
	}
	return commonerrors.New(commonerrors.ErrUnexpected, "action reported failure without detail")
}
