// Package outcome carries the result of a single external call so callers can
// record partial failures without aborting the surrounding invocation.
package outcome

import apperrors "github.com/sh3r4rd/upload_reports/internal/errors"

// Result is either Ok(value) or Failed(err).
type Result[T any] struct {
	value T
	err   error
}

func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Failed builds a failed result. A nil err is replaced by an internal error so
// that a Failed result never reads as Ok.
func Failed[T any](err error) Result[T] {
	if err == nil {
		err = apperrors.New(apperrors.CodeInternal, "failed without a reason")
	}
	return Result[T]{err: err}
}

func (r Result[T]) IsOk() bool { return r.err == nil }

func (r Result[T]) Err() error { return r.err }

// Value returns the value and whether the result is Ok.
func (r Result[T]) Value() (T, bool) {
	return r.value, r.err == nil
}

// ValueOr returns the value, or fallback when the result failed.
func (r Result[T]) ValueOr(fallback T) T {
	if r.err != nil {
		return fallback
	}
	return r.value
}

// Code is the error code of a failed result, or "" when Ok.
func (r Result[T]) Code() apperrors.Code {
	return apperrors.CodeOf(r.err)
}

// Label is "ok" or the error code. Used as a metric label value.
func (r Result[T]) Label() string {
	return Label(r.err)
}

// Label is "ok" for a nil err and the error code otherwise.
func Label(err error) string {
	if err == nil {
		return "ok"
	}
	return string(apperrors.CodeOf(err))
}
