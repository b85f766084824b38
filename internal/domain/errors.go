package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindInvalidState ErrorKind = "invalid_state"
	KindPermission   ErrorKind = "permission"
	KindOverpayment  ErrorKind = "overpayment"
	KindPersistence  ErrorKind = "persistence"
)

// Error is the structured failure every core operation returns. Details
// carries the identifiers a caller needs to render a precise message
// (room number, stay id, computed excess, ...).
type Error struct {
	Kind    ErrorKind
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) With(key string, v any) *Error {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = v
	return e
}

// KindOf extracts the error kind; non-domain errors report persistence,
// the catch-all for unexpected store failures.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindPersistence
}

func IsKind(err error, k ErrorKind) bool { return KindOf(err) == k }

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func InvalidStatef(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

func Permissionf(format string, args ...any) *Error {
	return &Error{Kind: KindPermission, Message: fmt.Sprintf(format, args...)}
}

// Overpayment reports the exact excess over the total due. It is a
// specialization of a validation failure and keeps the computed numbers
// in Details.
func Overpayment(totalDue, excess float64) *Error {
	e := &Error{
		Kind:    KindOverpayment,
		Message: fmt.Sprintf("payment exceeds the total due of %.2f by %.2f", totalDue, excess),
	}
	return e.With("total_due", totalDue).With("excess", excess)
}

// Persistence wraps an unexpected store failure. The cause is retained
// for logging but never rendered to callers.
func Persistence(err error) *Error {
	return &Error{Kind: KindPersistence, Message: "storage failure", Err: err}
}
