// Package pipelineerr defines the pipeline's error taxonomy as typed Go
// errors, so callers branch with errors.As/errors.Is instead of matching
// on message strings.
package pipelineerr

import "fmt"

// Kind is the closed set of error categories the pipeline distinguishes.
type Kind string

const (
	KindTransientNetwork    Kind = "transient_network"
	KindRateLimited         Kind = "rate_limited"
	KindParseError          Kind = "parse_error"
	KindValidationReject    Kind = "validation_reject"
	KindWriteProtectionDeny Kind = "write_protection_denied"
	KindConstraintViolation Kind = "constraint_violation"
	KindFatal               Kind = "fatal"
)

// Error wraps an underlying cause with a taxonomy Kind and the component
// that raised it.
type Error struct {
	Kind      Kind
	Component string
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Component, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Component, e.Kind, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New constructs a typed pipeline error.
func New(kind Kind, component string, cause error) *Error {
	return &Error{Kind: kind, Component: component, Cause: cause}
}

// IsRetryable reports whether the engine should retry per the error
// taxonomy's propagation policy.
func IsRetryable(err error) bool {
	var pe *Error
	if !As(err, &pe) {
		return false
	}
	return pe.Kind == KindTransientNetwork || pe.Kind == KindRateLimited
}

// As is a small local alias so this package doesn't need to import errors
// twice in call sites; behaves like errors.As.
func As(err error, target **Error) bool {
	for err != nil {
		if pe, ok := err.(*Error); ok {
			*target = pe
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
