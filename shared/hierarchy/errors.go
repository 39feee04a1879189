package hierarchy

import (
	"errors"
	"fmt"
)

// ErrorKind tells callers how a failed hierarchy operation should be reported.
type ErrorKind string

const (
	KindValidation      ErrorKind = "validation"
	KindNotFound        ErrorKind = "not_found"
	KindPolicyViolation ErrorKind = "policy_violation"
	KindConflict        ErrorKind = "conflict"
	KindForbidden       ErrorKind = "forbidden"
	KindUnexpected      ErrorKind = "unexpected"
)

// Store-level sentinels. The service translates them into *Error values.
var (
	ErrOrganizationNotFound    = errors.New("organization not found")
	ErrSlugTaken               = errors.New("slug already taken")
	ErrDomainTaken             = errors.New("domain already taken")
	ErrOrganizationHasChildren = errors.New("organization has child organizations")
)

// Error is the only error type the hierarchy service returns to callers.
// Message is safe to show to end users; Cause is for logs.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(kind ErrorKind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func ValidationError(format string, args ...interface{}) error {
	return newError(KindValidation, nil, format, args...)
}

func NotFoundError(format string, args ...interface{}) error {
	return newError(KindNotFound, nil, format, args...)
}

func PolicyViolation(format string, args ...interface{}) error {
	return newError(KindPolicyViolation, nil, format, args...)
}

func ConflictError(cause error, format string, args ...interface{}) error {
	return newError(KindConflict, cause, format, args...)
}

func ForbiddenError(format string, args ...interface{}) error {
	return newError(KindForbidden, nil, format, args...)
}

// UnexpectedError hides cause behind a generic message.
func UnexpectedError(cause error) error {
	return newError(KindUnexpected, cause, "an unexpected error occurred")
}

// KindOf returns the kind of err, or KindUnexpected for foreign errors.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var herr *Error
	if errors.As(err, &herr) {
		return herr.Kind
	}
	return KindUnexpected
}

// MessageOf returns the user-facing message of err.
func MessageOf(err error) string {
	var herr *Error
	if errors.As(err, &herr) && herr.Kind != KindUnexpected {
		return herr.Message
	}
	return "an unexpected error occurred"
}
