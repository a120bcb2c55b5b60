// Package apperr defines the typed error taxonomy shared by the sale
// engine, the token service and the HTTP layer. Business-rule outcomes
// are returned as *Error values with a Kind and human-readable messages;
// only genuinely unexpected faults carry KindInternal, and their cause is
// logged upstream but never echoed to the caller.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an expected failure.
type Kind int

const (
	// KindInternal is the zero value so that unclassified errors are
	// treated as infrastructure faults, not business outcomes.
	KindInternal Kind = iota
	// KindValidation marks malformed or out-of-range input.
	KindValidation
	// KindNotFound marks an absent entity, or one the caller may not
	// see. It is deliberately indistinguishable from "forbidden" where
	// revealing existence would leak data.
	KindNotFound
	// KindForbidden marks an operation the caller's role does not allow.
	KindForbidden
	// KindConflict marks a business-rule violation such as out-of-stock.
	KindConflict
	// KindAuth marks failed authentication (bad credentials, expired or
	// invalid refresh token).
	KindAuth
)

// Error carries a Kind plus one or more messages safe to show callers.
type Error struct {
	Kind     Kind
	Messages []string
	cause    error
}

func (e *Error) Error() string {
	if len(e.Messages) > 0 {
		return e.Messages[0]
	}
	if e.cause != nil {
		return e.cause.Error()
	}
	return "unexpected error"
}

func (e *Error) Unwrap() error { return e.cause }

// New builds an expected-outcome error of the given kind.
func New(kind Kind, messages ...string) *Error {
	return &Error{Kind: kind, Messages: messages}
}

// Newf builds a single-message error with fmt-style formatting.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Messages: []string{fmt.Sprintf(format, args...)}}
}

// Internal wraps an infrastructure fault. The cause is preserved for
// logging; callers only ever see the opaque message.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Messages: []string{"an unexpected error occurred, try again later"}, cause: cause}
}

// KindOf extracts the Kind from err, defaulting to KindInternal for
// anything that is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessagesOf returns the caller-safe messages for err.
func MessagesOf(err error) []string {
	var e *Error
	if errors.As(err, &e) && len(e.Messages) > 0 {
		return e.Messages
	}
	return []string{"an unexpected error occurred, try again later"}
}

// HTTPStatus maps a Kind to its HTTP status code. The mapping lives here
// so every handler reports failures the same way.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindAuth:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
