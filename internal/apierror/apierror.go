// Package apierror provides standardized error kinds and response envelopes.
// Services return *Error values carrying a Kind; handlers translate the kind
// to an HTTP status so that no internal detail (SQL, stack traces) leaks.
package apierror

import (
	"errors"
	"net/http"
)

// Kind classifies an error independently of its message.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConstraint Kind = "constraint"
	KindConflict   Kind = "conflict"
	KindInternal   Kind = "internal"
	// KindUnauthorized covers bad credentials and invalid tokens.
	KindUnauthorized Kind = "unauthorized"
)

var statusByKind = map[Kind]int{
	KindValidation: http.StatusUnprocessableEntity,
	KindNotFound:   http.StatusNotFound,
	KindConstraint: http.StatusConflict,
	KindConflict:   http.StatusConflict,
	KindInternal:   http.StatusInternalServerError,

	KindUnauthorized: http.StatusUnauthorized,
}

// HTTPStatus maps a kind to its response status; unknown kinds are 500.
func (k Kind) HTTPStatus() int {
	if s, ok := statusByKind[k]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error is the typed error crossing the service boundary.
type Error struct {
	kind    Kind
	message string
	cause   error
}

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{kind: kind, message: msg, cause: cause}
}

func Validation(msg string) *Error { return newError(KindValidation, msg, nil) }
func NotFound(msg string) *Error   { return newError(KindNotFound, msg, nil) }
func Conflict(msg string) *Error   { return newError(KindConflict, msg, nil) }

// Constraint wraps a storage constraint violation (foreign key, unique).
func Constraint(msg string, cause error) *Error { return newError(KindConstraint, msg, cause) }

// Wrap attaches a kind and public message to an underlying error.
func Wrap(kind Kind, err error, msg string) *Error { return newError(kind, msg, err) }

func (e *Error) Kind() Kind {
	if e == nil {
		return KindInternal
	}
	return e.kind
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is matches on kind so callers can write errors.Is(err, apierror.NotFound("")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.kind == t.kind && (t.message == "" || t.message == e.message)
}

// As returns the first *Error in err's chain, or nil.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return nil
}

// KindOf reports the kind of err; untyped errors are internal.
func KindOf(err error) Kind {
	if e := As(err); e != nil {
		return e.kind
	}
	return KindInternal
}

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
	Kind   Kind   `json:"kind,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// FromError builds the envelope for err. Internal errors get a generic message.
func FromError(err error) *APIError {
	e := As(err)
	if e == nil || e.kind == KindInternal {
		return &APIError{Detail: "Error interno del servidor", Kind: KindInternal}
	}
	return &APIError{Detail: e.message, Kind: e.kind}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Kind   Kind              `json:"kind"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Kind: KindValidation, Fields: fields}
}
