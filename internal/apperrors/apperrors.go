// Package apperrors provides the error taxonomy used across the order
// engine. Every business failure carries a machine-readable Kind and a
// human-readable message; handlers map kinds to HTTP status codes.
package apperrors

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies an error for programmatic handling.
type Kind string

const (
	KindValidation        Kind = "VALIDATION"
	KindNotFound          Kind = "NOT_FOUND"
	KindInactive          Kind = "INACTIVE"
	KindInsufficientStock Kind = "INSUFFICIENT_STOCK"
	KindConflict          Kind = "CONFLICT"
	KindUnauthorized      Kind = "UNAUTHORIZED"
	KindForbidden         Kind = "FORBIDDEN"
	KindInternal          Kind = "INTERNAL"
)

// Sentinel errors, one per kind, so callers can use errors.Is without
// caring about the concrete message.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInactive          = errors.New("inactive")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrConflict          = errors.New("conflict")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInternal          = errors.New("internal error")
)

var sentinels = map[Kind]error{
	KindValidation:        ErrValidation,
	KindNotFound:          ErrNotFound,
	KindInactive:          ErrInactive,
	KindInsufficientStock: ErrInsufficientStock,
	KindConflict:          ErrConflict,
	KindUnauthorized:      ErrUnauthorized,
	KindForbidden:         ErrForbidden,
	KindInternal:          ErrInternal,
}

// Error is the concrete error type carried through the service layer.
type Error struct {
	Kind    Kind
	Message string
	// Fields enumerates per-field validation problems when applicable.
	Fields map[string]string
	// Cause is the underlying infrastructure error, if any.
	Cause error
}

// New creates an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind around an underlying cause.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// WithFields attaches per-field detail to a validation error.
func (e *Error) WithFields(fields map[string]string) *Error {
	e.Fields = fields
	return e
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap resolves to the sentinel for the error's kind, so
// errors.Is(err, apperrors.ErrNotFound) works regardless of message.
func (e *Error) Unwrap() error {
	if s, ok := sentinels[e.Kind]; ok {
		return s
	}
	return ErrInternal
}

// KindOf returns the Kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error to the HTTP status code handlers should return.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindUnauthorized:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	case KindConflict:
		return fiber.StatusConflict
	case KindInactive, KindInsufficientStock:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}
