// Package apperror holds the error taxonomy shared by handlers and services:
// validation failures, missing records, and transport failures.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is matched with errors.Is for any missing resource.
var ErrNotFound = errors.New("not found")

// ErrConflict signals an operation already in flight for the same resource.
var ErrConflict = errors.New("conflict")

// ConflictError carries a caller-facing message and matches ErrConflict.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

func Conflict(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// ValidationError is a user-correctable problem with one field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError names the missing resource and unwraps to ErrNotFound.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func NotFound(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// TransportError wraps a database or mail client failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func Transport(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Op: op, Err: err}
}

// Status maps an error to its HTTP status code.
func Status(err error) int {
	var ve *ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the text safe to show a caller. Transport failures
// collapse to a generic message; their cause is logged instead.
func PublicMessage(err error) string {
	var ve *ValidationError
	var nf *NotFoundError
	var ce *ConflictError
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.As(err, &nf):
		return nf.Error()
	case errors.As(err, &ce):
		return ce.Message
	default:
		return "Server error"
	}
}
