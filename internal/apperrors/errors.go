// Package apperrors defines the error taxonomy shared by the store, the pricing
// core, and the HTTP handlers.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the back-office error taxonomy.
// These can be used with errors.Is() for error handling.
var (
	// ErrValidation indicates the request data failed validation.
	// Maps to HTTP 400 Bad Request.
	ErrValidation = errors.New("posadmin: validation error")

	// ErrNotFound indicates a referenced record does not resolve.
	// Maps to HTTP 404 Not Found.
	ErrNotFound = errors.New("posadmin: not found")

	// ErrPersistence indicates the data store failed to commit a transaction.
	// Maps to HTTP 500 Internal Server Error.
	ErrPersistence = errors.New("posadmin: persistence error")

	// ErrConflict indicates a conflict with the current state, such as a concurrent
	// modification or a delete blocked by dependent records.
	// Maps to HTTP 409 Conflict.
	ErrConflict = errors.New("posadmin: conflict")

	// ErrPreconditionFailed indicates an If-Match precondition did not hold.
	// Maps to HTTP 412 Precondition Failed.
	ErrPreconditionFailed = errors.New("posadmin: precondition failed")

	// ErrInvalidTransition indicates an order status change not allowed by the
	// transition table. It is a validation error.
	ErrInvalidTransition = fmt.Errorf("%w: invalid status transition", ErrValidation)
)

// ErrorCode is the machine readable code written into error responses.
type ErrorCode string

const (
	CodeValidation         ErrorCode = "ValidationError"
	CodeNotFound           ErrorCode = "NotFound"
	CodePersistence        ErrorCode = "PersistenceError"
	CodeConflict           ErrorCode = "Conflict"
	CodePreconditionFailed ErrorCode = "PreconditionFailed"
	CodeBadRequest         ErrorCode = "BadRequest"
	CodeInternal           ErrorCode = "InternalServerError"
)

// Error is a structured error carrying an HTTP status, a code, and an optional
// target naming the offending field (for example "items[2].quantity").
type Error struct {
	StatusCode int
	Code       ErrorCode
	Message    string
	Target     string
	Details    []ErrorDetail
	Err        error
}

// ErrorDetail describes one additional problem in a multi-field validation failure.
type ErrorDetail struct {
	Code    string `json:"code"`
	Target  string `json:"target,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Err)
		}
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "posadmin error"
}

// Unwrap returns the wrapped error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports invalid input for target.
func Validation(target, message string) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       CodeValidation,
		Message:    message,
		Target:     target,
		Err:        ErrValidation,
	}
}

// BadRequest reports a request that could not be decoded. It matches ErrValidation.
func BadRequest(message string) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       CodeBadRequest,
		Message:    message,
		Err:        ErrValidation,
	}
}

// InvalidTransition reports a rejected order status change.
func InvalidTransition(from, to string) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       CodeValidation,
		Message:    fmt.Sprintf("order status cannot change from %q to %q", from, to),
		Target:     "status",
		Err:        ErrInvalidTransition,
	}
}

// NotFound reports that entity with the given id does not resolve.
func NotFound(entity string, id any) *Error {
	return &Error{
		StatusCode: http.StatusNotFound,
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s %v not found", entity, id),
		Err:        ErrNotFound,
	}
}

// Conflict reports a state conflict.
func Conflict(message string) *Error {
	return &Error{
		StatusCode: http.StatusConflict,
		Code:       CodeConflict,
		Message:    message,
		Err:        ErrConflict,
	}
}

// PreconditionFailed reports a failed If-Match check.
func PreconditionFailed() *Error {
	return &Error{
		StatusCode: http.StatusPreconditionFailed,
		Code:       CodePreconditionFailed,
		Message:    "the record was modified since it was read",
		Err:        ErrPreconditionFailed,
	}
}

// Persistence wraps a data store failure for op.
func Persistence(op string, err error) *Error {
	return &Error{
		StatusCode: http.StatusInternalServerError,
		Code:       CodePersistence,
		Message:    op,
		Err:        &persistenceCause{err: err},
	}
}

// persistenceCause keeps both ErrPersistence and the driver error reachable via errors.Is.
type persistenceCause struct {
	err error
}

func (p *persistenceCause) Error() string {
	return p.err.Error()
}

func (p *persistenceCause) Unwrap() []error {
	return []error{ErrPersistence, p.err}
}

// StatusCode returns the HTTP status code for err.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var appErr *Error
	if errors.As(err, &appErr) && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrPreconditionFailed):
		return http.StatusPreconditionFailed
	}
	return http.StatusInternalServerError
}

// CodeOf returns the error code for err.
func CodeOf(err error) ErrorCode {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Code != "" {
		return appErr.Code
	}
	switch StatusCode(err) {
	case http.StatusBadRequest:
		return CodeValidation
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusPreconditionFailed:
		return CodePreconditionFailed
	}
	return CodeInternal
}
