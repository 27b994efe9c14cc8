package posadmin

import (
	"errors"

	"github.com/nlstn/go-posadmin/internal/apperrors"
)

// Sentinel errors of the back office.
// These can be used with errors.Is() for error handling.
var (
	// ErrValidation indicates the request data failed validation.
	// Maps to HTTP 400 Bad Request.
	ErrValidation = apperrors.ErrValidation

	// ErrNotFound indicates a referenced record does not resolve.
	// Maps to HTTP 404 Not Found.
	ErrNotFound = apperrors.ErrNotFound

	// ErrPersistence indicates the data store failed to commit a transaction.
	// Maps to HTTP 500 Internal Server Error.
	ErrPersistence = apperrors.ErrPersistence

	// ErrConflict indicates a concurrent modification or a delete blocked by
	// dependent records.
	// Maps to HTTP 409 Conflict.
	ErrConflict = apperrors.ErrConflict

	// ErrPreconditionFailed indicates an If-Match precondition did not hold.
	// Maps to HTTP 412 Precondition Failed.
	ErrPreconditionFailed = apperrors.ErrPreconditionFailed

	// ErrInvalidTransition indicates a rejected order status change. It also
	// matches ErrValidation.
	ErrInvalidTransition = apperrors.ErrInvalidTransition
)

// ErrorCode is the machine readable code of an error response.
type ErrorCode = apperrors.ErrorCode

// Error codes written into error responses.
const (
	ErrorCodeValidation          = apperrors.CodeValidation
	ErrorCodeNotFound            = apperrors.CodeNotFound
	ErrorCodePersistence         = apperrors.CodePersistence
	ErrorCodeConflict            = apperrors.CodeConflict
	ErrorCodePreconditionFailed  = apperrors.CodePreconditionFailed
	ErrorCodeBadRequest          = apperrors.CodeBadRequest
	ErrorCodeInternalServerError = apperrors.CodeInternal
)

// Error provides a structured error that includes an HTTP status code, an
// error code, and a message. Target names the offending field, for example
// "items[2].quantity".
//
// Example usage:
//
//	var posErr *posadmin.Error
//	if errors.As(err, &posErr) && posErr.Target != "" {
//	    form.MarkInvalid(posErr.Target, posErr.Message)
//	}
type Error = apperrors.Error

// ErrorDetail describes one additional problem of a multi-field validation failure.
type ErrorDetail = apperrors.ErrorDetail

// MapErrorToHTTPStatus returns the appropriate HTTP status code for err.
//
// Example usage:
//
//	status := posadmin.MapErrorToHTTPStatus(err)
//	w.WriteHeader(status)
func MapErrorToHTTPStatus(err error) int {
	return apperrors.StatusCode(err)
}

// IsValidationError returns true if the error is a validation error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFoundError returns true if the error indicates a record was not found.
//
// Example usage:
//
//	order, err := svc.Store().GetOrder(ctx, id)
//	if posadmin.IsNotFoundError(err) {
//	    return nil, nil
//	}
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflictError returns true if the error indicates a concurrent
// modification or a blocked delete.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsPersistenceError returns true if the data store failed.
func IsPersistenceError(err error) bool {
	return errors.Is(err, ErrPersistence)
}
