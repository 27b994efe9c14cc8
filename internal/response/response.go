// Package response writes the JSON bodies of the HTTP API: entities,
// collections with paging links, and structured errors.
package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/nlstn/go-posadmin/internal/apperrors"
)

// ContentTypeJSON is the content type of every JSON body.
const ContentTypeJSON = "application/json; charset=utf-8"

// Collection is the envelope of list responses.
type Collection struct {
	Value    interface{} `json:"value"`
	Count    *int64      `json:"count,omitempty"`
	NextLink string      `json:"nextLink,omitempty"`
}

// ErrorBody is the structure written under the "error" key of error responses.
type ErrorBody struct {
	Code    apperrors.ErrorCode     `json:"code"`
	Message string                  `json:"message"`
	Target  string                  `json:"target,omitempty"`
	Details []apperrors.ErrorDetail `json:"details,omitempty"`
}

type errorResponse struct {
	Error ErrorBody `json:"error"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}

// WriteCollection writes a list envelope. A nil value is written as [].
func WriteCollection(w http.ResponseWriter, value interface{}, count *int64, nextLink string) error {
	if value == nil {
		value = []interface{}{}
	}
	return WriteJSON(w, http.StatusOK, Collection{Value: value, Count: count, NextLink: nextLink})
}

// NextLink returns the request URL with param set to token, or "" when token
// is empty.
func NextLink(r *http.Request, param, token string) string {
	if token == "" {
		return ""
	}
	u := url.URL{Path: r.URL.Path}
	q := r.URL.Query()
	q.Set(param, token)
	u.RawQuery = q.Encode()
	return u.String()
}

// WriteNoContent writes 204 No Content.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// ErrorBodyFor converts err to the body written for it. Messages of errors
// outside the taxonomy are not exposed.
func ErrorBodyFor(err error) ErrorBody {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return ErrorBody{
			Code:    apperrors.CodeOf(err),
			Message: appErr.Message,
			Target:  appErr.Target,
			Details: appErr.Details,
		}
	}

	status := apperrors.StatusCode(err)
	if status >= http.StatusInternalServerError {
		return ErrorBody{Code: apperrors.CodeInternal, Message: http.StatusText(status)}
	}
	return ErrorBody{Code: apperrors.CodeOf(err), Message: err.Error()}
}

// WriteError writes err with the status code of its taxonomy kind.
func WriteError(w http.ResponseWriter, err error) error {
	return WriteJSON(w, apperrors.StatusCode(err), errorResponse{Error: ErrorBodyFor(err)})
}
