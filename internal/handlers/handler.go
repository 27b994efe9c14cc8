// Package handlers implements the JSON HTTP API of the back office on top of
// the store.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/nlstn/go-posadmin/internal/apperrors"
	"github.com/nlstn/go-posadmin/internal/observability"
	"github.com/nlstn/go-posadmin/internal/preference"
	"github.com/nlstn/go-posadmin/internal/response"
	"github.com/nlstn/go-posadmin/internal/store"
)

// HTTP header constants
const (
	HeaderIfMatch           = "If-Match"
	HeaderIfNoneMatch       = "If-None-Match"
	HeaderETag              = "ETag"
	HeaderLocation          = "Location"
	HeaderPreferenceApplied = "Preference-Applied"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Handler serves the HTTP API.
type Handler struct {
	store  *store.Store
	logger *slog.Logger
	obs    *observability.Config
}

// New creates a Handler serving s.
func New(s *store.Store) *Handler {
	return &Handler{store: s, logger: slog.Default()}
}

// SetLogger replaces the logger. A nil logger selects slog.Default().
func (h *Handler) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	h.logger = logger
}

// SetObservability sets the tracing and metrics configuration. Nil disables both.
func (h *Handler) SetObservability(cfg *observability.Config) {
	h.obs = cfg
}

// Register adds every route of the API to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	h.registerCategories(mux)
	h.registerProducts(mux)
	h.registerCustomers(mux)
	h.registerOrders(mux)
	h.registerDashboard(mux)
}

// handlerFunc is a handler that reports failures instead of writing them.
// It must not have written a response when it returns an error.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle wraps fn in a span and writes its error, if any.
func (h *Handler) handle(entity, op string, fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracer := h.obs.Tracer()
		ctx, span := tracer.StartOperation(r.Context(), entity, op, 0)
		defer span.End()

		r = r.WithContext(ctx)
		if err := fn(w, r); err != nil {
			tracer.RecordError(span, err)
			h.writeError(w, r, entity, op, err)
		}
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, entity, op string, err error) {
	ctx := r.Context()
	log := observability.RequestLogger(ctx, h.logger).With(
		slog.String(observability.LogFieldEntity, entity),
		slog.String(observability.LogFieldOperation, op),
	)

	status := apperrors.StatusCode(err)
	if status >= http.StatusInternalServerError {
		log.ErrorContext(ctx, "request failed", slog.String(observability.LogFieldError, err.Error()))
	} else {
		log.DebugContext(ctx, "request rejected", slog.Int(observability.LogFieldStatus, status), slog.String(observability.LogFieldError, err.Error()))
	}
	h.obs.Metrics().RecordError(ctx, entity, op, string(apperrors.CodeOf(err)))

	if writeErr := response.WriteError(w, err); writeErr != nil {
		log.ErrorContext(ctx, "Error writing error response", slog.String(observability.LogFieldError, writeErr.Error()))
	}
}

// writeJSON writes v and logs a failed write.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	if err := response.WriteJSON(w, status, v); err != nil {
		observability.RequestLogger(r.Context(), h.logger).ErrorContext(r.Context(), "Error writing response", slog.String(observability.LogFieldError, err.Error()))
	}
}

// writeEntity writes the result of a write, honouring Prefer: return=minimal.
func (h *Handler) writeEntity(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	pref := preference.ParsePrefer(r)
	if applied := pref.Applied(); applied != "" {
		w.Header().Set(HeaderPreferenceApplied, applied)
	}
	if !pref.ShouldReturnContent() {
		response.WriteNoContent(w)
		return
	}
	h.writeJSON(w, r, status, v)
}

func (h *Handler) writeCollection(w http.ResponseWriter, r *http.Request, entity string, value interface{}, size int, count *int64, nextLink string) {
	h.obs.Metrics().RecordResultCount(r.Context(), entity, int64(size))
	if err := response.WriteCollection(w, value, count, nextLink); err != nil {
		observability.RequestLogger(r.Context(), h.logger).ErrorContext(r.Context(), "Error writing collection", slog.String(observability.LogFieldError, err.Error()))
	}
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (uint, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.BadRequest(fmt.Sprintf("invalid id %q", raw))
	}
	return uint(id), nil
}

// decodeJSON decodes the request body into v. Unknown fields are rejected so
// that derived values such as an order total cannot be sent.
func decodeJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.BadRequest("request body is empty")
		}
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			return err
		}
		return apperrors.BadRequest(fmt.Sprintf("Failed to parse JSON: %v", err))
	}
	return nil
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperrors.Validation(name, fmt.Sprintf("%s must be a non-negative integer", name))
	}
	return n, nil
}

// listOptions reads search, limit and offset.
func listOptions(r *http.Request) (store.ListOptions, error) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		return store.ListOptions{}, err
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		return store.ListOptions{}, err
	}
	return store.ListOptions{
		Search: r.URL.Query().Get("search"),
		Limit:  limit,
		Offset: offset,
	}, nil
}
