package posadmin

import (
	"log/slog"
	"net/http"

	"github.com/nlstn/go-posadmin/internal/observability"
)

// buildHTTPHandler wraps the mux in the middleware chain. Tracing runs
// outermost so the request log and Server-Timing see the span.
func (s *Service) buildHTTPHandler() {
	var h http.Handler = s.mux
	h = observability.ServerTimingMiddleware(s.observability)(h)
	h = observability.RequestLogMiddleware(func() *slog.Logger { return s.logger }, s.observability)(h)
	h = observability.HTTPMiddleware(s.observability)(h)
	s.httpHandler = h
}

// ServeHTTP implements http.Handler interface
func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpHandler.ServeHTTP(w, r)
}

// ListenAndServe starts the back-office API on the specified address.
func (s *Service) ListenAndServe(addr string) error {
	s.logger.Info("Starting posadmin service", "addr", addr)
	return http.ListenAndServe(addr, s)
}
