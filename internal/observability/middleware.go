package observability

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// HTTPMiddleware returns an HTTP middleware that instruments requests with tracing.
// It uses otelhttp for automatic span propagation and HTTP semantic attributes.
func HTTPMiddleware(cfg *Config) func(http.Handler) http.Handler {
	if cfg == nil || cfg.TracerProvider == nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	opts := []otelhttp.Option{otelhttp.WithTracerProvider(cfg.TracerProvider)}
	if cfg.MeterProvider != nil {
		opts = append(opts, otelhttp.WithMeterProvider(cfg.MeterProvider))
	}
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "posadmin.http", opts...)
	}
}

// RequestLogMiddleware stamps every request with an id, echoes it in the
// X-Request-ID response header and logs the completed request. A well-formed
// incoming X-Request-ID is reused.
func RequestLogMiddleware(logger func() *slog.Logger, cfg *Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := strings.TrimSpace(r.Header.Get(RequestIDHeader))
			if _, err := uuid.Parse(requestID); err != nil {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			ctx := WithRequestID(r.Context(), requestID)
			m := httpsnoop.CaptureMetrics(next, w, r.WithContext(ctx))

			log := LoggerWithTrace(ctx, logger()).With(slog.String(LogFieldRequestID, requestID))
			level := slog.LevelDebug
			if m.Code >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			log.Log(ctx, level, "request completed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int(LogFieldStatus, m.Code),
				slog.Float64(LogFieldDuration, float64(m.Duration.Microseconds())/1000),
				slog.Int64("bytes", m.Written),
			)
			cfg.Metrics().RecordRequest(ctx, entityFromPath(r.URL.Path), r.Method, m.Code, m.Duration)
		})
	}
}

// entityFromPath returns the first path segment, e.g. "orders" for /orders/7.
func entityFromPath(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	return path
}
