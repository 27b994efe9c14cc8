package observability

import (
	"context"
	"log/slog"
)

type requestIDKey struct{}

// WithRequestID attaches a request id to ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id of ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string) //nolint:errcheck
	return id
}

// RequestLogger returns logger enriched with the trace context and request id of ctx.
func RequestLogger(ctx context.Context, logger *slog.Logger) *slog.Logger {
	logger = LoggerWithTrace(ctx, logger)
	if id := RequestIDFromContext(ctx); id != "" {
		logger = logger.With(slog.String(LogFieldRequestID, id))
	}
	return logger
}
