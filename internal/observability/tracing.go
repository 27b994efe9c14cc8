package observability

import (
	"context"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer wraps an OpenTelemetry tracer with span helpers for service operations.
type Tracer struct {
	tracer      trace.Tracer
	serviceName string
}

// NewTracer creates a new Tracer using the given TracerProvider.
func NewTracer(tp trace.TracerProvider, serviceName string, opts ...trace.TracerOption) *Tracer {
	return &Tracer{
		tracer:      tp.Tracer(TracerName, opts...),
		serviceName: serviceName,
	}
}

// StartSpan starts a new span with the given name and attributes.
func (t *Tracer) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if t.serviceName != "" {
		attrs = append(attrs, attribute.String("service.name", t.serviceName))
	}
	return t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartOperation starts a span for an operation on entity. A zero id marks a
// collection-level operation.
func (t *Tracer) StartOperation(ctx context.Context, entity, operation string, id uint) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		EntityAttr(entity),
		OperationAttr(operation),
	}
	if id != 0 {
		attrs = append(attrs, EntityIDAttr(id))
	}
	return t.StartSpan(ctx, "posadmin."+operation, attrs...)
}

// StartBulk starts a span for a bulk action over size orders.
func (t *Tracer) StartBulk(ctx context.Context, operation string, size int) (context.Context, trace.Span) {
	return t.StartSpan(ctx, "posadmin.bulk."+operation,
		EntityAttr("order"),
		OperationAttr(operation),
		BulkSizeAttr(size),
	)
}

// StartDBQuery starts a span for a database statement.
func (t *Tracer) StartDBQuery(ctx context.Context, operation string) (context.Context, trace.Span) {
	return t.StartSpan(ctx, "db.query", attribute.String("db.operation", operation))
}

// SetHTTPStatus sets the HTTP status code on the current span.
func (t *Tracer) SetHTTPStatus(ctx context.Context, statusCode int) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.Int("http.status_code", statusCode))
	if statusCode >= 500 {
		span.SetStatus(codes.Error, http.StatusText(statusCode))
	}
}

// RecordError records an error on the span.
func (t *Tracer) RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// LoggerWithTrace returns a logger enriched with trace context.
func LoggerWithTrace(ctx context.Context, logger *slog.Logger) *slog.Logger {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return logger
	}
	return logger.With(
		slog.String(LogFieldTraceID, span.SpanContext().TraceID().String()),
		slog.String(LogFieldSpanID, span.SpanContext().SpanID().String()),
	)
}
