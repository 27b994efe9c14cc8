package observability

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the service metric instruments.
type Metrics struct {
	requestDuration metric.Float64Histogram
	requestCount    metric.Int64Counter
	resultCount     metric.Int64Histogram
	dbQueryDuration metric.Float64Histogram
	errorCount      metric.Int64Counter
	orderTotal      metric.Float64Histogram
}

// NewMetrics creates the instruments on mp.
func NewMetrics(mp metric.MeterProvider, opts ...metric.MeterOption) (*Metrics, error) {
	meter := mp.Meter(MeterName, opts...)
	m := &Metrics{}

	var err, errs error
	m.requestDuration, err = meter.Float64Histogram(
		"posadmin.request.duration",
		metric.WithDescription("Duration of requests in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs = errors.Join(errs, err)

	m.requestCount, err = meter.Int64Counter(
		"posadmin.request.count",
		metric.WithDescription("Total number of requests"),
		metric.WithUnit("{request}"),
	)
	errs = errors.Join(errs, err)

	m.resultCount, err = meter.Int64Histogram(
		"posadmin.result.count",
		metric.WithDescription("Number of entities returned by list requests"),
		metric.WithUnit("{entity}"),
	)
	errs = errors.Join(errs, err)

	m.dbQueryDuration, err = meter.Float64Histogram(
		"posadmin.db.query.duration",
		metric.WithDescription("Duration of database statements in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs = errors.Join(errs, err)

	m.errorCount, err = meter.Int64Counter(
		"posadmin.error.count",
		metric.WithDescription("Total number of error responses"),
		metric.WithUnit("{error}"),
	)
	errs = errors.Join(errs, err)

	m.orderTotal, err = meter.Float64Histogram(
		"posadmin.order.total",
		metric.WithDescription("Totals of saved orders"),
		metric.WithUnit("{currency}"),
	)
	errs = errors.Join(errs, err)

	if errs != nil {
		return nil, errs
	}
	return m, nil
}

// RecordRequest records metrics for a completed request.
func (m *Metrics) RecordRequest(ctx context.Context, entity, operation string, statusCode int, duration time.Duration) {
	attrs := metric.WithAttributes(
		EntityAttr(entity),
		OperationAttr(operation),
		attribute.Int("http.status_code", statusCode),
	)
	m.requestDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	m.requestCount.Add(ctx, 1, attrs)
}

// RecordResultCount records the number of entities returned by a list.
func (m *Metrics) RecordResultCount(ctx context.Context, entity string, count int64) {
	m.resultCount.Record(ctx, count, metric.WithAttributes(EntityAttr(entity)))
}

// RecordDBQuery records metrics for a database statement.
func (m *Metrics) RecordDBQuery(ctx context.Context, operation string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("db.operation", operation))
	m.dbQueryDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

// RecordError records an error response.
func (m *Metrics) RecordError(ctx context.Context, entity, operation, code string) {
	attrs := metric.WithAttributes(
		EntityAttr(entity),
		OperationAttr(operation),
		ErrorCodeAttr(code),
	)
	m.errorCount.Add(ctx, 1, attrs)
}

// RecordOrderTotal records the total of a saved order.
func (m *Metrics) RecordOrderTotal(ctx context.Context, total float64, paymentMethod string) {
	m.orderTotal.Record(ctx, total, metric.WithAttributes(attribute.String("payment_method", paymentMethod)))
}
