// Package observability provides OpenTelemetry-based instrumentation for the
// back-office service: request and database tracing, metrics, Server-Timing
// headers and trace-aware logging.
//
// All observability features are opt-in. When not configured, no-op implementations
// are used.
package observability

import "go.opentelemetry.io/otel/attribute"

// Instrumentation identity constants
const (
	// TracerName is the instrumentation name for tracing.
	TracerName = "github.com/nlstn/go-posadmin"
	// MeterName is the instrumentation name for metrics.
	MeterName = "github.com/nlstn/go-posadmin"
)

// Semantic attribute keys.
const (
	AttrEntity    = "posadmin.entity"
	AttrEntityID  = "posadmin.entity_id"
	AttrOperation = "posadmin.operation"

	AttrResultCount  = "posadmin.result.count"
	AttrHasNextLink  = "posadmin.has_next_link"
	AttrOrderVersion = "posadmin.order.version"
	AttrOrderStatus  = "posadmin.order.status"
	AttrBulkSize     = "posadmin.bulk.size"

	AttrErrorCode = "posadmin.error.code"
)

// Operation types for the posadmin.operation attribute.
const (
	OpList        = "list"
	OpRead        = "read"
	OpCreate      = "create"
	OpUpdate      = "update"
	OpPatch       = "patch"
	OpDelete      = "delete"
	OpRestore     = "restore"
	OpForceDelete = "force_delete"
	OpTransition  = "transition"
	OpRecompute   = "recompute"
	OpCapture     = "capture_price"
	OpExport      = "export"
	OpDashboard   = "dashboard"
)

// Log field keys for structured logging with trace context.
const (
	LogFieldEntity    = "entity"
	LogFieldEntityID  = "entity_id"
	LogFieldOperation = "operation"
	LogFieldTraceID   = "trace_id"
	LogFieldSpanID    = "span_id"
	LogFieldRequestID = "request_id"
	LogFieldDuration  = "duration_ms"
	LogFieldStatus    = "status"
	LogFieldError     = "error"
)

// EntityAttr creates an attribute for the entity name.
func EntityAttr(name string) attribute.KeyValue {
	return attribute.String(AttrEntity, name)
}

// EntityIDAttr creates an attribute for the entity id.
func EntityIDAttr(id uint) attribute.KeyValue {
	return attribute.Int64(AttrEntityID, int64(id))
}

// OperationAttr creates an attribute for the operation type.
func OperationAttr(op string) attribute.KeyValue {
	return attribute.String(AttrOperation, op)
}

// ResultCountAttr creates an attribute for the result count.
func ResultCountAttr(count int64) attribute.KeyValue {
	return attribute.Int64(AttrResultCount, count)
}

// OrderVersionAttr creates an attribute for an order's concurrency version.
func OrderVersionAttr(version int) attribute.KeyValue {
	return attribute.Int(AttrOrderVersion, version)
}

// BulkSizeAttr creates an attribute for the number of ids in a bulk action.
func BulkSizeAttr(size int) attribute.KeyValue {
	return attribute.Int(AttrBulkSize, size)
}

// ErrorCodeAttr creates an attribute for the error code.
func ErrorCodeAttr(code string) attribute.KeyValue {
	return attribute.String(AttrErrorCode, code)
}
