package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	gormSpanKey        = "posadmin:gorm:span"
	gormStartTimeKey   = "posadmin:gorm:start"
	gormTimingStartKey = "posadmin:gorm:timing_start"

	gormTracingPrefix = "posadmin_tracing"
	gormTimingPrefix  = "posadmin_server_timing"
)

// gormOperations maps GORM processors to the db.operation reported for them.
var gormOperations = []struct {
	processor string
	operation string
}{
	{"query", "SELECT"},
	{"create", "INSERT"},
	{"update", "UPDATE"},
	{"delete", "DELETE"},
	{"row", "ROW"},
	{"raw", "RAW"},
}

// RegisterGORMCallbacks registers callbacks that trace every database statement.
// It is a no-op unless tracing and detailed DB tracing are configured.
func RegisterGORMCallbacks(db *gorm.DB, cfg *Config) error {
	if cfg == nil || cfg.TracerProvider == nil || !cfg.EnableDetailedDBTracing {
		return nil
	}

	tracer := cfg.Tracer()
	for _, op := range gormOperations {
		spanName := "db." + op.processor
		operation := op.operation
		before := func(db *gorm.DB) { startSpan(db, tracer, spanName) }
		after := func(db *gorm.DB) { endSpan(db, tracer, cfg, operation) }
		if err := registerAround(db, op.processor, gormTracingPrefix, before, after); err != nil {
			return err
		}
	}
	return nil
}

// RegisterServerTimingCallbacks registers callbacks that add the duration of
// every statement to the request's DBTimeAccumulator. They work without
// OpenTelemetry.
func RegisterServerTimingCallbacks(db *gorm.DB) error {
	for _, op := range gormOperations {
		if err := registerAround(db, op.processor, gormTimingPrefix, beforeTiming, afterTiming); err != nil {
			return err
		}
	}
	return nil
}

func registerAround(db *gorm.DB, processor, prefix string, before, after func(*gorm.DB)) error {
	target := "gorm:" + processor
	beforeName := prefix + ":before_" + processor
	afterName := prefix + ":after_" + processor

	cb := db.Callback()
	var err error
	switch processor {
	case "query":
		if err = cb.Query().Before(target).Register(beforeName, before); err == nil {
			err = cb.Query().After(target).Register(afterName, after)
		}
	case "create":
		if err = cb.Create().Before(target).Register(beforeName, before); err == nil {
			err = cb.Create().After(target).Register(afterName, after)
		}
	case "update":
		if err = cb.Update().Before(target).Register(beforeName, before); err == nil {
			err = cb.Update().After(target).Register(afterName, after)
		}
	case "delete":
		if err = cb.Delete().Before(target).Register(beforeName, before); err == nil {
			err = cb.Delete().After(target).Register(afterName, after)
		}
	case "row":
		if err = cb.Row().Before(target).Register(beforeName, before); err == nil {
			err = cb.Row().After(target).Register(afterName, after)
		}
	case "raw":
		if err = cb.Raw().Before(target).Register(beforeName, before); err == nil {
			err = cb.Raw().After(target).Register(afterName, after)
		}
	default:
		err = fmt.Errorf("unknown gorm processor %q", processor)
	}
	return err
}

func beforeTiming(db *gorm.DB) {
	db.InstanceSet(gormTimingStartKey, time.Now())
}

func afterTiming(db *gorm.DB) {
	v, ok := db.InstanceGet(gormTimingStartKey)
	if !ok {
		return
	}
	start, ok := v.(time.Time)
	if !ok || db.Statement == nil || db.Statement.Context == nil {
		return
	}
	AddDBTime(db.Statement.Context, time.Since(start))
}

func startSpan(db *gorm.DB, tracer *Tracer, spanName string) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := tracer.StartSpan(ctx, spanName, attribute.String("db.system", db.Dialector.Name()))

	db.Statement.Context = ctx
	db.InstanceSet(gormSpanKey, span)
	db.InstanceSet(gormStartTimeKey, time.Now())
}

func endSpan(db *gorm.DB, tracer *Tracer, cfg *Config, operation string) {
	v, ok := db.InstanceGet(gormSpanKey)
	if !ok {
		return
	}
	span, ok := v.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	if db.Statement != nil {
		if table := db.Statement.Table; table != "" {
			span.SetAttributes(attribute.String("db.sql.table", table))
		}
		span.SetAttributes(attribute.Int64("db.rows_affected", db.RowsAffected))
	}

	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		tracer.RecordError(span, db.Error)
	}

	if v, ok := db.InstanceGet(gormStartTimeKey); ok {
		if start, ok := v.(time.Time); ok {
			cfg.Metrics().RecordDBQuery(db.Statement.Context, operation, time.Since(start))
		}
	}
}
