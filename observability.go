package posadmin

import (
	"context"
	"fmt"

	"github.com/nlstn/go-posadmin/internal/observability"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ObservabilityConfig configures OpenTelemetry tracing, metrics, and the
// Server-Timing header for the service.
type ObservabilityConfig struct {
	// TracerProvider is the OpenTelemetry tracer provider. Nil disables tracing.
	TracerProvider trace.TracerProvider
	// MeterProvider is the OpenTelemetry meter provider. Nil disables metrics.
	MeterProvider metric.MeterProvider
	// ServiceName identifies the service in traces and metrics. Defaults to "posadmin".
	ServiceName string
	// ServiceVersion is reported alongside ServiceName.
	ServiceVersion string
	// EnableDetailedDBTracing adds a span for every database statement.
	EnableDetailedDBTracing bool
	// EnableServerTiming adds the Server-Timing response header.
	EnableServerTiming bool
}

// SetObservability configures tracing, metrics, and Server-Timing. Call it
// before the service starts serving.
func (s *Service) SetObservability(cfg ObservabilityConfig) error {
	var opts []observability.Option
	if cfg.TracerProvider != nil {
		opts = append(opts, observability.WithTracerProvider(cfg.TracerProvider))
	}
	if cfg.MeterProvider != nil {
		opts = append(opts, observability.WithMeterProvider(cfg.MeterProvider))
	}
	if cfg.ServiceName != "" {
		opts = append(opts, observability.WithServiceName(cfg.ServiceName))
	}
	if cfg.ServiceVersion != "" {
		opts = append(opts, observability.WithServiceVersion(cfg.ServiceVersion))
	}
	if cfg.EnableDetailedDBTracing {
		opts = append(opts, observability.WithDetailedDBTracing())
	}
	if cfg.EnableServerTiming {
		opts = append(opts, observability.WithServerTiming())
	}

	obs := observability.NewConfig(opts...)
	if err := obs.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	if err := observability.RegisterGORMCallbacks(s.db, obs); err != nil {
		return fmt.Errorf("failed to register database tracing: %w", err)
	}
	if obs.ServerTimingEnabled() {
		if err := observability.RegisterServerTimingCallbacks(s.db); err != nil {
			return fmt.Errorf("failed to register database timing: %w", err)
		}
	}

	s.observability = obs
	s.api.SetObservability(obs)
	s.buildHTTPHandler()
	return nil
}

// Observability returns the active observability configuration, or nil.
func (s *Service) Observability() *observability.Config {
	return s.observability
}

// ServerTimingMetric measures one named span of a request for the
// Server-Timing header.
type ServerTimingMetric = observability.ServerTimingMetric

// StartServerTiming starts a Server-Timing metric on the request context.
// It is a no-op when Server-Timing is disabled.
func StartServerTiming(ctx context.Context, name string) *ServerTimingMetric {
	return observability.StartServerTiming(ctx, name)
}

// StartServerTimingWithDesc is StartServerTiming with a description.
func StartServerTimingWithDesc(ctx context.Context, name, description string) *ServerTimingMetric {
	return observability.StartServerTimingWithDesc(ctx, name, description)
}
