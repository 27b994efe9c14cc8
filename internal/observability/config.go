package observability

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// DefaultServiceName names the back office in spans and metrics unless
// WithServiceName overrides it.
const DefaultServiceName = "posadmin"

// Config selects where order, catalog and request telemetry goes.
// A nil *Config is valid and behaves as fully disabled.
type Config struct {
	// TracerProvider receives request, store and bulk action spans.
	// Nil keeps tracing off.
	TracerProvider trace.TracerProvider

	// MeterProvider receives request counts, durations, errors and the
	// distribution of saved order totals. Nil keeps metrics off.
	MeterProvider metric.MeterProvider

	// ServiceName is attached to every span as service.name.
	ServiceName string

	// ServiceVersion is reported as the instrumentation version of the
	// tracer and meter. Empty leaves it unset.
	ServiceVersion string

	// EnableDetailedDBTracing registers GORM callbacks that open one span
	// per SQL statement. Needs a TracerProvider.
	EnableDetailedDBTracing bool

	// EnableServerTiming makes responses carry a Server-Timing header with
	// the total time and the share spent in GORM.
	EnableServerTiming bool

	tracer  *Tracer
	metrics *Metrics
}

// Option configures a Config.
type Option func(*Config)

// WithTracerProvider turns tracing on.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Config) { c.TracerProvider = tp }
}

// WithMeterProvider turns metrics on.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *Config) { c.MeterProvider = mp }
}

func WithServiceName(name string) Option {
	return func(c *Config) { c.ServiceName = name }
}

func WithServiceVersion(version string) Option {
	return func(c *Config) { c.ServiceVersion = version }
}

// WithDetailedDBTracing enables per-statement spans for store queries.
func WithDetailedDBTracing() Option {
	return func(c *Config) { c.EnableDetailedDBTracing = true }
}

// WithServerTiming enables the Server-Timing header on API responses.
func WithServerTiming() Option {
	return func(c *Config) { c.EnableServerTiming = true }
}

// NewConfig applies opts over the defaults. Call Initialize before use.
func NewConfig(opts ...Option) *Config {
	cfg := &Config{ServiceName: DefaultServiceName}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Initialize builds the tracer and instruments. Missing providers fall back
// to no-op implementations so handlers never check for nil.
func (c *Config) Initialize() error {
	c.tracer = NewNoopTracer()
	if c.TracerProvider != nil {
		var opts []trace.TracerOption
		if c.ServiceVersion != "" {
			opts = append(opts, trace.WithInstrumentationVersion(c.ServiceVersion))
		}
		c.tracer = NewTracer(c.TracerProvider, c.ServiceName, opts...)
	}

	c.metrics = NewNoopMetrics()
	if c.MeterProvider != nil {
		var opts []metric.MeterOption
		if c.ServiceVersion != "" {
			opts = append(opts, metric.WithInstrumentationVersion(c.ServiceVersion))
		}
		m, err := NewMetrics(c.MeterProvider, opts...)
		if err != nil {
			return err
		}
		c.metrics = m
	}
	return nil
}

// Tracer returns the initialized tracer or a no-op one.
func (c *Config) Tracer() *Tracer {
	if c == nil || c.tracer == nil {
		return NewNoopTracer()
	}
	return c.tracer
}

// Metrics returns the initialized instruments or no-op ones.
func (c *Config) Metrics() *Metrics {
	if c == nil || c.metrics == nil {
		return NewNoopMetrics()
	}
	return c.metrics
}

// IsEnabled reports whether traces or metrics leave the process.
func (c *Config) IsEnabled() bool {
	return c != nil && (c.TracerProvider != nil || c.MeterProvider != nil)
}

func (c *Config) ServerTimingEnabled() bool {
	return c != nil && c.EnableServerTiming
}
