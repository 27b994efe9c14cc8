package observability

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/felixge/httpsnoop"
	servertiming "github.com/mitchellh/go-server-timing"
)

// ServerTimingMetric wraps the server-timing library's Metric type.
type ServerTimingMetric struct {
	metric *servertiming.Metric
}

// Stop stops the timing metric.
func (m *ServerTimingMetric) Stop() {
	if m != nil && m.metric != nil {
		m.metric.Stop()
	}
}

// StartServerTiming starts a server-timing metric with the given name. Without
// timing information in ctx it returns a no-op metric.
func StartServerTiming(ctx context.Context, name string) *ServerTimingMetric {
	return StartServerTimingWithDesc(ctx, name, "")
}

// StartServerTimingWithDesc starts a server-timing metric with a description.
func StartServerTimingWithDesc(ctx context.Context, name, description string) *ServerTimingMetric {
	timing := servertiming.FromContext(ctx)
	if timing == nil {
		return &ServerTimingMetric{}
	}

	m := timing.NewMetric(name)
	if description != "" {
		m = m.WithDesc(description)
	}
	return &ServerTimingMetric{metric: m.Start()}
}

// DBTimeAccumulator sums the time a request spends in database statements.
// It is safe for concurrent use.
type DBTimeAccumulator struct {
	nanos atomic.Int64
}

// Add adds d to the total.
func (a *DBTimeAccumulator) Add(d time.Duration) {
	a.nanos.Add(int64(d))
}

// Duration returns the accumulated time.
func (a *DBTimeAccumulator) Duration() time.Duration {
	return time.Duration(a.nanos.Load())
}

type dbTimeKey struct{}

// WithDBTimeAccumulator returns a context carrying a fresh accumulator.
func WithDBTimeAccumulator(ctx context.Context) context.Context {
	return context.WithValue(ctx, dbTimeKey{}, &DBTimeAccumulator{})
}

// DBTimeAccumulatorFromContext returns the accumulator of ctx, or nil.
func DBTimeAccumulatorFromContext(ctx context.Context) *DBTimeAccumulator {
	if ctx == nil {
		return nil
	}
	acc, _ := ctx.Value(dbTimeKey{}).(*DBTimeAccumulator) //nolint:errcheck
	return acc
}

// AddDBTime adds d to the accumulator of ctx, if there is one.
func AddDBTime(ctx context.Context, d time.Duration) {
	if acc := DBTimeAccumulatorFromContext(ctx); acc != nil {
		acc.Add(d)
	}
}

// ServerTimingMiddleware adds a Server-Timing header reporting the total
// request time and the accumulated database time. The database time is only
// reported when RegisterServerTimingCallbacks was called on the handle.
func ServerTimingMiddleware(cfg *Config) func(http.Handler) http.Handler {
	if !cfg.ServerTimingEnabled() {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithDBTimeAccumulator(r.Context())
			timing := servertiming.FromContext(ctx)
			total := timing.NewMetric("total").WithDesc("Total request duration").Start()

			var flushed atomic.Bool
			flush := func() {
				if !flushed.CompareAndSwap(false, true) {
					return
				}
				total.Stop()
				timing.Add(&servertiming.Metric{
					Name:     "db",
					Desc:     "Database time",
					Duration: DBTimeAccumulatorFromContext(ctx).Duration(),
				})
			}

			wrapped := httpsnoop.Wrap(w, httpsnoop.Hooks{
				WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
					return func(code int) {
						flush()
						next(code)
					}
				},
				Write: func(next httpsnoop.WriteFunc) httpsnoop.WriteFunc {
					return func(b []byte) (int, error) {
						flush()
						return next(b)
					}
				},
			})
			next.ServeHTTP(wrapped, r.WithContext(ctx))
			flush()
		})
		return servertiming.Middleware(inner, nil)
	}
}
