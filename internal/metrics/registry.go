package metrics

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Check outcomes
const (
	OutcomePass      = "pass"
	OutcomeViolation = "violation"
	OutcomeError     = "error"
)

// Registry holds the risk engine metrics. A nil *Registry is valid and records nothing.
type Registry struct {
	meter metric.Meter

	// Validator metrics
	CheckCounter  metric.Int64Counter
	CheckDuration metric.Float64Histogram

	// Security event bus
	SecurityEventCounter metric.Int64Counter

	// Infrastructure
	PassportCacheCounter   metric.Int64Counter
	DatabaseConnectionPool metric.Int64ObservableGauge
	APIRequestDuration     metric.Float64Histogram
	APIRequestCounter      metric.Int64Counter

	mu         sync.RWMutex
	dbPoolSize int64
}

// NewRegistry creates the registry on the global meter provider
func NewRegistry(meterName string) (*Registry, error) {
	r := &Registry{meter: otel.Meter(meterName)}

	if err := r.initCheckMetrics(); err != nil {
		return nil, err
	}
	if err := r.initSystemMetrics(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Registry) initCheckMetrics() error {
	var err error

	r.CheckCounter, err = r.meter.Int64Counter(
		"scm.check.total",
		metric.WithDescription("Total number of validator invocations by check and outcome"),
	)
	if err != nil {
		return err
	}

	r.CheckDuration, err = r.meter.Float64Histogram(
		"scm.check.duration",
		metric.WithDescription("Validator latency in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.5, 1, 5, 10, 50, 100, 500),
	)
	if err != nil {
		return err
	}

	r.SecurityEventCounter, err = r.meter.Int64Counter(
		"scm.security_event.published",
		metric.WithDescription("Security events handed to the event bus"),
	)
	return err
}

func (r *Registry) initSystemMetrics() error {
	var err error

	r.PassportCacheCounter, err = r.meter.Int64Counter(
		"scm.passport_cache.lookups",
		metric.WithDescription("Passport cache lookups by result"),
	)
	if err != nil {
		return err
	}

	r.DatabaseConnectionPool, err = r.meter.Int64ObservableGauge(
		"scm.db.connection_pool_size",
		metric.WithDescription("Number of connections held by the database pool"),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			r.mu.RLock()
			defer r.mu.RUnlock()
			o.Observe(r.dbPoolSize)
			return nil
		}),
	)
	if err != nil {
		return err
	}

	r.APIRequestDuration, err = r.meter.Float64Histogram(
		"scm.api.request_duration",
		metric.WithDescription("API request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	r.APIRequestCounter, err = r.meter.Int64Counter(
		"scm.api.request_total",
		metric.WithDescription("Total number of API requests"),
	)
	return err
}

// SetDBPoolSize sets the database connection pool size
func (r *Registry) SetDBPoolSize(size int64) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dbPoolSize = size
}

// RecordCheck records one validator invocation
func (r *Registry) RecordCheck(ctx context.Context, check, outcome string, duration time.Duration) {
	if r == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("check", check),
		attribute.String("outcome", outcome),
	)

	r.CheckCounter.Add(ctx, 1, attrs)
	r.CheckDuration.Record(ctx, float64(duration.Microseconds())/1000.0, attrs)
}

// RecordSecurityEvent records a publish attempt on the event bus
func (r *Registry) RecordSecurityEvent(ctx context.Context, eventType string, success bool) {
	if r == nil {
		return
	}
	result := "ok"
	if !success {
		result = "failed"
	}
	r.SecurityEventCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
		attribute.String("result", result),
	))
}

// RecordPassportCache records a cache hit or miss
func (r *Registry) RecordPassportCache(ctx context.Context, hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.PassportCacheCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// RecordAPIRequest records API request metrics
func (r *Registry) RecordAPIRequest(ctx context.Context, duration float64, method, path string, statusCode int) {
	if r == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status_code", statusCode),
	}

	r.APIRequestDuration.Record(ctx, duration, metric.WithAttributes(attrs...))
	r.APIRequestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// Outcome maps a check result onto an outcome label
func Outcome(violation bool, err error) string {
	switch {
	case err != nil:
		return OutcomeError
	case violation:
		return OutcomeViolation
	default:
		return OutcomePass
	}
}
