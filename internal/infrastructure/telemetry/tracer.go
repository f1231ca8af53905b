package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName is the tracer and meter name used across the service
const InstrumentationName = "github.com/nodeorb/scm-risk-engine"

// StartServiceSpan starts a span named <component>.<operation>
func StartServiceSpan(ctx context.Context, component, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("service.component", component),
		attribute.String("service.operation", operation),
	)
	return otel.Tracer(InstrumentationName).Start(ctx, fmt.Sprintf("%s.%s", component, operation),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// StartDatabaseSpan starts a span for database operations
func StartDatabaseSpan(ctx context.Context, operation, table string) (context.Context, trace.Span) {
	return otel.Tracer(InstrumentationName).Start(ctx, fmt.Sprintf("db.%s %s", operation, table),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.operation", operation),
			attribute.String("db.sql.table", table),
			attribute.String("db.system", "postgresql"),
		),
	)
}

// StartMessagingSpan starts a span for messaging operations
func StartMessagingSpan(ctx context.Context, system, operation, destination string) (context.Context, trace.Span) {
	return otel.Tracer(InstrumentationName).Start(ctx, fmt.Sprintf("%s %s %s", system, operation, destination),
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", system),
			attribute.String("messaging.operation", operation),
			attribute.String("messaging.destination.name", destination),
		),
	)
}

// WithSpanError records err on span and marks it failed
func WithSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
