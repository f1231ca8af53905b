package events

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/nodeorb/scm-risk-engine/internal/domain/security"
	"github.com/nodeorb/scm-risk-engine/internal/infrastructure/telemetry"
	"github.com/nodeorb/scm-risk-engine/internal/metrics"
)

// Transport delivers serialized events
type Transport interface {
	Send(ctx context.Context, key, value []byte, headers map[string]string) error
	Topic() string
}

// SecurityEventBus publishes security events as JSON keyed by event id.
// Without a transport it only logs.
type SecurityEventBus struct {
	transport     Transport
	sourceService string
	logger        *zap.Logger
	metrics       *metrics.Registry
}

var _ security.EventBus = (*SecurityEventBus)(nil)

// NewSecurityEventBus creates the bus. A non-empty sourceService replaces the
// default source stamped on each event.
func NewSecurityEventBus(transport Transport, sourceService string, logger *zap.Logger, registry *metrics.Registry) *SecurityEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SecurityEventBus{
		transport:     transport,
		sourceService: sourceService,
		logger:        logger.Named("security_events"),
		metrics:       registry,
	}
}

// Publish serializes and delivers one event
func (b *SecurityEventBus) Publish(ctx context.Context, event security.SecurityEvent) (err error) {
	destination := "log"
	if b.transport != nil {
		destination = b.transport.Topic()
	}
	ctx, span := telemetry.StartMessagingSpan(ctx, "kafka", "publish", destination)
	defer span.End()
	defer func() {
		telemetry.WithSpanError(span, err)
		b.metrics.RecordSecurityEvent(ctx, string(event.EventType), err == nil)
	}()

	if b.sourceService != "" {
		event.SourceService = b.sourceService
	}

	log := telemetry.WithTrace(ctx, b.logger)
	log.Info("security event",
		zap.String("event_id", event.EventID),
		zap.String("event_type", string(event.EventType)),
		zap.String("user_id", event.UserID),
		zap.Any("details", event.Details),
	)

	if b.transport == nil {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal security event: %w", err)
	}

	headers := map[string]string{
		"event_type":     string(event.EventType),
		"source_service": event.SourceService,
	}
	if err := b.transport.Send(ctx, []byte(event.EventID), payload, headers); err != nil {
		log.Error("failed to publish security event",
			zap.String("event_id", event.EventID),
			zap.Error(err))
		return err
	}
	return nil
}
