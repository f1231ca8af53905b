package events

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nodeorb/scm-risk-engine/internal/domain/errors"
	"github.com/nodeorb/scm-risk-engine/internal/domain/security"
)

type fakeProducer struct {
	mu       sync.Mutex
	messages []ProducerMessage
	err      error
	block    bool
	closed   bool
}

func (f *fakeProducer) Produce(ctx context.Context, msg ProducerMessage) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeProducer) Close() { f.closed = true }

var at = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestSecurityEventBus_Publish(t *testing.T) {
	producer := &fakeProducer{}
	transport := NewKafkaTransport(nil, producer, "security.events", time.Second)
	bus := NewSecurityEventBus(transport, "", nil, nil)

	event := security.GeofenceViolation("user-1", 50.1, 30.2, "WAREHOUSE", "Outside geofence bounds", at)
	require.NoError(t, bus.Publish(context.Background(), event))

	require.Len(t, producer.messages, 1)
	msg := producer.messages[0]
	assert.Equal(t, "security.events", msg.Topic)
	assert.Equal(t, event.EventID, string(msg.Key))
	assert.Equal(t, "GEOFENCE_VIOLATION", msg.Headers["event_type"])

	var decoded security.SecurityEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.EventID, decoded.EventID)
	assert.Equal(t, security.DefaultSourceService, decoded.SourceService)
	assert.Equal(t, "WAREHOUSE", decoded.Details["geofence_type"])
	assert.True(t, at.Equal(decoded.Timestamp))
}

func TestSecurityEventBus_SourceOverride(t *testing.T) {
	producer := &fakeProducer{}
	bus := NewSecurityEventBus(NewKafkaTransport(nil, producer, "security.events", 0), "SCM_EU", nil, nil)

	require.NoError(t, bus.Publish(context.Background(), security.NewEvent(security.EventCargoAccessCheck, "u", nil, at)))

	var decoded security.SecurityEvent
	require.NoError(t, json.Unmarshal(producer.messages[0].Value, &decoded))
	assert.Equal(t, "SCM_EU", decoded.SourceService)
	assert.Equal(t, "SCM_EU", producer.messages[0].Headers["source_service"])
}

func TestSecurityEventBus_LogOnly(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	bus := NewSecurityEventBus(nil, "", zap.New(core), nil)

	event := security.PriceAnomaly("user-1", "ORD-1", 0.5, 1000, at)
	require.NoError(t, bus.Publish(context.Background(), event))

	entries := logs.FilterMessage("security event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, event.EventID, entries[0].ContextMap()["event_id"])
	assert.Equal(t, "PRICE_ANOMALY_DETECTED", entries[0].ContextMap()["event_type"])
}

func TestSecurityEventBus_Failures(t *testing.T) {
	event := security.NewEvent(security.EventSensitiveDataAccessCheck, "u", nil, at)

	t.Run("producer error", func(t *testing.T) {
		producer := &fakeProducer{err: stderrors.New("not leader for partition")}
		bus := NewSecurityEventBus(NewKafkaTransport(nil, producer, "security.events", time.Second), "", nil, nil)

		err := bus.Publish(context.Background(), event)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not leader")
	})

	t.Run("timeout", func(t *testing.T) {
		producer := &fakeProducer{block: true}
		bus := NewSecurityEventBus(NewKafkaTransport(nil, producer, "security.events", 20*time.Millisecond), "", nil, nil)

		err := bus.Publish(context.Background(), event)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("domain publish wraps as external", func(t *testing.T) {
		producer := &fakeProducer{err: stderrors.New("broker down")}
		bus := NewSecurityEventBus(NewKafkaTransport(nil, producer, "security.events", time.Second), "", nil, nil)

		err := security.Publish(context.Background(), bus, event)
		assert.True(t, errors.IsType(err, errors.ErrorTypeExternal))
	})
}

func TestKafkaTransport_Close(t *testing.T) {
	producer := &fakeProducer{}
	transport := NewKafkaTransport(nil, producer, "t", 0)
	transport.Close()
	assert.True(t, producer.closed)
}
