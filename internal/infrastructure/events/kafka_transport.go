package events

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	"github.com/nodeorb/scm-risk-engine/internal/infrastructure/config"
)

// KafkaProducer is the producing side of a kafka client
type KafkaProducer interface {
	Produce(ctx context.Context, msg ProducerMessage) error
	Close()
}

// ProducerMessage represents a Kafka message
type ProducerMessage struct {
	Topic     string
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// FranzProducer produces synchronously through a franz-go client
type FranzProducer struct {
	client *kgo.Client
}

// NewFranzProducer creates a kafka client for producing security events
func NewFranzProducer(cfg config.KafkaConfig) (*FranzProducer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.DefaultProduceTopic(cfg.SecurityTopic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(5*time.Millisecond),
		kgo.RecordRetries(5),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}
	return &FranzProducer{client: client}, nil
}

// Ping checks broker connectivity
func (p *FranzProducer) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

func (p *FranzProducer) Produce(ctx context.Context, msg ProducerMessage) error {
	return p.client.ProduceSync(ctx, toRecord(msg)).FirstErr()
}

// toRecord maps a message onto a kafka record; headers are ordered by key
func toRecord(msg ProducerMessage) *kgo.Record {
	rec := &kgo.Record{
		Topic:     msg.Topic,
		Key:       msg.Key,
		Value:     msg.Value,
		Timestamp: msg.Timestamp,
	}
	keys := make([]string, 0, len(msg.Headers))
	for k := range msg.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: k, Value: []byte(msg.Headers[k])})
	}
	return rec
}

// Close flushes buffered records and closes the client
func (p *FranzProducer) Close() {
	p.client.Close()
}

// KafkaTransport sends messages to one topic with a bounded wait
type KafkaTransport struct {
	logger   *zap.Logger
	producer KafkaProducer
	topic    string
	timeout  time.Duration
}

// NewKafkaTransport creates a new Kafka transport
func NewKafkaTransport(logger *zap.Logger, producer KafkaProducer, topic string, timeout time.Duration) *KafkaTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &KafkaTransport{
		logger:   logger.Named("kafka"),
		producer: producer,
		topic:    topic,
		timeout:  timeout,
	}
}

// Topic returns the destination topic
func (t *KafkaTransport) Topic() string {
	return t.topic
}

// Send produces one message and waits for the broker acknowledgement
func (t *KafkaTransport) Send(ctx context.Context, key, value []byte, headers map[string]string) error {
	sendCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	start := time.Now()
	err := t.producer.Produce(sendCtx, ProducerMessage{
		Topic:     t.topic,
		Key:       key,
		Value:     value,
		Headers:   headers,
		Timestamp: start,
	})
	if err != nil {
		return fmt.Errorf("failed to send to kafka: %w", err)
	}

	t.logger.Debug("message delivered",
		zap.String("topic", t.topic),
		zap.ByteString("key", key),
		zap.Duration("latency", time.Since(start)))
	return nil
}

// Close closes the producer
func (t *KafkaTransport) Close() {
	t.producer.Close()
}
