package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// ProducerConfig holds Kafka producer settings.
type ProducerConfig struct {
	Brokers      []string
	BatchTimeout time.Duration
	RequiredAcks kafkago.RequiredAcks
}

// Producer publishes JSON-encoded event envelopes to Kafka.
type Producer struct {
	writer  *kafkago.Writer
	brokers []string
	log     *slog.Logger
}

// NewProducer creates a Kafka producer. Topics are chosen per message, so a
// single producer serves every event type.
func NewProducer(cfg ProducerConfig, log *slog.Logger) *Producer {
	batchTimeout := cfg.BatchTimeout
	if batchTimeout == 0 {
		batchTimeout = 100 * time.Millisecond
	}
	acks := cfg.RequiredAcks
	if acks == 0 {
		acks = kafkago.RequireOne
	}

	return &Producer{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(cfg.Brokers...),
			Balancer:     &kafkago.Hash{},
			BatchTimeout: batchTimeout,
			RequiredAcks: acks,
			Async:        false,
		},
		brokers: cfg.Brokers,
		log:     log,
	}
}

// Publish writes one event to the given topic, keyed so events for the same
// entity land on the same partition.
func (p *Producer) Publish(ctx context.Context, topic, key string, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.Type, err)
	}

	msg := kafkago.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	p.log.DebugContext(ctx, "event published",
		"topic", topic, "type", event.Type, "event_id", event.ID)
	return nil
}

// Ping dials the first reachable broker to verify connectivity.
func (p *Producer) Ping(ctx context.Context) error {
	var lastErr error
	for _, broker := range p.brokers {
		d := &kafkago.Dialer{Timeout: 5 * time.Second}
		conn, err := d.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		conn.Close()
		return nil
	}
	if lastErr != nil {
		return fmt.Errorf("dial kafka brokers: %w", lastErr)
	}
	return fmt.Errorf("no kafka brokers configured")
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
