package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
)

// ProducerConfig holds Kafka producer configuration.
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
	Async        bool
}

// DefaultProducerConfig returns the producer defaults: small batches written
// asynchronously so publishing never holds up the caller.
func DefaultProducerConfig(brokers []string, topic string) ProducerConfig {
	return ProducerConfig{
		Brokers:      brokers,
		Topic:        topic,
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes events to a single topic.
type Producer struct {
	writer  messageWriter
	topic   string
	brokers []string
	async   bool
	logger  *slog.Logger
}

// NewProducer creates a producer. It does not connect until the first
// message is written.
func NewProducer(cfg ProducerConfig, logger *slog.Logger) *Producer {
	p := &Producer{
		topic:   cfg.Topic,
		brokers: cfg.Brokers,
		async:   cfg.Async,
		logger:  logger,
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		Async:        cfg.Async,
		RequiredAcks: kafka.RequireOne,
	}
	if cfg.Async {
		w.Completion = p.completed
	}
	p.writer = w
	return p
}

// Topic is the topic every event goes to.
func (p *Producer) Topic() string { return p.topic }

// Publish writes event. In async mode a nil error only means the message was
// queued; delivery failures are logged and counted when the batch completes.
func (p *Producer) Publish(ctx context.Context, event *Event) error {
	data, err := event.Marshal()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Key),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "source", Value: []byte(event.Source)},
		},
	}
	if event.CorrelationID != "" {
		msg.Headers = append(msg.Headers, kafka.Header{
			Key: "correlation_id", Value: []byte(event.CorrelationID),
		})
	}
	otel.GetTextMapPropagator().Inject(ctx, NewHeaderCarrier(&msg.Headers))

	start := time.Now()
	err = p.writer.WriteMessages(ctx, msg)
	ProducerPublishDuration.WithLabelValues(p.topic).Observe(time.Since(start).Seconds())
	if err != nil {
		ProducerPublishErrors.WithLabelValues(p.topic).Inc()
		p.logger.ErrorContext(ctx, "failed to publish event",
			slog.String("topic", p.topic),
			slog.String("event_type", event.Type),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("publish event to %s: %w", p.topic, err)
	}
	if !p.async {
		ProducerMessagesPublished.WithLabelValues(p.topic).Inc()
	}

	p.logger.DebugContext(ctx, "event published",
		slog.String("topic", p.topic),
		slog.String("event_type", event.Type),
		slog.String("event_id", event.ID),
	)
	return nil
}

func (p *Producer) completed(msgs []kafka.Message, err error) {
	if err != nil {
		ProducerPublishErrors.WithLabelValues(p.topic).Add(float64(len(msgs)))
		p.logger.Error("failed to deliver events",
			slog.String("topic", p.topic),
			slog.Int("messages", len(msgs)),
			slog.String("error", err.Error()),
		)
		return
	}
	ProducerMessagesPublished.WithLabelValues(p.topic).Add(float64(len(msgs)))
}

// Ping checks that at least one broker is reachable.
func (p *Producer) Ping(ctx context.Context) error {
	return PingBrokers(ctx, p.brokers)
}

// PingBrokers dials the given brokers and returns nil if at least one
// answers a metadata request.
func PingBrokers(ctx context.Context, brokers []string) error {
	if len(brokers) == 0 {
		return fmt.Errorf("kafka: no brokers configured")
	}

	var lastErr error
	for _, addr := range brokers {
		conn, err := kafka.DialContext(ctx, "tcp", addr)
		if err != nil {
			lastErr = err
			continue
		}
		_, err = conn.Brokers()
		_ = conn.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("kafka ping: all brokers unreachable: %w", lastErr)
}

// Close flushes pending messages and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
