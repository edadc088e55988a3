// Package kafka publishes domain events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mrops-br/marketplace-ops-api/internal/domain"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Config holds Kafka producer configuration
type Config struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
	// WriteTimeout bounds each Publish call. Zero means DefaultWriteTimeout.
	WriteTimeout time.Duration
	// RequiredAcks follows kafka.RequiredAcks; zero waits for the leader.
	RequiredAcks int
}

// DefaultWriteTimeout keeps a slow broker from stalling request handlers.
const DefaultWriteTimeout = 2 * time.Second

// messageWriter is the subset of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher implements domain.EventPublisher on top of kafka-go
type Publisher struct {
	writer  messageWriter
	topic   string
	timeout time.Duration
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewPublisher creates a Kafka event publisher
func NewPublisher(cfg Config, tracer trace.Tracer, logger *slog.Logger) *Publisher {
	batchTimeout := cfg.BatchTimeout
	if batchTimeout == 0 {
		batchTimeout = 10 * time.Millisecond
	}
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = DefaultWriteTimeout
	}
	acks := kafka.RequiredAcks(cfg.RequiredAcks)
	if cfg.RequiredAcks == 0 {
		acks = kafka.RequireOne
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           batchTimeout,
		WriteTimeout:           timeout,
		MaxAttempts:            3,
		RequiredAcks:           acks,
		AllowAutoTopicCreation: true,
	}

	return newPublisher(writer, cfg.Topic, timeout, tracer, logger)
}

func newPublisher(writer messageWriter, topic string, timeout time.Duration, tracer trace.Tracer, logger *slog.Logger) *Publisher {
	return &Publisher{
		writer:  writer,
		topic:   topic,
		timeout: timeout,
		tracer:  tracer,
		logger:  logger,
	}
}

// Publish writes one event keyed by entity id, so events for an entity stay
// ordered. The write gives up after the configured timeout.
func (p *Publisher) Publish(ctx context.Context, event domain.Event) error {
	ctx, span := p.tracer.Start(ctx, "kafka.Publisher.Publish",
		trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()

	span.SetAttributes(
		attribute.String("messaging.system", "kafka"),
		attribute.String("messaging.destination.name", p.topic),
		attribute.String("event.type", event.Type),
		attribute.String("event.entity_id", event.EntityID),
	)

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to encode event")
		return fmt.Errorf("encode event %s: %w", event.Type, err)
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.EntityID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "entity_type", Value: []byte(event.EntityType)},
		},
	}

	writeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.writer.WriteMessages(writeCtx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to publish event")
		p.logger.ErrorContext(ctx, "Failed to publish event",
			slog.String("event_type", event.Type),
			slog.String("entity_id", event.EntityID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("publish event %s: %w", event.Type, err)
	}

	p.logger.DebugContext(ctx, "Published event",
		slog.String("event_type", event.Type),
		slog.String("entity_id", event.EntityID),
	)
	span.SetStatus(codes.Ok, "Event published")
	return nil
}

// Close flushes pending messages and closes the writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}
