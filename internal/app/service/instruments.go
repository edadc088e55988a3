package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mrops-br/marketplace-ops-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// instruments bundles what every manager needs to trace, log, count and
// announce its operations.
type instruments struct {
	manager    string
	tracer     trace.Tracer
	logger     *slog.Logger
	operations metric.Int64Counter
	publisher  domain.EventPublisher
}

func newInstruments(manager string, publisher domain.EventPublisher, tracer trace.Tracer, meter metric.Meter, logger *slog.Logger) instruments {
	operations, _ := meter.Int64Counter(
		"marketplace.operations",
		metric.WithDescription("Total number of marketplace operations by manager, operation and result"),
	)

	return instruments{
		manager:    manager,
		tracer:     tracer,
		logger:     logger.With(slog.String("manager", manager)),
		operations: operations,
		publisher:  publisher,
	}
}

// resultOf classifies err for metrics and log levels.
func resultOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrOwnership):
		return "forbidden"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	default:
		return "failure"
	}
}

func (in *instruments) count(ctx context.Context, operation string, err error) {
	in.operations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("manager", in.manager),
			attribute.String("operation", operation),
			attribute.String("result", resultOf(err)),
		),
	)
}

// fail records err on the span, logs it with the operation name and the given
// context attributes, counts it, and returns it unchanged. Caller-fixable
// errors log at warn; anything else is unexpected and logs at error.
func (in *instruments) fail(ctx context.Context, span trace.Span, operation string, err error, attrs ...any) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	level := slog.LevelError
	if resultOf(err) != "failure" {
		level = slog.LevelWarn
	}
	args := append([]any{
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	}, attrs...)
	in.logger.Log(ctx, level, "Operation failed", args...)

	in.count(ctx, operation, err)
	return err
}

func (in *instruments) succeed(ctx context.Context, span trace.Span, operation, message string, attrs ...any) {
	in.count(ctx, operation, nil)
	in.logger.InfoContext(ctx, message, append([]any{slog.String("operation", operation)}, attrs...)...)
	span.SetStatus(codes.Ok, message)
}

// publish announces an event. Delivery failures are logged and never
// propagate into the operation that produced the event.
func (in *instruments) publish(ctx context.Context, event domain.Event) {
	if in.publisher == nil {
		return
	}
	if err := in.publisher.Publish(ctx, event); err != nil {
		in.logger.WarnContext(ctx, "Failed to publish domain event",
			slog.String("event_type", event.Type),
			slog.String("entity_id", event.EntityID),
			slog.String("error", err.Error()),
		)
	}
}
