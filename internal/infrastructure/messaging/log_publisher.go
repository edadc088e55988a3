// Package messaging delivers domain events.
package messaging

import (
	"context"
	"log/slog"

	"github.com/mrops-br/marketplace-ops-api/internal/domain"
)

// LogPublisher writes events to the log. Used when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a publisher that only logs
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event at debug level
func (p *LogPublisher) Publish(ctx context.Context, event domain.Event) error {
	p.logger.DebugContext(ctx, "Domain event",
		slog.String("event_type", event.Type),
		slog.String("entity_type", event.EntityType),
		slog.String("entity_id", event.EntityID),
	)
	return nil
}
