// Package memory provides in-memory repositories. Entities are cloned on the
// way in and on the way out so callers never share state with the store.
package memory

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/mrops-br/marketplace-ops-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type instrumented struct {
	tracer trace.Tracer
	logger *slog.Logger
}

func (i instrumented) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := i.tracer.Start(ctx, name)
	span.SetAttributes(attrs...)
	return ctx, span
}

func (i instrumented) notFound(ctx context.Context, span trace.Span, entity, id string) error {
	err := domain.NewNotFoundError(entity, id)
	span.RecordError(err)
	span.SetStatus(codes.Error, entity+" not found")
	i.logger.DebugContext(ctx, "Entity not found in repository",
		slog.String("entity", entity),
		slog.String("id", id),
	)
	return err
}

func visible(deletedAt *time.Time, includeDeleted bool) bool {
	return includeDeleted || deletedAt == nil
}

func matches[T comparable](want *T, got T) bool {
	return want == nil || *want == got
}

func paginate[T any](items []T, page domain.Pagination) []T {
	page = page.Normalize()
	start := page.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + page.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// sortByCreated orders items by creation time, ties broken by id for stable output.
func sortByCreated[T any](items []T, createdAt func(T) time.Time, id func(T) string, newestFirst bool) {
	sort.SliceStable(items, func(a, b int) bool {
		ta, tb := createdAt(items[a]), createdAt(items[b])
		if ta.Equal(tb) {
			return id(items[a]) < id(items[b])
		}
		if newestFirst {
			return ta.After(tb)
		}
		return ta.Before(tb)
	})
}
