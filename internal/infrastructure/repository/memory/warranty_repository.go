package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mrops-br/marketplace-ops-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// WarrantyRepository is an in-memory implementation of domain.WarrantyRepository
type WarrantyRepository struct {
	instrumented
	mu         sync.RWMutex
	warranties map[string]*domain.Warranty
}

// NewWarrantyRepository creates a new in-memory warranty repository
func NewWarrantyRepository(tracer trace.Tracer, logger *slog.Logger) *WarrantyRepository {
	return &WarrantyRepository{
		instrumented: instrumented{tracer: tracer, logger: logger},
		warranties:   make(map[string]*domain.Warranty),
	}
}

// Create stores a new warranty
func (r *WarrantyRepository) Create(ctx context.Context, w *domain.Warranty) error {
	ctx, span := r.start(ctx, "WarrantyRepository.Create", attribute.String("warranty.id", w.ID))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.warranties[w.ID] = w.Clone()

	r.logger.DebugContext(ctx, "Warranty stored", slog.String("warranty_id", w.ID))
	span.SetStatus(codes.Ok, "Warranty created")
	return nil
}

// FindByID retrieves a non-deleted warranty by ID
func (r *WarrantyRepository) FindByID(ctx context.Context, id string) (*domain.Warranty, error) {
	ctx, span := r.start(ctx, "WarrantyRepository.FindByID", attribute.String("warranty.id", id))
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.warranties[id]
	if !ok || w.DeletedAt != nil {
		return nil, r.notFound(ctx, span, "warranty", id)
	}

	span.SetStatus(codes.Ok, "Warranty found")
	return w.Clone(), nil
}

// Update replaces a stored warranty
func (r *WarrantyRepository) Update(ctx context.Context, w *domain.Warranty) error {
	ctx, span := r.start(ctx, "WarrantyRepository.Update", attribute.String("warranty.id", w.ID))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.warranties[w.ID]
	if !ok || existing.DeletedAt != nil {
		return r.notFound(ctx, span, "warranty", w.ID)
	}
	r.warranties[w.ID] = w.Clone()

	span.SetStatus(codes.Ok, "Warranty updated")
	return nil
}

// List returns a page of warranties, newest first, with the total match count
func (r *WarrantyRepository) List(ctx context.Context, filter domain.WarrantyFilter, page domain.Pagination) ([]*domain.Warranty, int, error) {
	ctx, span := r.start(ctx, "WarrantyRepository.List")
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	asOf := filter.StatusAsOf()
	all := make([]*domain.Warranty, 0, len(r.warranties))
	for _, w := range r.warranties {
		if !visible(w.DeletedAt, filter.IncludeDeleted) ||
			!matches(filter.ProductID, w.ProductID) ||
			!matches(filter.CustomerEmail, w.CustomerEmail) ||
			!matches(filter.Status, w.EffectiveStatus(asOf)) {
			continue
		}
		if filter.OrderID != nil && (w.OrderID == nil || *w.OrderID != *filter.OrderID) {
			continue
		}
		all = append(all, w)
	}
	sortByCreated(all,
		func(v *domain.Warranty) time.Time { return v.CreatedAt },
		func(v *domain.Warranty) string { return v.ID },
		true,
	)

	pageItems := paginate(all, page)
	out := make([]*domain.Warranty, len(pageItems))
	for i, w := range pageItems {
		out[i] = w.Clone()
	}

	span.SetAttributes(attribute.Int("warranty.count", len(out)))
	span.SetStatus(codes.Ok, "Warranties listed")
	return out, len(all), nil
}
