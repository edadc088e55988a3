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

// ReviewRepository is an in-memory implementation of domain.ReviewRepository
type ReviewRepository struct {
	instrumented
	mu      sync.RWMutex
	reviews map[string]*domain.Review
}

// NewReviewRepository creates a new in-memory review repository
func NewReviewRepository(tracer trace.Tracer, logger *slog.Logger) *ReviewRepository {
	return &ReviewRepository{
		instrumented: instrumented{tracer: tracer, logger: logger},
		reviews:      make(map[string]*domain.Review),
	}
}

// Create stores a new review
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	ctx, span := r.start(ctx, "ReviewRepository.Create",
		attribute.String("review.id", review.ID),
		attribute.String("product.id", review.ProductID),
	)
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.reviews[review.ID] = review.Clone()

	r.logger.DebugContext(ctx, "Review stored", slog.String("review_id", review.ID))
	span.SetStatus(codes.Ok, "Review created")
	return nil
}

// FindByID retrieves a non-deleted review by ID
func (r *ReviewRepository) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	ctx, span := r.start(ctx, "ReviewRepository.FindByID", attribute.String("review.id", id))
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	review, ok := r.reviews[id]
	if !ok || review.DeletedAt != nil {
		return nil, r.notFound(ctx, span, "review", id)
	}

	span.SetStatus(codes.Ok, "Review found")
	return review.Clone(), nil
}

// Update replaces a stored review
func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	ctx, span := r.start(ctx, "ReviewRepository.Update", attribute.String("review.id", review.ID))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.reviews[review.ID]
	if !ok || existing.DeletedAt != nil {
		return r.notFound(ctx, span, "review", review.ID)
	}
	r.reviews[review.ID] = review.Clone()

	span.SetStatus(codes.Ok, "Review updated")
	return nil
}

// ListByProduct returns a product's reviews, newest first
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string, status *domain.ReviewStatus) ([]*domain.Review, error) {
	out, _, err := r.list(ctx, "ReviewRepository.ListByProduct",
		domain.ReviewFilter{ProductID: &productID, Status: status}, nil, true)
	return out, err
}

// List returns a page of reviews with the total match count
func (r *ReviewRepository) List(ctx context.Context, filter domain.ReviewFilter, page domain.Pagination, newestFirst bool) ([]*domain.Review, int, error) {
	return r.list(ctx, "ReviewRepository.List", filter, &page, newestFirst)
}

func (r *ReviewRepository) list(ctx context.Context, spanName string, filter domain.ReviewFilter, page *domain.Pagination, newestFirst bool) ([]*domain.Review, int, error) {
	ctx, span := r.start(ctx, spanName)
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*domain.Review, 0, len(r.reviews))
	for _, review := range r.reviews {
		if !visible(review.DeletedAt, filter.IncludeDeleted) ||
			!matches(filter.ProductID, review.ProductID) ||
			!matches(filter.CustomerID, review.CustomerID) ||
			!matches(filter.Status, review.Status) {
			continue
		}
		all = append(all, review)
	}
	sortByCreated(all,
		func(v *domain.Review) time.Time { return v.CreatedAt },
		func(v *domain.Review) string { return v.ID },
		newestFirst,
	)

	selected := all
	if page != nil {
		selected = paginate(all, *page)
	}
	out := make([]*domain.Review, len(selected))
	for i, review := range selected {
		out[i] = review.Clone()
	}

	span.SetAttributes(attribute.Int("review.count", len(out)))
	r.logger.DebugContext(ctx, "Reviews retrieved from repository", slog.Int("count", len(out)))
	span.SetStatus(codes.Ok, "Reviews listed")
	return out, len(all), nil
}
