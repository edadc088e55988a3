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

// SellerRequestRepository is an in-memory implementation of domain.SellerRequestRepository
type SellerRequestRepository struct {
	instrumented
	mu       sync.RWMutex
	requests map[string]*domain.SellerRequest
}

// NewSellerRequestRepository creates a new in-memory seller request repository
func NewSellerRequestRepository(tracer trace.Tracer, logger *slog.Logger) *SellerRequestRepository {
	return &SellerRequestRepository{
		instrumented: instrumented{tracer: tracer, logger: logger},
		requests:     make(map[string]*domain.SellerRequest),
	}
}

// Create stores a new seller request
func (r *SellerRequestRepository) Create(ctx context.Context, req *domain.SellerRequest) error {
	ctx, span := r.start(ctx, "SellerRequestRepository.Create", attribute.String("seller_request.id", req.ID))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.requests[req.ID] = req.Clone()

	r.logger.DebugContext(ctx, "Seller request stored", slog.String("seller_request_id", req.ID))
	span.SetStatus(codes.Ok, "Seller request created")
	return nil
}

// FindByID retrieves a non-deleted seller request by ID
func (r *SellerRequestRepository) FindByID(ctx context.Context, id string) (*domain.SellerRequest, error) {
	ctx, span := r.start(ctx, "SellerRequestRepository.FindByID", attribute.String("seller_request.id", id))
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok || req.DeletedAt != nil {
		return nil, r.notFound(ctx, span, "seller request", id)
	}

	span.SetStatus(codes.Ok, "Seller request found")
	return req.Clone(), nil
}

// Update replaces a stored seller request
func (r *SellerRequestRepository) Update(ctx context.Context, req *domain.SellerRequest) error {
	ctx, span := r.start(ctx, "SellerRequestRepository.Update", attribute.String("seller_request.id", req.ID))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.requests[req.ID]
	if !ok || existing.DeletedAt != nil {
		return r.notFound(ctx, span, "seller request", req.ID)
	}
	r.requests[req.ID] = req.Clone()

	span.SetStatus(codes.Ok, "Seller request updated")
	return nil
}

// List returns seller requests oldest first
func (r *SellerRequestRepository) List(ctx context.Context, filter domain.SellerRequestFilter) ([]*domain.SellerRequest, error) {
	ctx, span := r.start(ctx, "SellerRequestRepository.List")
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.SellerRequest, 0, len(r.requests))
	for _, req := range r.requests {
		if !visible(req.DeletedAt, filter.IncludeDeleted) || !matches(filter.Status, req.Status) {
			continue
		}
		out = append(out, req.Clone())
	}
	sortByCreated(out,
		func(v *domain.SellerRequest) time.Time { return v.CreatedAt },
		func(v *domain.SellerRequest) string { return v.ID },
		false,
	)

	span.SetAttributes(attribute.Int("seller_request.count", len(out)))
	r.logger.DebugContext(ctx, "Seller requests retrieved from repository", slog.Int("count", len(out)))
	span.SetStatus(codes.Ok, "Seller requests listed")
	return out, nil
}
