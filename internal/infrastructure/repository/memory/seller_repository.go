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

// SellerRepository is an in-memory implementation of domain.SellerRepository
type SellerRepository struct {
	instrumented
	mu      sync.RWMutex
	sellers map[string]*domain.Seller
}

// NewSellerRepository creates a new in-memory seller repository
func NewSellerRepository(tracer trace.Tracer, logger *slog.Logger) *SellerRepository {
	return &SellerRepository{
		instrumented: instrumented{tracer: tracer, logger: logger},
		sellers:      make(map[string]*domain.Seller),
	}
}

// Create stores a new seller
func (r *SellerRepository) Create(ctx context.Context, seller *domain.Seller) error {
	ctx, span := r.start(ctx, "SellerRepository.Create", attribute.String("seller.id", seller.ID))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sellers[seller.ID] = seller.Clone()

	r.logger.DebugContext(ctx, "Seller stored", slog.String("seller_id", seller.ID))
	span.SetStatus(codes.Ok, "Seller created")
	return nil
}

// FindByID retrieves a non-deleted seller by ID
func (r *SellerRepository) FindByID(ctx context.Context, id string) (*domain.Seller, error) {
	ctx, span := r.start(ctx, "SellerRepository.FindByID", attribute.String("seller.id", id))
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	seller, ok := r.sellers[id]
	if !ok || seller.DeletedAt != nil {
		return nil, r.notFound(ctx, span, "seller", id)
	}

	span.SetStatus(codes.Ok, "Seller found")
	return seller.Clone(), nil
}

// FindByEmail retrieves the oldest non-deleted seller with the given email
func (r *SellerRepository) FindByEmail(ctx context.Context, email string) (*domain.Seller, error) {
	ctx, span := r.start(ctx, "SellerRepository.FindByEmail")
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *domain.Seller
	for _, seller := range r.sellers {
		if seller.DeletedAt != nil || seller.EmailValue() != email {
			continue
		}
		if found == nil || seller.CreatedAt.Before(found.CreatedAt) {
			found = seller
		}
	}
	if found == nil {
		return nil, r.notFound(ctx, span, "seller", email)
	}

	span.SetStatus(codes.Ok, "Seller found")
	return found.Clone(), nil
}

// Update replaces a stored seller
func (r *SellerRepository) Update(ctx context.Context, seller *domain.Seller) error {
	ctx, span := r.start(ctx, "SellerRepository.Update", attribute.String("seller.id", seller.ID))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.sellers[seller.ID]
	if !ok || existing.DeletedAt != nil {
		return r.notFound(ctx, span, "seller", seller.ID)
	}
	r.sellers[seller.ID] = seller.Clone()

	span.SetStatus(codes.Ok, "Seller updated")
	return nil
}

// SoftDelete tombstones a seller
func (r *SellerRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	ctx, span := r.start(ctx, "SellerRepository.SoftDelete", attribute.String("seller.id", id))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	seller, ok := r.sellers[id]
	if !ok || seller.DeletedAt != nil {
		return r.notFound(ctx, span, "seller", id)
	}
	deleted := at.UTC()
	seller.DeletedAt = &deleted
	seller.UpdatedAt = deleted

	span.SetStatus(codes.Ok, "Seller deleted")
	return nil
}

// List returns a page of sellers, newest first, with the total match count
func (r *SellerRepository) List(ctx context.Context, filter domain.SellerFilter, page domain.Pagination) ([]*domain.Seller, int, error) {
	ctx, span := r.start(ctx, "SellerRepository.List")
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*domain.Seller, 0, len(r.sellers))
	for _, seller := range r.sellers {
		if !visible(seller.DeletedAt, filter.IncludeDeleted) ||
			!matches(filter.Status, seller.Status) ||
			!matches(filter.Email, seller.EmailValue()) {
			continue
		}
		all = append(all, seller)
	}
	sortByCreated(all,
		func(v *domain.Seller) time.Time { return v.CreatedAt },
		func(v *domain.Seller) string { return v.ID },
		true,
	)

	pageItems := paginate(all, page)
	out := make([]*domain.Seller, len(pageItems))
	for i, seller := range pageItems {
		out[i] = seller.Clone()
	}

	span.SetAttributes(attribute.Int("seller.count", len(out)), attribute.Int("seller.total", len(all)))
	r.logger.DebugContext(ctx, "Sellers retrieved from repository", slog.Int("count", len(out)), slog.Int("total", len(all)))
	span.SetStatus(codes.Ok, "Sellers listed")
	return out, len(all), nil
}
