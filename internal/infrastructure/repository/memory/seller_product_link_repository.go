package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/mrops-br/marketplace-ops-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SellerProductLinkRepository is an in-memory implementation of domain.SellerProductLinkRepository.
// Like the postgres store, it rejects a second live link for the same pair.
type SellerProductLinkRepository struct {
	instrumented
	mu    sync.RWMutex
	links map[string]*domain.SellerProductLink
}

// NewSellerProductLinkRepository creates a new in-memory link repository
func NewSellerProductLinkRepository(tracer trace.Tracer, logger *slog.Logger) *SellerProductLinkRepository {
	return &SellerProductLinkRepository{
		instrumented: instrumented{tracer: tracer, logger: logger},
		links:        make(map[string]*domain.SellerProductLink),
	}
}

// Create stores a new link
func (r *SellerProductLinkRepository) Create(ctx context.Context, link *domain.SellerProductLink) error {
	ctx, span := r.start(ctx, "SellerProductLinkRepository.Create",
		attribute.String("seller.id", link.SellerID),
		attribute.String("product.id", link.ProductID),
	)
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findLocked(link.SellerID, link.ProductID) != nil {
		err := domain.NewConflictError("seller product link", "seller already lists this product")
		span.RecordError(err)
		span.SetStatus(codes.Error, "Duplicate link")
		return err
	}
	r.links[link.ID] = link.Clone()

	r.logger.DebugContext(ctx, "Seller product link stored", slog.String("link_id", link.ID))
	span.SetStatus(codes.Ok, "Link created")
	return nil
}

// FindBySellerAndProduct retrieves the live link for a pair
func (r *SellerProductLinkRepository) FindBySellerAndProduct(ctx context.Context, sellerID, productID string) (*domain.SellerProductLink, error) {
	ctx, span := r.start(ctx, "SellerProductLinkRepository.FindBySellerAndProduct",
		attribute.String("seller.id", sellerID),
		attribute.String("product.id", productID),
	)
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	link := r.findLocked(sellerID, productID)
	if link == nil {
		return nil, r.notFound(ctx, span, "seller product link", sellerID+"/"+productID)
	}

	span.SetStatus(codes.Ok, "Link found")
	return link.Clone(), nil
}

func (r *SellerProductLinkRepository) findLocked(sellerID, productID string) *domain.SellerProductLink {
	for _, link := range r.links {
		if link.DeletedAt == nil && link.SellerID == sellerID && link.ProductID == productID {
			return link
		}
	}
	return nil
}

// SoftDelete tombstones a link
func (r *SellerProductLinkRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	ctx, span := r.start(ctx, "SellerProductLinkRepository.SoftDelete", attribute.String("link.id", id))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.links[id]
	if !ok || link.DeletedAt != nil {
		return r.notFound(ctx, span, "seller product link", id)
	}
	deleted := at.UTC()
	link.DeletedAt = &deleted
	link.UpdatedAt = deleted

	span.SetStatus(codes.Ok, "Link deleted")
	return nil
}

// ListBySeller returns a seller's live links ordered by display order
func (r *SellerProductLinkRepository) ListBySeller(ctx context.Context, sellerID string) ([]*domain.SellerProductLink, error) {
	ctx, span := r.start(ctx, "SellerProductLinkRepository.ListBySeller", attribute.String("seller.id", sellerID))
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.SellerProductLink, 0)
	for _, link := range r.links {
		if link.DeletedAt == nil && link.SellerID == sellerID {
			out = append(out, link.Clone())
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].DisplayOrder != out[b].DisplayOrder {
			return out[a].DisplayOrder < out[b].DisplayOrder
		}
		if !out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].CreatedAt.Before(out[b].CreatedAt)
		}
		return out[a].ID < out[b].ID
	})

	span.SetAttributes(attribute.Int("link.count", len(out)))
	span.SetStatus(codes.Ok, "Links listed")
	return out, nil
}
