package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	"github.com/mrops-br/marketplace-ops-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const sellerProductLinkTable = "seller_product_link"

// SellerProductLinkRepository is a PostgreSQL implementation of
// domain.SellerProductLinkRepository. A partial unique index keeps one live
// link per seller and product.
type SellerProductLinkRepository struct {
	table[domain.SellerProductLink]
}

// NewSellerProductLinkRepository creates a new link repository
func NewSellerProductLinkRepository(db *sqlx.DB, tracer trace.Tracer, logger *slog.Logger) *SellerProductLinkRepository {
	return &SellerProductLinkRepository{
		table: newTable[domain.SellerProductLink](store{db: db, tracer: tracer, logger: logger}, sellerProductLinkTable, "seller product link"),
	}
}

// Create stores a new link, returning a *domain.ConflictError for a duplicate live pair
func (r *SellerProductLinkRepository) Create(ctx context.Context, link *domain.SellerProductLink) error {
	ctx, span := r.start(ctx, "SellerProductLinkRepository.Create",
		attribute.String("seller.id", link.SellerID),
		attribute.String("product.id", link.ProductID),
	)
	defer span.End()

	if err := r.insert(ctx, span, link); err != nil {
		if isUniqueViolation(err) {
			conflict := domain.NewConflictError("seller product link", "seller already lists this product")
			span.RecordError(conflict)
			span.SetStatus(codes.Error, "Duplicate link")
			return conflict
		}
		return err
	}
	ok(span, "Link created")
	return nil
}

// FindBySellerAndProduct retrieves the live link for a pair
func (r *SellerProductLinkRepository) FindBySellerAndProduct(ctx context.Context, sellerID, productID string) (*domain.SellerProductLink, error) {
	ctx, span := r.start(ctx, "SellerProductLinkRepository.FindBySellerAndProduct",
		attribute.String("seller.id", sellerID),
		attribute.String("product.id", productID),
	)
	defer span.End()

	link, err := r.first(ctx, span, sellerID+"/"+productID, func(sb *sqlbuilder.SelectBuilder) []string {
		return []string{sb.Equal("seller_id", sellerID), sb.Equal("product_id", productID)}
	})
	if err != nil {
		return nil, err
	}
	ok(span, "Link found")
	return link, nil
}

// SoftDelete tombstones a link
func (r *SellerProductLinkRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	ctx, span := r.start(ctx, "SellerProductLinkRepository.SoftDelete", attribute.String("link.id", id))
	defer span.End()

	if err := r.softDelete(ctx, span, id, at); err != nil {
		return err
	}
	ok(span, "Link deleted")
	return nil
}

// ListBySeller returns a seller's live links ordered by display order
func (r *SellerProductLinkRepository) ListBySeller(ctx context.Context, sellerID string) ([]*domain.SellerProductLink, error) {
	ctx, span := r.start(ctx, "SellerProductLinkRepository.ListBySeller", attribute.String("seller.id", sellerID))
	defer span.End()

	links, err := r.selectAll(ctx, span, false, func(sb *sqlbuilder.SelectBuilder) []string {
		return []string{sb.Equal("seller_id", sellerID)}
	}, "display_order ASC", "created_at ASC", "id ASC")
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("link.count", len(links)))
	ok(span, "Links listed")
	return links, nil
}
