package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	"github.com/mrops-br/marketplace-ops-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const sellerTable = "seller"

// SellerRepository is a PostgreSQL implementation of domain.SellerRepository
type SellerRepository struct {
	table[domain.Seller]
}

// NewSellerRepository creates a new seller repository
func NewSellerRepository(db *sqlx.DB, tracer trace.Tracer, logger *slog.Logger) *SellerRepository {
	return &SellerRepository{
		table: newTable[domain.Seller](store{db: db, tracer: tracer, logger: logger}, sellerTable, "seller"),
	}
}

// Create stores a new seller
func (r *SellerRepository) Create(ctx context.Context, seller *domain.Seller) error {
	ctx, span := r.start(ctx, "SellerRepository.Create", attribute.String("seller.id", seller.ID))
	defer span.End()

	if err := r.insert(ctx, span, seller); err != nil {
		return err
	}
	ok(span, "Seller created")
	return nil
}

// FindByID retrieves a live seller
func (r *SellerRepository) FindByID(ctx context.Context, id string) (*domain.Seller, error) {
	ctx, span := r.start(ctx, "SellerRepository.FindByID", attribute.String("seller.id", id))
	defer span.End()

	seller, err := r.get(ctx, span, id)
	if err != nil {
		return nil, err
	}
	ok(span, "Seller found")
	return seller, nil
}

// FindByEmail retrieves the oldest live seller with the given email
func (r *SellerRepository) FindByEmail(ctx context.Context, email string) (*domain.Seller, error) {
	ctx, span := r.start(ctx, "SellerRepository.FindByEmail")
	defer span.End()

	seller, err := r.first(ctx, span, email, func(sb *sqlbuilder.SelectBuilder) []string {
		return []string{sb.Equal("email", email)}
	})
	if err != nil {
		return nil, err
	}
	ok(span, "Seller found")
	return seller, nil
}

// Update overwrites a live seller
func (r *SellerRepository) Update(ctx context.Context, seller *domain.Seller) error {
	ctx, span := r.start(ctx, "SellerRepository.Update", attribute.String("seller.id", seller.ID))
	defer span.End()

	if err := r.update(ctx, span, seller.ID, seller); err != nil {
		return err
	}
	ok(span, "Seller updated")
	return nil
}

// SoftDelete tombstones a seller
func (r *SellerRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	ctx, span := r.start(ctx, "SellerRepository.SoftDelete", attribute.String("seller.id", id))
	defer span.End()

	if err := r.softDelete(ctx, span, id, at); err != nil {
		return err
	}
	ok(span, "Seller deleted")
	return nil
}

// List returns a page of sellers newest first
func (r *SellerRepository) List(ctx context.Context, filter domain.SellerFilter, page domain.Pagination) ([]*domain.Seller, int, error) {
	ctx, span := r.start(ctx, "SellerRepository.List")
	defer span.End()

	sellers, total, err := r.page(ctx, span, filter.IncludeDeleted, func(sb *sqlbuilder.SelectBuilder) []string {
		var where []string
		if filter.Status != nil {
			where = append(where, sb.Equal("status", string(*filter.Status)))
		}
		if filter.Email != nil {
			where = append(where, sb.Equal("email", *filter.Email))
		}
		return where
	}, page, "created_at DESC", "id ASC")
	if err != nil {
		return nil, 0, err
	}

	span.SetAttributes(attribute.Int("seller.count", len(sellers)))
	ok(span, "Sellers listed")
	return sellers, total, nil
}
