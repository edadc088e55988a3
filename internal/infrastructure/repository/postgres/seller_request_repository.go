package postgres

import (
	"context"
	"log/slog"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	"github.com/mrops-br/marketplace-ops-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const sellerRequestTable = "seller_request"

// SellerRequestRepository is a PostgreSQL implementation of domain.SellerRequestRepository
type SellerRequestRepository struct {
	table[domain.SellerRequest]
}

// NewSellerRequestRepository creates a new seller request repository
func NewSellerRequestRepository(db *sqlx.DB, tracer trace.Tracer, logger *slog.Logger) *SellerRequestRepository {
	return &SellerRequestRepository{
		table: newTable[domain.SellerRequest](store{db: db, tracer: tracer, logger: logger}, sellerRequestTable, "seller request"),
	}
}

// Create stores a new seller request
func (r *SellerRequestRepository) Create(ctx context.Context, req *domain.SellerRequest) error {
	ctx, span := r.start(ctx, "SellerRequestRepository.Create", attribute.String("seller_request.id", req.ID))
	defer span.End()

	if err := r.insert(ctx, span, req); err != nil {
		return err
	}
	ok(span, "Seller request created")
	return nil
}

// FindByID retrieves a live seller request
func (r *SellerRequestRepository) FindByID(ctx context.Context, id string) (*domain.SellerRequest, error) {
	ctx, span := r.start(ctx, "SellerRequestRepository.FindByID", attribute.String("seller_request.id", id))
	defer span.End()

	req, err := r.get(ctx, span, id)
	if err != nil {
		return nil, err
	}
	ok(span, "Seller request found")
	return req, nil
}

// Update overwrites a live seller request
func (r *SellerRequestRepository) Update(ctx context.Context, req *domain.SellerRequest) error {
	ctx, span := r.start(ctx, "SellerRequestRepository.Update", attribute.String("seller_request.id", req.ID))
	defer span.End()

	if err := r.update(ctx, span, req.ID, req); err != nil {
		return err
	}
	ok(span, "Seller request updated")
	return nil
}

// List returns seller requests newest first
func (r *SellerRequestRepository) List(ctx context.Context, filter domain.SellerRequestFilter) ([]*domain.SellerRequest, error) {
	ctx, span := r.start(ctx, "SellerRequestRepository.List")
	defer span.End()

	reqs, err := r.selectAll(ctx, span, filter.IncludeDeleted, func(sb *sqlbuilder.SelectBuilder) []string {
		var where []string
		if filter.Status != nil {
			where = append(where, sb.Equal("status", string(*filter.Status)))
		}
		return where
	}, "created_at DESC", "id ASC")
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("seller_request.count", len(reqs)))
	ok(span, "Seller requests listed")
	return reqs, nil
}
