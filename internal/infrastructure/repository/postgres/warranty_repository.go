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

const (
	warrantyTable      = "warranty"
	warrantyClaimTable = "warranty_claim"
)

// WarrantyRepository is a PostgreSQL implementation of domain.WarrantyRepository
type WarrantyRepository struct {
	table[domain.Warranty]
}

// NewWarrantyRepository creates a new warranty repository
func NewWarrantyRepository(db *sqlx.DB, tracer trace.Tracer, logger *slog.Logger) *WarrantyRepository {
	return &WarrantyRepository{
		table: newTable[domain.Warranty](store{db: db, tracer: tracer, logger: logger}, warrantyTable, "warranty"),
	}
}

// Create stores a new warranty
func (r *WarrantyRepository) Create(ctx context.Context, w *domain.Warranty) error {
	ctx, span := r.start(ctx, "WarrantyRepository.Create", attribute.String("warranty.id", w.ID))
	defer span.End()

	if err := r.insert(ctx, span, w); err != nil {
		return err
	}
	ok(span, "Warranty created")
	return nil
}

// FindByID retrieves a live warranty
func (r *WarrantyRepository) FindByID(ctx context.Context, id string) (*domain.Warranty, error) {
	ctx, span := r.start(ctx, "WarrantyRepository.FindByID", attribute.String("warranty.id", id))
	defer span.End()

	w, err := r.get(ctx, span, id)
	if err != nil {
		return nil, err
	}
	ok(span, "Warranty found")
	return w, nil
}

// Update overwrites a live warranty
func (r *WarrantyRepository) Update(ctx context.Context, w *domain.Warranty) error {
	ctx, span := r.start(ctx, "WarrantyRepository.Update", attribute.String("warranty.id", w.ID))
	defer span.End()

	if err := r.update(ctx, span, w.ID, w); err != nil {
		return err
	}
	ok(span, "Warranty updated")
	return nil
}

// List returns a page of warranties newest first
func (r *WarrantyRepository) List(ctx context.Context, filter domain.WarrantyFilter, page domain.Pagination) ([]*domain.Warranty, int, error) {
	ctx, span := r.start(ctx, "WarrantyRepository.List")
	defer span.End()

	warranties, total, err := r.page(ctx, span, filter.IncludeDeleted, func(sb *sqlbuilder.SelectBuilder) []string {
		var where []string
		if filter.ProductID != nil {
			where = append(where, sb.Equal("product_id", *filter.ProductID))
		}
		if filter.CustomerEmail != nil {
			where = append(where, sb.Equal("customer_email", *filter.CustomerEmail))
		}
		if filter.OrderID != nil {
			where = append(where, sb.Equal("order_id", *filter.OrderID))
		}
		if filter.Status != nil {
			where = append(where, statusAsOf(sb, *filter.Status, filter.StatusAsOf()))
		}
		return where
	}, page, "created_at DESC", "id ASC")
	if err != nil {
		return nil, 0, err
	}

	span.SetAttributes(attribute.Int("warranty.count", len(warranties)))
	ok(span, "Warranties listed")
	return warranties, total, nil
}

// statusAsOf matches the effective status: an active row whose end_date has
// passed counts as expired.
func statusAsOf(sb *sqlbuilder.SelectBuilder, status domain.WarrantyStatus, asOf time.Time) string {
	switch status {
	case domain.WarrantyActive:
		return sb.And(
			sb.Equal("status", string(domain.WarrantyActive)),
			sb.GreaterEqualThan("end_date", asOf),
		)
	case domain.WarrantyExpired:
		return sb.Or(
			sb.Equal("status", string(domain.WarrantyExpired)),
			sb.And(
				sb.Equal("status", string(domain.WarrantyActive)),
				sb.LessThan("end_date", asOf),
			),
		)
	default:
		return sb.Equal("status", string(status))
	}
}

// WarrantyClaimRepository is a PostgreSQL implementation of domain.WarrantyClaimRepository
type WarrantyClaimRepository struct {
	table[domain.WarrantyClaim]
}

// NewWarrantyClaimRepository creates a new warranty claim repository
func NewWarrantyClaimRepository(db *sqlx.DB, tracer trace.Tracer, logger *slog.Logger) *WarrantyClaimRepository {
	return &WarrantyClaimRepository{
		table: newTable[domain.WarrantyClaim](store{db: db, tracer: tracer, logger: logger}, warrantyClaimTable, "warranty claim"),
	}
}

// Create stores a new claim
func (r *WarrantyClaimRepository) Create(ctx context.Context, claim *domain.WarrantyClaim) error {
	ctx, span := r.start(ctx, "WarrantyClaimRepository.Create",
		attribute.String("claim.id", claim.ID),
		attribute.String("warranty.id", claim.WarrantyID),
	)
	defer span.End()

	if err := r.insert(ctx, span, claim); err != nil {
		return err
	}
	ok(span, "Claim created")
	return nil
}

// FindByID retrieves a live claim
func (r *WarrantyClaimRepository) FindByID(ctx context.Context, id string) (*domain.WarrantyClaim, error) {
	ctx, span := r.start(ctx, "WarrantyClaimRepository.FindByID", attribute.String("claim.id", id))
	defer span.End()

	claim, err := r.get(ctx, span, id)
	if err != nil {
		return nil, err
	}
	ok(span, "Claim found")
	return claim, nil
}

// Update overwrites a live claim
func (r *WarrantyClaimRepository) Update(ctx context.Context, claim *domain.WarrantyClaim) error {
	ctx, span := r.start(ctx, "WarrantyClaimRepository.Update", attribute.String("claim.id", claim.ID))
	defer span.End()

	if err := r.update(ctx, span, claim.ID, claim); err != nil {
		return err
	}
	ok(span, "Claim updated")
	return nil
}

// List returns a page of claims newest first
func (r *WarrantyClaimRepository) List(ctx context.Context, filter domain.ClaimFilter, page domain.Pagination) ([]*domain.WarrantyClaim, int, error) {
	ctx, span := r.start(ctx, "WarrantyClaimRepository.List")
	defer span.End()

	claims, total, err := r.page(ctx, span, filter.IncludeDeleted, func(sb *sqlbuilder.SelectBuilder) []string {
		var where []string
		if filter.WarrantyID != nil {
			where = append(where, sb.Equal("warranty_id", *filter.WarrantyID))
		}
		if filter.CustomerEmail != nil {
			where = append(where, sb.Equal("customer_email", *filter.CustomerEmail))
		}
		if filter.Status != nil {
			where = append(where, sb.Equal("status", string(*filter.Status)))
		}
		return where
	}, page, "created_at DESC", "id ASC")
	if err != nil {
		return nil, 0, err
	}

	span.SetAttributes(attribute.Int("claim.count", len(claims)))
	ok(span, "Claims listed")
	return claims, total, nil
}
