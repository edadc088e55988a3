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

const reviewTable = "review"

// ReviewRepository is a PostgreSQL implementation of domain.ReviewRepository
type ReviewRepository struct {
	table[domain.Review]
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *sqlx.DB, tracer trace.Tracer, logger *slog.Logger) *ReviewRepository {
	return &ReviewRepository{
		table: newTable[domain.Review](store{db: db, tracer: tracer, logger: logger}, reviewTable, "review"),
	}
}

// Create stores a new review
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	ctx, span := r.start(ctx, "ReviewRepository.Create", attribute.String("review.id", review.ID))
	defer span.End()

	if err := r.insert(ctx, span, review); err != nil {
		return err
	}
	ok(span, "Review created")
	return nil
}

// FindByID retrieves a live review
func (r *ReviewRepository) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	ctx, span := r.start(ctx, "ReviewRepository.FindByID", attribute.String("review.id", id))
	defer span.End()

	review, err := r.get(ctx, span, id)
	if err != nil {
		return nil, err
	}
	ok(span, "Review found")
	return review, nil
}

// Update overwrites a live review
func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	ctx, span := r.start(ctx, "ReviewRepository.Update", attribute.String("review.id", review.ID))
	defer span.End()

	if err := r.update(ctx, span, review.ID, review); err != nil {
		return err
	}
	ok(span, "Review updated")
	return nil
}

// ListByProduct returns a product's live reviews newest first
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string, status *domain.ReviewStatus) ([]*domain.Review, error) {
	ctx, span := r.start(ctx, "ReviewRepository.ListByProduct", attribute.String("product.id", productID))
	defer span.End()

	reviews, err := r.selectAll(ctx, span, false, func(sb *sqlbuilder.SelectBuilder) []string {
		where := []string{sb.Equal("product_id", productID)}
		if status != nil {
			where = append(where, sb.Equal("status", string(*status)))
		}
		return where
	}, "created_at DESC", "id ASC")
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("review.count", len(reviews)))
	ok(span, "Reviews listed")
	return reviews, nil
}

// List returns a page of reviews ordered by creation time
func (r *ReviewRepository) List(ctx context.Context, filter domain.ReviewFilter, page domain.Pagination, newestFirst bool) ([]*domain.Review, int, error) {
	ctx, span := r.start(ctx, "ReviewRepository.List")
	defer span.End()

	order := "created_at ASC"
	if newestFirst {
		order = "created_at DESC"
	}

	reviews, total, err := r.page(ctx, span, filter.IncludeDeleted, func(sb *sqlbuilder.SelectBuilder) []string {
		var where []string
		if filter.ProductID != nil {
			where = append(where, sb.Equal("product_id", *filter.ProductID))
		}
		if filter.CustomerID != nil {
			where = append(where, sb.Equal("customer_id", *filter.CustomerID))
		}
		if filter.Status != nil {
			where = append(where, sb.Equal("status", string(*filter.Status)))
		}
		return where
	}, page, order, "id ASC")
	if err != nil {
		return nil, 0, err
	}

	span.SetAttributes(attribute.Int("review.count", len(reviews)))
	ok(span, "Reviews listed")
	return reviews, total, nil
}
