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

// WarrantyClaimRepository is an in-memory implementation of domain.WarrantyClaimRepository
type WarrantyClaimRepository struct {
	instrumented
	mu     sync.RWMutex
	claims map[string]*domain.WarrantyClaim
}

// NewWarrantyClaimRepository creates a new in-memory claim repository
func NewWarrantyClaimRepository(tracer trace.Tracer, logger *slog.Logger) *WarrantyClaimRepository {
	return &WarrantyClaimRepository{
		instrumented: instrumented{tracer: tracer, logger: logger},
		claims:       make(map[string]*domain.WarrantyClaim),
	}
}

// Create stores a new claim
func (r *WarrantyClaimRepository) Create(ctx context.Context, c *domain.WarrantyClaim) error {
	ctx, span := r.start(ctx, "WarrantyClaimRepository.Create",
		attribute.String("claim.id", c.ID),
		attribute.String("warranty.id", c.WarrantyID),
	)
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.claims[c.ID] = c.Clone()

	r.logger.DebugContext(ctx, "Warranty claim stored", slog.String("claim_id", c.ID))
	span.SetStatus(codes.Ok, "Claim created")
	return nil
}

// FindByID retrieves a non-deleted claim by ID
func (r *WarrantyClaimRepository) FindByID(ctx context.Context, id string) (*domain.WarrantyClaim, error) {
	ctx, span := r.start(ctx, "WarrantyClaimRepository.FindByID", attribute.String("claim.id", id))
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.claims[id]
	if !ok || c.DeletedAt != nil {
		return nil, r.notFound(ctx, span, "warranty claim", id)
	}

	span.SetStatus(codes.Ok, "Claim found")
	return c.Clone(), nil
}

// Update replaces a stored claim
func (r *WarrantyClaimRepository) Update(ctx context.Context, c *domain.WarrantyClaim) error {
	ctx, span := r.start(ctx, "WarrantyClaimRepository.Update", attribute.String("claim.id", c.ID))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.claims[c.ID]
	if !ok || existing.DeletedAt != nil {
		return r.notFound(ctx, span, "warranty claim", c.ID)
	}
	r.claims[c.ID] = c.Clone()

	span.SetStatus(codes.Ok, "Claim updated")
	return nil
}

// List returns a page of claims, newest first, with the total match count
func (r *WarrantyClaimRepository) List(ctx context.Context, filter domain.ClaimFilter, page domain.Pagination) ([]*domain.WarrantyClaim, int, error) {
	ctx, span := r.start(ctx, "WarrantyClaimRepository.List")
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*domain.WarrantyClaim, 0, len(r.claims))
	for _, c := range r.claims {
		if !visible(c.DeletedAt, filter.IncludeDeleted) ||
			!matches(filter.WarrantyID, c.WarrantyID) ||
			!matches(filter.CustomerEmail, c.CustomerEmail) ||
			!matches(filter.Status, c.Status) {
			continue
		}
		all = append(all, c)
	}
	sortByCreated(all,
		func(v *domain.WarrantyClaim) time.Time { return v.CreatedAt },
		func(v *domain.WarrantyClaim) string { return v.ID },
		true,
	)

	pageItems := paginate(all, page)
	out := make([]*domain.WarrantyClaim, len(pageItems))
	for i, c := range pageItems {
		out[i] = c.Clone()
	}

	span.SetAttributes(attribute.Int("claim.count", len(out)))
	r.logger.DebugContext(ctx, "Warranty claims retrieved from repository", slog.Int("count", len(out)))
	span.SetStatus(codes.Ok, "Claims listed")
	return out, len(all), nil
}
