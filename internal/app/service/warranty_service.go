package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mrops-br/marketplace-ops-api/internal/app/dto"
	"github.com/mrops-br/marketplace-ops-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// WarrantyService registers warranties and runs the claim workflow
type WarrantyService struct {
	instruments
	warranties         domain.WarrantyRepository
	claims             domain.WarrantyClaimRepository
	registeredCounter  metric.Int64Counter
	claimsSubmittedCtr metric.Int64Counter
	now                func() time.Time
}

// NewWarrantyService creates a new warranty lifecycle service
func NewWarrantyService(
	warranties domain.WarrantyRepository,
	claims domain.WarrantyClaimRepository,
	publisher domain.EventPublisher,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *WarrantyService {
	registeredCounter, _ := meter.Int64Counter(
		"warranties.registered.total",
		metric.WithDescription("Total number of warranties registered"),
	)

	claimsSubmittedCtr, _ := meter.Int64Counter(
		"warranty_claims.submitted.total",
		metric.WithDescription("Total number of warranty claims submitted"),
	)

	return &WarrantyService{
		instruments:        newInstruments("warranty_lifecycle", publisher, tracer, meter, logger),
		warranties:         warranties,
		claims:             claims,
		registeredCounter:  registeredCounter,
		claimsSubmittedCtr: claimsSubmittedCtr,
		now:                func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an active warranty whose end date is start plus the duration in calendar months
func (s *WarrantyService) Register(ctx context.Context, req *dto.RegisterWarrantyRequest) (*dto.WarrantyResponse, error) {
	const op = "register"
	ctx, span := s.tracer.Start(ctx, "WarrantyService.Register")
	defer span.End()

	duration := domain.DefaultWarrantyMonths
	if req.DurationMonths != nil {
		duration = *req.DurationMonths
	}

	span.SetAttributes(
		attribute.String("product.id", req.ProductID),
		attribute.String("warranty.type", req.Type),
		attribute.Int("warranty.duration_months", duration),
	)

	w, err := domain.NewWarranty(domain.WarrantyParams{
		ProductID:      req.ProductID,
		CustomerEmail:  req.CustomerEmail,
		Type:           domain.WarrantyType(req.Type),
		DurationMonths: duration,
		OrderID:        req.OrderID,
		OrderItemID:    req.OrderItemID,
		Terms:          req.Terms,
	}, s.now())
	if err != nil {
		return nil, s.fail(ctx, span, op, err, slog.String("product_id", req.ProductID))
	}

	span.SetAttributes(attribute.String("warranty.id", w.ID))

	if err := s.warranties.Create(ctx, w); err != nil {
		return nil, s.fail(ctx, span, op, fmt.Errorf("store warranty: %w", err), slog.String("warranty_id", w.ID))
	}

	s.registeredCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("type", string(w.Type))))
	s.publish(ctx, domain.NewEvent(domain.EventWarrantyRegistered, "warranty", w.ID, map[string]any{
		"product_id": w.ProductID,
		"end_date":   w.EndDate,
	}))
	s.succeed(ctx, span, op, "Warranty registered",
		slog.String("warranty_id", w.ID),
		slog.Time("end_date", w.EndDate),
	)
	return dto.ToWarrantyResponse(w, w.EffectiveStatus(s.now())), nil
}

// SubmitClaim files a claim. Only the warranty's own customer may claim against it.
func (s *WarrantyService) SubmitClaim(ctx context.Context, warrantyID string, req *dto.SubmitClaimRequest) (*dto.ClaimResponse, error) {
	const op = "submitClaim"
	ctx, span := s.tracer.Start(ctx, "WarrantyService.SubmitClaim")
	defer span.End()

	span.SetAttributes(attribute.String("warranty.id", warrantyID))

	if err := domain.ValidateClaimInput(req.CustomerEmail, req.IssueDescription); err != nil {
		return nil, s.fail(ctx, span, op, err, slog.String("warranty_id", warrantyID))
	}

	w, err := s.warranties.FindByID(ctx, warrantyID)
	if err != nil {
		return nil, s.fail(ctx, span, op, err, slog.String("warranty_id", warrantyID))
	}

	claim, err := domain.NewWarrantyClaim(w, req.CustomerEmail, req.IssueDescription)
	if err != nil {
		return nil, s.fail(ctx, span, op, err, slog.String("warranty_id", warrantyID))
	}

	span.SetAttributes(attribute.String("claim.id", claim.ID))

	if err := s.claims.Create(ctx, claim); err != nil {
		return nil, s.fail(ctx, span, op, fmt.Errorf("store warranty claim: %w", err),
			slog.String("warranty_id", warrantyID),
			slog.String("claim_id", claim.ID),
		)
	}

	s.claimsSubmittedCtr.Add(ctx, 1)
	s.publish(ctx, domain.NewEvent(domain.EventClaimSubmitted, "warranty_claim", claim.ID, map[string]any{
		"warranty_id": warrantyID,
	}))
	s.succeed(ctx, span, op, "Warranty claim submitted",
		slog.String("warranty_id", warrantyID),
		slog.String("claim_id", claim.ID),
	)
	return dto.ToClaimResponse(claim), nil
}

// GetWarranty retrieves a warranty by ID
func (s *WarrantyService) GetWarranty(ctx context.Context, id string) (*dto.WarrantyResponse, error) {
	const op = "getWarranty"
	ctx, span := s.tracer.Start(ctx, "WarrantyService.GetWarranty")
	defer span.End()

	span.SetAttributes(attribute.String("warranty.id", id))

	w, err := s.warranties.FindByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, span, op, err, slog.String("warranty_id", id))
	}

	s.succeed(ctx, span, op, "Warranty retrieved", slog.String("warranty_id", id))
	return dto.ToWarrantyResponse(w, w.EffectiveStatus(s.now())), nil
}

// UpdateWarranty applies an admin patch. end_date is taken as given and
// nothing else is recomputed.
func (s *WarrantyService) UpdateWarranty(ctx context.Context, id string, req *dto.UpdateWarrantyRequest) (*dto.WarrantyResponse, error) {
	const op = "updateWarranty"
	ctx, span := s.tracer.Start(ctx, "WarrantyService.UpdateWarranty")
	defer span.End()

	span.SetAttributes(attribute.String("warranty.id", id))

	w, err := s.warranties.FindByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, span, op, err, slog.String("warranty_id", id))
	}

	if req.Status != nil {
		if err := w.SetStatus(domain.WarrantyStatus(*req.Status), s.now()); err != nil {
			return nil, s.fail(ctx, span, op, err, slog.String("warranty_id", id))
		}
	}
	if req.EndDate != nil {
		w.EndDate = req.EndDate.UTC()
	}
	if req.Terms != nil {
		w.Terms = domain.StringPtr(*req.Terms)
	}
	w.UpdatedAt = s.now()

	if err := s.warranties.Update(ctx, w); err != nil {
		return nil, s.fail(ctx, span, op, fmt.Errorf("update warranty: %w", err), slog.String("warranty_id", id))
	}

	s.succeed(ctx, span, op, "Warranty updated", slog.String("warranty_id", id))
	return dto.ToWarrantyResponse(w, w.EffectiveStatus(s.now())), nil
}

// ListWarranties returns a page of warranties with the total count
func (s *WarrantyService) ListWarranties(ctx context.Context, filter domain.WarrantyFilter, page domain.Pagination) (*dto.WarrantyListResponse, error) {
	const op = "listWarranties"
	ctx, span := s.tracer.Start(ctx, "WarrantyService.ListWarranties")
	defer span.End()

	if filter.Status != nil && !filter.Status.Valid() {
		return nil, s.fail(ctx, span, op, domain.NewValidationError("status", "must be active, expired or void"))
	}

	now := s.now()
	filter.AsOf = now
	warranties, total, err := s.warranties.List(ctx, filter, page.Normalize())
	if err != nil {
		return nil, s.fail(ctx, span, op, fmt.Errorf("list warranties: %w", err))
	}

	out := make([]*dto.WarrantyResponse, len(warranties))
	for i, w := range warranties {
		out[i] = dto.ToWarrantyResponse(w, w.EffectiveStatus(now))
	}

	span.SetAttributes(attribute.Int("warranty.count", len(out)))
	s.succeed(ctx, span, op, "Warranties listed", slog.Int("count", len(out)), slog.Int("total", total))
	return &dto.WarrantyListResponse{Warranties: out, Count: total}, nil
}

// GetClaim retrieves a warranty claim by ID
func (s *WarrantyService) GetClaim(ctx context.Context, id string) (*dto.ClaimResponse, error) {
	const op = "getClaim"
	ctx, span := s.tracer.Start(ctx, "WarrantyService.GetClaim")
	defer span.End()

	span.SetAttributes(attribute.String("claim.id", id))

	claim, err := s.claims.FindByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, span, op, err, slog.String("claim_id", id))
	}

	s.succeed(ctx, span, op, "Warranty claim retrieved", slog.String("claim_id", id))
	return dto.ToClaimResponse(claim), nil
}

// UpdateClaim applies an admin patch. Any known status is accepted; jumps
// outside the usual workflow are logged.
func (s *WarrantyService) UpdateClaim(ctx context.Context, id string, req *dto.UpdateClaimRequest) (*dto.ClaimResponse, error) {
	const op = "updateClaim"
	ctx, span := s.tracer.Start(ctx, "WarrantyService.UpdateClaim")
	defer span.End()

	span.SetAttributes(attribute.String("claim.id", id))

	claim, err := s.claims.FindByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, span, op, err, slog.String("claim_id", id))
	}

	if req.Status != nil {
		next := domain.ClaimStatus(*req.Status)
		if !next.Valid() {
			return nil, s.fail(ctx, span, op,
				domain.NewValidationError("status", "must be submitted, in_review, approved, rejected or completed"),
				slog.String("claim_id", id))
		}
		if next != claim.Status && !claim.Status.CanTransitionTo(next) {
			s.logger.WarnContext(ctx, "Warranty claim moved outside the usual workflow",
				slog.String("claim_id", id),
				slog.String("from", string(claim.Status)),
				slog.String("to", string(next)),
			)
		}
		claim.Status = next
	}
	if req.AdminNotes != nil {
		claim.AdminNotes = domain.StringPtr(*req.AdminNotes)
	}
	claim.UpdatedAt = s.now()

	if err := s.claims.Update(ctx, claim); err != nil {
		return nil, s.fail(ctx, span, op, fmt.Errorf("update warranty claim: %w", err), slog.String("claim_id", id))
	}

	s.succeed(ctx, span, op, "Warranty claim updated", slog.String("claim_id", id), slog.String("status", string(claim.Status)))
	return dto.ToClaimResponse(claim), nil
}

// ListClaims returns a page of claims with the total count
func (s *WarrantyService) ListClaims(ctx context.Context, filter domain.ClaimFilter, page domain.Pagination) (*dto.ClaimListResponse, error) {
	const op = "listClaims"
	ctx, span := s.tracer.Start(ctx, "WarrantyService.ListClaims")
	defer span.End()

	if filter.Status != nil && !filter.Status.Valid() {
		return nil, s.fail(ctx, span, op, domain.NewValidationError("status", "unknown claim status"))
	}

	claims, total, err := s.claims.List(ctx, filter, page.Normalize())
	if err != nil {
		return nil, s.fail(ctx, span, op, fmt.Errorf("list warranty claims: %w", err))
	}

	span.SetAttributes(attribute.Int("claim.count", len(claims)))
	s.succeed(ctx, span, op, "Warranty claims listed", slog.Int("count", len(claims)), slog.Int("total", total))
	return &dto.ClaimListResponse{Claims: dto.ToClaimResponseList(claims), Count: total}, nil
}
