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

// ProvisionQueue accepts approved seller requests for seller provisioning
// after the approval has been committed.
type ProvisionQueue interface {
	Enqueue(ctx context.Context, requestID string)
}

// OnboardingService turns seller applications into seller accounts
type OnboardingService struct {
	instruments
	requests    domain.SellerRequestRepository
	provisioner ProvisionQueue
	now         func() time.Time
}

// NewOnboardingService creates a new seller onboarding service
func NewOnboardingService(
	requests domain.SellerRequestRepository,
	provisioner ProvisionQueue,
	publisher domain.EventPublisher,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *OnboardingService {
	return &OnboardingService{
		instruments: newInstruments("seller_onboarding", publisher, tracer, meter, logger),
		requests:    requests,
		provisioner: provisioner,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SubmitRequest records a pending seller application
func (s *OnboardingService) SubmitRequest(ctx context.Context, req *dto.SubmitSellerRequestRequest) (*dto.SellerRequestResponse, error) {
	const op = "submitRequest"
	ctx, span := s.tracer.Start(ctx, "OnboardingService.SubmitRequest")
	defer span.End()

	span.SetAttributes(attribute.String("seller_request.name", req.Name))

	sellerReq, err := domain.NewSellerRequest(req.Name, req.Email, req.Phone, req.DocumentsURLs, req.Notes, req.StoreName)
	if err != nil {
		return nil, s.fail(ctx, span, op, err)
	}

	span.SetAttributes(attribute.String("seller_request.id", sellerReq.ID))

	if err := s.requests.Create(ctx, sellerReq); err != nil {
		return nil, s.fail(ctx, span, op, fmt.Errorf("store seller request: %w", err),
			slog.String("seller_request_id", sellerReq.ID))
	}

	s.publish(ctx, domain.NewEvent(domain.EventSellerRequestSubmitted, "seller_request", sellerReq.ID, map[string]any{
		"email": sellerReq.Email,
	}))
	s.succeed(ctx, span, op, "Seller request submitted", slog.String("seller_request_id", sellerReq.ID))
	return dto.ToSellerRequestResponse(sellerReq), nil
}

// Decide records an admin decision. On approval, seller provisioning is queued
// after the decision is stored; its outcome never changes this call's result.
func (s *OnboardingService) Decide(ctx context.Context, id string, req *dto.DecideSellerRequestRequest) (*dto.SellerRequestResponse, error) {
	const op = "decide"
	ctx, span := s.tracer.Start(ctx, "OnboardingService.Decide")
	defer span.End()

	span.SetAttributes(
		attribute.String("seller_request.id", id),
		attribute.String("seller_request.decision", req.Status),
	)

	status := domain.SellerRequestStatus(req.Status)
	if !status.IsDecision() {
		return nil, s.fail(ctx, span, op, domain.NewValidationError("status", "must be approved or rejected"),
			slog.String("seller_request_id", id))
	}

	sellerReq, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, span, op, err, slog.String("seller_request_id", id))
	}

	if err := sellerReq.Decide(status, req.DecisionNote, s.now()); err != nil {
		return nil, s.fail(ctx, span, op, err, slog.String("seller_request_id", id))
	}

	if err := s.requests.Update(ctx, sellerReq); err != nil {
		return nil, s.fail(ctx, span, op, fmt.Errorf("update seller request: %w", err),
			slog.String("seller_request_id", id))
	}

	s.publish(ctx, domain.NewEvent(domain.EventSellerRequestDecided, "seller_request", id, map[string]any{
		"status": string(status),
	}))

	if status == domain.SellerRequestApproved {
		s.provisioner.Enqueue(ctx, id)
	}

	s.succeed(ctx, span, op, "Seller request decided",
		slog.String("seller_request_id", id),
		slog.String("status", string(status)),
	)
	return dto.ToSellerRequestResponse(sellerReq), nil
}

// GetRequest retrieves a seller request by ID
func (s *OnboardingService) GetRequest(ctx context.Context, id string) (*dto.SellerRequestResponse, error) {
	const op = "getRequest"
	ctx, span := s.tracer.Start(ctx, "OnboardingService.GetRequest")
	defer span.End()

	span.SetAttributes(attribute.String("seller_request.id", id))

	sellerReq, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, span, op, err, slog.String("seller_request_id", id))
	}

	s.succeed(ctx, span, op, "Seller request retrieved", slog.String("seller_request_id", id))
	return dto.ToSellerRequestResponse(sellerReq), nil
}

// ListRequests lists seller requests, optionally by status
func (s *OnboardingService) ListRequests(ctx context.Context, status *string) ([]*dto.SellerRequestResponse, error) {
	const op = "listRequests"
	ctx, span := s.tracer.Start(ctx, "OnboardingService.ListRequests")
	defer span.End()

	var filter domain.SellerRequestFilter
	if status != nil {
		st := domain.SellerRequestStatus(*status)
		if st != domain.SellerRequestPending && !st.IsDecision() {
			return nil, s.fail(ctx, span, op, domain.NewValidationError("status", "must be pending, approved or rejected"))
		}
		filter.Status = &st
	}

	requests, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, s.fail(ctx, span, op, fmt.Errorf("list seller requests: %w", err))
	}

	span.SetAttributes(attribute.Int("seller_request.count", len(requests)))
	s.succeed(ctx, span, op, "Seller requests listed", slog.Int("count", len(requests)))
	return dto.ToSellerRequestResponseList(requests), nil
}
