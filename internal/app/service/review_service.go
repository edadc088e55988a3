package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mrops-br/marketplace-ops-api/internal/app/dto"
	"github.com/mrops-br/marketplace-ops-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ReviewService accepts and moderates customer reviews
type ReviewService struct {
	instruments
	repo             domain.ReviewRepository
	submittedCounter metric.Int64Counter
}

// NewReviewService creates a new review moderation service
func NewReviewService(
	repo domain.ReviewRepository,
	publisher domain.EventPublisher,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *ReviewService {
	submittedCounter, _ := meter.Int64Counter(
		"reviews.submitted.total",
		metric.WithDescription("Total number of reviews submitted"),
	)

	return &ReviewService{
		instruments:      newInstruments("review_moderation", publisher, tracer, meter, logger),
		repo:             repo,
		submittedCounter: submittedCounter,
	}
}

// Submit records a pending review from customerID
func (s *ReviewService) Submit(ctx context.Context, productID, customerID string, req *dto.SubmitReviewRequest) (*dto.ReviewResponse, error) {
	const op = "submit"
	ctx, span := s.tracer.Start(ctx, "ReviewService.Submit")
	defer span.End()

	span.SetAttributes(
		attribute.String("product.id", productID),
		attribute.Int("review.rating", req.Rating),
	)

	review, err := domain.NewReview(productID, customerID, req.Rating, req.Title, req.Content)
	if err != nil {
		return nil, s.fail(ctx, span, op, err, slog.String("product_id", productID))
	}

	span.SetAttributes(attribute.String("review.id", review.ID))

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, s.fail(ctx, span, op, fmt.Errorf("store review: %w", err), slog.String("review_id", review.ID))
	}

	s.submittedCounter.Add(ctx, 1)
	s.publish(ctx, domain.NewEvent(domain.EventReviewSubmitted, "review", review.ID, map[string]any{
		"product_id": review.ProductID,
		"rating":     review.Rating,
	}))
	s.succeed(ctx, span, op, "Review submitted", slog.String("review_id", review.ID))
	return dto.ToReviewResponse(review), nil
}

// Approve publishes a pending review
func (s *ReviewService) Approve(ctx context.Context, id string) (*dto.ReviewResponse, error) {
	return s.moderate(ctx, "approve", id, domain.ReviewApproved)
}

// Reject hides a pending review
func (s *ReviewService) Reject(ctx context.Context, id string) (*dto.ReviewResponse, error) {
	return s.moderate(ctx, "reject", id, domain.ReviewRejected)
}

func (s *ReviewService) moderate(ctx context.Context, op, id string, status domain.ReviewStatus) (*dto.ReviewResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.Moderate")
	defer span.End()

	span.SetAttributes(
		attribute.String("review.id", id),
		attribute.String("review.status", string(status)),
	)

	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, span, op, err, slog.String("review_id", id))
	}

	previous := review.Status
	if err := review.Moderate(status); err != nil {
		return nil, s.fail(ctx, span, op, err, slog.String("review_id", id))
	}

	if previous != review.Status {
		if err := s.repo.Update(ctx, review); err != nil {
			return nil, s.fail(ctx, span, op, fmt.Errorf("update review: %w", err), slog.String("review_id", id))
		}
		s.publish(ctx, domain.NewEvent(domain.EventReviewModerated, "review", id, map[string]any{
			"product_id": review.ProductID,
			"status":     string(review.Status),
		}))
	}

	s.succeed(ctx, span, op, "Review moderated", slog.String("review_id", id), slog.String("status", string(status)))
	return dto.ToReviewResponse(review), nil
}

// GetReview retrieves a review by ID
func (s *ReviewService) GetReview(ctx context.Context, id string) (*dto.ReviewResponse, error) {
	const op = "getReview"
	ctx, span := s.tracer.Start(ctx, "ReviewService.GetReview")
	defer span.End()

	span.SetAttributes(attribute.String("review.id", id))

	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, span, op, err, slog.String("review_id", id))
	}

	s.succeed(ctx, span, op, "Review retrieved", slog.String("review_id", id))
	return dto.ToReviewResponse(review), nil
}

// ListForProduct lists a product's reviews, optionally by status, with the
// average rating over its approved reviews.
func (s *ReviewService) ListForProduct(ctx context.Context, productID string, status *string) (*dto.ProductReviewsResponse, error) {
	const op = "listForProduct"
	ctx, span := s.tracer.Start(ctx, "ReviewService.ListForProduct")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", productID))

	var statusFilter *domain.ReviewStatus
	if status != nil {
		st := domain.ReviewStatus(*status)
		if !st.Valid() {
			return nil, s.fail(ctx, span, op, domain.NewValidationError("status", "must be pending, approved or rejected"),
				slog.String("product_id", productID))
		}
		statusFilter = &st
	}

	all, err := s.repo.ListByProduct(ctx, productID, nil)
	if err != nil {
		return nil, s.fail(ctx, span, op, fmt.Errorf("list product reviews: %w", err), slog.String("product_id", productID))
	}

	average, approved := domain.AverageRating(all)

	selected := all
	if statusFilter != nil {
		selected = make([]*domain.Review, 0, len(all))
		for _, r := range all {
			if r.Status == *statusFilter {
				selected = append(selected, r)
			}
		}
	}

	span.SetAttributes(
		attribute.Int("review.count", len(selected)),
		attribute.Int("review.approved_count", approved),
	)
	s.succeed(ctx, span, op, "Product reviews listed",
		slog.String("product_id", productID),
		slog.Int("count", len(selected)),
	)
	return &dto.ProductReviewsResponse{
		Reviews: dto.ToReviewResponseList(selected),
		Average: average,
		Count:   approved,
	}, nil
}

// ListWithFilter is the admin moderation queue
func (s *ReviewService) ListWithFilter(ctx context.Context, filter domain.ReviewFilter, page domain.Pagination, newestFirst bool) (*dto.ReviewListResponse, error) {
	const op = "listWithFilter"
	ctx, span := s.tracer.Start(ctx, "ReviewService.ListWithFilter")
	defer span.End()

	if filter.Status != nil && !filter.Status.Valid() {
		return nil, s.fail(ctx, span, op, domain.NewValidationError("status", "must be pending, approved or rejected"))
	}

	reviews, total, err := s.repo.List(ctx, filter, page.Normalize(), newestFirst)
	if err != nil {
		return nil, s.fail(ctx, span, op, fmt.Errorf("list reviews: %w", err))
	}

	span.SetAttributes(attribute.Int("review.count", len(reviews)))
	s.succeed(ctx, span, op, "Reviews listed", slog.Int("count", len(reviews)), slog.Int("total", total))
	return &dto.ReviewListResponse{Reviews: dto.ToReviewResponseList(reviews), Count: total}, nil
}
