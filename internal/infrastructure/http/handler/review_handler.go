package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/mrops-br/marketplace-ops-api/internal/app/dto"
	"github.com/mrops-br/marketplace-ops-api/internal/app/service"
	"github.com/mrops-br/marketplace-ops-api/internal/domain"
	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/auth"
	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/http/response"
)

// ReviewHandler handles HTTP requests for product reviews
type ReviewHandler struct {
	binder
	service *service.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(service *service.ReviewService, validate *validator.Validate, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		binder:  binder{validate: validate, logger: logger},
		service: service,
	}
}

// Submit handles POST /products/{productId}/reviews. The reviewer is the
// authenticated actor.
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, errors.New("authentication required"))
		return
	}

	var req dto.SubmitReviewRequest
	if err := h.bind(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	review, err := h.service.Submit(r.Context(), chi.URLParam(r, "productId"), actor.ID, &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, review)
}

// ListForProduct handles GET /products/{productId}/reviews
func (h *ReviewHandler) ListForProduct(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.ListForProduct(r.Context(), chi.URLParam(r, "productId"), optionalQuery(r, "status"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, reviews)
}

// ListReviews handles GET /reviews, the moderation queue
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	page, err := pagination(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	newestFirst := true
	if sort := optionalQuery(r, "sort"); sort != nil {
		switch *sort {
		case "newest":
		case "oldest":
			newestFirst = false
		default:
			h.fail(w, r, domain.NewValidationError("sort", "must be newest or oldest"))
			return
		}
	}

	filter := domain.ReviewFilter{
		ProductID:  optionalQuery(r, "product_id"),
		CustomerID: optionalQuery(r, "customer_id"),
	}
	if status := optionalQuery(r, "status"); status != nil {
		st := domain.ReviewStatus(*status)
		filter.Status = &st
	}

	reviews, err := h.service.ListWithFilter(r.Context(), filter, page, newestFirst)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, reviews)
}

// GetReview handles GET /reviews/{id}
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	review, err := h.service.GetReview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, review)
}

// Moderate handles PATCH /reviews/{id}
func (h *ReviewHandler) Moderate(w http.ResponseWriter, r *http.Request) {
	var req dto.ModerateReviewRequest
	if err := h.bind(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	var (
		review *dto.ReviewResponse
		err    error
	)
	id := chi.URLParam(r, "id")
	if domain.ReviewStatus(req.Status) == domain.ReviewApproved {
		review, err = h.service.Approve(r.Context(), id)
	} else {
		review, err = h.service.Reject(r.Context(), id)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, review)
}
