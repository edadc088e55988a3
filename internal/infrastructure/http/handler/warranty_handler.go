package handler

import (
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

// WarrantyHandler handles HTTP requests for warranties and their claims
type WarrantyHandler struct {
	binder
	service *service.WarrantyService
}

// NewWarrantyHandler creates a new warranty handler
func NewWarrantyHandler(service *service.WarrantyService, validate *validator.Validate, logger *slog.Logger) *WarrantyHandler {
	return &WarrantyHandler{
		binder:  binder{validate: validate, logger: logger},
		service: service,
	}
}

// Register handles POST /warranties
func (h *WarrantyHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterWarrantyRequest
	if err := h.bind(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	warranty, err := h.service.Register(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, warranty)
}

// ListWarranties handles GET /warranties
func (h *WarrantyHandler) ListWarranties(w http.ResponseWriter, r *http.Request) {
	page, err := pagination(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	filter := domain.WarrantyFilter{
		ProductID:     optionalQuery(r, "product_id"),
		CustomerEmail: optionalQuery(r, "customer_email"),
		OrderID:       optionalQuery(r, "order_id"),
	}
	if status := optionalQuery(r, "status"); status != nil {
		st := domain.WarrantyStatus(*status)
		filter.Status = &st
	}

	warranties, err := h.service.ListWarranties(r.Context(), filter, page)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, warranties)
}

// GetWarranty handles GET /warranties/{id}
func (h *WarrantyHandler) GetWarranty(w http.ResponseWriter, r *http.Request) {
	warranty, err := h.service.GetWarranty(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, warranty)
}

// UpdateWarranty handles PATCH /warranties/{id}
func (h *WarrantyHandler) UpdateWarranty(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateWarrantyRequest
	if err := h.bind(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	warranty, err := h.service.UpdateWarranty(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, warranty)
}

// SubmitClaim handles POST /warranties/{id}/claims. A customer token pins the
// claimant to the token's email; otherwise the body names the customer.
func (h *WarrantyHandler) SubmitClaim(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitClaimRequest
	if err := h.bind(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	if actor, ok := auth.ActorFromContext(r.Context()); ok && !actor.IsAdmin() {
		req.CustomerEmail = actor.Email
	}

	claim, err := h.service.SubmitClaim(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, claim)
}

// ListClaims handles GET /warranty-claims
func (h *WarrantyHandler) ListClaims(w http.ResponseWriter, r *http.Request) {
	page, err := pagination(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	filter := domain.ClaimFilter{
		WarrantyID:    optionalQuery(r, "warranty_id"),
		CustomerEmail: optionalQuery(r, "customer_email"),
	}
	if status := optionalQuery(r, "status"); status != nil {
		st := domain.ClaimStatus(*status)
		filter.Status = &st
	}

	claims, err := h.service.ListClaims(r.Context(), filter, page)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, claims)
}

// GetClaim handles GET /warranty-claims/{id}
func (h *WarrantyHandler) GetClaim(w http.ResponseWriter, r *http.Request) {
	claim, err := h.service.GetClaim(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, claim)
}

// UpdateClaim handles PATCH /warranty-claims/{id}
func (h *WarrantyHandler) UpdateClaim(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateClaimRequest
	if err := h.bind(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	claim, err := h.service.UpdateClaim(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, claim)
}
