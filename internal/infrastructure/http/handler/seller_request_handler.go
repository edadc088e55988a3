package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/mrops-br/marketplace-ops-api/internal/app/dto"
	"github.com/mrops-br/marketplace-ops-api/internal/app/service"
	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/http/response"
)

// SellerRequestHandler handles HTTP requests for seller onboarding
type SellerRequestHandler struct {
	binder
	service *service.OnboardingService
}

// NewSellerRequestHandler creates a new seller request handler
func NewSellerRequestHandler(service *service.OnboardingService, validate *validator.Validate, logger *slog.Logger) *SellerRequestHandler {
	return &SellerRequestHandler{
		binder:  binder{validate: validate, logger: logger},
		service: service,
	}
}

// SubmitRequest handles POST /seller-requests
func (h *SellerRequestHandler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitSellerRequestRequest
	if err := h.bind(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	created, err := h.service.SubmitRequest(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, created)
}

// ListRequests handles GET /seller-requests
func (h *SellerRequestHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.service.ListRequests(r.Context(), optionalQuery(r, "status"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, requests)
}

// GetRequest handles GET /seller-requests/{id}
func (h *SellerRequestHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	found, err := h.service.GetRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, found)
}

// Decide handles PATCH /seller-requests/{id}
func (h *SellerRequestHandler) Decide(w http.ResponseWriter, r *http.Request) {
	var req dto.DecideSellerRequestRequest
	if err := h.bind(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	decided, err := h.service.Decide(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, decided)
}
