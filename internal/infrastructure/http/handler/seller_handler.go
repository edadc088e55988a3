package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/mrops-br/marketplace-ops-api/internal/app/dto"
	"github.com/mrops-br/marketplace-ops-api/internal/app/service"
	"github.com/mrops-br/marketplace-ops-api/internal/domain"
	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/http/response"
)

// SellerHandler handles HTTP requests for the seller directory and the
// products each seller lists
type SellerHandler struct {
	binder
	sellers      *service.SellerService
	associations *service.AssociationService
}

// NewSellerHandler creates a new seller handler
func NewSellerHandler(
	sellers *service.SellerService,
	associations *service.AssociationService,
	validate *validator.Validate,
	logger *slog.Logger,
) *SellerHandler {
	return &SellerHandler{
		binder:       binder{validate: validate, logger: logger},
		sellers:      sellers,
		associations: associations,
	}
}

// CreateSeller handles POST /sellers
func (h *SellerHandler) CreateSeller(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSellerRequest
	if err := h.bind(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	seller, err := h.sellers.CreateSeller(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, seller)
}

// ListSellers handles GET /sellers
func (h *SellerHandler) ListSellers(w http.ResponseWriter, r *http.Request) {
	page, err := pagination(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	filter := domain.SellerFilter{Email: optionalQuery(r, "email")}
	if status := optionalQuery(r, "status"); status != nil {
		st := domain.SellerStatus(*status)
		filter.Status = &st
	}

	sellers, err := h.sellers.ListSellers(r.Context(), filter, page)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, sellers)
}

// GetSeller handles GET /sellers/{id}
func (h *SellerHandler) GetSeller(w http.ResponseWriter, r *http.Request) {
	seller, err := h.sellers.GetSeller(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, seller)
}

// UpdateSeller handles PATCH /sellers/{id}
func (h *SellerHandler) UpdateSeller(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateSellerRequest
	if err := h.bind(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	seller, err := h.sellers.UpdateSeller(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, seller)
}

// DeleteSeller handles DELETE /sellers/{id}
func (h *SellerHandler) DeleteSeller(w http.ResponseWriter, r *http.Request) {
	if err := h.sellers.DeleteSeller(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}

	response.NoContent(w)
}

// AddProduct handles POST /sellers/{id}/products
func (h *SellerHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.AddSellerProductRequest
	if err := h.bind(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	link, err := h.associations.AddProduct(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, link)
}

// RemoveProduct handles DELETE /sellers/{id}/products/{productId}
func (h *SellerHandler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	err := h.associations.RemoveProduct(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "productId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.NoContent(w)
}

// ListProducts handles GET /sellers/{id}/products
func (h *SellerHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	links, err := h.associations.ListProductsForSeller(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, links)
}
