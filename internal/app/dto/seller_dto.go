package dto

import (
	"time"

	"github.com/mrops-br/marketplace-ops-api/internal/domain"
)

// SubmitSellerRequestRequest is a public seller application
type SubmitSellerRequestRequest struct {
	Name          string   `json:"name" validate:"required"`
	Email         string   `json:"email" validate:"required"`
	Phone         string   `json:"phone,omitempty"`
	DocumentsURLs []string `json:"documents_urls,omitempty" validate:"omitempty,dive,url"`
	Notes         string   `json:"notes,omitempty"`
	StoreName     string   `json:"store_name,omitempty"`
}

// DecideSellerRequestRequest is an admin decision on a seller request
type DecideSellerRequestRequest struct {
	Status       string `json:"status" validate:"required,oneof=approved rejected"`
	DecisionNote string `json:"decision_note,omitempty"`
}

// SellerRequestResponse represents a seller request
type SellerRequestResponse struct {
	ID            string         `json:"id"`
	SellerName    string         `json:"seller_name"`
	Email         string         `json:"email"`
	Phone         *string        `json:"phone,omitempty"`
	DocumentsURLs []string       `json:"documents_urls"`
	Notes         *string        `json:"notes,omitempty"`
	Status        string         `json:"status"`
	DecisionNote  *string        `json:"decision_note,omitempty"`
	DecidedAt     *time.Time     `json:"decided_at,omitempty"`
	Metadata      map[string]any `json:"metadata"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// CreateSellerRequest creates a seller directly
type CreateSellerRequest struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	StoreName string `json:"store_name,omitempty"`
	Status    string `json:"status,omitempty"`
}

// UpdateSellerRequest patches a seller. Nil fields are left untouched.
type UpdateSellerRequest struct {
	Name      *string        `json:"name,omitempty"`
	Email     *string        `json:"email,omitempty"`
	Phone     *string        `json:"phone,omitempty"`
	LegalName *string        `json:"legal_name,omitempty"`
	TaxID     *string        `json:"tax_id,omitempty"`
	Address   domain.RawJSON `json:"address,omitempty"`
	LogoURL   *string        `json:"logo_url,omitempty" validate:"omitempty,url"`
	StoreName *string        `json:"store_name,omitempty"`
	Status    *string        `json:"status,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// SellerResponse represents a seller
type SellerResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Email     *string        `json:"email,omitempty"`
	Phone     *string        `json:"phone,omitempty"`
	LegalName *string        `json:"legal_name,omitempty"`
	TaxID     *string        `json:"tax_id,omitempty"`
	Address   domain.RawJSON `json:"address,omitempty"`
	LogoURL   *string        `json:"logo_url,omitempty"`
	Status    string         `json:"status"`
	StoreName string         `json:"store_name,omitempty"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// SellerListResponse is a page of sellers with the total count
type SellerListResponse struct {
	Sellers []*SellerResponse `json:"sellers"`
	Count   int               `json:"count"`
}

// AddSellerProductRequest links a product to a seller
type AddSellerProductRequest struct {
	ProductID    string `json:"product_id" validate:"required"`
	DisplayOrder int    `json:"display_order"`
}

// SellerProductLinkResponse represents a seller-product link
type SellerProductLinkResponse struct {
	ID           string    `json:"id"`
	SellerID     string    `json:"seller_id"`
	ProductID    string    `json:"product_id"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToSellerRequestResponse converts a domain SellerRequest to its response
func ToSellerRequestResponse(r *domain.SellerRequest) *SellerRequestResponse {
	docs := []string(r.DocumentsURLs.Clone())
	if docs == nil {
		docs = []string{}
	}
	return &SellerRequestResponse{
		ID:            r.ID,
		SellerName:    r.SellerName,
		Email:         r.Email,
		Phone:         r.Phone,
		DocumentsURLs: docs,
		Notes:         r.Notes,
		Status:        string(r.Status),
		DecisionNote:  r.DecisionNote,
		DecidedAt:     r.DecidedAt,
		Metadata:      r.Metadata.Map(),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// ToSellerRequestResponseList converts a list of seller requests
func ToSellerRequestResponseList(requests []*domain.SellerRequest) []*SellerRequestResponse {
	out := make([]*SellerRequestResponse, len(requests))
	for i, r := range requests {
		out[i] = ToSellerRequestResponse(r)
	}
	return out
}

// ToSellerResponse converts a domain Seller to its response
func ToSellerResponse(s *domain.Seller) *SellerResponse {
	return &SellerResponse{
		ID:        s.ID,
		Name:      s.Name,
		Email:     s.Email,
		Phone:     s.Phone,
		LegalName: s.LegalName,
		TaxID:     s.TaxID,
		Address:   s.Address.Clone(),
		LogoURL:   s.LogoURL,
		Status:    string(s.Status),
		StoreName: s.Metadata.StoreName,
		Metadata:  s.Metadata.Map(),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// ToSellerResponseList converts a list of sellers
func ToSellerResponseList(sellers []*domain.Seller) []*SellerResponse {
	out := make([]*SellerResponse, len(sellers))
	for i, s := range sellers {
		out[i] = ToSellerResponse(s)
	}
	return out
}

// ToSellerProductLinkResponse converts a domain link to its response
func ToSellerProductLinkResponse(l *domain.SellerProductLink) *SellerProductLinkResponse {
	return &SellerProductLinkResponse{
		ID:           l.ID,
		SellerID:     l.SellerID,
		ProductID:    l.ProductID,
		DisplayOrder: l.DisplayOrder,
		CreatedAt:    l.CreatedAt,
	}
}

// ToSellerProductLinkResponseList converts a list of links
func ToSellerProductLinkResponseList(links []*domain.SellerProductLink) []*SellerProductLinkResponse {
	out := make([]*SellerProductLinkResponse, len(links))
	for i, l := range links {
		out[i] = ToSellerProductLinkResponse(l)
	}
	return out
}
