package dto

import (
	"time"

	"github.com/mrops-br/marketplace-ops-api/internal/domain"
)

// RegisterWarrantyRequest registers a warranty for a purchased product
type RegisterWarrantyRequest struct {
	ProductID      string `json:"product_id" validate:"required"`
	CustomerEmail  string `json:"customer_email" validate:"required"`
	Type           string `json:"type,omitempty"`
	DurationMonths *int   `json:"duration_months,omitempty"`
	OrderID        string `json:"order_id,omitempty"`
	OrderItemID    string `json:"order_item_id,omitempty"`
	Terms          string `json:"terms,omitempty"`
}

// UpdateWarrantyRequest is an admin patch. Nil fields are left untouched.
type UpdateWarrantyRequest struct {
	Status  *string    `json:"status,omitempty"`
	EndDate *time.Time `json:"end_date,omitempty"`
	Terms   *string    `json:"terms,omitempty"`
}

// WarrantyResponse represents a warranty
type WarrantyResponse struct {
	ID             string         `json:"id"`
	ProductID      string         `json:"product_id"`
	OrderID        *string        `json:"order_id,omitempty"`
	OrderItemID    *string        `json:"order_item_id,omitempty"`
	CustomerEmail  string         `json:"customer_email"`
	Type           string         `json:"type"`
	DurationMonths int            `json:"duration_months"`
	StartDate      time.Time      `json:"start_date"`
	EndDate        time.Time      `json:"end_date"`
	Status         string         `json:"status"`
	Terms          *string        `json:"terms,omitempty"`
	Metadata       map[string]any `json:"metadata"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// WarrantyListResponse is a page of warranties with the total count
type WarrantyListResponse struct {
	Warranties []*WarrantyResponse `json:"warranties"`
	Count      int                 `json:"count"`
}

// SubmitClaimRequest files a claim against a warranty
type SubmitClaimRequest struct {
	CustomerEmail    string `json:"customer_email"`
	IssueDescription string `json:"issue_description" validate:"required"`
}

// UpdateClaimRequest is an admin patch. Nil fields are left untouched.
type UpdateClaimRequest struct {
	Status     *string `json:"status,omitempty"`
	AdminNotes *string `json:"admin_notes,omitempty"`
}

// ClaimResponse represents a warranty claim
type ClaimResponse struct {
	ID               string         `json:"id"`
	WarrantyID       string         `json:"warranty_id"`
	CustomerEmail    string         `json:"customer_email"`
	IssueDescription string         `json:"issue_description"`
	Status           string         `json:"status"`
	AdminNotes       *string        `json:"admin_notes,omitempty"`
	Metadata         map[string]any `json:"metadata"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// ClaimListResponse is a page of claims with the total count
type ClaimListResponse struct {
	Claims []*ClaimResponse `json:"claims"`
	Count  int              `json:"count"`
}

// ToWarrantyResponse converts a domain Warranty to its response. status is
// passed separately so reads can report lazily evaluated expiry.
func ToWarrantyResponse(w *domain.Warranty, status domain.WarrantyStatus) *WarrantyResponse {
	return &WarrantyResponse{
		ID:             w.ID,
		ProductID:      w.ProductID,
		OrderID:        w.OrderID,
		OrderItemID:    w.OrderItemID,
		CustomerEmail:  w.CustomerEmail,
		Type:           string(w.Type),
		DurationMonths: w.DurationMonths,
		StartDate:      w.StartDate,
		EndDate:        w.EndDate,
		Status:         string(status),
		Terms:          w.Terms,
		Metadata:       w.Metadata.Map(),
		CreatedAt:      w.CreatedAt,
		UpdatedAt:      w.UpdatedAt,
	}
}

// ToClaimResponse converts a domain WarrantyClaim to its response
func ToClaimResponse(c *domain.WarrantyClaim) *ClaimResponse {
	return &ClaimResponse{
		ID:               c.ID,
		WarrantyID:       c.WarrantyID,
		CustomerEmail:    c.CustomerEmail,
		IssueDescription: c.IssueDescription,
		Status:           string(c.Status),
		AdminNotes:       c.AdminNotes,
		Metadata:         c.Metadata.Map(),
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

// ToClaimResponseList converts a list of claims
func ToClaimResponseList(claims []*domain.WarrantyClaim) []*ClaimResponse {
	out := make([]*ClaimResponse, len(claims))
	for i, c := range claims {
		out[i] = ToClaimResponse(c)
	}
	return out
}
