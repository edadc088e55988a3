package dto

import (
	"time"

	"github.com/mrops-br/marketplace-ops-api/internal/domain"
)

// SubmitReviewRequest is a customer's review of a product
type SubmitReviewRequest struct {
	Rating  int    `json:"rating"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

// ModerateReviewRequest approves or rejects a review
type ModerateReviewRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// ReviewResponse represents a review
type ReviewResponse struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	CustomerID string    `json:"customer_id"`
	Rating     int       `json:"rating"`
	Title      *string   `json:"title,omitempty"`
	Content    *string   `json:"content,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ProductReviewsResponse lists a product's reviews with the approved-review
// aggregate. Average is null when nothing has been approved; Count is the
// number of approved reviews behind it.
type ProductReviewsResponse struct {
	Reviews []*ReviewResponse `json:"reviews"`
	Average *float64          `json:"average"`
	Count   int               `json:"count"`
}

// ReviewListResponse is a page of the moderation queue with the total count
type ReviewListResponse struct {
	Reviews []*ReviewResponse `json:"reviews"`
	Count   int               `json:"count"`
}

// ToReviewResponse converts a domain Review to its response
func ToReviewResponse(r *domain.Review) *ReviewResponse {
	return &ReviewResponse{
		ID:         r.ID,
		ProductID:  r.ProductID,
		CustomerID: r.CustomerID,
		Rating:     r.Rating,
		Title:      r.Title,
		Content:    r.Content,
		Status:     string(r.Status),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// ToReviewResponseList converts a list of reviews
func ToReviewResponseList(reviews []*domain.Review) []*ReviewResponse {
	out := make([]*ReviewResponse, len(reviews))
	for i, r := range reviews {
		out[i] = ToReviewResponse(r)
	}
	return out
}
