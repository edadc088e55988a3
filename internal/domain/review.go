package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReviewStatus is the moderation state of a review
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// Valid reports whether s is a known review status.
func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewPending, ReviewApproved, ReviewRejected:
		return true
	}
	return false
}

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a customer's rating of a product
type Review struct {
	ID         string       `db:"id"`
	ProductID  string       `db:"product_id"`
	CustomerID string       `db:"customer_id"`
	Rating     int          `db:"rating"`
	Title      *string      `db:"title"`
	Content    *string      `db:"content"`
	Status     ReviewStatus `db:"status"`
	CreatedAt  time.Time    `db:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at"`
	DeletedAt  *time.Time   `db:"deleted_at"`
}

// NewReview creates a pending review with validation
func NewReview(productID, customerID string, rating int, title, content string) (*Review, error) {
	now := time.Now().UTC()
	r := &Review{
		ID:         uuid.New().String(),
		ProductID:  strings.TrimSpace(productID),
		CustomerID: strings.TrimSpace(customerID),
		Rating:     rating,
		Title:      optionalString(title),
		Content:    optionalString(content),
		Status:     ReviewPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}

	return r, nil
}

// Validate performs business validation on the review
func (r *Review) Validate() error {
	if r.Rating < MinRating || r.Rating > MaxRating {
		return NewValidationError("rating", "must be between 1 and 5")
	}
	if r.ProductID == "" {
		return NewValidationError("product_id", "is required")
	}
	if r.CustomerID == "" {
		return NewValidationError("customer_id", "is required")
	}
	return nil
}

// Moderate moves a pending review to approved or rejected. Repeating the
// current decision is a no-op; reversing a decision is not allowed.
func (r *Review) Moderate(status ReviewStatus) error {
	if status != ReviewApproved && status != ReviewRejected {
		return NewValidationError("status", "must be approved or rejected")
	}
	if r.Status == status {
		return nil
	}
	if r.Status != ReviewPending {
		return NewValidationError("status", "review was already "+string(r.Status))
	}
	r.Status = status
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// Clone returns a deep copy of r.
func (r *Review) Clone() *Review {
	out := *r
	out.Title = cloneString(r.Title)
	out.Content = cloneString(r.Content)
	out.DeletedAt = cloneTime(r.DeletedAt)
	return &out
}

// AverageRating averages the approved reviews, rounded to one decimal place.
// It returns nil when there are no approved reviews.
func AverageRating(reviews []*Review) (*float64, int) {
	sum, count := 0, 0
	for _, r := range reviews {
		if r.Status != ReviewApproved {
			continue
		}
		sum += r.Rating
		count++
	}
	if count == 0 {
		return nil, 0
	}
	avg := math.Round(float64(sum)/float64(count)*10) / 10
	return &avg, count
}
