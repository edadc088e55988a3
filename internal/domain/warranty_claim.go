package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ClaimStatus is the lifecycle state of a warranty claim
type ClaimStatus string

const (
	ClaimSubmitted ClaimStatus = "submitted"
	ClaimInReview  ClaimStatus = "in_review"
	ClaimApproved  ClaimStatus = "approved"
	ClaimRejected  ClaimStatus = "rejected"
	ClaimCompleted ClaimStatus = "completed"
)

var claimTransitions = map[ClaimStatus][]ClaimStatus{
	ClaimSubmitted: {ClaimInReview, ClaimApproved, ClaimRejected},
	ClaimInReview:  {ClaimApproved, ClaimRejected},
	ClaimApproved:  {ClaimCompleted},
}

// Valid reports whether s is a known claim status.
func (s ClaimStatus) Valid() bool {
	switch s {
	case ClaimSubmitted, ClaimInReview, ClaimApproved, ClaimRejected, ClaimCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether next follows s in the claim workflow.
// Admin updates are not bound by this; callers use it to flag unusual jumps.
func (s ClaimStatus) CanTransitionTo(next ClaimStatus) bool {
	for _, allowed := range claimTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// WarrantyClaim is a customer's claim against a warranty
type WarrantyClaim struct {
	ID               string      `db:"id"`
	WarrantyID       string      `db:"warranty_id"`
	CustomerEmail    string      `db:"customer_email"`
	IssueDescription string      `db:"issue_description"`
	Status           ClaimStatus `db:"status"`
	AdminNotes       *string     `db:"admin_notes"`
	Metadata         Metadata    `db:"metadata"`
	CreatedAt        time.Time   `db:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at"`
	DeletedAt        *time.Time  `db:"deleted_at"`
}

// ValidateClaimInput checks claim fields that do not depend on the warranty.
func ValidateClaimInput(customerEmail, issueDescription string) error {
	if err := validateEmail("customer_email", customerEmail); err != nil {
		return err
	}
	if strings.TrimSpace(issueDescription) == "" {
		return NewValidationError("issue_description", "is required")
	}
	return nil
}

// NewWarrantyClaim creates a submitted claim. The claimant must be the
// warranty's customer, compared case-sensitively.
func NewWarrantyClaim(w *Warranty, customerEmail, issueDescription string) (*WarrantyClaim, error) {
	if err := ValidateClaimInput(customerEmail, issueDescription); err != nil {
		return nil, err
	}
	if customerEmail != w.CustomerEmail {
		return nil, NewOwnershipError("warranty", w.ID)
	}

	now := time.Now().UTC()
	return &WarrantyClaim{
		ID:               uuid.New().String(),
		WarrantyID:       w.ID,
		CustomerEmail:    customerEmail,
		IssueDescription: issueDescription,
		Status:           ClaimSubmitted,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Clone returns a deep copy of c.
func (c *WarrantyClaim) Clone() *WarrantyClaim {
	out := *c
	out.AdminNotes = cloneString(c.AdminNotes)
	out.Metadata = c.Metadata.Clone()
	out.DeletedAt = cloneTime(c.DeletedAt)
	return &out
}
