package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SellerRequestStatus is the lifecycle state of a seller application
type SellerRequestStatus string

const (
	SellerRequestPending  SellerRequestStatus = "pending"
	SellerRequestApproved SellerRequestStatus = "approved"
	SellerRequestRejected SellerRequestStatus = "rejected"
)

// IsDecision reports whether s is a status an admin may decide on.
func (s SellerRequestStatus) IsDecision() bool {
	return s == SellerRequestApproved || s == SellerRequestRejected
}

// SellerRequest is a prospective seller's application
type SellerRequest struct {
	ID            string              `db:"id"`
	SellerName    string              `db:"seller_name"`
	Email         string              `db:"email"`
	Phone         *string             `db:"phone"`
	DocumentsURLs StringList          `db:"documents_urls"`
	Notes         *string             `db:"notes"`
	Status        SellerRequestStatus `db:"status"`
	DecisionNote  *string             `db:"decision_note"`
	DecidedAt     *time.Time          `db:"decided_at"`
	Metadata      Metadata            `db:"metadata"`
	CreatedAt     time.Time           `db:"created_at"`
	UpdatedAt     time.Time           `db:"updated_at"`
	DeletedAt     *time.Time          `db:"deleted_at"`
}

// NewSellerRequest creates a pending seller request with validation
func NewSellerRequest(name, email, phone string, documentsURLs []string, notes, storeName string) (*SellerRequest, error) {
	now := time.Now().UTC()
	req := &SellerRequest{
		ID:            uuid.New().String(),
		SellerName:    strings.TrimSpace(name),
		Email:         strings.TrimSpace(email),
		Phone:         optionalString(phone),
		DocumentsURLs: StringList(documentsURLs).Clone(),
		Notes:         optionalString(notes),
		Status:        SellerRequestPending,
		Metadata:      Metadata{StoreName: storeName},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.DocumentsURLs == nil {
		req.DocumentsURLs = StringList{}
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return req, nil
}

// Validate performs business validation on the request
func (r *SellerRequest) Validate() error {
	if r.SellerName == "" {
		return NewValidationError("name", "is required")
	}
	return validateEmail("email", r.Email)
}

// Decide records an admin decision.
func (r *SellerRequest) Decide(status SellerRequestStatus, note string, at time.Time) error {
	if !status.IsDecision() {
		return NewValidationError("status", "must be approved or rejected")
	}
	r.Status = status
	r.DecisionNote = optionalString(note)
	decided := at.UTC()
	r.DecidedAt = &decided
	r.UpdatedAt = decided
	return nil
}

// ProvisionedSellerName is the name given to a seller created from this request.
func (r *SellerRequest) ProvisionedSellerName() string {
	if r.SellerName != "" {
		return r.SellerName
	}
	return r.Email
}

// Clone returns a deep copy of r.
func (r *SellerRequest) Clone() *SellerRequest {
	out := *r
	out.Phone = cloneString(r.Phone)
	out.DocumentsURLs = r.DocumentsURLs.Clone()
	out.Notes = cloneString(r.Notes)
	out.DecisionNote = cloneString(r.DecisionNote)
	out.DecidedAt = cloneTime(r.DecidedAt)
	out.Metadata = r.Metadata.Clone()
	out.DeletedAt = cloneTime(r.DeletedAt)
	return &out
}
