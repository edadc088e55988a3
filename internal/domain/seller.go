package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SellerStatus is the account state of a seller
type SellerStatus string

const (
	SellerPending   SellerStatus = "pending"
	SellerApproved  SellerStatus = "approved"
	SellerRejected  SellerStatus = "rejected"
	SellerSuspended SellerStatus = "suspended"
)

// Valid reports whether s is a known seller status.
func (s SellerStatus) Valid() bool {
	switch s {
	case SellerPending, SellerApproved, SellerRejected, SellerSuspended:
		return true
	}
	return false
}

// NormalizeSellerStatus maps the public aliases active/inactive onto the
// internal vocabulary. Any other value passes through unchanged and is
// rejected later by Validate.
func NormalizeSellerStatus(status string) SellerStatus {
	switch status {
	case "active":
		return SellerApproved
	case "inactive":
		return SellerSuspended
	default:
		return SellerStatus(status)
	}
}

// Seller is an onboarded third-party seller account
type Seller struct {
	ID        string       `db:"id"`
	Name      string       `db:"name"`
	Email     *string      `db:"email"`
	Phone     *string      `db:"phone"`
	LegalName *string      `db:"legal_name"`
	TaxID     *string      `db:"tax_id"`
	Address   RawJSON      `db:"address"`
	LogoURL   *string      `db:"logo_url"`
	Status    SellerStatus `db:"status"`
	Metadata  Metadata     `db:"metadata"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
	DeletedAt *time.Time   `db:"deleted_at"`
}

// NewSeller creates a seller. An empty status defaults to pending.
func NewSeller(name, email, phone string, status SellerStatus, metadata Metadata) (*Seller, error) {
	if status == "" {
		status = SellerPending
	}
	now := time.Now().UTC()
	seller := &Seller{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Email:     optionalString(strings.TrimSpace(email)),
		Phone:     optionalString(phone),
		Status:    status,
		Metadata:  metadata.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := seller.Validate(); err != nil {
		return nil, err
	}

	return seller, nil
}

// Validate performs business validation on the seller
func (s *Seller) Validate() error {
	if s.Name == "" {
		return NewValidationError("name", "is required")
	}
	if s.Email != nil {
		if err := validateEmail("email", *s.Email); err != nil {
			return err
		}
	}
	if !s.Status.Valid() {
		return NewValidationError("status", "must be pending, approved, rejected, suspended, active or inactive")
	}
	return nil
}

// EmailValue returns the email or an empty string.
func (s *Seller) EmailValue() string {
	if s.Email == nil {
		return ""
	}
	return *s.Email
}

// Clone returns a deep copy of s.
func (s *Seller) Clone() *Seller {
	out := *s
	out.Email = cloneString(s.Email)
	out.Phone = cloneString(s.Phone)
	out.LegalName = cloneString(s.LegalName)
	out.TaxID = cloneString(s.TaxID)
	out.Address = s.Address.Clone()
	out.LogoURL = cloneString(s.LogoURL)
	out.Metadata = s.Metadata.Clone()
	out.DeletedAt = cloneTime(s.DeletedAt)
	return &out
}

// SellerProductLink associates a seller with a catalog product
type SellerProductLink struct {
	ID           string     `db:"id"`
	SellerID     string     `db:"seller_id"`
	ProductID    string     `db:"product_id"`
	DisplayOrder int        `db:"display_order"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

// NewSellerProductLink creates a link with validation
func NewSellerProductLink(sellerID, productID string, displayOrder int) (*SellerProductLink, error) {
	if strings.TrimSpace(sellerID) == "" {
		return nil, NewValidationError("seller_id", "is required")
	}
	if err := validateProductID(productID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &SellerProductLink{
		ID:           uuid.New().String(),
		SellerID:     sellerID,
		ProductID:    productID,
		DisplayOrder: displayOrder,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Clone returns a copy of l.
func (l *SellerProductLink) Clone() *SellerProductLink {
	out := *l
	out.DeletedAt = cloneTime(l.DeletedAt)
	return &out
}
