package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// WarrantyType identifies who backs a warranty
type WarrantyType string

const (
	WarrantyManufacturer WarrantyType = "manufacturer"
	WarrantySeller       WarrantyType = "seller"
	WarrantyExtended     WarrantyType = "extended"
)

// Valid reports whether t is a known warranty type.
func (t WarrantyType) Valid() bool {
	switch t {
	case WarrantyManufacturer, WarrantySeller, WarrantyExtended:
		return true
	}
	return false
}

// WarrantyStatus is the lifecycle state of a warranty
type WarrantyStatus string

const (
	WarrantyActive  WarrantyStatus = "active"
	WarrantyExpired WarrantyStatus = "expired"
	WarrantyVoid    WarrantyStatus = "void"
)

// Valid reports whether s is a known warranty status.
func (s WarrantyStatus) Valid() bool {
	switch s {
	case WarrantyActive, WarrantyExpired, WarrantyVoid:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s WarrantyStatus) Terminal() bool {
	return s == WarrantyExpired || s == WarrantyVoid
}

const DefaultWarrantyMonths = 12

// Warranty covers a purchased product for a customer
type Warranty struct {
	ID             string         `db:"id"`
	ProductID      string         `db:"product_id"`
	OrderID        *string        `db:"order_id"`
	OrderItemID    *string        `db:"order_item_id"`
	CustomerEmail  string         `db:"customer_email"`
	Type           WarrantyType   `db:"type"`
	DurationMonths int            `db:"duration_months"`
	StartDate      time.Time      `db:"start_date"`
	EndDate        time.Time      `db:"end_date"`
	Status         WarrantyStatus `db:"status"`
	Terms          *string        `db:"terms"`
	Metadata       Metadata       `db:"metadata"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
	DeletedAt      *time.Time     `db:"deleted_at"`
}

// WarrantyParams holds the inputs for registering a warranty
type WarrantyParams struct {
	ProductID      string
	CustomerEmail  string
	Type           WarrantyType
	DurationMonths int
	OrderID        string
	OrderItemID    string
	Terms          string
	Metadata       Metadata
}

// NewWarranty registers an active warranty starting at start. The end date is
// computed once here and never recomputed.
func NewWarranty(p WarrantyParams, start time.Time) (*Warranty, error) {
	if p.Type == "" {
		p.Type = WarrantyManufacturer
	}
	w := &Warranty{
		ID:             uuid.New().String(),
		ProductID:      p.ProductID,
		OrderID:        optionalString(p.OrderID),
		OrderItemID:    optionalString(p.OrderItemID),
		CustomerEmail:  strings.TrimSpace(p.CustomerEmail),
		Type:           p.Type,
		DurationMonths: p.DurationMonths,
		Status:         WarrantyActive,
		Terms:          optionalString(p.Terms),
		Metadata:       p.Metadata.Clone(),
		CreatedAt:      start,
		UpdatedAt:      start,
	}

	if err := w.Validate(); err != nil {
		return nil, err
	}

	w.StartDate = start
	w.EndDate = AddMonths(start, p.DurationMonths)
	return w, nil
}

// Validate performs business validation on the warranty
func (w *Warranty) Validate() error {
	if err := validateEmail("customer_email", w.CustomerEmail); err != nil {
		return err
	}
	if err := validateProductID(w.ProductID); err != nil {
		return err
	}
	if w.DurationMonths <= 0 {
		return NewValidationError("duration_months", "must be a positive integer")
	}
	if !w.Type.Valid() {
		return NewValidationError("type", "must be manufacturer, seller or extended")
	}
	return nil
}

// EffectiveStatus evaluates expiry lazily: an active warranty past its end date reads as expired.
func (w *Warranty) EffectiveStatus(now time.Time) WarrantyStatus {
	if w.Status == WarrantyActive && now.After(w.EndDate) {
		return WarrantyExpired
	}
	return w.Status
}

// SetStatus applies an admin status change as of now. Expired and void are
// final, including a warranty that has lapsed but is still stored as active.
func (w *Warranty) SetStatus(status WarrantyStatus, now time.Time) error {
	if !status.Valid() {
		return NewValidationError("status", "must be active, expired or void")
	}
	if current := w.EffectiveStatus(now); current.Terminal() && status != current {
		return NewValidationError("status", "cannot leave "+string(current))
	}
	w.Status = status
	return nil
}

// Clone returns a deep copy of w.
func (w *Warranty) Clone() *Warranty {
	out := *w
	out.OrderID = cloneString(w.OrderID)
	out.OrderItemID = cloneString(w.OrderItemID)
	out.Terms = cloneString(w.Terms)
	out.Metadata = w.Metadata.Clone()
	out.DeletedAt = cloneTime(w.DeletedAt)
	return &out
}
