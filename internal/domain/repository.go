package domain

import (
	"context"
	"time"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination selects a 1-based page of results
type Pagination struct {
	Page     int
	PageSize int
}

// Normalize clamps p to sane bounds.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		p.PageSize = DefaultPageSize
	}
	return p
}

// Offset is the number of rows skipped before the page.
func (p Pagination) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// SellerRequestFilter narrows seller request listings
type SellerRequestFilter struct {
	Status         *SellerRequestStatus
	IncludeDeleted bool
}

// SellerFilter narrows seller listings
type SellerFilter struct {
	Status         *SellerStatus
	Email          *string
	IncludeDeleted bool
}

// WarrantyFilter narrows warranty listings. Status matches the effective
// status as of AsOf, so an active warranty past its end date lists as expired.
type WarrantyFilter struct {
	ProductID      *string
	CustomerEmail  *string
	OrderID        *string
	Status         *WarrantyStatus
	AsOf           time.Time
	IncludeDeleted bool
}

// StatusAsOf returns the instant the status filter is evaluated at.
func (f WarrantyFilter) StatusAsOf() time.Time {
	if f.AsOf.IsZero() {
		return time.Now().UTC()
	}
	return f.AsOf
}

// ClaimFilter narrows warranty claim listings
type ClaimFilter struct {
	WarrantyID     *string
	CustomerEmail  *string
	Status         *ClaimStatus
	IncludeDeleted bool
}

// ReviewFilter narrows review listings
type ReviewFilter struct {
	ProductID      *string
	CustomerID     *string
	Status         *ReviewStatus
	IncludeDeleted bool
}

// All repositories hide soft-deleted rows unless a filter asks for them, and
// return ErrNotFound (wrapped in *NotFoundError) for missing ids.

// SellerRequestRepository defines the contract for seller request storage
type SellerRequestRepository interface {
	Create(ctx context.Context, req *SellerRequest) error
	FindByID(ctx context.Context, id string) (*SellerRequest, error)
	Update(ctx context.Context, req *SellerRequest) error
	List(ctx context.Context, filter SellerRequestFilter) ([]*SellerRequest, error)
}

// SellerRepository defines the contract for seller storage
type SellerRepository interface {
	Create(ctx context.Context, seller *Seller) error
	FindByID(ctx context.Context, id string) (*Seller, error)
	FindByEmail(ctx context.Context, email string) (*Seller, error)
	Update(ctx context.Context, seller *Seller) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, filter SellerFilter, page Pagination) ([]*Seller, int, error)
}

// SellerProductLinkRepository defines the contract for seller-product link storage.
// Create returns a *ConflictError when the store enforces pair uniqueness.
type SellerProductLinkRepository interface {
	Create(ctx context.Context, link *SellerProductLink) error
	FindBySellerAndProduct(ctx context.Context, sellerID, productID string) (*SellerProductLink, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
	ListBySeller(ctx context.Context, sellerID string) ([]*SellerProductLink, error)
}

// WarrantyRepository defines the contract for warranty storage
type WarrantyRepository interface {
	Create(ctx context.Context, warranty *Warranty) error
	FindByID(ctx context.Context, id string) (*Warranty, error)
	Update(ctx context.Context, warranty *Warranty) error
	List(ctx context.Context, filter WarrantyFilter, page Pagination) ([]*Warranty, int, error)
}

// WarrantyClaimRepository defines the contract for warranty claim storage
type WarrantyClaimRepository interface {
	Create(ctx context.Context, claim *WarrantyClaim) error
	FindByID(ctx context.Context, id string) (*WarrantyClaim, error)
	Update(ctx context.Context, claim *WarrantyClaim) error
	List(ctx context.Context, filter ClaimFilter, page Pagination) ([]*WarrantyClaim, int, error)
}

// ReviewRepository defines the contract for review storage
type ReviewRepository interface {
	Create(ctx context.Context, review *Review) error
	FindByID(ctx context.Context, id string) (*Review, error)
	Update(ctx context.Context, review *Review) error
	ListByProduct(ctx context.Context, productID string, status *ReviewStatus) ([]*Review, error)
	List(ctx context.Context, filter ReviewFilter, page Pagination, newestFirst bool) ([]*Review, int, error)
}

// Locker serializes check-then-write sequences that share a key.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}
