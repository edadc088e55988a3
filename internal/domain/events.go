package domain

import (
	"context"
	"time"
)

// Event types published after state changes commit.
const (
	EventSellerRequestSubmitted = "seller_request.submitted"
	EventSellerRequestDecided   = "seller_request.decided"
	EventSellerCreated          = "seller.created"
	EventSellerProvisioned      = "seller.provisioned"
	EventSellerProvisionFailed  = "seller.provision_failed"
	EventWarrantyRegistered     = "warranty.registered"
	EventClaimSubmitted         = "warranty_claim.submitted"
	EventReviewSubmitted        = "review.submitted"
	EventReviewModerated        = "review.moderated"
)

// Event is a domain event envelope
type Event struct {
	Type       string         `json:"event_type"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// NewEvent builds an event stamped with the current time.
func NewEvent(eventType, entityType, entityID string, data map[string]any) Event {
	return Event{
		Type:       eventType,
		EntityType: entityType,
		EntityID:   entityID,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}

// EventPublisher delivers domain events. Publishing is best effort: callers log
// failures and never fail the operation that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
