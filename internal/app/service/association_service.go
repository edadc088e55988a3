package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mrops-br/marketplace-ops-api/internal/app/dto"
	"github.com/mrops-br/marketplace-ops-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// AssociationService maintains which catalog products each seller offers
type AssociationService struct {
	instruments
	links  domain.SellerProductLinkRepository
	locker domain.Locker
	now    func() time.Time
}

// NewAssociationService creates a new seller-product association service
func NewAssociationService(
	links domain.SellerProductLinkRepository,
	locker domain.Locker,
	publisher domain.EventPublisher,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *AssociationService {
	return &AssociationService{
		instruments: newInstruments("seller_product_association", publisher, tracer, meter, logger),
		links:       links,
		locker:      locker,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// AddProduct links a product to a seller. Adding an existing pair returns the
// existing link unchanged.
func (s *AssociationService) AddProduct(ctx context.Context, sellerID string, req *dto.AddSellerProductRequest) (*dto.SellerProductLinkResponse, error) {
	const op = "addProduct"
	ctx, span := s.tracer.Start(ctx, "AssociationService.AddProduct")
	defer span.End()

	span.SetAttributes(
		attribute.String("seller.id", sellerID),
		attribute.String("product.id", req.ProductID),
	)
	logAttrs := []any{slog.String("seller_id", sellerID), slog.String("product_id", req.ProductID)}

	candidate, err := domain.NewSellerProductLink(sellerID, req.ProductID, req.DisplayOrder)
	if err != nil {
		return nil, s.fail(ctx, span, op, err, logAttrs...)
	}

	var link *domain.SellerProductLink
	key := "seller-product:" + sellerID + ":" + req.ProductID
	err = s.locker.WithLock(ctx, key, func(ctx context.Context) error {
		existing, findErr := s.links.FindBySellerAndProduct(ctx, sellerID, req.ProductID)
		if findErr == nil {
			link = existing
			return nil
		}
		if !errors.Is(findErr, domain.ErrNotFound) {
			return fmt.Errorf("look up seller product link: %w", findErr)
		}

		createErr := s.links.Create(ctx, candidate)
		if errors.Is(createErr, domain.ErrConflict) {
			// Another writer won the race; the store's uniqueness guard kept one row.
			existing, findErr = s.links.FindBySellerAndProduct(ctx, sellerID, req.ProductID)
			if findErr != nil {
				return fmt.Errorf("reload seller product link: %w", findErr)
			}
			link = existing
			return nil
		}
		if createErr != nil {
			return fmt.Errorf("store seller product link: %w", createErr)
		}
		link = candidate
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, span, op, err, logAttrs...)
	}

	span.SetAttributes(attribute.String("link.id", link.ID))
	s.succeed(ctx, span, op, "Product linked to seller", append(logAttrs, slog.String("link_id", link.ID))...)
	return dto.ToSellerProductLinkResponse(link), nil
}

// RemoveProduct unlinks a product from a seller. Removing a missing link is a no-op.
func (s *AssociationService) RemoveProduct(ctx context.Context, sellerID, productID string) error {
	const op = "removeProduct"
	ctx, span := s.tracer.Start(ctx, "AssociationService.RemoveProduct")
	defer span.End()

	span.SetAttributes(
		attribute.String("seller.id", sellerID),
		attribute.String("product.id", productID),
	)
	logAttrs := []any{slog.String("seller_id", sellerID), slog.String("product_id", productID)}

	link, err := s.links.FindBySellerAndProduct(ctx, sellerID, productID)
	if errors.Is(err, domain.ErrNotFound) {
		s.succeed(ctx, span, op, "No link to remove", logAttrs...)
		return nil
	}
	if err != nil {
		return s.fail(ctx, span, op, fmt.Errorf("look up seller product link: %w", err), logAttrs...)
	}

	if err := s.links.SoftDelete(ctx, link.ID, s.now()); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return s.fail(ctx, span, op, fmt.Errorf("delete seller product link: %w", err), logAttrs...)
	}

	s.succeed(ctx, span, op, "Product unlinked from seller", append(logAttrs, slog.String("link_id", link.ID))...)
	return nil
}

// ListProductsForSeller lists a seller's product links in display order
func (s *AssociationService) ListProductsForSeller(ctx context.Context, sellerID string) ([]*dto.SellerProductLinkResponse, error) {
	const op = "listProductsForSeller"
	ctx, span := s.tracer.Start(ctx, "AssociationService.ListProductsForSeller")
	defer span.End()

	span.SetAttributes(attribute.String("seller.id", sellerID))

	links, err := s.links.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, s.fail(ctx, span, op, fmt.Errorf("list seller product links: %w", err), slog.String("seller_id", sellerID))
	}

	span.SetAttributes(attribute.Int("link.count", len(links)))
	s.succeed(ctx, span, op, "Seller products listed", slog.String("seller_id", sellerID), slog.Int("count", len(links)))
	return dto.ToSellerProductLinkResponseList(links), nil
}
