package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mrops-br/marketplace-ops-api/internal/app/dto"
	"github.com/mrops-br/marketplace-ops-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// SellerProvision describes a seller to create if none exists for the email
type SellerProvision struct {
	Name     string
	Email    string
	Phone    string
	Metadata domain.Metadata
}

// SellerService is the seller directory
type SellerService struct {
	instruments
	repo   domain.SellerRepository
	locker domain.Locker
	now    func() time.Time
}

// NewSellerService creates a new seller directory service
func NewSellerService(
	repo domain.SellerRepository,
	locker domain.Locker,
	publisher domain.EventPublisher,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *SellerService {
	return &SellerService{
		instruments: newInstruments("seller_directory", publisher, tracer, meter, logger),
		repo:        repo,
		locker:      locker,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateSeller creates a seller directly
func (s *SellerService) CreateSeller(ctx context.Context, req *dto.CreateSellerRequest) (*dto.SellerResponse, error) {
	const op = "createSeller"
	ctx, span := s.tracer.Start(ctx, "SellerService.CreateSeller")
	defer span.End()

	span.SetAttributes(attribute.String("seller.name", req.Name))

	seller, err := domain.NewSeller(req.Name, req.Email, req.Phone,
		domain.NormalizeSellerStatus(req.Status), domain.Metadata{StoreName: req.StoreName})
	if err != nil {
		return nil, s.fail(ctx, span, op, err)
	}

	span.SetAttributes(attribute.String("seller.id", seller.ID))

	if err := s.repo.Create(ctx, seller); err != nil {
		return nil, s.fail(ctx, span, op, fmt.Errorf("store seller: %w", err), slog.String("seller_id", seller.ID))
	}

	s.publish(ctx, sellerCreatedEvent(seller))
	s.succeed(ctx, span, op, "Seller created successfully", slog.String("seller_id", seller.ID))
	return dto.ToSellerResponse(seller), nil
}

// UpdateSeller applies a partial update. store_name is merged into metadata.
func (s *SellerService) UpdateSeller(ctx context.Context, id string, req *dto.UpdateSellerRequest) (*dto.SellerResponse, error) {
	const op = "updateSeller"
	ctx, span := s.tracer.Start(ctx, "SellerService.UpdateSeller")
	defer span.End()

	span.SetAttributes(attribute.String("seller.id", id))

	seller, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, span, op, err, slog.String("seller_id", id))
	}

	applySellerPatch(seller, req)
	if err := seller.Validate(); err != nil {
		return nil, s.fail(ctx, span, op, err, slog.String("seller_id", id))
	}
	seller.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, seller); err != nil {
		return nil, s.fail(ctx, span, op, fmt.Errorf("update seller: %w", err), slog.String("seller_id", id))
	}

	s.succeed(ctx, span, op, "Seller updated successfully", slog.String("seller_id", id))
	return dto.ToSellerResponse(seller), nil
}

func applySellerPatch(seller *domain.Seller, req *dto.UpdateSellerRequest) {
	if req.Name != nil {
		seller.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		seller.Email = domain.StringPtr(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		seller.Phone = domain.StringPtr(*req.Phone)
	}
	if req.LegalName != nil {
		seller.LegalName = domain.StringPtr(*req.LegalName)
	}
	if req.TaxID != nil {
		seller.TaxID = domain.StringPtr(*req.TaxID)
	}
	if req.Address != nil {
		seller.Address = req.Address.Clone()
	}
	if req.LogoURL != nil {
		seller.LogoURL = domain.StringPtr(*req.LogoURL)
	}
	if req.Status != nil {
		seller.Status = domain.NormalizeSellerStatus(*req.Status)
	}
	if req.Metadata != nil {
		seller.Metadata = seller.Metadata.Merge(domain.MetadataFromMap(req.Metadata))
	}
	if req.StoreName != nil {
		seller.Metadata.StoreName = *req.StoreName
	}
}

// GetSeller retrieves a seller by ID
func (s *SellerService) GetSeller(ctx context.Context, id string) (*dto.SellerResponse, error) {
	const op = "getSeller"
	ctx, span := s.tracer.Start(ctx, "SellerService.GetSeller")
	defer span.End()

	span.SetAttributes(attribute.String("seller.id", id))

	seller, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, span, op, err, slog.String("seller_id", id))
	}

	s.succeed(ctx, span, op, "Seller retrieved successfully", slog.String("seller_id", id))
	return dto.ToSellerResponse(seller), nil
}

// ListSellers returns a page of sellers with the total count
func (s *SellerService) ListSellers(ctx context.Context, filter domain.SellerFilter, page domain.Pagination) (*dto.SellerListResponse, error) {
	const op = "listSellers"
	ctx, span := s.tracer.Start(ctx, "SellerService.ListSellers")
	defer span.End()

	if filter.Status != nil {
		normalized := domain.NormalizeSellerStatus(string(*filter.Status))
		filter.Status = &normalized
	}

	sellers, total, err := s.repo.List(ctx, filter, page.Normalize())
	if err != nil {
		return nil, s.fail(ctx, span, op, fmt.Errorf("list sellers: %w", err))
	}

	span.SetAttributes(attribute.Int("seller.count", len(sellers)))
	s.succeed(ctx, span, op, "Sellers listed successfully", slog.Int("count", len(sellers)), slog.Int("total", total))
	return &dto.SellerListResponse{Sellers: dto.ToSellerResponseList(sellers), Count: total}, nil
}

// DeleteSeller soft-deletes a seller
func (s *SellerService) DeleteSeller(ctx context.Context, id string) error {
	const op = "deleteSeller"
	ctx, span := s.tracer.Start(ctx, "SellerService.DeleteSeller")
	defer span.End()

	span.SetAttributes(attribute.String("seller.id", id))

	if err := s.repo.SoftDelete(ctx, id, s.now()); err != nil {
		return s.fail(ctx, span, op, err, slog.String("seller_id", id))
	}

	s.succeed(ctx, span, op, "Seller deleted successfully", slog.String("seller_id", id))
	return nil
}

// EnsureSeller returns the live seller registered under p.Email, creating an
// approved one when none exists. created reports whether this call created it.
// The lookup and the insert run under a per-email lock.
func (s *SellerService) EnsureSeller(ctx context.Context, p SellerProvision) (seller *domain.Seller, created bool, err error) {
	const op = "ensureSeller"
	ctx, span := s.tracer.Start(ctx, "SellerService.EnsureSeller")
	defer span.End()

	err = s.locker.WithLock(ctx, "seller-email:"+p.Email, func(ctx context.Context) error {
		existing, findErr := s.repo.FindByEmail(ctx, p.Email)
		if findErr == nil {
			seller = existing
			return nil
		}
		if !errors.Is(findErr, domain.ErrNotFound) {
			return fmt.Errorf("look up seller by email: %w", findErr)
		}

		name := p.Name
		if strings.TrimSpace(name) == "" {
			name = p.Email
		}
		fresh, newErr := domain.NewSeller(name, p.Email, p.Phone, domain.SellerApproved, p.Metadata)
		if newErr != nil {
			return newErr
		}
		if createErr := s.repo.Create(ctx, fresh); createErr != nil {
			return fmt.Errorf("store seller: %w", createErr)
		}
		seller, created = fresh, true
		return nil
	})
	if err != nil {
		return nil, false, s.fail(ctx, span, op, err, slog.String("request_id", p.Metadata.RequestID))
	}

	span.SetAttributes(attribute.String("seller.id", seller.ID), attribute.Bool("seller.created", created))
	if created {
		s.publish(ctx, sellerCreatedEvent(seller))
	}
	s.succeed(ctx, span, op, "Seller ensured", slog.String("seller_id", seller.ID), slog.Bool("created", created))
	return seller, created, nil
}

func sellerCreatedEvent(seller *domain.Seller) domain.Event {
	return domain.NewEvent(domain.EventSellerCreated, "seller", seller.ID, map[string]any{
		"status":   string(seller.Status),
		"email":    seller.EmailValue(),
		"metadata": seller.Metadata.Map(),
	})
}
