package service

import (
	"context"
	"testing"

	"github.com/mrops-br/marketplace-ops-api/internal/app/dto"
	"github.com/mrops-br/marketplace-ops-api/internal/domain"
	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/lock"
	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSellerService() *SellerService {
	return NewSellerService(memory.NewSellerRepository(testTracer, testLogger), lock.NewLocalLocker(),
		&recordingPublisher{}, testTracer, testMeter, testLogger)
}

func newTestAssociationService() *AssociationService {
	return NewAssociationService(memory.NewSellerProductLinkRepository(testTracer, testLogger), lock.NewLocalLocker(),
		&recordingPublisher{}, testTracer, testMeter, testLogger)
}

func TestSellerService_CreateNormalizesStatus(t *testing.T) {
	svc := newTestSellerService()

	seller, err := svc.CreateSeller(context.Background(), &dto.CreateSellerRequest{
		Name:   "Shop",
		Email:  "shop@kw.com",
		Status: "active",
	})
	require.NoError(t, err)
	assert.Equal(t, "approved", seller.Status)

	pending, err := svc.CreateSeller(context.Background(), &dto.CreateSellerRequest{Name: "Other"})
	require.NoError(t, err)
	assert.Equal(t, "pending", pending.Status)
	assert.Nil(t, pending.Email)

	_, err = svc.CreateSeller(context.Background(), &dto.CreateSellerRequest{Name: "Blocked", Status: "blocked"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSellerService_Update(t *testing.T) {
	ctx := context.Background()
	svc := newTestSellerService()

	seller, err := svc.CreateSeller(ctx, &dto.CreateSellerRequest{Name: "Shop", StoreName: "Kiwi"})
	require.NoError(t, err)

	name := "Renamed"
	status := "inactive"
	updated, err := svc.UpdateSeller(ctx, seller.ID, &dto.UpdateSellerRequest{
		Name:     &name,
		Status:   &status,
		Metadata: map[string]any{"tier": "gold"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "suspended", updated.Status)
	assert.Equal(t, "Kiwi", updated.StoreName)
	assert.Equal(t, "gold", updated.Metadata["tier"])

	bad := "not-an-email"
	_, err = svc.UpdateSeller(ctx, seller.ID, &dto.UpdateSellerRequest{Email: &bad})
	assert.ErrorIs(t, err, domain.ErrValidation)

	blocked := "blocked"
	_, err = svc.UpdateSeller(ctx, seller.ID, &dto.UpdateSellerRequest{Status: &blocked})
	assert.ErrorIs(t, err, domain.ErrValidation)
	got, err := svc.GetSeller(ctx, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, "suspended", got.Status)

	_, err = svc.UpdateSeller(ctx, "missing", &dto.UpdateSellerRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSellerService_Delete(t *testing.T) {
	ctx := context.Background()
	svc := newTestSellerService()

	seller, err := svc.CreateSeller(ctx, &dto.CreateSellerRequest{Name: "Shop"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSeller(ctx, seller.ID))
	_, err = svc.GetSeller(ctx, seller.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteSeller(ctx, seller.ID), domain.ErrNotFound)
}

func TestSellerService_ListFiltersByAlias(t *testing.T) {
	ctx := context.Background()
	svc := newTestSellerService()

	_, err := svc.CreateSeller(ctx, &dto.CreateSellerRequest{Name: "A", Status: "approved"})
	require.NoError(t, err)
	_, err = svc.CreateSeller(ctx, &dto.CreateSellerRequest{Name: "B"})
	require.NoError(t, err)

	active := domain.SellerStatus("active")
	list, err := svc.ListSellers(ctx, domain.SellerFilter{Status: &active}, domain.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, "A", list.Sellers[0].Name)
}

func TestAssociationService_AddProductIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newTestAssociationService()

	first, err := svc.AddProduct(ctx, "seller-1", &dto.AddSellerProductRequest{ProductID: "prod_123", DisplayOrder: 1})
	require.NoError(t, err)

	second, err := svc.AddProduct(ctx, "seller-1", &dto.AddSellerProductRequest{ProductID: "prod_123", DisplayOrder: 5})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, second.DisplayOrder)

	links, err := svc.ListProductsForSeller(ctx, "seller-1")
	require.NoError(t, err)
	assert.Len(t, links, 1)
}

func TestAssociationService_AddProductConcurrent(t *testing.T) {
	ctx := context.Background()
	svc := newTestAssociationService()

	ids := make(chan string, 10)
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			link, err := svc.AddProduct(ctx, "seller-1", &dto.AddSellerProductRequest{ProductID: "prod_123"})
			if err != nil {
				errs <- err
				return
			}
			ids <- link.ID
		}()
	}

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		select {
		case err := <-errs:
			t.Fatalf("add product: %v", err)
		case id := <-ids:
			seen[id] = true
		}
	}
	assert.Len(t, seen, 1)
}

func TestAssociationService_RemoveProduct(t *testing.T) {
	ctx := context.Background()
	svc := newTestAssociationService()

	require.NoError(t, svc.RemoveProduct(ctx, "seller-1", "prod_123"))

	_, err := svc.AddProduct(ctx, "seller-1", &dto.AddSellerProductRequest{ProductID: "prod_123"})
	require.NoError(t, err)
	require.NoError(t, svc.RemoveProduct(ctx, "seller-1", "prod_123"))

	links, err := svc.ListProductsForSeller(ctx, "seller-1")
	require.NoError(t, err)
	assert.Empty(t, links)

	_, err = svc.AddProduct(ctx, "seller-1", &dto.AddSellerProductRequest{ProductID: "bad"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
