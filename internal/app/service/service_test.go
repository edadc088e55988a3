package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mrops-br/marketplace-ops-api/internal/app/dto"
	"github.com/mrops-br/marketplace-ops-api/internal/domain"
	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/lock"
	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

var (
	testTracer = tracenoop.NewTracerProvider().Tracer("test")
	testMeter  = metricnoop.NewMeterProvider().Meter("test")
	testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// unavailableSellerRepository fails every insert.
type unavailableSellerRepository struct {
	*memory.SellerRepository
}

var errSellerStoreDown = errors.New("seller store unavailable")

func (unavailableSellerRepository) Create(context.Context, *domain.Seller) error {
	return errSellerStoreDown
}

// recordingPublisher keeps every published event for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type onboardingFixture struct {
	onboarding  *OnboardingService
	sellers     *SellerService
	provisioner *Provisioner
	results     <-chan ProvisionResult
	publisher   *recordingPublisher
}

func newOnboardingFixture(t *testing.T) *onboardingFixture {
	return newOnboardingFixtureWith(t, memory.NewSellerRepository(testTracer, testLogger))
}

func newOnboardingFixtureWith(t *testing.T, sellerRepo domain.SellerRepository) *onboardingFixture {
	t.Helper()
	pub := &recordingPublisher{}
	requests := memory.NewSellerRequestRepository(testTracer, testLogger)
	sellers := NewSellerService(sellerRepo, lock.NewLocalLocker(),
		pub, testTracer, testMeter, testLogger)
	provisioner := NewProvisioner(requests, sellers, ProvisionerConfig{Workers: 2, QueueSize: 8},
		pub, testTracer, testMeter, testLogger)
	results := provisioner.Subscribe(8)
	provisioner.Start(context.Background())
	t.Cleanup(provisioner.Close)

	return &onboardingFixture{
		onboarding:  NewOnboardingService(requests, provisioner, pub, testTracer, testMeter, testLogger),
		sellers:     sellers,
		provisioner: provisioner,
		results:     results,
		publisher:   pub,
	}
}

func (f *onboardingFixture) nextResult(t *testing.T) ProvisionResult {
	t.Helper()
	select {
	case r := <-f.results:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for provisioning result")
		return ProvisionResult{}
	}
}

func TestOnboarding_ApprovalProvisionsSeller(t *testing.T) {
	ctx := context.Background()
	f := newOnboardingFixture(t)

	submitted, err := f.onboarding.SubmitRequest(ctx, &dto.SubmitSellerRequestRequest{
		Name:      "Kiwi Shop",
		Email:     "shop@kw.com",
		StoreName: "Kiwi Store",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", submitted.Status)

	decided, err := f.onboarding.Decide(ctx, submitted.ID, &dto.DecideSellerRequestRequest{Status: "approved"})
	require.NoError(t, err)
	assert.Equal(t, "approved", decided.Status)
	require.NotNil(t, decided.DecidedAt)

	result := f.nextResult(t)
	require.NoError(t, result.Err)
	assert.Equal(t, ProvisionCreated, result.Outcome)
	assert.Equal(t, submitted.ID, result.RequestID)

	seller, err := f.sellers.GetSeller(ctx, result.SellerID)
	require.NoError(t, err)
	assert.Equal(t, "Kiwi Shop", seller.Name)
	assert.Equal(t, "approved", seller.Status)
	assert.Equal(t, "Kiwi Store", seller.StoreName)
	assert.Equal(t, domain.SourceSellerRequest, seller.Metadata[domain.MetaSource])
	assert.Equal(t, submitted.ID, seller.Metadata[domain.MetaRequestID])

	assert.Contains(t, f.publisher.types(), domain.EventSellerProvisioned)
}

func TestOnboarding_SecondApprovalReusesSeller(t *testing.T) {
	ctx := context.Background()
	f := newOnboardingFixture(t)

	var sellerIDs []string
	for i := 0; i < 2; i++ {
		req, err := f.onboarding.SubmitRequest(ctx, &dto.SubmitSellerRequestRequest{Name: "Shop", Email: "shop@kw.com"})
		require.NoError(t, err)
		_, err = f.onboarding.Decide(ctx, req.ID, &dto.DecideSellerRequestRequest{Status: "approved"})
		require.NoError(t, err)

		result := f.nextResult(t)
		require.NoError(t, result.Err)
		sellerIDs = append(sellerIDs, result.SellerID)
		if i == 1 {
			assert.Equal(t, ProvisionExists, result.Outcome)
		}
	}
	assert.Equal(t, sellerIDs[0], sellerIDs[1])

	email := "shop@kw.com"
	list, err := f.sellers.ListSellers(ctx, domain.SellerFilter{Email: &email}, domain.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Count)
}

func TestOnboarding_RejectDoesNotProvision(t *testing.T) {
	ctx := context.Background()
	f := newOnboardingFixture(t)

	req, err := f.onboarding.SubmitRequest(ctx, &dto.SubmitSellerRequestRequest{Name: "Shop", Email: "shop@kw.com"})
	require.NoError(t, err)
	_, err = f.onboarding.Decide(ctx, req.ID, &dto.DecideSellerRequestRequest{Status: "rejected", DecisionNote: "incomplete"})
	require.NoError(t, err)

	select {
	case r := <-f.results:
		t.Fatalf("unexpected provisioning result %+v", r)
	case <-time.After(50 * time.Millisecond):
	}

	list, err := f.sellers.ListSellers(ctx, domain.SellerFilter{}, domain.Pagination{})
	require.NoError(t, err)
	assert.Zero(t, list.Count)
}

func TestOnboarding_Errors(t *testing.T) {
	ctx := context.Background()
	f := newOnboardingFixture(t)

	_, err := f.onboarding.SubmitRequest(ctx, &dto.SubmitSellerRequestRequest{Name: "Shop", Email: "bad"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.onboarding.Decide(ctx, "missing", &dto.DecideSellerRequestRequest{Status: "approved"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.onboarding.Decide(ctx, "missing", &dto.DecideSellerRequestRequest{Status: "pending"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	bogus := "archived"
	_, err = f.onboarding.ListRequests(ctx, &bogus)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestOnboarding_ListRequestsByStatus(t *testing.T) {
	ctx := context.Background()
	f := newOnboardingFixture(t)

	first, err := f.onboarding.SubmitRequest(ctx, &dto.SubmitSellerRequestRequest{Name: "A", Email: "a@kw.com"})
	require.NoError(t, err)
	_, err = f.onboarding.SubmitRequest(ctx, &dto.SubmitSellerRequestRequest{Name: "B", Email: "b@kw.com"})
	require.NoError(t, err)
	_, err = f.onboarding.Decide(ctx, first.ID, &dto.DecideSellerRequestRequest{Status: "rejected"})
	require.NoError(t, err)

	pending := "pending"
	list, err := f.onboarding.ListRequests(ctx, &pending)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b@kw.com", list[0].Email)

	all, err := f.onboarding.ListRequests(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := f.onboarding.GetRequest(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "rejected", got.Status)

	_, err = f.onboarding.GetRequest(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProvisioner_SkipsRequestNoLongerApproved(t *testing.T) {
	ctx := context.Background()
	f := newOnboardingFixture(t)

	req, err := f.onboarding.SubmitRequest(ctx, &dto.SubmitSellerRequestRequest{Name: "Shop", Email: "shop@kw.com"})
	require.NoError(t, err)

	result := f.provisioner.Provision(ctx, req.ID)
	assert.Equal(t, ProvisionSkipped, result.Outcome)
	assert.NoError(t, result.Err)

	result = f.provisioner.Provision(ctx, "missing")
	assert.Equal(t, ProvisionFailed, result.Outcome)
	assert.ErrorIs(t, result.Err, domain.ErrNotFound)
}

func TestProvisioner_EnqueueAfterClose(t *testing.T) {
	f := newOnboardingFixture(t)
	f.provisioner.Close()

	late := f.provisioner.Subscribe(1)
	_, open := <-late
	assert.False(t, open)

	f.provisioner.Enqueue(context.Background(), "req-1")
	assert.Contains(t, f.publisher.types(), domain.EventSellerProvisionFailed)
}

func TestOnboarding_ProvisionFailureKeepsDecision(t *testing.T) {
	ctx := context.Background()
	f := newOnboardingFixtureWith(t, unavailableSellerRepository{memory.NewSellerRepository(testTracer, testLogger)})

	req, err := f.onboarding.SubmitRequest(ctx, &dto.SubmitSellerRequestRequest{Name: "Shop", Email: "shop@kw.com"})
	require.NoError(t, err)

	decided, err := f.onboarding.Decide(ctx, req.ID, &dto.DecideSellerRequestRequest{Status: "approved"})
	require.NoError(t, err)
	assert.Equal(t, "approved", decided.Status)

	result := f.nextResult(t)
	assert.Equal(t, ProvisionFailed, result.Outcome)
	assert.ErrorIs(t, result.Err, errSellerStoreDown)
	assert.Empty(t, result.SellerID)

	stored, err := f.onboarding.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", stored.Status)
	assert.NotNil(t, stored.DecidedAt)

	types := f.publisher.types()
	assert.Contains(t, types, domain.EventSellerRequestDecided)
	assert.Contains(t, types, domain.EventSellerProvisionFailed)
	assert.NotContains(t, types, domain.EventSellerProvisioned)
}
