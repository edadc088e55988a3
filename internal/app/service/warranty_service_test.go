package service

import (
	"context"
	"testing"
	"time"

	"github.com/mrops-br/marketplace-ops-api/internal/app/dto"
	"github.com/mrops-br/marketplace-ops-api/internal/domain"
	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWarrantyService(now time.Time) (*WarrantyService, *recordingPublisher) {
	pub := &recordingPublisher{}
	svc := NewWarrantyService(
		memory.NewWarrantyRepository(testTracer, testLogger),
		memory.NewWarrantyClaimRepository(testTracer, testLogger),
		pub, testTracer, testMeter, testLogger)
	svc.now = func() time.Time { return now }
	return svc, pub
}

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func TestWarrantyService_Register(t *testing.T) {
	start := time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC)
	svc, pub := newTestWarrantyService(start)

	w, err := svc.Register(context.Background(), &dto.RegisterWarrantyRequest{
		ProductID:     "prod_9",
		CustomerEmail: "c@kw.com",
	})
	require.NoError(t, err)
	assert.Equal(t, 12, w.DurationMonths)
	assert.Equal(t, "manufacturer", w.Type)
	assert.Equal(t, "active", w.Status)
	assert.Equal(t, time.Date(2027, 1, 31, 9, 0, 0, 0, time.UTC), w.EndDate)
	assert.Equal(t, []string{domain.EventWarrantyRegistered}, pub.types())

	short, err := svc.Register(context.Background(), &dto.RegisterWarrantyRequest{
		ProductID:      "prod_9",
		CustomerEmail:  "c@kw.com",
		DurationMonths: intPtr(1),
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 28, 9, 0, 0, 0, time.UTC), short.EndDate)

	_, err = svc.Register(context.Background(), &dto.RegisterWarrantyRequest{
		ProductID:      "prod_9",
		CustomerEmail:  "c@kw.com",
		DurationMonths: intPtr(0),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestWarrantyService_ReadsReportLazyExpiry(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc, _ := newTestWarrantyService(start)

	w, err := svc.Register(ctx, &dto.RegisterWarrantyRequest{
		ProductID:      "prod_9",
		CustomerEmail:  "c@kw.com",
		DurationMonths: intPtr(6),
	})
	require.NoError(t, err)

	svc.now = func() time.Time { return start.AddDate(1, 0, 0) }
	got, err := svc.GetWarranty(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "expired", got.Status)

	list, err := svc.ListWarranties(ctx, domain.WarrantyFilter{}, domain.Pagination{})
	require.NoError(t, err)
	require.Len(t, list.Warranties, 1)
	assert.Equal(t, "expired", list.Warranties[0].Status)
}

func TestWarrantyService_UpdateLapsedWarranty(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc, _ := newTestWarrantyService(start)

	w, err := svc.Register(ctx, &dto.RegisterWarrantyRequest{
		ProductID:      "prod_9",
		CustomerEmail:  "c@kw.com",
		DurationMonths: intPtr(6),
	})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	_, err = svc.UpdateWarranty(ctx, w.ID, &dto.UpdateWarrantyRequest{Status: strPtr("void")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.UpdateWarranty(ctx, w.ID, &dto.UpdateWarrantyRequest{Status: strPtr("active")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := svc.GetWarranty(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "expired", got.Status)

	expired, err := svc.UpdateWarranty(ctx, w.ID, &dto.UpdateWarrantyRequest{Status: strPtr("expired")})
	require.NoError(t, err)
	assert.Equal(t, "expired", expired.Status)
}

func TestWarrantyService_ListFiltersEffectiveStatus(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc, _ := newTestWarrantyService(start)

	lapsing, err := svc.Register(ctx, &dto.RegisterWarrantyRequest{
		ProductID:      "prod_9",
		CustomerEmail:  "c@kw.com",
		DurationMonths: intPtr(6),
	})
	require.NoError(t, err)
	current, err := svc.Register(ctx, &dto.RegisterWarrantyRequest{
		ProductID:      "prod_9",
		CustomerEmail:  "c@kw.com",
		DurationMonths: intPtr(24),
	})
	require.NoError(t, err)
	voided, err := svc.Register(ctx, &dto.RegisterWarrantyRequest{
		ProductID:      "prod_9",
		CustomerEmail:  "c@kw.com",
		DurationMonths: intPtr(24),
	})
	require.NoError(t, err)
	_, err = svc.UpdateWarranty(ctx, voided.ID, &dto.UpdateWarrantyRequest{Status: strPtr("void")})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		status string
		wantID string
	}{
		{status: "expired", wantID: lapsing.ID},
		{status: "active", wantID: current.ID},
		{status: "void", wantID: voided.ID},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			status := domain.WarrantyStatus(tt.status)
			list, err := svc.ListWarranties(ctx, domain.WarrantyFilter{Status: &status}, domain.Pagination{})
			require.NoError(t, err)
			assert.Equal(t, 1, list.Count)
			require.Len(t, list.Warranties, 1)
			assert.Equal(t, tt.wantID, list.Warranties[0].ID)
			assert.Equal(t, tt.status, list.Warranties[0].Status)
		})
	}
}

func TestWarrantyService_UpdateWarranty(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestWarrantyService(time.Now().UTC())

	w, err := svc.Register(ctx, &dto.RegisterWarrantyRequest{ProductID: "prod_9", CustomerEmail: "c@kw.com"})
	require.NoError(t, err)

	end := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	updated, err := svc.UpdateWarranty(ctx, w.ID, &dto.UpdateWarrantyRequest{
		EndDate: &end,
		Terms:   strPtr("screen only"),
	})
	require.NoError(t, err)
	assert.Equal(t, end, updated.EndDate)
	assert.Equal(t, 12, updated.DurationMonths)
	assert.Equal(t, "screen only", *updated.Terms)

	voided, err := svc.UpdateWarranty(ctx, w.ID, &dto.UpdateWarrantyRequest{Status: strPtr("void")})
	require.NoError(t, err)
	assert.Equal(t, "void", voided.Status)

	_, err = svc.UpdateWarranty(ctx, w.ID, &dto.UpdateWarrantyRequest{Status: strPtr("active")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestWarrantyService_Claims(t *testing.T) {
	ctx := context.Background()
	svc, pub := newTestWarrantyService(time.Now().UTC())

	w, err := svc.Register(ctx, &dto.RegisterWarrantyRequest{ProductID: "prod_9", CustomerEmail: "c@kw.com"})
	require.NoError(t, err)

	claim, err := svc.SubmitClaim(ctx, w.ID, &dto.SubmitClaimRequest{
		CustomerEmail:    "c@kw.com",
		IssueDescription: "stopped charging",
	})
	require.NoError(t, err)
	assert.Equal(t, "submitted", claim.Status)
	assert.Contains(t, pub.types(), domain.EventClaimSubmitted)

	_, err = svc.SubmitClaim(ctx, w.ID, &dto.SubmitClaimRequest{
		CustomerEmail:    "other@kw.com",
		IssueDescription: "stopped charging",
	})
	assert.ErrorIs(t, err, domain.ErrOwnership)

	_, err = svc.SubmitClaim(ctx, "missing", &dto.SubmitClaimRequest{
		CustomerEmail:    "c@kw.com",
		IssueDescription: "stopped charging",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Unusual jumps are applied and only logged.
	completed, err := svc.UpdateClaim(ctx, claim.ID, &dto.UpdateClaimRequest{
		Status:     strPtr("completed"),
		AdminNotes: strPtr("replaced unit"),
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", completed.Status)
	assert.Equal(t, "replaced unit", *completed.AdminNotes)

	_, err = svc.UpdateClaim(ctx, claim.ID, &dto.UpdateClaimRequest{Status: strPtr("lost")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	list, err := svc.ListClaims(ctx, domain.ClaimFilter{WarrantyID: &w.ID}, domain.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Count)

	got, err := svc.GetClaim(ctx, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Status)
}
