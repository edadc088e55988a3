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

func newTestReviewService() (*ReviewService, *recordingPublisher) {
	pub := &recordingPublisher{}
	return NewReviewService(memory.NewReviewRepository(testTracer, testLogger), pub, testTracer, testMeter, testLogger), pub
}

func TestReviewService_AverageOverApproved(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestReviewService()

	var ids []string
	for _, rating := range []int{5, 4, 1} {
		r, err := svc.Submit(ctx, "prod_1", "cust-1", &dto.SubmitReviewRequest{Rating: rating})
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}

	empty, err := svc.ListForProduct(ctx, "prod_1", nil)
	require.NoError(t, err)
	assert.Nil(t, empty.Average)
	assert.Zero(t, empty.Count)
	assert.Len(t, empty.Reviews, 3)

	_, err = svc.Approve(ctx, ids[0])
	require.NoError(t, err)
	_, err = svc.Approve(ctx, ids[1])
	require.NoError(t, err)
	_, err = svc.Reject(ctx, ids[2])
	require.NoError(t, err)

	approved := "approved"
	result, err := svc.ListForProduct(ctx, "prod_1", &approved)
	require.NoError(t, err)
	require.NotNil(t, result.Average)
	assert.Equal(t, 4.5, *result.Average)
	assert.Equal(t, 2, result.Count)
	assert.Len(t, result.Reviews, 2)

	bogus := "hidden"
	_, err = svc.ListForProduct(ctx, "prod_1", &bogus)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReviewService_Moderation(t *testing.T) {
	ctx := context.Background()
	svc, pub := newTestReviewService()

	r, err := svc.Submit(ctx, "prod_1", "cust-1", &dto.SubmitReviewRequest{Rating: 3, Title: "ok"})
	require.NoError(t, err)
	assert.Equal(t, "pending", r.Status)

	_, err = svc.Approve(ctx, r.ID)
	require.NoError(t, err)
	again, err := svc.Approve(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", again.Status)

	_, err = svc.Reject(ctx, r.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	moderated := 0
	for _, typ := range pub.types() {
		if typ == domain.EventReviewModerated {
			moderated++
		}
	}
	assert.Equal(t, 1, moderated)

	got, err := svc.GetReview(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", got.Status)
	assert.Equal(t, "ok", *got.Title)

	_, err = svc.Approve(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.GetReview(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReviewService_SubmitValidation(t *testing.T) {
	svc, _ := newTestReviewService()

	_, err := svc.Submit(context.Background(), "prod_1", "cust-1", &dto.SubmitReviewRequest{Rating: 6})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReviewService_ListWithFilter(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestReviewService()

	first, err := svc.Submit(ctx, "prod_1", "cust-1", &dto.SubmitReviewRequest{Rating: 5})
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	second, err := svc.Submit(ctx, "prod_2", "cust-2", &dto.SubmitReviewRequest{Rating: 2})
	require.NoError(t, err)

	pending := domain.ReviewPending
	newest, err := svc.ListWithFilter(ctx, domain.ReviewFilter{Status: &pending}, domain.Pagination{}, true)
	require.NoError(t, err)
	require.Equal(t, 2, newest.Count)
	assert.Equal(t, second.ID, newest.Reviews[0].ID)

	oldest, err := svc.ListWithFilter(ctx, domain.ReviewFilter{}, domain.Pagination{}, false)
	require.NoError(t, err)
	assert.Equal(t, first.ID, oldest.Reviews[0].ID)

	bogus := domain.ReviewStatus("hidden")
	_, err = svc.ListWithFilter(ctx, domain.ReviewFilter{Status: &bogus}, domain.Pagination{}, true)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
