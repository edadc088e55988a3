package postgres

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	"github.com/mrops-br/marketplace-ops-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

// openTestDB connects to TEST_DATABASE_URL, applies migrations and truncates
// every table. Tests are skipped when the variable is unset.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := Open(ctx, Config{URL: url, MaxOpenConns: 4})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(ctx, db, MigrationConfig{}, discardLogger()))

	_, err = db.ExecContext(ctx, `TRUNCATE review, warranty_claim, warranty,
		seller_product_link, seller, seller_request`)
	require.NoError(t, err)

	return db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMigrations_CreateRepositoryTables(t *testing.T) {
	up, err := migrationFiles.ReadFile("migrations/000001_create_marketplace_tables.up.sql")
	require.NoError(t, err)
	down, err := migrationFiles.ReadFile("migrations/000001_create_marketplace_tables.down.sql")
	require.NoError(t, err)

	for _, table := range []string{
		sellerRequestTable, sellerTable, sellerProductLinkTable,
		warrantyTable, warrantyClaimTable, reviewTable,
	} {
		assert.Contains(t, string(up), "CREATE TABLE IF NOT EXISTS "+table+" (")
		assert.Contains(t, string(down), "DROP TABLE IF EXISTS "+table+";")
	}
	assert.Equal(t, "warranty", warrantyTable)
	assert.Equal(t, "review", reviewTable)
}

func TestStatusAsOf(t *testing.T) {
	asOf := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		status   domain.WarrantyStatus
		fragment string
		args     []any
	}{
		{domain.WarrantyActive, "status = $1 AND end_date >= $2", []any{"active", asOf}},
		{domain.WarrantyExpired, "status = $1 OR (status = $2 AND end_date < $3)", []any{"expired", "active", asOf}},
		{domain.WarrantyVoid, "status = $1", []any{"void"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
			sb.Select("id").From(warrantyTable)
			sb.Where(statusAsOf(sb, tt.status, asOf))

			query, args := sb.Build()
			assert.Contains(t, query, tt.fragment)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestSellerRepository_Postgres(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewSellerRepository(db, noop.NewTracerProvider().Tracer("test"), discardLogger())

	first, err := domain.NewSeller("Kitchen World", "shop@kw.com", "", domain.SellerApproved,
		domain.Metadata{StoreName: "KW", Source: domain.SourceSellerRequest, RequestID: "req-1"})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, first))

	second, err := domain.NewSeller("Kitchen World 2", "shop@kw.com", "", domain.SellerPending, domain.Metadata{})
	require.NoError(t, err)
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	require.NoError(t, repo.Create(ctx, second))

	t.Run("find by email returns oldest", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, "shop@kw.com")
		require.NoError(t, err)
		assert.Equal(t, first.ID, found.ID)
		assert.Equal(t, "KW", found.Metadata.StoreName)
		assert.Equal(t, "req-1", found.Metadata.RequestID)
	})

	t.Run("list filters and counts", func(t *testing.T) {
		status := domain.SellerApproved
		sellers, total, err := repo.List(ctx, domain.SellerFilter{Status: &status}, domain.Pagination{})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, sellers, 1)
		assert.Equal(t, first.ID, sellers[0].ID)
	})

	t.Run("update persists", func(t *testing.T) {
		second.Name = "Renamed"
		require.NoError(t, repo.Update(ctx, second))

		found, err := repo.FindByID(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", found.Name)
	})

	t.Run("soft delete hides the row", func(t *testing.T) {
		require.NoError(t, repo.SoftDelete(ctx, second.ID, time.Now()))

		_, err := repo.FindByID(ctx, second.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		err = repo.SoftDelete(ctx, second.ID, time.Now())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestSellerProductLinkRepository_Postgres(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewSellerProductLinkRepository(db, noop.NewTracerProvider().Tracer("test"), discardLogger())

	link, err := domain.NewSellerProductLink("seller-1", "prod_123", 0)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, link))

	t.Run("duplicate live pair conflicts", func(t *testing.T) {
		dup, err := domain.NewSellerProductLink("seller-1", "prod_123", 3)
		require.NoError(t, err)

		err = repo.Create(ctx, dup)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("relink after delete", func(t *testing.T) {
		require.NoError(t, repo.SoftDelete(ctx, link.ID, time.Now()))

		again, err := domain.NewSellerProductLink("seller-1", "prod_123", 1)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, again))

		found, err := repo.FindBySellerAndProduct(ctx, "seller-1", "prod_123")
		require.NoError(t, err)
		assert.Equal(t, again.ID, found.ID)
	})

	t.Run("list ordered by display order", func(t *testing.T) {
		early, err := domain.NewSellerProductLink("seller-1", "prod_001", 0)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, early))

		links, err := repo.ListBySeller(ctx, "seller-1")
		require.NoError(t, err)
		require.Len(t, links, 2)
		assert.Equal(t, "prod_001", links[0].ProductID)
		assert.Equal(t, "prod_123", links[1].ProductID)
	})
}

func TestWarrantyRepositories_Postgres(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	tracer := noop.NewTracerProvider().Tracer("test")
	warranties := NewWarrantyRepository(db, tracer, discardLogger())
	claims := NewWarrantyClaimRepository(db, tracer, discardLogger())

	start := time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)
	w, err := domain.NewWarranty(domain.WarrantyParams{
		ProductID:      "prod_9",
		CustomerEmail:  "c@kw.com",
		DurationMonths: 1,
	}, start)
	require.NoError(t, err)
	require.NoError(t, warranties.Create(ctx, w))

	found, err := warranties.FindByID(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, found.EndDate.Equal(time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, domain.WarrantyManufacturer, found.Type)

	claim, err := domain.NewWarrantyClaim(found, "c@kw.com", "Broken hinge")
	require.NoError(t, err)
	require.NoError(t, claims.Create(ctx, claim))

	warrantyID := w.ID
	listed, total, err := claims.List(ctx, domain.ClaimFilter{WarrantyID: &warrantyID}, domain.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, listed, 1)
	assert.Equal(t, domain.ClaimSubmitted, listed[0].Status)

	productID := "prod_9"
	active, expired := domain.WarrantyActive, domain.WarrantyExpired
	_, total, err = warranties.List(ctx, domain.WarrantyFilter{
		ProductID: &productID, Status: &active, AsOf: start.AddDate(0, 0, 7),
	}, domain.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, total, err = warranties.List(ctx, domain.WarrantyFilter{
		ProductID: &productID, Status: &active, AsOf: start.AddDate(0, 2, 0),
	}, domain.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	lapsed, total, err := warranties.List(ctx, domain.WarrantyFilter{
		ProductID: &productID, Status: &expired, AsOf: start.AddDate(0, 2, 0),
	}, domain.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, lapsed, 1)
	assert.Equal(t, w.ID, lapsed[0].ID)
}

func TestReviewRepository_Postgres(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewReviewRepository(db, noop.NewTracerProvider().Tracer("test"), discardLogger())

	for i, rating := range []int{4, 5, 2} {
		review, err := domain.NewReview("prod_123", "cust-1", rating, "", "")
		require.NoError(t, err)
		review.CreatedAt = review.CreatedAt.Add(time.Duration(i) * time.Second)
		if rating != 2 {
			require.NoError(t, review.Moderate(domain.ReviewApproved))
		}
		require.NoError(t, repo.Create(ctx, review))
	}

	approved := domain.ReviewApproved
	reviews, err := repo.ListByProduct(ctx, "prod_123", &approved)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, 5, reviews[0].Rating)

	page, total, err := repo.List(ctx, domain.ReviewFilter{}, domain.Pagination{Page: 1, PageSize: 2}, false)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, 4, page[0].Rating)
}
