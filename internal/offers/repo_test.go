package offers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/promolink/promolink-backend/pkg/db/models"
	"github.com/promolink/promolink-backend/pkg/enums"
)

func setupOffersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS offers (
  id TEXT PRIMARY KEY,
  supplier_id TEXT NOT NULL,
  name TEXT NOT NULL,
  promo_price NUMERIC NOT NULL,
  discount_percent NUMERIC NOT NULL,
  start_date DATETIME NOT NULL,
  end_date DATETIME NOT NULL,
  category TEXT NOT NULL,
  subcategory TEXT,
  margin_percent NUMERIC,
  volume TEXT,
  conditions TEXT,
  animation TEXT,
  photo_url TEXT,
  status TEXT NOT NULL DEFAULT 'DRAFT',
  created_at DATETIME,
  updated_at DATETIME,
  deleted_at DATETIME
);`
	require.NoError(t, conn.Exec(ddl).Error)
	return conn
}

func newOfferRow(supplierID uuid.UUID, status enums.OfferStatus, endDate time.Time) *models.Offer {
	now := time.Now().UTC()
	return &models.Offer{
		ID:              uuid.New(),
		SupplierID:      supplierID,
		Name:            "Promo rentrée",
		PromoPrice:      decimal.NewFromFloat(9.90),
		DiscountPercent: decimal.NewFromInt(20),
		StartDate:       endDate.AddDate(0, 0, -14),
		EndDate:         endDate,
		Category:        enums.OfferCategoryEpicerie,
		Status:          status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestRepository_SoftDeleteHidesFromFindByID(t *testing.T) {
	conn := setupOffersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	supplierID := uuid.New()
	offer := newOfferRow(supplierID, enums.OfferStatusActive, time.Now().UTC().AddDate(0, 0, 7))
	require.NoError(t, repo.Create(ctx, offer))

	deleted, err := repo.SoftDelete(ctx, offer.ID, supplierID, time.Now().UTC())
	require.NoError(t, err)
	require.True(t, deleted)

	found, err := repo.FindByID(ctx, offer.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	// Requests resolving their offer name still see the row.
	any, err := repo.FindByIDAny(ctx, offer.ID)
	require.NoError(t, err)
	require.NotNil(t, any)
	assert.Equal(t, offer.ID, any.ID)

	// Second delete finds nothing to touch.
	deleted, err = repo.SoftDelete(ctx, offer.ID, supplierID, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRepository_FindOwnedScopesToSupplier(t *testing.T) {
	conn := setupOffersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	supplierID := uuid.New()
	offer := newOfferRow(supplierID, enums.OfferStatusActive, time.Now().UTC().AddDate(0, 0, 7))
	require.NoError(t, repo.Create(ctx, offer))

	found, err := repo.FindOwned(ctx, offer.ID, supplierID)
	require.NoError(t, err)
	require.NotNil(t, found)

	foreign, err := repo.FindOwned(ctx, offer.ID, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, foreign)
}

func TestRepository_ExpirySweepTargetsLapsedActiveOffers(t *testing.T) {
	conn := setupOffersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	supplierID := uuid.New()
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	lapsed := newOfferRow(supplierID, enums.OfferStatusActive, today.AddDate(0, 0, -2))
	current := newOfferRow(supplierID, enums.OfferStatusActive, today.AddDate(0, 0, 5))
	draft := newOfferRow(supplierID, enums.OfferStatusDraft, today.AddDate(0, 0, -2))
	require.NoError(t, repo.Create(ctx, lapsed))
	require.NoError(t, repo.Create(ctx, current))
	require.NoError(t, repo.Create(ctx, draft))

	due, err := repo.ListExpiredDueTx(conn, today, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, lapsed.ID, due[0].ID)

	updated, err := repo.MarkExpiredTx(conn, []uuid.UUID{lapsed.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	reloaded, err := repo.FindByID(ctx, lapsed.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.Equal(t, enums.OfferStatusExpired, reloaded.Status)

	// A second pass has nothing left to flip.
	updated, err = repo.MarkExpiredTx(conn, []uuid.UUID{lapsed.ID})
	require.NoError(t, err)
	assert.Zero(t, updated)
}

func TestRepository_ListFiltersAndPaginates(t *testing.T) {
	conn := setupOffersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	supplierID := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		offer := newOfferRow(supplierID, enums.OfferStatusActive, base.AddDate(0, 0, 14))
		offer.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		offer.UpdatedAt = offer.CreatedAt
		require.NoError(t, repo.Create(ctx, offer))
	}
	other := newOfferRow(uuid.New(), enums.OfferStatusActive, base.AddDate(0, 0, 14))
	require.NoError(t, repo.Create(ctx, other))

	page, next, err := repo.List(ctx, listOffersParams{SupplierID: &supplierID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.NotNil(t, next)

	rest, final, err := repo.List(ctx, listOffersParams{SupplierID: &supplierID, Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Nil(t, final)
}
