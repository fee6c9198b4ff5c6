package reports

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/willowmarket/willow-backend/pkg/db/models"
	"github.com/willowmarket/willow-backend/pkg/enums"
)

func setupReportsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  buyer_id TEXT NOT NULL,
  seller_id TEXT,
  total_cents INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_status TEXT NOT NULL DEFAULT 'pending',
  payment_released INTEGER NOT NULL DEFAULT 0,
  payment_released_at DATETIME,
  confirmed_by_buyer INTEGER NOT NULL DEFAULT 0,
  commission_rate_percent TEXT,
  admin_commission_cents INTEGER,
  seller_amount_cents INTEGER,
  shipping_name TEXT,
  shipping_address_line1 TEXT,
  shipping_address_line2 TEXT,
  shipping_city TEXT,
  shipping_region TEXT,
  shipping_postal_code TEXT,
  version INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedReleased(t *testing.T, db *gorm.DB, sellerID uuid.UUID, total, commission int64, releasedAt time.Time) {
	t.Helper()

	payout := total - commission
	order := &models.Order{
		ID:                   uuid.New(),
		BuyerID:              uuid.New(),
		SellerID:             &sellerID,
		TotalCents:           total,
		Status:               enums.OrderStatusCompleted,
		PaymentStatus:        enums.PaymentStatusPaid,
		PaymentReleased:      true,
		PaymentReleasedAt:    &releasedAt,
		ConfirmedByBuyer:     true,
		AdminCommissionCents: &commission,
		SellerAmountCents:    &payout,
		Version:              3,
		CreatedAt:            releasedAt.Add(-24 * time.Hour),
	}
	require.NoError(t, db.Create(order).Error)
}

func seedPendingRelease(t *testing.T, db *gorm.DB, sellerID uuid.UUID, total int64) {
	t.Helper()

	order := &models.Order{
		ID:               uuid.New(),
		BuyerID:          uuid.New(),
		SellerID:         &sellerID,
		TotalCents:       total,
		Status:           enums.OrderStatusProcessing,
		PaymentStatus:    enums.PaymentStatusPaid,
		ConfirmedByBuyer: true,
		Version:          2,
		CreatedAt:        time.Now().UTC(),
	}
	require.NoError(t, db.Create(order).Error)
}

func seedPaidUnconfirmed(t *testing.T, db *gorm.DB, sellerID uuid.UUID, total int64) {
	t.Helper()

	order := &models.Order{
		ID:            uuid.New(),
		BuyerID:       uuid.New(),
		SellerID:      &sellerID,
		TotalCents:    total,
		Status:        enums.OrderStatusProcessing,
		PaymentStatus: enums.PaymentStatusPaid,
		Version:       2,
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, db.Create(order).Error)
}

func TestSettlementTotals(t *testing.T) {
	db := setupReportsTestDB(t)
	repo := NewRepository(db)

	sellerA := uuid.New()
	sellerB := uuid.New()
	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	seedReleased(t, db, sellerA, 10000, 1000, now)
	seedReleased(t, db, sellerA, 20000, 3000, now.Add(time.Hour))
	seedReleased(t, db, sellerB, 5000, 500, now.Add(2*time.Hour))
	seedPendingRelease(t, db, sellerA, 8000)
	seedPendingRelease(t, db, sellerB, 4000)
	seedPaidUnconfirmed(t, db, sellerB, 6000)

	report, err := repo.SettlementTotals(context.Background(), ReportFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(53000), report.TotalRevenueCents)
	assert.Equal(t, int64(3), report.ReleasedOrders)
	assert.Equal(t, int64(35000), report.GrossCents)
	assert.Equal(t, int64(4500), report.CommissionCents)
	assert.Equal(t, int64(30500), report.SellerPayoutCents)
	assert.Equal(t, int64(2), report.PendingReleaseOrders)
	assert.Equal(t, int64(12000), report.PendingReleaseCents)
	assert.Equal(t, report.GrossCents, report.CommissionCents+report.SellerPayoutCents)
}

func TestSettlementTotalsPendingRequiresBuyerConfirmation(t *testing.T) {
	db := setupReportsTestDB(t)
	repo := NewRepository(db)

	seller := uuid.New()
	seedPaidUnconfirmed(t, db, seller, 5000)

	report, err := repo.SettlementTotals(context.Background(), ReportFilters{})
	require.NoError(t, err)
	assert.Zero(t, report.PendingReleaseOrders)
	assert.Zero(t, report.PendingReleaseCents)
	assert.Equal(t, int64(5000), report.TotalRevenueCents)
}

func TestSettlementTotalsRevenueCountsPaidOrders(t *testing.T) {
	db := setupReportsTestDB(t)
	repo := NewRepository(db)

	seller := uuid.New()
	now := time.Now().UTC()

	seedReleased(t, db, seller, 10000, 1000, now)
	seedPendingRelease(t, db, seller, 8000)

	report, err := repo.SettlementTotals(context.Background(), ReportFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(18000), report.TotalRevenueCents)
	assert.Equal(t, int64(10000), report.GrossCents)
}

func TestSettlementTotalsSellerFilter(t *testing.T) {
	db := setupReportsTestDB(t)
	repo := NewRepository(db)

	sellerA := uuid.New()
	sellerB := uuid.New()
	now := time.Now().UTC()

	seedReleased(t, db, sellerA, 10000, 1000, now)
	seedReleased(t, db, sellerB, 5000, 500, now)
	seedPendingRelease(t, db, sellerB, 4000)

	report, err := repo.SettlementTotals(context.Background(), ReportFilters{SellerID: &sellerA})
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.ReleasedOrders)
	assert.Equal(t, int64(10000), report.GrossCents)
	assert.Equal(t, int64(10000), report.TotalRevenueCents)
	assert.Zero(t, report.PendingReleaseOrders)
}

func TestSettlementTotalsDateWindow(t *testing.T) {
	db := setupReportsTestDB(t)
	repo := NewRepository(db)

	seller := uuid.New()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	seedReleased(t, db, seller, 10000, 1000, base)
	seedReleased(t, db, seller, 20000, 2000, base.AddDate(0, 0, 10))

	from := base.AddDate(0, 0, 5)
	report, err := repo.SettlementTotals(context.Background(), ReportFilters{DateFrom: &from})
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.ReleasedOrders)
	assert.Equal(t, int64(20000), report.GrossCents)
}

func TestSettlementTotalsEmpty(t *testing.T) {
	db := setupReportsTestDB(t)
	repo := NewRepository(db)

	report, err := repo.SettlementTotals(context.Background(), ReportFilters{})
	require.NoError(t, err)
	assert.Zero(t, report.ReleasedOrders)
	assert.Zero(t, report.GrossCents)
	assert.Zero(t, report.PendingReleaseCents)
}
