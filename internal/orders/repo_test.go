package orders

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
	"github.com/willowmarket/willow-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
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
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  qty INTEGER NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  total_cents INTEGER NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, created time.Time, mutate func(*models.Order)) *models.Order {
	t.Helper()

	sellerID := uuid.New()
	order := &models.Order{
		ID:            uuid.New(),
		BuyerID:       uuid.New(),
		SellerID:      &sellerID,
		TotalCents:    10000,
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
		Version:       1,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	if mutate != nil {
		mutate(order)
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func seedItem(t *testing.T, db *gorm.DB, order *models.Order, name string) {
	t.Helper()

	item := &models.OrderItem{
		ID:             uuid.New(),
		OrderID:        order.ID,
		ProductID:      uuid.New(),
		Name:           name,
		Qty:            2,
		UnitPriceCents: 2500,
		TotalCents:     5000,
		CreatedAt:      order.CreatedAt,
	}
	require.NoError(t, db.Create(item).Error)
}

func TestRepositoryFindByIDPreloadsItems(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	order := seedOrder(t, db, time.Now().UTC(), nil)
	seedItem(t, db, order, "Walnut Desk")
	seedItem(t, db, order, "Oak Chair")

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	assert.Len(t, found.Items, 2)
}

func TestRepositoryFindByIDMissing(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListPagination(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		order := seedOrder(t, db, base.Add(time.Duration(i)*time.Hour), nil)
		seedItem(t, db, order, "Item")
	}

	first, err := repo.List(context.Background(), pagination.Params{Limit: 2}, OrderFilters{})
	require.NoError(t, err)
	require.Len(t, first.Orders, 2)
	require.NotEmpty(t, first.NextCursor)
	assert.True(t, first.Orders[0].CreatedAt.After(first.Orders[1].CreatedAt), "newest first")
	assert.Equal(t, 1, first.Orders[0].TotalItems)

	second, err := repo.List(context.Background(), pagination.Params{Limit: 2, Cursor: first.NextCursor}, OrderFilters{})
	require.NoError(t, err)
	require.Len(t, second.Orders, 2)
	assert.True(t, second.Orders[0].CreatedAt.Before(first.Orders[1].CreatedAt))

	third, err := repo.List(context.Background(), pagination.Params{Limit: 2, Cursor: second.NextCursor}, OrderFilters{})
	require.NoError(t, err)
	require.Len(t, third.Orders, 1)
	assert.Empty(t, third.NextCursor)
}

func TestRepositoryListFilters(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	paid := seedOrder(t, db, now, func(o *models.Order) {
		o.PaymentStatus = enums.PaymentStatusPaid
		o.Status = enums.OrderStatusProcessing
	})
	seedOrder(t, db, now.Add(time.Minute), nil)
	released := seedOrder(t, db, now.Add(2*time.Minute), func(o *models.Order) {
		o.PaymentStatus = enums.PaymentStatusPaid
		o.Status = enums.OrderStatusCompleted
		o.PaymentReleased = true
	})

	paidStatus := enums.PaymentStatusPaid
	list, err := repo.List(context.Background(), pagination.Params{}, OrderFilters{PaymentStatus: &paidStatus})
	require.NoError(t, err)
	assert.Len(t, list.Orders, 2)

	releasedOnly := true
	list, err = repo.List(context.Background(), pagination.Params{}, OrderFilters{PaymentReleased: &releasedOnly})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, released.ID, list.Orders[0].ID)

	list, err = repo.List(context.Background(), pagination.Params{}, OrderFilters{BuyerID: &paid.BuyerID})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, paid.ID, list.Orders[0].ID)

	from := now.Add(90 * time.Second)
	list, err = repo.List(context.Background(), pagination.Params{}, OrderFilters{DateFrom: &from})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, released.ID, list.Orders[0].ID)
}

func TestRepositoryUpdateGuarded(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	order := seedOrder(t, db, time.Now().UTC(), nil)

	rows, err := repo.UpdateGuarded(context.Background(), order.ID, 1, map[string]any{
		"status": enums.OrderStatusProcessing,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	reloaded, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusProcessing, reloaded.Status)
	assert.Equal(t, int64(2), reloaded.Version)

	// stale version matches nothing and leaves the row alone
	rows, err = repo.UpdateGuarded(context.Background(), order.ID, 1, map[string]any{
		"status": enums.OrderStatusCancelled,
	})
	require.NoError(t, err)
	assert.Zero(t, rows)

	reloaded, err = repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusProcessing, reloaded.Status)
	assert.Equal(t, int64(2), reloaded.Version)
}
