package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/willowmarket/willow-backend/pkg/db/models"
	"github.com/willowmarket/willow-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Order{})
	query = applyFilters(query, filters)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
	err = query.
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	counts, err := r.itemCounts(ctx, rows)
	if err != nil {
		return nil, err
	}

	summaries := make([]OrderSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, OrderSummary{
			ID:                   row.ID,
			BuyerID:              row.BuyerID,
			SellerID:             row.SellerID,
			TotalCents:           row.TotalCents,
			Status:               row.Status,
			PaymentStatus:        row.PaymentStatus,
			PaymentReleased:      row.PaymentReleased,
			ConfirmedByBuyer:     row.ConfirmedByBuyer,
			AdminCommissionCents: row.AdminCommissionCents,
			SellerAmountCents:    row.SellerAmountCents,
			TotalItems:           counts[row.ID],
			Version:              row.Version,
			CreatedAt:            row.CreatedAt,
		})
	}

	return &OrderList{Orders: summaries, NextCursor: nextCursor}, nil
}

func (r *repository) itemCounts(ctx context.Context, rows []models.Order) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(rows))
	if len(rows) == 0 {
		return counts, nil
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	type itemCount struct {
		OrderID uuid.UUID
		Total   int
	}
	var results []itemCount
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Select("order_id", "COUNT(*) AS total").
		Where("order_id IN ?", ids).
		Group("order_id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	for _, result := range results {
		counts[result.OrderID] = result.Total
	}
	return counts, nil
}

func (r *repository) UpdateGuarded(ctx context.Context, orderID uuid.UUID, expectedVersion int64, updates map[string]any) (int64, error) {
	if updates == nil {
		updates = map[string]any{}
	}
	if _, ok := updates["version"]; !ok {
		updates["version"] = expectedVersion + 1
	}
	updates["updated_at"] = time.Now().UTC()

	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND version = ?", orderID, expectedVersion).
		Updates(updates)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func applyFilters(query *gorm.DB, filters OrderFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filters.PaymentStatus)
	}
	if filters.BuyerID != nil {
		query = query.Where("buyer_id = ?", *filters.BuyerID)
	}
	if filters.SellerID != nil {
		query = query.Where("seller_id = ?", *filters.SellerID)
	}
	if filters.PaymentReleased != nil {
		query = query.Where("payment_released = ?", *filters.PaymentReleased)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}
