package reports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/willowmarket/willow-backend/pkg/db/models"
	"github.com/willowmarket/willow-backend/pkg/enums"
)

// ReportFilters narrow the settlement report window.
type ReportFilters struct {
	SellerID *uuid.UUID
	DateFrom *time.Time
	DateTo   *time.Time
}

// SettlementReport aggregates total captured revenue, the released money
// movement, and the backlog of buyer-confirmed orders still awaiting release.
type SettlementReport struct {
	TotalRevenueCents    int64 `json:"total_revenue_cents"`
	ReleasedOrders       int64 `json:"released_orders"`
	GrossCents           int64 `json:"gross_cents"`
	CommissionCents      int64 `json:"commission_cents"`
	SellerPayoutCents    int64 `json:"seller_payout_cents"`
	PendingReleaseOrders int64 `json:"pending_release_orders"`
	PendingReleaseCents  int64 `json:"pending_release_cents"`
}

// Repository exposes the aggregate queries behind the settlement report.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	SettlementTotals(ctx context.Context, filters ReportFilters) (*SettlementReport, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a reports repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) SettlementTotals(ctx context.Context, filters ReportFilters) (*SettlementReport, error) {
	type releasedRow struct {
		Released   int64
		Gross      int64
		Commission int64
		Payout     int64
	}

	released := releasedRow{}
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select(
			"COUNT(*) AS released",
			"COALESCE(SUM(total_cents), 0) AS gross",
			"COALESCE(SUM(admin_commission_cents), 0) AS commission",
			"COALESCE(SUM(seller_amount_cents), 0) AS payout",
		).
		Where("payment_released = ?", true)
	query = applyReleasedFilters(query, filters)
	if err := query.Scan(&released).Error; err != nil {
		return nil, err
	}

	type pendingRow struct {
		Pending int64
		Cents   int64
	}
	pending := pendingRow{}
	pendingQuery := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select(
			"COUNT(*) AS pending",
			"COALESCE(SUM(total_cents), 0) AS cents",
		).
		Where("payment_released = ? AND confirmed_by_buyer = ?", false, true)
	if filters.SellerID != nil {
		pendingQuery = pendingQuery.Where("seller_id = ?", *filters.SellerID)
	}
	if err := pendingQuery.Scan(&pending).Error; err != nil {
		return nil, err
	}

	var revenue int64
	revenueQuery := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COALESCE(SUM(total_cents), 0)").
		Where("payment_status = ?", enums.PaymentStatusPaid)
	if filters.SellerID != nil {
		revenueQuery = revenueQuery.Where("seller_id = ?", *filters.SellerID)
	}
	if err := revenueQuery.Scan(&revenue).Error; err != nil {
		return nil, err
	}

	return &SettlementReport{
		TotalRevenueCents:    revenue,
		ReleasedOrders:       released.Released,
		GrossCents:           released.Gross,
		CommissionCents:      released.Commission,
		SellerPayoutCents:    released.Payout,
		PendingReleaseOrders: pending.Pending,
		PendingReleaseCents:  pending.Cents,
	}, nil
}

func applyReleasedFilters(query *gorm.DB, filters ReportFilters) *gorm.DB {
	if filters.SellerID != nil {
		query = query.Where("seller_id = ?", *filters.SellerID)
	}
	if filters.DateFrom != nil {
		query = query.Where("payment_released_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("payment_released_at <= ?", *filters.DateTo)
	}
	return query
}
