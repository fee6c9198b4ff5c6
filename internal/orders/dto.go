package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/willowmarket/willow-backend/pkg/enums"
)

// OrderFilters describe the inputs supported by the admin order list.
type OrderFilters struct {
	Status          *enums.OrderStatus
	PaymentStatus   *enums.PaymentStatus
	BuyerID         *uuid.UUID
	SellerID        *uuid.UUID
	PaymentReleased *bool
	DateFrom        *time.Time
	DateTo          *time.Time
}

// OrderSummary exposes the aggregated fields returned in the admin list.
type OrderSummary struct {
	ID                   uuid.UUID           `json:"id"`
	BuyerID              uuid.UUID           `json:"buyer_id"`
	SellerID             *uuid.UUID          `json:"seller_id,omitempty"`
	TotalCents           int64               `json:"total_cents"`
	Status               enums.OrderStatus   `json:"status"`
	PaymentStatus        enums.PaymentStatus `json:"payment_status"`
	PaymentReleased      bool                `json:"payment_released"`
	ConfirmedByBuyer     bool                `json:"confirmed_by_buyer"`
	AdminCommissionCents *int64              `json:"admin_commission_cents,omitempty"`
	SellerAmountCents    *int64              `json:"seller_amount_cents,omitempty"`
	TotalItems           int                 `json:"total_items"`
	Version              int64               `json:"version"`
	CreatedAt            time.Time           `json:"created_at"`
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}
