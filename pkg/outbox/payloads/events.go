package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/willowmarket/willow-backend/pkg/enums"
)

// OrderStatusChangedEvent is emitted whenever an order's fulfillment status
// commits a new value.
type OrderStatusChangedEvent struct {
	OrderID   uuid.UUID         `json:"order_id"`
	BuyerID   uuid.UUID         `json:"buyer_id"`
	OldStatus enums.OrderStatus `json:"old_status"`
	NewStatus enums.OrderStatus `json:"new_status"`
}

// PaymentStatusChangedEvent is emitted whenever an order's payment status
// commits a new value. Reason is only set for administrative overrides.
type PaymentStatusChangedEvent struct {
	OrderID   uuid.UUID           `json:"order_id"`
	BuyerID   uuid.UUID           `json:"buyer_id"`
	OldStatus enums.PaymentStatus `json:"old_status"`
	NewStatus enums.PaymentStatus `json:"new_status"`
	Reason    string              `json:"reason,omitempty"`
}

// PaymentReleasedEvent is emitted exactly once per order when settlement
// commits the commission split.
type PaymentReleasedEvent struct {
	OrderID              uuid.UUID  `json:"order_id"`
	BuyerID              uuid.UUID  `json:"buyer_id"`
	SellerID             *uuid.UUID `json:"seller_id,omitempty"`
	TotalCents           int64      `json:"total_cents"`
	AdminCommissionCents int64      `json:"admin_commission_cents"`
	SellerAmountCents    int64      `json:"seller_amount_cents"`
	ReleasedAt           time.Time  `json:"released_at"`
}
