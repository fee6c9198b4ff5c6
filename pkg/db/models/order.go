package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/willowmarket/willow-backend/pkg/enums"
)

// Order is the authoritative record of an order's fulfillment and payment state.
// Version is bumped on every write and guards against concurrent admin edits.
type Order struct {
	ID                    uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID               uuid.UUID           `gorm:"column:buyer_id;type:uuid;not null"`
	SellerID              *uuid.UUID          `gorm:"column:seller_id;type:uuid"`
	TotalCents            int64               `gorm:"column:total_cents;not null"`
	Status                enums.OrderStatus   `gorm:"column:status;type:order_status;not null;default:'pending'"`
	PaymentStatus         enums.PaymentStatus `gorm:"column:payment_status;type:payment_status;not null;default:'pending'"`
	PaymentReleased       bool                `gorm:"column:payment_released;not null;default:false"`
	PaymentReleasedAt     *time.Time          `gorm:"column:payment_released_at"`
	ConfirmedByBuyer      bool                `gorm:"column:confirmed_by_buyer;not null;default:false"`
	CommissionRatePercent *decimal.Decimal    `gorm:"column:commission_rate_percent;type:numeric(5,2)"`
	AdminCommissionCents  *int64              `gorm:"column:admin_commission_cents"`
	SellerAmountCents     *int64              `gorm:"column:seller_amount_cents"`
	ShippingName          string              `gorm:"column:shipping_name"`
	ShippingAddressLine1  string              `gorm:"column:shipping_address_line1"`
	ShippingAddressLine2  *string             `gorm:"column:shipping_address_line2"`
	ShippingCity          string              `gorm:"column:shipping_city"`
	ShippingRegion        string              `gorm:"column:shipping_region"`
	ShippingPostalCode    string              `gorm:"column:shipping_postal_code"`
	Version               int64               `gorm:"column:version;not null;default:1"`
	Items                 []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt             time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
