package notifications

import (
	"github.com/willowmarket/willow-backend/pkg/enums"
)

const (
	orderUpdateTitle     = "Order update"
	paymentUpdateTitle   = "Payment update"
	paymentReleasedTitle = "Payment released"
)

// Message copy is fixed per status so clients render identical text for
// identical transitions.
var orderStatusMessages = map[enums.OrderStatus]string{
	enums.OrderStatusPending:    "Your order has been received.",
	enums.OrderStatusProcessing: "Your order is being processed.",
	enums.OrderStatusCompleted:  "Your order has been completed.",
	enums.OrderStatusCancelled:  "Your order has been cancelled.",
}

var paymentStatusMessages = map[enums.PaymentStatus]string{
	enums.PaymentStatusPending: "Your payment is pending.",
	enums.PaymentStatusPaid:    "Your payment has been received.",
	enums.PaymentStatusFailed:  "Your payment could not be processed.",
}

const paymentReleasedMessage = "Funds for your order have been released to your account."

// OrderStatusMessage returns the buyer-facing copy for a fulfillment status.
func OrderStatusMessage(status enums.OrderStatus) string {
	if msg, ok := orderStatusMessages[status]; ok {
		return msg
	}
	return "Your order has been updated."
}

// PaymentStatusMessage returns the buyer-facing copy for a payment status.
func PaymentStatusMessage(status enums.PaymentStatus) string {
	if msg, ok := paymentStatusMessages[status]; ok {
		return msg
	}
	return "Your payment status has been updated."
}
