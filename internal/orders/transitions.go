package orders

import (
	"github.com/willowmarket/willow-backend/pkg/enums"
)

// allowedStatusTransitions is the single source of truth for the fulfillment
// state machine. Cancellation is reachable from any non-terminal state.
var allowedStatusTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:    {enums.OrderStatusProcessing, enums.OrderStatusCancelled},
	enums.OrderStatusProcessing: {enums.OrderStatusCompleted, enums.OrderStatusCancelled},
	enums.OrderStatusCompleted:  {},
	enums.OrderStatusCancelled:  {},
}

// allowedPaymentTransitions covers the unconditional payment moves. The
// paid -> failed override is gated separately because it needs a reason and
// is blocked once funds are released.
var allowedPaymentTransitions = map[enums.PaymentStatus][]enums.PaymentStatus{
	enums.PaymentStatusPending: {enums.PaymentStatusPaid, enums.PaymentStatusFailed},
	enums.PaymentStatusPaid:    {},
	enums.PaymentStatusFailed:  {},
}

// CanTransitionStatus reports whether the fulfillment state machine allows
// moving from one status to another.
func CanTransitionStatus(from, to enums.OrderStatus) bool {
	for _, candidate := range allowedStatusTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// CanTransitionPayment reports whether the payment move is allowed without an
// override reason.
func CanTransitionPayment(from, to enums.PaymentStatus) bool {
	for _, candidate := range allowedPaymentTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// IsPaymentOverride reports whether the move is the admin-only paid -> failed
// reversal, which requires a reason and an unreleased payment.
func IsPaymentOverride(from, to enums.PaymentStatus) bool {
	return from == enums.PaymentStatusPaid && to == enums.PaymentStatusFailed
}
