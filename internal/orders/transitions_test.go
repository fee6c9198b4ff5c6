package orders

import (
	"testing"

	"github.com/willowmarket/willow-backend/pkg/enums"
)

func TestCanTransitionStatus(t *testing.T) {
	cases := []struct {
		name    string
		from    enums.OrderStatus
		to      enums.OrderStatus
		allowed bool
	}{
		{"pending to processing", enums.OrderStatusPending, enums.OrderStatusProcessing, true},
		{"pending to cancelled", enums.OrderStatusPending, enums.OrderStatusCancelled, true},
		{"pending to completed skips processing", enums.OrderStatusPending, enums.OrderStatusCompleted, false},
		{"processing to completed", enums.OrderStatusProcessing, enums.OrderStatusCompleted, true},
		{"processing to cancelled", enums.OrderStatusProcessing, enums.OrderStatusCancelled, true},
		{"processing back to pending", enums.OrderStatusProcessing, enums.OrderStatusPending, false},
		{"completed is terminal", enums.OrderStatusCompleted, enums.OrderStatusCancelled, false},
		{"cancelled is terminal", enums.OrderStatusCancelled, enums.OrderStatusPending, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanTransitionStatus(tc.from, tc.to); got != tc.allowed {
				t.Fatalf("CanTransitionStatus(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
			}
		})
	}
}

func TestCanTransitionPayment(t *testing.T) {
	cases := []struct {
		name    string
		from    enums.PaymentStatus
		to      enums.PaymentStatus
		allowed bool
	}{
		{"pending to paid", enums.PaymentStatusPending, enums.PaymentStatusPaid, true},
		{"pending to failed", enums.PaymentStatusPending, enums.PaymentStatusFailed, true},
		{"paid to failed needs override", enums.PaymentStatusPaid, enums.PaymentStatusFailed, false},
		{"paid back to pending", enums.PaymentStatusPaid, enums.PaymentStatusPending, false},
		{"failed is terminal", enums.PaymentStatusFailed, enums.PaymentStatusPaid, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanTransitionPayment(tc.from, tc.to); got != tc.allowed {
				t.Fatalf("CanTransitionPayment(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
			}
		})
	}
}

func TestIsPaymentOverride(t *testing.T) {
	if !IsPaymentOverride(enums.PaymentStatusPaid, enums.PaymentStatusFailed) {
		t.Fatal("paid -> failed should be an override")
	}
	if IsPaymentOverride(enums.PaymentStatusPending, enums.PaymentStatusFailed) {
		t.Fatal("pending -> failed is a regular transition, not an override")
	}
	if IsPaymentOverride(enums.PaymentStatusPaid, enums.PaymentStatusPending) {
		t.Fatal("paid -> pending is not an override")
	}
}
