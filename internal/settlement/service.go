package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/willowmarket/willow-backend/internal/orders"
	"github.com/willowmarket/willow-backend/pkg/db/models"
	"github.com/willowmarket/willow-backend/pkg/enums"
	pkgerrors "github.com/willowmarket/willow-backend/pkg/errors"
	"github.com/willowmarket/willow-backend/pkg/outbox"
	"github.com/willowmarket/willow-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ReleaseInput captures a guarded payment release request.
type ReleaseInput struct {
	OrderID         uuid.UUID
	ExpectedVersion int64
	RatePercent     decimal.Decimal
	Actor           orders.ActorContext
}

// Service coordinates the one-shot release of captured funds to a seller.
type Service interface {
	ReleasePayment(ctx context.Context, input ReleaseInput) (*models.Order, error)
}

type service struct {
	repo   orders.Repository
	tx     txRunner
	outbox outboxPublisher
	now    func() time.Time
}

// NewService builds the settlement coordinator.
func NewService(repo orders.Repository, tx txRunner, outbox outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		outbox: outbox,
		now:    time.Now,
	}, nil
}

// ReleasePayment verifies every settlement precondition, snapshots the
// commission rate, and records the split atomically with the release flag
// and the completed order status.
func (s *service) ReleasePayment(ctx context.Context, input ReleaseInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ExpectedVersion < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expected version must be positive")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := ValidateRate(input.RatePercent); err != nil {
		return nil, err
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Version != input.ExpectedVersion {
			return pkgerrors.New(pkgerrors.CodeConcurrent, "order was modified concurrently").
				WithDetails(map[string]any{"current_version": order.Version})
		}
		if order.PaymentReleased {
			return pkgerrors.New(pkgerrors.CodeInvalidState, "payment already released")
		}
		if order.PaymentStatus != enums.PaymentStatusPaid {
			return pkgerrors.New(pkgerrors.CodeInvalidState, "payment not confirmed paid").
				WithDetails(map[string]any{"payment_status": order.PaymentStatus})
		}
		if !order.ConfirmedByBuyer {
			return pkgerrors.New(pkgerrors.CodeInvalidState, "buyer confirmation required")
		}
		if order.SellerID == nil {
			return pkgerrors.New(pkgerrors.CodeInvalidState, "order has no seller to pay")
		}

		split, err := ComputeSplit(order.TotalCents, input.RatePercent)
		if err != nil {
			return err
		}

		releasedAt := s.now().UTC()
		rate := input.RatePercent
		priorStatus := order.Status
		rows, err := repo.UpdateGuarded(ctx, order.ID, input.ExpectedVersion, map[string]any{
			"payment_released":        true,
			"payment_released_at":     releasedAt,
			"commission_rate_percent": rate,
			"admin_commission_cents":  split.CommissionCents,
			"seller_amount_cents":     split.SellerCents,
			"status":                  enums.OrderStatusCompleted,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release payment")
		}
		if rows == 0 {
			current, err := repo.FindByID(ctx, order.ID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
			}
			return pkgerrors.New(pkgerrors.CodeConcurrent, "order was modified concurrently").
				WithDetails(map[string]any{"current_version": current.Version})
		}

		order.PaymentReleased = true
		order.PaymentReleasedAt = &releasedAt
		order.CommissionRatePercent = &rate
		order.AdminCommissionCents = &split.CommissionCents
		order.SellerAmountCents = &split.SellerCents
		order.Status = enums.OrderStatusCompleted
		order.Version = input.ExpectedVersion + 1
		updated = order

		actor := &outbox.ActorRef{
			UserID: input.Actor.UserID,
			Role:   input.Actor.Role.String(),
		}
		released := outbox.DomainEvent{
			EventType:     enums.EventPaymentReleased,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         actor,
			Data: payloads.PaymentReleasedEvent{
				OrderID:              order.ID,
				BuyerID:              order.BuyerID,
				SellerID:             order.SellerID,
				TotalCents:           order.TotalCents,
				AdminCommissionCents: split.CommissionCents,
				SellerAmountCents:    split.SellerCents,
				ReleasedAt:           releasedAt,
			},
		}
		if err := s.outbox.Emit(ctx, tx, released); err != nil {
			return err
		}

		if priorStatus == enums.OrderStatusCompleted {
			return nil
		}
		statusChanged := outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         actor,
			Data: payloads.OrderStatusChangedEvent{
				OrderID:   order.ID,
				BuyerID:   order.BuyerID,
				OldStatus: priorStatus,
				NewStatus: enums.OrderStatusCompleted,
			},
		}
		return s.outbox.Emit(ctx, tx, statusChanged)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
