package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/willowmarket/willow-backend/pkg/db/models"
	"github.com/willowmarket/willow-backend/pkg/enums"
	pkgerrors "github.com/willowmarket/willow-backend/pkg/errors"
	"github.com/willowmarket/willow-backend/pkg/outbox"
	"github.com/willowmarket/willow-backend/pkg/outbox/payloads"
	"github.com/willowmarket/willow-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ActorContext identifies the authenticated admin performing a mutation.
type ActorContext struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// UpdateStatusInput captures a guarded fulfillment status change.
type UpdateStatusInput struct {
	OrderID         uuid.UUID
	ExpectedVersion int64
	NewStatus       enums.OrderStatus
	Actor           ActorContext
}

// UpdatePaymentStatusInput captures a guarded payment status change.
// OverrideReason is required only for the paid -> failed reversal.
type UpdatePaymentStatusInput struct {
	OrderID          uuid.UUID
	ExpectedVersion  int64
	NewPaymentStatus enums.PaymentStatus
	OverrideReason   string
	Actor            ActorContext
}

// Service defines ledger operations beyond repository reads.
type Service interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, input UpdatePaymentStatusInput) (*models.Order, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// NewService builds an order ledger service with the required dependencies.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outbox}, nil
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.NewStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	if input.ExpectedVersion < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expected version must be positive")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
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
			return concurrentError(order.Version)
		}
		if order.Status == input.NewStatus {
			// same-value write is a no-op: no version bump, no event
			updated = order
			return nil
		}
		if !CanTransitionStatus(order.Status, input.NewStatus) {
			return pkgerrors.New(pkgerrors.CodeInvalidState, "status transition not allowed").
				WithDetails(map[string]any{
					"from": order.Status,
					"to":   input.NewStatus,
				})
		}

		oldStatus := order.Status
		rows, err := repo.UpdateGuarded(ctx, order.ID, input.ExpectedVersion, map[string]any{
			"status": input.NewStatus,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if rows == 0 {
			return s.resolveGuardFailure(ctx, repo, order.ID)
		}

		order.Status = input.NewStatus
		order.Version = input.ExpectedVersion + 1
		updated = order

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.Actor),
			Data: payloads.OrderStatusChangedEvent{
				OrderID:   order.ID,
				BuyerID:   order.BuyerID,
				OldStatus: oldStatus,
				NewStatus: input.NewStatus,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) UpdatePaymentStatus(ctx context.Context, input UpdatePaymentStatusInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.NewPaymentStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status")
	}
	if input.ExpectedVersion < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expected version must be positive")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	reason := strings.TrimSpace(input.OverrideReason)

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
			return concurrentError(order.Version)
		}
		if order.PaymentStatus == input.NewPaymentStatus {
			updated = order
			return nil
		}

		override := IsPaymentOverride(order.PaymentStatus, input.NewPaymentStatus)
		switch {
		case override && order.PaymentReleased:
			return pkgerrors.New(pkgerrors.CodeInvalidState, "cannot fail a released payment")
		case override && reason == "":
			return pkgerrors.New(pkgerrors.CodeValidation, "override reason required to fail a paid order")
		case !override && !CanTransitionPayment(order.PaymentStatus, input.NewPaymentStatus):
			return pkgerrors.New(pkgerrors.CodeInvalidState, "payment status transition not allowed").
				WithDetails(map[string]any{
					"from": order.PaymentStatus,
					"to":   input.NewPaymentStatus,
				})
		}
		if !override {
			reason = ""
		}

		oldStatus := order.PaymentStatus
		rows, err := repo.UpdateGuarded(ctx, order.ID, input.ExpectedVersion, map[string]any{
			"payment_status": input.NewPaymentStatus,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment status")
		}
		if rows == 0 {
			return s.resolveGuardFailure(ctx, repo, order.ID)
		}

		order.PaymentStatus = input.NewPaymentStatus
		order.Version = input.ExpectedVersion + 1
		updated = order

		event := outbox.DomainEvent{
			EventType:     enums.EventPaymentStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.Actor),
			Data: payloads.PaymentStatusChangedEvent{
				OrderID:   order.ID,
				BuyerID:   order.BuyerID,
				OldStatus: oldStatus,
				NewStatus: input.NewPaymentStatus,
				Reason:    reason,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// resolveGuardFailure distinguishes a vanished row from a concurrent bump
// after a guarded update matched nothing.
func (s *service) resolveGuardFailure(ctx context.Context, repo Repository, orderID uuid.UUID) error {
	current, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}
	return concurrentError(current.Version)
}

func concurrentError(currentVersion int64) error {
	return pkgerrors.New(pkgerrors.CodeConcurrent, "order was modified concurrently").
		WithDetails(map[string]any{"current_version": currentVersion})
}

func buildActor(actor ActorContext) *outbox.ActorRef {
	return &outbox.ActorRef{
		UserID: actor.UserID,
		Role:   actor.Role.String(),
	}
}
