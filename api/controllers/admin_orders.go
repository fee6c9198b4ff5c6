package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/willowmarket/willow-backend/api/middleware"
	"github.com/willowmarket/willow-backend/api/responses"
	"github.com/willowmarket/willow-backend/api/validators"
	internalorders "github.com/willowmarket/willow-backend/internal/orders"
	"github.com/willowmarket/willow-backend/internal/settlement"
	"github.com/willowmarket/willow-backend/pkg/enums"
	pkgerrors "github.com/willowmarket/willow-backend/pkg/errors"
	"github.com/willowmarket/willow-backend/pkg/logger"
	"github.com/willowmarket/willow-backend/pkg/pagination"
)

// UpdateOrderStatusRequest is the guarded status change body.
type UpdateOrderStatusRequest struct {
	ExpectedVersion int64  `json:"expected_version" validate:"required,min=1"`
	Status          string `json:"status" validate:"required"`
}

// UpdatePaymentStatusRequest is the guarded payment change body. The override
// reason is only consulted for the paid -> failed reversal.
type UpdatePaymentStatusRequest struct {
	ExpectedVersion int64  `json:"expected_version" validate:"required,min=1"`
	PaymentStatus   string `json:"payment_status" validate:"required"`
	OverrideReason  string `json:"override_reason,omitempty" validate:"omitempty,max=500"`
}

// ReleasePaymentRequest carries the commission rate applied at release time.
type ReleasePaymentRequest struct {
	ExpectedVersion int64           `json:"expected_version" validate:"required,min=1"`
	RatePercent     decimal.Decimal `json:"rate_percent" validate:"required"`
}

// AdminListOrders returns a cursor-paginated, filterable order list.
func AdminListOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		filters, err := parseOrderFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListOrders(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminGetOrder returns a single order with its line items.
func AdminGetOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AdminUpdateOrderStatus applies a version-guarded fulfillment transition.
func AdminUpdateOrderStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body UpdateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.UpdateStatus(r.Context(), internalorders.UpdateStatusInput{
			OrderID:         orderID,
			ExpectedVersion: body.ExpectedVersion,
			NewStatus:       status,
			Actor:           actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AdminUpdatePaymentStatus applies a version-guarded payment transition.
func AdminUpdatePaymentStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body UpdatePaymentStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParsePaymentStatus(body.PaymentStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment status"))
			return
		}

		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.UpdatePaymentStatus(r.Context(), internalorders.UpdatePaymentStatusInput{
			OrderID:          orderID,
			ExpectedVersion:  body.ExpectedVersion,
			NewPaymentStatus: status,
			OverrideReason:   body.OverrideReason,
			Actor:            actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AdminReleasePayment settles an order's funds to the seller.
func AdminReleasePayment(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body ReleasePaymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.ReleasePayment(r.Context(), settlement.ReleaseInput{
			OrderID:         orderID,
			ExpectedVersion: body.ExpectedVersion,
			RatePercent:     body.RatePercent,
			Actor:           actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return orderID, nil
}

func parseOrderFilters(r *http.Request) (internalorders.OrderFilters, error) {
	filters := internalorders.OrderFilters{}

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("payment_status")); raw != "" {
		status, err := enums.ParsePaymentStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment status filter")
		}
		filters.PaymentStatus = &status
	}

	buyerID, err := validators.ParseQueryUUID(r, "buyer_id")
	if err != nil {
		return filters, err
	}
	filters.BuyerID = buyerID

	sellerID, err := validators.ParseQueryUUID(r, "seller_id")
	if err != nil {
		return filters, err
	}
	filters.SellerID = sellerID

	released, err := validators.ParseQueryBool(r, "payment_released")
	if err != nil {
		return filters, err
	}
	filters.PaymentReleased = released

	dateFrom, err := validators.ParseQueryTime(r, "date_from")
	if err != nil {
		return filters, err
	}
	filters.DateFrom = dateFrom

	dateTo, err := validators.ParseQueryTime(r, "date_to")
	if err != nil {
		return filters, err
	}
	filters.DateTo = dateTo

	return filters, nil
}

func actorFromContext(r *http.Request) (internalorders.ActorContext, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return internalorders.ActorContext{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return internalorders.ActorContext{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}

	role := enums.UserRole(middleware.RoleFromContext(r.Context()))
	if !role.IsValid() {
		role = enums.UserRoleAdmin
	}
	return internalorders.ActorContext{UserID: userID, Role: role}, nil
}
