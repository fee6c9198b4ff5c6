package notifications

import (
	"encoding/json"
	"fmt"

	"github.com/willowmarket/willow-backend/pkg/db/models"
	"github.com/willowmarket/willow-backend/pkg/enums"
	"github.com/willowmarket/willow-backend/pkg/outbox"
	"github.com/willowmarket/willow-backend/pkg/outbox/payloads"
)

// BuildFromEvent maps a committed domain event onto the in-app notifications
// it fans out to. Status changes notify the buyer; a release notifies the
// seller. An unknown event type is an error so the dispatcher can dead-letter
// it instead of silently dropping it.
func BuildFromEvent(eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) ([]models.Notification, error) {
	switch eventType {
	case enums.EventOrderStatusChanged:
		var payload payloads.OrderStatusChangedEvent
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return nil, fmt.Errorf("decode order status payload: %w", err)
		}
		return []models.Notification{{
			UserID:  payload.BuyerID,
			Type:    enums.NotificationTypeOrderStatusChanged,
			Title:   orderUpdateTitle,
			Message: OrderStatusMessage(payload.NewStatus),
			Data:    envelope.Data,
		}}, nil

	case enums.EventPaymentStatusChanged:
		var payload payloads.PaymentStatusChangedEvent
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return nil, fmt.Errorf("decode payment status payload: %w", err)
		}
		return []models.Notification{{
			UserID:  payload.BuyerID,
			Type:    enums.NotificationTypePaymentStatusChanged,
			Title:   paymentUpdateTitle,
			Message: PaymentStatusMessage(payload.NewStatus),
			Data:    envelope.Data,
		}}, nil

	case enums.EventPaymentReleased:
		var payload payloads.PaymentReleasedEvent
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return nil, fmt.Errorf("decode payment released payload: %w", err)
		}
		if payload.SellerID == nil {
			return nil, fmt.Errorf("payment released event missing seller")
		}
		return []models.Notification{{
			UserID:  *payload.SellerID,
			Type:    enums.NotificationTypePaymentReleased,
			Title:   paymentReleasedTitle,
			Message: paymentReleasedMessage,
			Data:    envelope.Data,
		}}, nil

	default:
		return nil, fmt.Errorf("unsupported event type %q", eventType)
	}
}
