package notification

import (
	"context"
	"fmt"

	"github.com/exportdesk/backend/internal/domain/notification"
	"github.com/exportdesk/backend/internal/domain/order"
	"github.com/exportdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderEmailSender sends a template email for an order
type OrderEmailSender interface {
	SendOrderEmail(ctx context.Context, orderID uuid.UUID, req SendEmailRequest) (*EmailLogResponse, error)
}

// PaymentReceivedHandler mails the payment_received template
// when an order becomes fully paid
type PaymentReceivedHandler struct {
	sender OrderEmailSender
	logger *zap.Logger
}

// NewPaymentReceivedHandler creates a new PaymentReceivedHandler
func NewPaymentReceivedHandler(sender OrderEmailSender, logger *zap.Logger) *PaymentReceivedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentReceivedHandler{
		sender: sender,
		logger: logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *PaymentReceivedHandler) EventTypes() []string {
	return []string{order.EventTypeOrderFullyPaid}
}

// Handle processes an OrderFullyPaidEvent
func (h *PaymentReceivedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	paid, ok := event.(*order.OrderFullyPaidEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", order.EventTypeOrderFullyPaid),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			order.EventTypeOrderFullyPaid, event.EventType())
	}

	_, err := h.sender.SendOrderEmail(ctx, paid.OrderID, SendEmailRequest{TemplateKey: notification.TemplatePaymentReceived})
	if err != nil {
		h.logger.Warn("Payment received email not sent",
			zap.String("order_id", paid.OrderID.String()),
			zap.String("order_ref", paid.OrderRef),
			zap.Error(err),
		)
		return err
	}
	return nil
}

var _ shared.EventHandler = (*PaymentReceivedHandler)(nil)
