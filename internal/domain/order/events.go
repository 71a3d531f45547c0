package order

import (
	"github.com/exportdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeOrder is the aggregate type name used on events
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderCreated    = "OrderCreated"
	EventTypePaymentRecorded = "PaymentRecorded"
	EventTypeOrderFullyPaid  = "OrderFullyPaid"
)

// OrderCreatedEvent is raised when an order is created
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID  uuid.UUID `json:"order_id"`
	OrderRef string    `json:"order_ref"`
	Source   Source    `json:"source"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderRef:        o.OrderRef,
		Source:          o.Source,
	}
}

// PaymentRecordedEvent is raised for every installment
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID       `json:"order_id"`
	Installment    int             `json:"installment"`
	Amount         decimal.Decimal `json:"amount"`
	PreviousStatus PaymentStatus   `json:"previous_status"`
	Status         PaymentStatus   `json:"status"`
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(o *Order, inst Installment, previous PaymentStatus) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		Installment:     inst.Number,
		Amount:          inst.Amount,
		PreviousStatus:  previous,
		Status:          o.PaymentStatus,
	}
}

// OrderFullyPaidEvent is raised when the paid total first reaches the amount due
type OrderFullyPaidEvent struct {
	shared.BaseDomainEvent
	OrderID  uuid.UUID       `json:"order_id"`
	OrderRef string          `json:"order_ref"`
	Total    decimal.Decimal `json:"total"`
}

// NewOrderFullyPaidEvent creates a new OrderFullyPaidEvent
func NewOrderFullyPaidEvent(o *Order) *OrderFullyPaidEvent {
	return &OrderFullyPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderFullyPaid, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderRef:        o.OrderRef,
		Total:           o.TotalAmount,
	}
}
