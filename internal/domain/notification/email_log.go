package notification

import (
	"strings"
	"time"

	"github.com/exportdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DeliveryStatus is the outcome of a send
type DeliveryStatus string

const (
	DeliverySent   DeliveryStatus = "sent"
	DeliveryFailed DeliveryStatus = "failed"
)

// EmailLog records one attempted email for bookkeeping
type EmailLog struct {
	shared.BaseEntity
	OrderID     *uuid.UUID
	TemplateKey string
	Recipient   string
	Subject     string
	Body        string
	Status      DeliveryStatus
	Error       string
	SentAt      time.Time
}

// NewEmailLog records a send attempt. A nil sendErr means delivered.
func NewEmailLog(orderID *uuid.UUID, templateKey, recipient string, msg Rendered, sendErr error) *EmailLog {
	l := &EmailLog{
		BaseEntity:  shared.NewBaseEntity(),
		OrderID:     orderID,
		TemplateKey: templateKey,
		Recipient:   strings.TrimSpace(recipient),
		Subject:     msg.Subject,
		Body:        msg.Body,
		Status:      DeliverySent,
		SentAt:      time.Now(),
	}
	if sendErr != nil {
		l.Status = DeliveryFailed
		l.Error = sendErr.Error()
	}
	return l
}
