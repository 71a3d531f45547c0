package notification

import (
	"context"

	"github.com/google/uuid"
)

// TemplateRepository persists email templates
type TemplateRepository interface {
	FindByKey(ctx context.Context, key string) (*EmailTemplate, error)
	FindAll(ctx context.Context) ([]EmailTemplate, error)
	Save(ctx context.Context, tmpl *EmailTemplate) error
}

// LogRepository persists email logs
type LogRepository interface {
	Save(ctx context.Context, log *EmailLog) error
	FindByOrder(ctx context.Context, orderID uuid.UUID, limit int) ([]EmailLog, error)
}

// Message is one outgoing email
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers email
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
