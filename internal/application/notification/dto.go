package notification

import (
	"time"

	"github.com/exportdesk/backend/internal/domain/notification"
	"github.com/google/uuid"
)

// SendEmailRequest asks for one template email to an order's buyer
type SendEmailRequest struct {
	TemplateKey string `json:"template_key" binding:"required"`
	// To overrides the buyer email on the order
	To string `json:"to" binding:"omitempty,email"`
	// Tokens override or extend the standard order tokens
	Tokens map[string]string `json:"tokens"`
}

// UpsertTemplateRequest is the body of a template PUT
type UpsertTemplateRequest struct {
	Subject     string `json:"subject" binding:"required"`
	Body        string `json:"body" binding:"required"`
	Description string `json:"description"`
}

// TemplateResponse represents an email template in API responses
type TemplateResponse struct {
	Key         string    `json:"key"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	Description string    `json:"description"`
	Tokens      []string  `json:"tokens"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EmailLogResponse represents a logged email in API responses
type EmailLogResponse struct {
	ID          uuid.UUID  `json:"id"`
	OrderID     *uuid.UUID `json:"order_id,omitempty"`
	TemplateKey string     `json:"template_key"`
	Recipient   string     `json:"recipient"`
	Subject     string     `json:"subject"`
	Body        string     `json:"body"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	SentAt      time.Time  `json:"sent_at"`
}

// ToTemplateResponse converts a domain template to a response
func ToTemplateResponse(t *notification.EmailTemplate) TemplateResponse {
	return TemplateResponse{
		Key:         t.Key,
		Subject:     t.Subject,
		Body:        t.Body,
		Description: t.Description,
		Tokens:      t.Tokens(),
		UpdatedAt:   t.UpdatedAt,
	}
}

// ToEmailLogResponse converts a domain email log to a response
func ToEmailLogResponse(l *notification.EmailLog) EmailLogResponse {
	return EmailLogResponse{
		ID:          l.ID,
		OrderID:     l.OrderID,
		TemplateKey: l.TemplateKey,
		Recipient:   l.Recipient,
		Subject:     l.Subject,
		Body:        l.Body,
		Status:      string(l.Status),
		Error:       l.Error,
		SentAt:      l.SentAt,
	}
}
