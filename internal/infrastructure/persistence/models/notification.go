package models

import (
	"time"

	"github.com/exportdesk/backend/internal/domain/notification"
	"github.com/google/uuid"
)

// EmailTemplateModel is the persistence model for email templates
type EmailTemplateModel struct {
	BaseModel
	Key         string `gorm:"type:varchar(64);not null;uniqueIndex:idx_email_templates_key"`
	Subject     string `gorm:"type:varchar(300);not null"`
	Body        string `gorm:"type:text;not null"`
	Description string `gorm:"type:varchar(300)"`
}

// TableName returns the table name for GORM
func (EmailTemplateModel) TableName() string {
	return "email_templates"
}

// ToDomain converts the persistence model to a domain EmailTemplate
func (m *EmailTemplateModel) ToDomain() *notification.EmailTemplate {
	return &notification.EmailTemplate{
		BaseEntity:  m.BaseModel.ToDomain(),
		Key:         m.Key,
		Subject:     m.Subject,
		Body:        m.Body,
		Description: m.Description,
	}
}

// EmailTemplateModelFromDomain converts a domain EmailTemplate to a persistence model
func EmailTemplateModelFromDomain(t *notification.EmailTemplate) *EmailTemplateModel {
	m := &EmailTemplateModel{
		Key:         t.Key,
		Subject:     t.Subject,
		Body:        t.Body,
		Description: t.Description,
	}
	m.FromDomainBaseEntity(t.BaseEntity)
	return m
}

// EmailLogModel is the persistence model for sent emails
type EmailLogModel struct {
	BaseModel
	OrderID     *uuid.UUID `gorm:"type:uuid;index:idx_email_logs_order_id"`
	TemplateKey string     `gorm:"type:varchar(64)"`
	Recipient   string     `gorm:"type:varchar(200);not null"`
	Subject     string     `gorm:"type:varchar(300)"`
	Body        string     `gorm:"type:text"`
	Status      string     `gorm:"type:varchar(10);not null"`
	Error       string     `gorm:"type:text"`
	SentAt      time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (EmailLogModel) TableName() string {
	return "email_logs"
}

// ToDomain converts the persistence model to a domain EmailLog
func (m *EmailLogModel) ToDomain() *notification.EmailLog {
	return &notification.EmailLog{
		BaseEntity:  m.BaseModel.ToDomain(),
		OrderID:     m.OrderID,
		TemplateKey: m.TemplateKey,
		Recipient:   m.Recipient,
		Subject:     m.Subject,
		Body:        m.Body,
		Status:      notification.DeliveryStatus(m.Status),
		Error:       m.Error,
		SentAt:      m.SentAt,
	}
}

// EmailLogModelFromDomain converts a domain EmailLog to a persistence model
func EmailLogModelFromDomain(l *notification.EmailLog) *EmailLogModel {
	m := &EmailLogModel{
		OrderID:     l.OrderID,
		TemplateKey: l.TemplateKey,
		Recipient:   l.Recipient,
		Subject:     l.Subject,
		Body:        l.Body,
		Status:      string(l.Status),
		Error:       l.Error,
		SentAt:      l.SentAt,
	}
	m.FromDomainBaseEntity(l.BaseEntity)
	return m
}
