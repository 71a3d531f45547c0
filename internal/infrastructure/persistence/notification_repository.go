package persistence

import (
	"context"
	"errors"

	"github.com/exportdesk/backend/internal/domain/notification"
	"github.com/exportdesk/backend/internal/domain/shared"
	"github.com/exportdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormEmailTemplateRepository implements notification.TemplateRepository using GORM
type GormEmailTemplateRepository struct {
	db *gorm.DB
}

// NewGormEmailTemplateRepository creates a new GormEmailTemplateRepository
func NewGormEmailTemplateRepository(db *gorm.DB) *GormEmailTemplateRepository {
	return &GormEmailTemplateRepository{db: db}
}

// FindByKey finds a template by key
func (r *GormEmailTemplateRepository) FindByKey(ctx context.Context, key string) (*notification.EmailTemplate, error) {
	var model models.EmailTemplateModel
	if err := r.db.WithContext(ctx).First(&model, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists every template ordered by key
func (r *GormEmailTemplateRepository) FindAll(ctx context.Context) ([]notification.EmailTemplate, error) {
	var templateModels []models.EmailTemplateModel
	if err := r.db.WithContext(ctx).Order("key ASC").Find(&templateModels).Error; err != nil {
		return nil, err
	}
	templates := make([]notification.EmailTemplate, len(templateModels))
	for i := range templateModels {
		templates[i] = *templateModels[i].ToDomain()
	}
	return templates, nil
}

// Save creates or updates a template
func (r *GormEmailTemplateRepository) Save(ctx context.Context, t *notification.EmailTemplate) error {
	return r.db.WithContext(ctx).Save(models.EmailTemplateModelFromDomain(t)).Error
}

// GormEmailLogRepository implements notification.LogRepository using GORM
type GormEmailLogRepository struct {
	db *gorm.DB
}

// NewGormEmailLogRepository creates a new GormEmailLogRepository
func NewGormEmailLogRepository(db *gorm.DB) *GormEmailLogRepository {
	return &GormEmailLogRepository{db: db}
}

// Save inserts an email log entry
func (r *GormEmailLogRepository) Save(ctx context.Context, l *notification.EmailLog) error {
	return r.db.WithContext(ctx).Create(models.EmailLogModelFromDomain(l)).Error
}

// FindByOrder lists the most recent emails sent for an order
func (r *GormEmailLogRepository) FindByOrder(ctx context.Context, orderID uuid.UUID, limit int) ([]notification.EmailLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logModels []models.EmailLogModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("sent_at DESC").
		Limit(limit).
		Find(&logModels).Error; err != nil {
		return nil, err
	}
	logs := make([]notification.EmailLog, len(logModels))
	for i := range logModels {
		logs[i] = *logModels[i].ToDomain()
	}
	return logs, nil
}

var (
	_ notification.TemplateRepository = (*GormEmailTemplateRepository)(nil)
	_ notification.LogRepository      = (*GormEmailLogRepository)(nil)
)
