package persistence

import (
	"context"
	"errors"

	"github.com/exportdesk/backend/internal/domain/commerce"
	"github.com/exportdesk/backend/internal/domain/shared"
	"github.com/exportdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSyncRunRepository implements commerce.SyncRunRepository using GORM
type GormSyncRunRepository struct {
	db *gorm.DB
}

// NewGormSyncRunRepository creates a new GormSyncRunRepository
func NewGormSyncRunRepository(db *gorm.DB) *GormSyncRunRepository {
	return &GormSyncRunRepository{db: db}
}

// Save inserts a sync run
func (r *GormSyncRunRepository) Save(ctx context.Context, run *commerce.SyncRun) error {
	return r.db.WithContext(ctx).Save(models.SyncRunModelFromDomain(run)).Error
}

// FindRecent lists the latest runs, newest first. An empty resource lists all.
func (r *GormSyncRunRepository) FindRecent(ctx context.Context, resource commerce.Resource, limit int) ([]commerce.SyncRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := r.db.WithContext(ctx).Model(&models.SyncRunModel{})
	if resource != "" {
		query = query.Where("resource = ?", resource)
	}
	var runModels []models.SyncRunModel
	if err := query.Order("started_at DESC").Limit(limit).Find(&runModels).Error; err != nil {
		return nil, err
	}
	runs := make([]commerce.SyncRun, len(runModels))
	for i := range runModels {
		runs[i] = *runModels[i].ToDomain()
	}
	return runs, nil
}

// LastSuccessful returns the latest successful run for resource
func (r *GormSyncRunRepository) LastSuccessful(ctx context.Context, resource commerce.Resource) (*commerce.SyncRun, error) {
	var model models.SyncRunModel
	err := r.db.WithContext(ctx).
		Where("resource = ? AND status = ?", resource, commerce.RunStatusSuccess).
		Order("started_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

var _ commerce.SyncRunRepository = (*GormSyncRunRepository)(nil)
