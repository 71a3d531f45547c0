package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/exportdesk/backend/internal/domain/block"
	"github.com/exportdesk/backend/internal/domain/shared"
	"github.com/exportdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBlockRepository implements block.Repository using GORM
type GormBlockRepository struct {
	db *gorm.DB
}

// NewGormBlockRepository creates a new GormBlockRepository
func NewGormBlockRepository(db *gorm.DB) *GormBlockRepository {
	return &GormBlockRepository{db: db}
}

// FindByID finds a block by its ID
func (r *GormBlockRepository) FindByID(ctx context.Context, id uuid.UUID) (*block.Block, error) {
	var model models.BlockModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds blocks matching the filter
func (r *GormBlockRepository) FindAll(ctx context.Context, filter shared.Filter) ([]block.Block, error) {
	var blockModels []models.BlockModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.BlockModel{}), filter)
	query = paginate(query, filter, BlockSortFields, "target_ship_month")

	if err := query.Find(&blockModels).Error; err != nil {
		return nil, err
	}

	blocks := make([]block.Block, len(blockModels))
	for i := range blockModels {
		blocks[i] = *blockModels[i].ToDomain()
	}
	return blocks, nil
}

// Count counts blocks matching the filter
func (r *GormBlockRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.BlockModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByName checks whether a block name is taken, ignoring case
func (r *GormBlockRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.BlockModel{}).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a block
func (r *GormBlockRepository) Save(ctx context.Context, b *block.Block) error {
	return r.db.WithContext(ctx).Save(models.BlockModelFromDomain(b)).Error
}

// Delete deletes a block. Orders still pointing at it make the database
// refuse the delete, reported as ErrHasLinkedOrders.
func (r *GormBlockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.BlockModel{}, "id = ?", id)
	if isForeignKeyViolation(result.Error) {
		return shared.ErrHasLinkedOrders
	}
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormBlockRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = search(query, filter.Search, "name", "notes")
	for key, value := range filter.Filters {
		switch key {
		case block.FilterStatus:
			query = query.Where("status = ?", value)
		case "ship_month":
			query = query.Where("target_ship_month = ?", value)
		}
	}
	return query
}

// Ensure GormBlockRepository implements block.Repository
var _ block.Repository = (*GormBlockRepository)(nil)
