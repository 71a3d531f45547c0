package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/exportdesk/backend/internal/domain/buyer"
	"github.com/exportdesk/backend/internal/domain/shared"
	"github.com/exportdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBuyerRepository implements buyer.Repository using GORM
type GormBuyerRepository struct {
	db *gorm.DB
}

// NewGormBuyerRepository creates a new GormBuyerRepository
func NewGormBuyerRepository(db *gorm.DB) *GormBuyerRepository {
	return &GormBuyerRepository{db: db}
}

// FindByID finds a buyer by its ID
func (r *GormBuyerRepository) FindByID(ctx context.Context, id uuid.UUID) (*buyer.Buyer, error) {
	var model models.BuyerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEmail finds a buyer by email, case-insensitively
func (r *GormBuyerRepository) FindByEmail(ctx context.Context, email string) (*buyer.Buyer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, shared.ErrNotFound
	}
	var model models.BuyerModel
	if err := r.db.WithContext(ctx).First(&model, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds buyers matching the filter
func (r *GormBuyerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]buyer.Buyer, error) {
	var buyerModels []models.BuyerModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.BuyerModel{}), filter)
	query = paginate(query, filter, BuyerSortFields, "name")

	if err := query.Find(&buyerModels).Error; err != nil {
		return nil, err
	}

	buyers := make([]buyer.Buyer, len(buyerModels))
	for i := range buyerModels {
		buyers[i] = *buyerModels[i].ToDomain()
	}
	return buyers, nil
}

// Count counts buyers matching the filter
func (r *GormBuyerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.BuyerModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByEmail checks whether a buyer already uses email
func (r *GormBuyerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.BuyerModel{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a buyer
func (r *GormBuyerRepository) Save(ctx context.Context, b *buyer.Buyer) error {
	return r.db.WithContext(ctx).Save(models.BuyerModelFromDomain(b)).Error
}

// Delete deletes a buyer, or returns ErrHasLinkedOrders when orders reference it
func (r *GormBuyerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.BuyerModel{}, "id = ?", id)
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

func (r *GormBuyerRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = search(query, filter.Search, "name", "email", "company", "phone")
	for key, value := range filter.Filters {
		switch key {
		case "country":
			query = query.Where("country = ?", value)
		case "company":
			query = query.Where("company = ?", value)
		}
	}
	return query
}

// Ensure GormBuyerRepository implements buyer.Repository
var _ buyer.Repository = (*GormBuyerRepository)(nil)
