package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/exportdesk/backend/internal/domain/order"
	"github.com/exportdesk/backend/internal/domain/shared"
	"github.com/exportdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByRef finds an order by its order reference
func (r *GormOrderRepository) FindByRef(ctx context.Context, ref string) (*order.Order, error) {
	return r.findOne(ctx, "order_ref = ?", ref)
}

// FindByExternalID finds a synced order by the platform's order id
func (r *GormOrderRepository) FindByExternalID(ctx context.Context, externalID string) (*order.Order, error) {
	return r.findOne(ctx, "external_id = ?", externalID)
}

func (r *GormOrderRepository) findOne(ctx context.Context, cond string, arg any) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds orders matching the filter
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	var orderModels []models.OrderModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter)
	query = paginate(query, filter, OrderSortFields, "order_date")

	if err := query.Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]order.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders, nil
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByRef checks whether an order reference is taken
func (r *GormOrderRepository) ExistsByRef(ctx context.Context, ref string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("order_ref = ?", ref).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistingExternalIDs returns the subset of externalIDs already stored
func (r *GormOrderRepository) ExistingExternalIDs(ctx context.Context, externalIDs []string) (map[string]bool, error) {
	found := make(map[string]bool, len(externalIDs))
	if len(externalIDs) == 0 {
		return found, nil
	}
	var ids []string
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("external_id IN ?", externalIDs).
		Pluck("external_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		found[id] = true
	}
	return found, nil
}

// CountByBlock counts orders linked to a block
func (r *GormOrderRepository) CountByBlock(ctx context.Context, blockID uuid.UUID) (int64, error) {
	return r.countWhere(ctx, "block_id = ?", blockID)
}

// CountByBuyer counts orders linked to a buyer
func (r *GormOrderRepository) CountByBuyer(ctx context.Context, buyerID uuid.UUID) (int64, error) {
	return r.countWhere(ctx, "buyer_id = ?", buyerID)
}

func (r *GormOrderRepository) countWhere(ctx context.Context, cond string, arg any) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).Where(cond, arg).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByPaymentStatus groups the order count by payment status
func (r *GormOrderRepository) CountByPaymentStatus(ctx context.Context) (map[order.PaymentStatus]int64, error) {
	var rows []struct {
		PaymentStatus string
		Count         int64
	}
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Select("payment_status, COUNT(*) AS count").
		Group("payment_status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[order.PaymentStatus]int64, len(rows))
	for _, row := range rows {
		out[order.PaymentStatus(row.PaymentStatus)] = row.Count
	}
	return out, nil
}

// Save creates or updates an order
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	model := models.OrderModelFromDomain(o)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock updates an existing order only if its stored version still
// equals expectedVersion. A mismatch means another request saved first.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order, expectedVersion int) error {
	model := models.OrderModelFromDomain(o)
	result := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("id = ? AND version = ?", o.ID, expectedVersion).
		Select("*").Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).Where("id = ?", o.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.ErrNotFound
	}
	return errOrderModified
}

var errOrderModified = shared.NewDomainError("CONFLICT", "The order was modified by another request, reload and retry")

// Delete deletes an order
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.OrderModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies search and the order filters
func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = search(query, filter.Search, "order_ref", "buyer_name", "buyer_email", "buyer_company", "tracking_number")

	for key, value := range filter.Filters {
		switch key {
		case order.FilterPaymentStatus:
			query = query.Where("payment_status = ?", value)
		case order.FilterShipStatus:
			query = query.Where("ship_status = ?", value)
		case order.FilterSource:
			query = query.Where("source = ?", value)
		case order.FilterBlockID:
			query = whereNullableID(query, "block_id", value)
		case order.FilterBuyerID:
			query = whereNullableID(query, "buyer_id", value)
		}
	}
	return query
}

// whereNullableID filters on a uuid column. The value "none" selects unlinked rows.
func whereNullableID(query *gorm.DB, column string, value any) *gorm.DB {
	if s, ok := value.(string); ok && s == "none" {
		return query.Where(column + " IS NULL")
	}
	return query.Where(fmt.Sprintf("%s = ?", column), value)
}

// Ensure GormOrderRepository implements order.Repository
var _ order.Repository = (*GormOrderRepository)(nil)
