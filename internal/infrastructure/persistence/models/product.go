package models

import (
	"github.com/exportdesk/backend/internal/domain/catalog"
	"github.com/exportdesk/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product aggregate
type ProductModel struct {
	AggregateModel
	SKU         string          `gorm:"column:sku;type:varchar(100);not null;uniqueIndex:idx_products_sku"`
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Currency    string          `gorm:"type:varchar(3);not null;default:'USD'"`
	ImageKey    string          `gorm:"type:varchar(300)"`
	Active      bool            `gorm:"not null;default:true"`
	ExternalID  *string         `gorm:"type:varchar(64);uniqueIndex:idx_products_external_id"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		SKU:               m.SKU,
		Name:              m.Name,
		Description:       m.Description,
		Price:             m.Price,
		Currency:          valueobject.Currency(m.Currency),
		ImageKey:          m.ImageKey,
		Active:            m.Active,
		ExternalID:        m.ExternalID,
	}
}

// ProductModelFromDomain converts a domain Product to a persistence model
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Currency:    p.Currency.String(),
		ImageKey:    p.ImageKey,
		Active:      p.Active,
		ExternalID:  p.ExternalID,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}
