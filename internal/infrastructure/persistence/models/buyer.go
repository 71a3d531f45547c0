package models

import (
	"github.com/exportdesk/backend/internal/domain/buyer"
)

// BuyerModel is the persistence model for the Buyer aggregate
type BuyerModel struct {
	AggregateModel
	Name    string         `gorm:"type:varchar(200);not null"`
	Email   *string        `gorm:"type:varchar(200);uniqueIndex:idx_buyers_email"`
	Phone   string         `gorm:"type:varchar(50)"`
	Company string         `gorm:"type:varchar(200)"`
	Address AddressColumns `gorm:"embedded"`
	Notes   string         `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (BuyerModel) TableName() string {
	return "buyers"
}

// ToDomain converts the persistence model to a domain Buyer
func (m *BuyerModel) ToDomain() *buyer.Buyer {
	b := &buyer.Buyer{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Phone:             m.Phone,
		Company:           m.Company,
		Address:           m.Address.ToDomain(),
		Notes:             m.Notes,
	}
	if m.Email != nil {
		b.Email = *m.Email
	}
	return b
}

// BuyerModelFromDomain converts a domain Buyer to a persistence model.
// An empty email is stored as NULL so the unique index ignores it.
func BuyerModelFromDomain(b *buyer.Buyer) *BuyerModel {
	m := &BuyerModel{
		Name:    b.Name,
		Phone:   b.Phone,
		Company: b.Company,
		Address: AddressColumnsFromDomain(b.Address),
		Notes:   b.Notes,
	}
	if b.Email != "" {
		email := b.Email
		m.Email = &email
	}
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	return m
}
