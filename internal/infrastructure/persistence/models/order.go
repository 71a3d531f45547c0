package models

import (
	"time"

	"github.com/exportdesk/backend/internal/domain/order"
	"github.com/exportdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate.
// Installments are stored as four fixed payment column pairs.
type OrderModel struct {
	AggregateModel
	OrderRef          string           `gorm:"type:varchar(64);not null;uniqueIndex:idx_orders_order_ref"`
	ExternalID        *string          `gorm:"type:varchar(64);uniqueIndex:idx_orders_external_id"`
	Source            string           `gorm:"type:varchar(16);not null;default:'manual'"`
	OrderDate         time.Time        `gorm:"not null"`
	DueDate           *time.Time       `gorm:"type:date"`
	BuyerName         string           `gorm:"type:varchar(200)"`
	BuyerEmail        string           `gorm:"type:varchar(200);index:idx_orders_buyer_email"`
	BuyerPhone        string           `gorm:"type:varchar(50)"`
	BuyerCompany      string           `gorm:"type:varchar(200)"`
	ShipAddress       AddressColumns   `gorm:"embedded;embeddedPrefix:ship_"`
	LineItems         []LineItemJSON   `gorm:"type:jsonb;serializer:json"`
	Currency          string           `gorm:"type:varchar(3);not null;default:'USD'"`
	TotalAmount       decimal.Decimal  `gorm:"type:decimal(14,2);not null;default:0"`
	Payment1Amount    *decimal.Decimal `gorm:"column:payment_1_amount;type:decimal(14,2)"`
	Payment1Date      *time.Time       `gorm:"column:payment_1_date"`
	Payment2Amount    *decimal.Decimal `gorm:"column:payment_2_amount;type:decimal(14,2)"`
	Payment2Date      *time.Time       `gorm:"column:payment_2_date"`
	Payment3Amount    *decimal.Decimal `gorm:"column:payment_3_amount;type:decimal(14,2)"`
	Payment3Date      *time.Time       `gorm:"column:payment_3_date"`
	Payment4Amount    *decimal.Decimal `gorm:"column:payment_4_amount;type:decimal(14,2)"`
	Payment4Date      *time.Time       `gorm:"column:payment_4_date"`
	PaymentStatus     string           `gorm:"type:varchar(20);not null;default:'unpaid';index:idx_orders_payment_status"`
	ShipStatus        string           `gorm:"type:varchar(20);not null;default:'pending'"`
	ShippingMethod    string           `gorm:"type:varchar(100)"`
	TrackingNumber    string           `gorm:"type:varchar(100)"`
	ShippedAt         *time.Time
	BlockID           *uuid.UUID `gorm:"type:uuid;index:idx_orders_block_id"`
	BuyerID           *uuid.UUID `gorm:"type:uuid;index:idx_orders_buyer_id"`
	Notes             string     `gorm:"type:text"`
	ExternalUpdatedAt *time.Time
	SyncedAt          *time.Time

	// Block and Buyer only declare the foreign keys; they are never loaded.
	// Deleting a referenced row is refused while orders point at it.
	Block *BlockModel `gorm:"foreignKey:BlockID;constraint:OnDelete:RESTRICT"`
	Buyer *BuyerModel `gorm:"foreignKey:BuyerID;constraint:OnDelete:RESTRICT"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// LineItemJSON is the stored shape of a line item
type LineItemJSON struct {
	SKU       string          `json:"sku"`
	Title     string          `json:"title"`
	Variant   string          `json:"variant,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (m *OrderModel) paymentSlots() [order.MaxInstallments]struct {
	amount **decimal.Decimal
	date   **time.Time
} {
	return [order.MaxInstallments]struct {
		amount **decimal.Decimal
		date   **time.Time
	}{
		{&m.Payment1Amount, &m.Payment1Date},
		{&m.Payment2Amount, &m.Payment2Date},
		{&m.Payment3Amount, &m.Payment3Date},
		{&m.Payment4Amount, &m.Payment4Date},
	}
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *order.Order {
	items := make(order.LineItems, len(m.LineItems))
	for i, li := range m.LineItems {
		items[i] = order.LineItem{
			SKU:       li.SKU,
			Title:     li.Title,
			Variant:   li.Variant,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice,
		}
	}

	installments := make([]order.Installment, 0, order.MaxInstallments)
	for i, slot := range m.paymentSlots() {
		if *slot.amount == nil {
			continue
		}
		inst := order.Installment{Number: i + 1, Amount: **slot.amount}
		if *slot.date != nil {
			inst.PaidAt = **slot.date
		}
		installments = append(installments, inst)
	}

	return &order.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OrderRef:          m.OrderRef,
		ExternalID:        m.ExternalID,
		Source:            order.Source(m.Source),
		OrderDate:         m.OrderDate,
		DueDate:           m.DueDate,
		Buyer: order.Buyer{
			Name:    m.BuyerName,
			Email:   m.BuyerEmail,
			Phone:   m.BuyerPhone,
			Company: m.BuyerCompany,
		},
		ShippingAddress:   m.ShipAddress.ToDomain(),
		LineItems:         items,
		Currency:          valueobject.Currency(m.Currency),
		TotalAmount:       m.TotalAmount,
		Installments:      installments,
		PaymentStatus:     order.PaymentStatus(m.PaymentStatus),
		ShipStatus:        order.ShipStatus(m.ShipStatus),
		ShippingMethod:    m.ShippingMethod,
		TrackingNumber:    m.TrackingNumber,
		ShippedAt:         m.ShippedAt,
		BlockID:           m.BlockID,
		BuyerID:           m.BuyerID,
		Notes:             m.Notes,
		ExternalUpdatedAt: m.ExternalUpdatedAt,
		SyncedAt:          m.SyncedAt,
	}
}

// OrderModelFromDomain converts a domain Order to a persistence model
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{
		OrderRef:          o.OrderRef,
		ExternalID:        o.ExternalID,
		Source:            string(o.Source),
		OrderDate:         o.OrderDate,
		DueDate:           o.DueDate,
		BuyerName:         o.Buyer.Name,
		BuyerEmail:        o.Buyer.Email,
		BuyerPhone:        o.Buyer.Phone,
		BuyerCompany:      o.Buyer.Company,
		ShipAddress:       AddressColumnsFromDomain(o.ShippingAddress),
		LineItems:         make([]LineItemJSON, len(o.LineItems)),
		Currency:          o.Currency.String(),
		TotalAmount:       o.TotalAmount,
		PaymentStatus:     string(o.PaymentStatus),
		ShipStatus:        string(o.ShipStatus),
		ShippingMethod:    o.ShippingMethod,
		TrackingNumber:    o.TrackingNumber,
		ShippedAt:         o.ShippedAt,
		BlockID:           o.BlockID,
		BuyerID:           o.BuyerID,
		Notes:             o.Notes,
		ExternalUpdatedAt: o.ExternalUpdatedAt,
		SyncedAt:          o.SyncedAt,
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)

	for i, li := range o.LineItems {
		m.LineItems[i] = LineItemJSON{
			SKU:       li.SKU,
			Title:     li.Title,
			Variant:   li.Variant,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice,
		}
	}

	slots := m.paymentSlots()
	for i, inst := range o.Installments {
		if i >= len(slots) {
			break
		}
		amount, paidAt := inst.Amount, inst.PaidAt
		*slots[i].amount = &amount
		*slots[i].date = &paidAt
	}
	return m
}
