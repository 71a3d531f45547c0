package order

import (
	"time"

	"github.com/exportdesk/backend/internal/domain/order"
	"github.com/exportdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Shared request fragments
// =============================================================================

// BuyerContact is the buyer captured on an order
type BuyerContact struct {
	Name    string `json:"name" binding:"max=200"`
	Email   string `json:"email" binding:"omitempty,email,max=200"`
	Phone   string `json:"phone" binding:"max=50"`
	Company string `json:"company" binding:"max=200"`
}

// Address is a postal address in requests and responses
type Address struct {
	Line1      string `json:"line1" binding:"max=200"`
	Line2      string `json:"line2" binding:"max=200"`
	City       string `json:"city" binding:"max=100"`
	Province   string `json:"province" binding:"max=100"`
	PostalCode string `json:"postal_code" binding:"max=20"`
	Country    string `json:"country" binding:"max=100"`
}

// LineItem is one row of the line-items snapshot
type LineItem struct {
	SKU       string          `json:"sku" binding:"max=64"`
	Title     string          `json:"title" binding:"max=300"`
	Variant   string          `json:"variant" binding:"max=200"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// =============================================================================
// Requests
// =============================================================================

// CreateOrderRequest represents a request to enter an order by hand
type CreateOrderRequest struct {
	OrderRef        string           `json:"order_ref" binding:"required,min=1,max=64"`
	OrderDate       *time.Time       `json:"order_date"`
	DueDate         *time.Time       `json:"due_date"`
	Currency        string           `json:"currency" binding:"omitempty,len=3"`
	TotalAmount     *decimal.Decimal `json:"total_amount"`
	Buyer           BuyerContact     `json:"buyer"`
	ShippingAddress *Address         `json:"shipping_address"`
	LineItems       []LineItem       `json:"line_items" binding:"omitempty,dive"`
	ShippingMethod  string           `json:"shipping_method" binding:"max=100"`
	BlockID         *uuid.UUID       `json:"block_id"`
	BuyerID         *uuid.UUID       `json:"buyer_id"`
	Notes           string           `json:"notes"`
}

// UpdateOrderRequest is a partial update. Nil fields are left unchanged.
// BlockID and BuyerID accept "none" to unlink.
type UpdateOrderRequest struct {
	OrderRef        *string          `json:"order_ref" binding:"omitempty,min=1,max=64"`
	OrderDate       *time.Time       `json:"order_date"`
	DueDate         *time.Time       `json:"due_date"`
	TotalAmount     *decimal.Decimal `json:"total_amount"`
	Buyer           *BuyerContact    `json:"buyer"`
	ShippingAddress *Address         `json:"shipping_address"`
	LineItems       *[]LineItem      `json:"line_items" binding:"omitempty,dive"`
	ShipStatus      *string          `json:"ship_status" binding:"omitempty,oneof=pending in_production ready shipped delivered"`
	TrackingNumber  *string          `json:"tracking_number" binding:"omitempty,max=100"`
	ShippingMethod  *string          `json:"shipping_method" binding:"omitempty,max=100"`
	ShippedAt       *time.Time       `json:"shipped_at"`
	BlockID         *string          `json:"block_id"`
	BuyerID         *string          `json:"buyer_id"`
	Notes           *string          `json:"notes"`
}

// RecordPaymentRequest records one installment
type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	PaidAt *time.Time      `json:"paid_at"`
}

// ListFilter represents filter options for the order list
type ListFilter struct {
	Search        string `form:"search"`
	PaymentStatus string `form:"paymentStatus" binding:"omitempty,oneof=unpaid partially_paid deposit_paid fully_paid"`
	ShipStatus    string `form:"shipStatus" binding:"omitempty,oneof=pending in_production ready shipped delivered"`
	Source        string `form:"source" binding:"omitempty,oneof=manual synced"`
	BlockID       string `form:"blockId"`
	BuyerID       string `form:"buyerId"`
	Page          int    `form:"page" binding:"omitempty,min=1"`
	PageSize      int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
	OrderBy       string `form:"orderBy"`
	OrderDir      string `form:"order" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// =============================================================================
// Responses
// =============================================================================

// InstallmentResponse is one recorded payment
type InstallmentResponse struct {
	Number int             `json:"number"`
	Amount decimal.Decimal `json:"amount"`
	PaidAt time.Time       `json:"paid_at"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                uuid.UUID             `json:"id"`
	OrderRef          string                `json:"order_ref"`
	ExternalID        *string               `json:"external_id,omitempty"`
	Source            string                `json:"source"`
	OrderDate         time.Time             `json:"order_date"`
	DueDate           *time.Time            `json:"due_date,omitempty"`
	Buyer             BuyerContact          `json:"buyer"`
	ShippingAddress   Address               `json:"shipping_address"`
	LineItems         []LineItem            `json:"line_items"`
	Currency          string                `json:"currency"`
	TotalAmount       decimal.Decimal       `json:"total_amount"`
	DepositAmount     decimal.Decimal       `json:"deposit_amount"`
	PaidTotal         decimal.Decimal       `json:"paid_total"`
	Balance           decimal.Decimal       `json:"balance"`
	Installments      []InstallmentResponse `json:"installments"`
	PaymentStatus     string                `json:"payment_status"`
	ShipStatus        string                `json:"ship_status"`
	ShippingMethod    string                `json:"shipping_method"`
	TrackingNumber    string                `json:"tracking_number"`
	ShippedAt         *time.Time            `json:"shipped_at,omitempty"`
	BlockID           *uuid.UUID            `json:"block_id"`
	BuyerID           *uuid.UUID            `json:"buyer_id"`
	Notes             string                `json:"notes"`
	ExternalUpdatedAt *time.Time            `json:"external_updated_at,omitempty"`
	SyncedAt          *time.Time            `json:"synced_at,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
	Version           int                   `json:"version"`
}

// OrderListResponse represents a row of the order table
type OrderListResponse struct {
	ID            uuid.UUID       `json:"id"`
	OrderRef      string          `json:"order_ref"`
	Source        string          `json:"source"`
	OrderDate     time.Time       `json:"order_date"`
	BuyerName     string          `json:"buyer_name"`
	BuyerEmail    string          `json:"buyer_email"`
	Currency      string          `json:"currency"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidTotal     decimal.Decimal `json:"paid_total"`
	Balance       decimal.Decimal `json:"balance"`
	PaymentStatus string          `json:"payment_status"`
	ShipStatus    string          `json:"ship_status"`
	BlockID       *uuid.UUID      `json:"block_id"`
	BuyerID       *uuid.UUID      `json:"buyer_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// PaymentResponse is returned after recording an installment
type PaymentResponse struct {
	Installment    InstallmentResponse `json:"installment"`
	PreviousStatus string              `json:"previous_status"`
	Order          OrderResponse       `json:"order"`
}

// =============================================================================
// Conversions
// =============================================================================

// ToOrderResponse converts a domain order to a response
func ToOrderResponse(o *order.Order) OrderResponse {
	installments := make([]InstallmentResponse, 0, len(o.Installments))
	for _, inst := range o.Installments {
		installments = append(installments, toInstallmentResponse(inst))
	}
	return OrderResponse{
		ID:                o.ID,
		OrderRef:          o.OrderRef,
		ExternalID:        o.ExternalID,
		Source:            o.Source.String(),
		OrderDate:         o.OrderDate,
		DueDate:           o.DueDate,
		Buyer:             BuyerContact(o.Buyer),
		ShippingAddress:   Address(o.ShippingAddress),
		LineItems:         fromLineItems(o.LineItems),
		Currency:          o.Currency.String(),
		TotalAmount:       o.TotalAmount,
		DepositAmount:     o.DepositAmount(),
		PaidTotal:         o.PaidTotal(),
		Balance:           o.Balance(),
		Installments:      installments,
		PaymentStatus:     o.PaymentStatus.String(),
		ShipStatus:        o.ShipStatus.String(),
		ShippingMethod:    o.ShippingMethod,
		TrackingNumber:    o.TrackingNumber,
		ShippedAt:         o.ShippedAt,
		BlockID:           o.BlockID,
		BuyerID:           o.BuyerID,
		Notes:             o.Notes,
		ExternalUpdatedAt: o.ExternalUpdatedAt,
		SyncedAt:          o.SyncedAt,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		Version:           o.Version,
	}
}

// ToOrderListResponse converts a domain order to a list row
func ToOrderListResponse(o *order.Order) OrderListResponse {
	return OrderListResponse{
		ID:            o.ID,
		OrderRef:      o.OrderRef,
		Source:        o.Source.String(),
		OrderDate:     o.OrderDate,
		BuyerName:     o.Buyer.Name,
		BuyerEmail:    o.Buyer.Email,
		Currency:      o.Currency.String(),
		TotalAmount:   o.TotalAmount,
		PaidTotal:     o.PaidTotal(),
		Balance:       o.Balance(),
		PaymentStatus: o.PaymentStatus.String(),
		ShipStatus:    o.ShipStatus.String(),
		BlockID:       o.BlockID,
		BuyerID:       o.BuyerID,
		CreatedAt:     o.CreatedAt,
	}
}

// ToOrderListResponses converts a slice of orders
func ToOrderListResponses(orders []order.Order) []OrderListResponse {
	out := make([]OrderListResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderListResponse(&orders[i])
	}
	return out
}

func toInstallmentResponse(inst order.Installment) InstallmentResponse {
	return InstallmentResponse{Number: inst.Number, Amount: inst.Amount, PaidAt: inst.PaidAt}
}

func toLineItems(items []LineItem) order.LineItems {
	out := make(order.LineItems, len(items))
	for i, li := range items {
		out[i] = order.LineItem(li)
	}
	return out
}

func fromLineItems(items order.LineItems) []LineItem {
	out := make([]LineItem, len(items))
	for i, li := range items {
		out[i] = LineItem(li)
	}
	return out
}

func (a Address) toValue() valueobject.Address {
	return valueobject.Address(a)
}
