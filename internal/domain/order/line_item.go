package order

import (
	"strings"

	"github.com/exportdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LineItem is one row of the line-items snapshot stored with an order.
// The snapshot is not normalized: it is a record of what was ordered.
type LineItem struct {
	SKU       string          `json:"sku"`
	Title     string          `json:"title"`
	Variant   string          `json:"variant,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Amount is Quantity * UnitPrice
func (li LineItem) Amount() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Validate checks a single line item
func (li LineItem) Validate() error {
	if strings.TrimSpace(li.Title) == "" && strings.TrimSpace(li.SKU) == "" {
		return shared.NewDomainError("INVALID_LINE_ITEM", "Line item needs a title or SKU")
	}
	if li.Quantity <= 0 {
		return shared.NewDomainError("INVALID_LINE_ITEM", "Line item quantity must be positive")
	}
	if li.UnitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_LINE_ITEM", "Line item price cannot be negative")
	}
	return nil
}

// LineItems is the snapshot collection
type LineItems []LineItem

// Subtotal sums the line amounts
func (items LineItems) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, li := range items {
		total = total.Add(li.Amount())
	}
	return total
}

// Units sums the quantities
func (items LineItems) Units() int {
	n := 0
	for _, li := range items {
		n += li.Quantity
	}
	return n
}

// Validate checks every item
func (items LineItems) Validate() error {
	for _, li := range items {
		if err := li.Validate(); err != nil {
			return err
		}
	}
	return nil
}
