package notification

import (
	"github.com/exportdesk/backend/internal/domain/block"
	"github.com/exportdesk/backend/internal/domain/order"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders an amount with grouping and two decimals, e.g. 1,234.50
func FormatAmount(d decimal.Decimal) string {
	return amountPrinter.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}

// OrderTokens builds the standard token map for an order. blk may be nil.
func OrderTokens(o *order.Order, blk *block.Block) map[string]string {
	tokens := map[string]string{
		"order_ref":       o.OrderRef,
		"buyer_name":      o.Buyer.Name,
		"buyer_email":     o.Buyer.Email,
		"buyer_company":   o.Buyer.Company,
		"currency":        o.Currency.String(),
		"total":           FormatAmount(o.TotalAmount),
		"deposit":         FormatAmount(o.DepositAmount()),
		"paid":            FormatAmount(o.PaidTotal()),
		"balance":         FormatAmount(o.Balance()),
		"payment_status":  humanize(string(o.PaymentStatus)),
		"ship_status":     humanize(string(o.ShipStatus)),
		"tracking_number": o.TrackingNumber,
		"shipping_method": o.ShippingMethod,
		"order_date":      o.OrderDate.Format("2 Jan 2006"),
		"block_name":      "",
		"ship_month":      "",
	}
	if blk != nil {
		tokens["block_name"] = blk.Name
		tokens["ship_month"] = blk.ShipMonthTime().Format("January 2006")
	}
	return tokens
}

func humanize(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] == '_' {
			b[i] = ' '
		}
	}
	return string(b)
}
