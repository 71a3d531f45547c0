package sync

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/exportdesk/backend/internal/domain/catalog"
	"github.com/exportdesk/backend/internal/domain/commerce"
	"github.com/exportdesk/backend/internal/domain/order"
	"github.com/exportdesk/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// mappedOrder is an external order translated into domain terms
type mappedOrder struct {
	ExternalID string
	Snapshot   order.SyncSnapshot
	Note       string
}

func externalRef(ext *commerce.ExternalOrder) string {
	if ext.Name != "" {
		return ext.Name
	}
	return strconv.FormatInt(ext.ID, 10)
}

// mapExternalOrder translates a platform order into a sync snapshot
func mapExternalOrder(ext commerce.ExternalOrder) (mappedOrder, error) {
	if ext.ID <= 0 {
		return mappedOrder{}, fmt.Errorf("missing external id")
	}

	items := make(order.LineItems, 0, len(ext.LineItems))
	for i, li := range ext.LineItems {
		price, err := parseAmount(li.Price)
		if err != nil {
			return mappedOrder{}, fmt.Errorf("line item %d price: %w", i+1, err)
		}
		items = append(items, order.LineItem{
			SKU:       strings.TrimSpace(li.SKU),
			Title:     strings.TrimSpace(li.Title),
			Variant:   strings.TrimSpace(li.VariantTitle),
			Quantity:  li.Quantity,
			UnitPrice: price,
		})
	}

	total := items.Subtotal()
	if strings.TrimSpace(ext.TotalPrice) != "" {
		t, err := parseAmount(ext.TotalPrice)
		if err != nil {
			return mappedOrder{}, fmt.Errorf("total price: %w", err)
		}
		total = t
	}

	updatedAt := ext.UpdatedAt
	if updatedAt == nil && !ext.CreatedAt.IsZero() {
		created := ext.CreatedAt
		updatedAt = &created
	}

	return mappedOrder{
		ExternalID: strconv.FormatInt(ext.ID, 10),
		Note:       ext.Note,
		Snapshot: order.SyncSnapshot{
			OrderRef:          ext.Name,
			OrderDate:         ext.CreatedAt,
			Buyer:             mapBuyer(ext),
			ShippingAddress:   mapAddress(ext.ShippingAddress),
			LineItems:         items,
			Currency:          ext.Currency,
			TotalAmount:       total,
			ExternalUpdatedAt: updatedAt,
		},
	}, nil
}

func mapBuyer(ext commerce.ExternalOrder) order.Buyer {
	b := order.Buyer{
		Name:  ext.Customer.FullName(),
		Email: firstNonEmpty(ext.Email, customerField(ext.Customer, func(c *commerce.ExternalCustomer) string { return c.Email })),
		Phone: firstNonEmpty(ext.Phone, customerField(ext.Customer, func(c *commerce.ExternalCustomer) string { return c.Phone })),
	}
	if a := ext.ShippingAddress; a != nil {
		b.Name = firstNonEmpty(b.Name, a.Name)
		b.Phone = firstNonEmpty(b.Phone, a.Phone)
		b.Company = a.Company
	}
	b.Email = strings.ToLower(strings.TrimSpace(b.Email))
	return b
}

func mapAddress(a *commerce.ExternalAddress) valueobject.Address {
	if a == nil {
		return valueobject.Address{}
	}
	return valueobject.Address{
		Line1:      a.Address1,
		Line2:      a.Address2,
		City:       a.City,
		Province:   a.Province,
		PostalCode: a.Zip,
		Country:    firstNonEmpty(a.CountryCode, a.Country),
	}.Normalize()
}

// mappedProduct is one sellable variant translated into catalog terms
type mappedProduct struct {
	ExternalID string
	Details    catalog.Details
}

// mapExternalProduct yields one catalog product per variant.
// Variants without a SKU get a stable synthetic one.
func mapExternalProduct(ext commerce.ExternalProduct, currency string) ([]mappedProduct, error) {
	if ext.ID <= 0 {
		return nil, fmt.Errorf("missing external id")
	}
	out := make([]mappedProduct, 0, len(ext.Variants))
	for _, v := range ext.Variants {
		price, err := parseAmount(v.Price)
		if err != nil {
			return nil, fmt.Errorf("variant %d price: %w", v.ID, err)
		}
		sku := strings.TrimSpace(v.SKU)
		if sku == "" {
			sku = "EXT-" + strconv.FormatInt(v.ID, 10)
		}
		out = append(out, mappedProduct{
			ExternalID: strconv.FormatInt(v.ID, 10),
			Details: catalog.Details{
				SKU:         sku,
				Name:        ext.Title,
				Description: ext.BodyHTML,
				Price:       price,
				Currency:    currency,
				Active:      ext.Status == "" || ext.Status == "active",
			},
		})
	}
	return out, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func customerField(c *commerce.ExternalCustomer, get func(*commerce.ExternalCustomer) string) string {
	if c == nil {
		return ""
	}
	return get(c)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
