package catalog

import (
	"path"
	"strings"

	"github.com/exportdesk/backend/internal/domain/shared"
	"github.com/exportdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable item. Synced products carry the platform id.
type Product struct {
	shared.BaseAggregateRoot
	SKU         string
	Name        string
	Description string
	Price       decimal.Decimal
	Currency    valueobject.Currency
	ImageKey    string
	Active      bool
	ExternalID  *string
}

// Details are the fields a PUT replaces
type Details struct {
	SKU         string
	Name        string
	Description string
	Price       decimal.Decimal
	Currency    string
	Active      bool
}

// NewProduct creates a product
func NewProduct(d Details) (*Product, error) {
	p := &Product{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := p.apply(d); err != nil {
		return nil, err
	}
	return p, nil
}

// Replace overwrites the editable fields
func (p *Product) Replace(d Details) error {
	if err := p.apply(d); err != nil {
		return err
	}
	p.MarkChanged()
	return nil
}

// LinkExternal records the platform product id
func (p *Product) LinkExternal(externalID string) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		p.ExternalID = nil
		return
	}
	p.ExternalID = &externalID
}

// SetImage records the object storage key of the product image
func (p *Product) SetImage(key string) {
	p.ImageKey = key
	p.MarkChanged()
}

// ImageObjectKey builds the storage key for an uploaded image file
func ImageObjectKey(productID uuid.UUID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "image"
	}
	return "products/" + productID.String() + "/" + name
}

func (p *Product) apply(d Details) error {
	sku := strings.ToUpper(strings.TrimSpace(d.SKU))
	name := strings.TrimSpace(d.Name)
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 64 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 64 characters")
	}
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if d.Price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	cur, err := valueobject.ParseCurrency(d.Currency)
	if err != nil {
		return shared.NewDomainError("INVALID_CURRENCY", err.Error())
	}

	p.SKU = sku
	p.Name = name
	p.Description = d.Description
	p.Price = valueobject.RoundCents(d.Price)
	p.Currency = cur
	p.Active = d.Active
	return nil
}
