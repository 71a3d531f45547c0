package commerce

import "time"

// ExternalOrder is an order as the commerce platform reports it
type ExternalOrder struct {
	ID              int64              `json:"id"`
	Name            string             `json:"name"`
	Email           string             `json:"email"`
	Phone           string             `json:"phone"`
	Currency        string             `json:"currency"`
	TotalPrice      string             `json:"total_price"`
	FinancialStatus string             `json:"financial_status"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       *time.Time         `json:"updated_at"`
	Note            string             `json:"note"`
	Customer        *ExternalCustomer  `json:"customer"`
	ShippingAddress *ExternalAddress   `json:"shipping_address"`
	LineItems       []ExternalLineItem `json:"line_items"`
}

// ExternalCustomer is the customer attached to an external order
type ExternalCustomer struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// FullName joins first and last name
func (c *ExternalCustomer) FullName() string {
	if c == nil {
		return ""
	}
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// ExternalAddress is a postal address in platform format
type ExternalAddress struct {
	Name        string `json:"name"`
	Company     string `json:"company"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2"`
	City        string `json:"city"`
	Province    string `json:"province"`
	Zip         string `json:"zip"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone"`
}

// ExternalLineItem is one line on an external order
type ExternalLineItem struct {
	ID           int64  `json:"id"`
	SKU          string `json:"sku"`
	Title        string `json:"title"`
	VariantTitle string `json:"variant_title"`
	Quantity     int    `json:"quantity"`
	Price        string `json:"price"`
}

// ExternalProduct is a catalog product in platform format
type ExternalProduct struct {
	ID        int64                    `json:"id"`
	Title     string                   `json:"title"`
	BodyHTML  string                   `json:"body_html"`
	Status    string                   `json:"status"`
	UpdatedAt *time.Time               `json:"updated_at"`
	Variants  []ExternalProductVariant `json:"variants"`
}

// ExternalProductVariant carries the sellable SKU and price
type ExternalProductVariant struct {
	ID    int64  `json:"id"`
	SKU   string `json:"sku"`
	Price string `json:"price"`
}
