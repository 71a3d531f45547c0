package buyer

import (
	"regexp"
	"strings"

	"github.com/exportdesk/backend/internal/domain/shared"
	"github.com/exportdesk/backend/internal/domain/shared/valueobject"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9 ()\-.]{6,25}$`)
)

// Buyer is a customer the exporter ships to
type Buyer struct {
	shared.BaseAggregateRoot
	Name    string
	Email   string
	Phone   string
	Company string
	Address valueobject.Address
	Notes   string
}

// Details are the editable fields of a buyer
type Details struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Address valueobject.Address
	Notes   string
}

// NewBuyer creates a buyer
func NewBuyer(d Details) (*Buyer, error) {
	d, err := normalizeDetails(d)
	if err != nil {
		return nil, err
	}
	b := &Buyer{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	b.apply(d)
	return b, nil
}

// Update replaces the buyer's details
func (b *Buyer) Update(d Details) error {
	d, err := normalizeDetails(d)
	if err != nil {
		return err
	}
	b.apply(d)
	b.MarkChanged()
	return nil
}

// Details returns the current editable fields
func (b *Buyer) Details() Details {
	return Details{
		Name:    b.Name,
		Email:   b.Email,
		Phone:   b.Phone,
		Company: b.Company,
		Address: b.Address,
		Notes:   b.Notes,
	}
}

// DisplayName prefers the company when present
func (b *Buyer) DisplayName() string {
	if b.Company != "" {
		return b.Name + " (" + b.Company + ")"
	}
	return b.Name
}

func (b *Buyer) apply(d Details) {
	b.Name = d.Name
	b.Email = d.Email
	b.Phone = d.Phone
	b.Company = d.Company
	b.Address = d.Address
	b.Notes = d.Notes
}

func normalizeDetails(d Details) (Details, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Phone = strings.TrimSpace(d.Phone)
	d.Company = strings.TrimSpace(d.Company)
	d.Address = d.Address.Normalize()

	if d.Name == "" {
		return d, shared.NewDomainError("INVALID_NAME", "Buyer name cannot be empty")
	}
	if len(d.Name) > 200 {
		return d, shared.NewDomainError("INVALID_NAME", "Buyer name cannot exceed 200 characters")
	}
	if d.Email != "" && !emailRegex.MatchString(d.Email) {
		return d, shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	if d.Phone != "" && !phoneRegex.MatchString(d.Phone) {
		return d, shared.NewDomainError("INVALID_PHONE", "Invalid phone number format")
	}
	return d, nil
}
