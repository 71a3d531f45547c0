package buyer

import (
	"time"

	"github.com/exportdesk/backend/internal/domain/buyer"
	"github.com/exportdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Address is a postal address in buyer requests and responses
type Address struct {
	Line1      string `json:"line1" binding:"max=200"`
	Line2      string `json:"line2" binding:"max=200"`
	City       string `json:"city" binding:"max=100"`
	Province   string `json:"province" binding:"max=100"`
	PostalCode string `json:"postal_code" binding:"max=20"`
	Country    string `json:"country" binding:"max=100"`
}

// CreateBuyerRequest represents a request to create a buyer
type CreateBuyerRequest struct {
	Name    string  `json:"name" binding:"required,min=1,max=200"`
	Email   string  `json:"email" binding:"omitempty,email,max=200"`
	Phone   string  `json:"phone" binding:"max=50"`
	Company string  `json:"company" binding:"max=200"`
	Address Address `json:"address"`
	Notes   string  `json:"notes"`
}

// UpdateBuyerRequest represents a partial buyer update
type UpdateBuyerRequest struct {
	Name    *string  `json:"name" binding:"omitempty,min=1,max=200"`
	Email   *string  `json:"email" binding:"omitempty,max=200"`
	Phone   *string  `json:"phone" binding:"omitempty,max=50"`
	Company *string  `json:"company" binding:"omitempty,max=200"`
	Address *Address `json:"address"`
	Notes   *string  `json:"notes"`
}

// ListFilter represents filter options for the buyer list
type ListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"orderBy"`
	OrderDir string `form:"order" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// BuyerResponse represents a buyer in API responses
type BuyerResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Company     string    `json:"company"`
	Address     Address   `json:"address"`
	FullAddress string    `json:"full_address"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int       `json:"version"`
}

// ToBuyerResponse converts a domain buyer to a response
func ToBuyerResponse(b *buyer.Buyer) BuyerResponse {
	return BuyerResponse{
		ID:          b.ID,
		Name:        b.Name,
		DisplayName: b.DisplayName(),
		Email:       b.Email,
		Phone:       b.Phone,
		Company:     b.Company,
		Address:     Address(b.Address),
		FullAddress: b.Address.String(),
		Notes:       b.Notes,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
		Version:     b.Version,
	}
}

// ToBuyerResponses converts a slice of buyers
func ToBuyerResponses(buyers []buyer.Buyer) []BuyerResponse {
	out := make([]BuyerResponse, len(buyers))
	for i := range buyers {
		out[i] = ToBuyerResponse(&buyers[i])
	}
	return out
}

func (a Address) toValue() valueobject.Address {
	return valueobject.Address(a)
}
