package block

import (
	"time"

	"github.com/exportdesk/backend/internal/domain/block"
	"github.com/google/uuid"
)

// CreateBlockRequest represents a request to create a shipping block
type CreateBlockRequest struct {
	Name            string `json:"name" binding:"required,min=1,max=100"`
	TargetShipMonth string `json:"target_ship_month" binding:"required"`
	Notes           string `json:"notes"`
}

// UpdateBlockRequest represents a partial block update
type UpdateBlockRequest struct {
	Name            *string `json:"name" binding:"omitempty,min=1,max=100"`
	TargetShipMonth *string `json:"target_ship_month"`
	Status          *string `json:"status" binding:"omitempty,oneof=planning confirmed shipped closed"`
	Notes           *string `json:"notes"`
}

// ListFilter represents filter options for the block list
type ListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=planning confirmed shipped closed"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"orderBy"`
	OrderDir string `form:"order" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// BlockResponse represents a block in API responses
type BlockResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	TargetShipMonth string    `json:"target_ship_month"`
	Status          string    `json:"status"`
	AcceptsOrders   bool      `json:"accepts_orders"`
	OrderCount      int64     `json:"order_count"`
	Notes           string    `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Version         int       `json:"version"`
}

// ToBlockResponse converts a domain block to a response
func ToBlockResponse(b *block.Block) BlockResponse {
	return BlockResponse{
		ID:              b.ID,
		Name:            b.Name,
		TargetShipMonth: b.TargetShipMonth,
		Status:          b.Status.String(),
		AcceptsOrders:   b.AcceptsOrders(),
		Notes:           b.Notes,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
		Version:         b.Version,
	}
}
