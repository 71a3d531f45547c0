package block

import (
	"context"

	"github.com/exportdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// FilterStatus filters FindAll by block status
const FilterStatus = "status"

// Repository defines the interface for block persistence
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Block, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Block, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Save(ctx context.Context, block *Block) error
	Delete(ctx context.Context, id uuid.UUID) error
}
