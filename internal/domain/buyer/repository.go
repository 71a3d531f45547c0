package buyer

import (
	"context"

	"github.com/exportdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines the interface for buyer persistence
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Buyer, error)
	// FindByEmail returns shared.ErrNotFound when no buyer has the address
	FindByEmail(ctx context.Context, email string) (*Buyer, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Buyer, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, buyer *Buyer) error
	Delete(ctx context.Context, id uuid.UUID) error
}
