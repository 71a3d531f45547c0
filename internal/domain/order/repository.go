package order

import (
	"context"

	"github.com/exportdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Filter keys understood by Repository.FindAll and Count
const (
	FilterPaymentStatus = "payment_status"
	FilterShipStatus    = "ship_status"
	FilterSource        = "source"
	FilterBlockID       = "block_id"
	FilterBuyerID       = "buyer_id"
)

// Repository defines the interface for order persistence
type Repository interface {
	// FindByID finds an order by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByRef finds an order by its order reference
	FindByRef(ctx context.Context, ref string) (*Order, error)

	// FindByExternalID finds a synced order by the platform's order id
	FindByExternalID(ctx context.Context, externalID string) (*Order, error)

	// FindAll finds orders matching the filter, paginated
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// Count counts orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByRef checks whether an order reference is taken
	ExistsByRef(ctx context.Context, ref string) (bool, error)

	// ExistingExternalIDs returns the subset of ids already stored
	ExistingExternalIDs(ctx context.Context, externalIDs []string) (map[string]bool, error)

	// CountByBlock counts orders linked to a block
	CountByBlock(ctx context.Context, blockID uuid.UUID) (int64, error)

	// CountByBuyer counts orders linked to a buyer
	CountByBuyer(ctx context.Context, buyerID uuid.UUID) (int64, error)

	// CountByPaymentStatus groups the order count by payment status
	CountByPaymentStatus(ctx context.Context) (map[PaymentStatus]int64, error)

	// Save creates or updates an order
	Save(ctx context.Context, order *Order) error

	// SaveWithLock updates an order loaded at expectedVersion. It fails with
	// a CONFLICT error when the stored version has moved on.
	SaveWithLock(ctx context.Context, order *Order, expectedVersion int) error

	// Delete deletes an order
	Delete(ctx context.Context, id uuid.UUID) error
}
