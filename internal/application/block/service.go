package block

import (
	"context"
	"fmt"
	"strings"

	"github.com/exportdesk/backend/internal/domain/block"
	"github.com/exportdesk/backend/internal/domain/order"
	"github.com/exportdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BlockService handles shipping block operations
type BlockService struct {
	blockRepo block.Repository
	orderRepo order.Repository
}

// NewBlockService creates a new BlockService
func NewBlockService(blockRepo block.Repository, orderRepo order.Repository) *BlockService {
	return &BlockService{
		blockRepo: blockRepo,
		orderRepo: orderRepo,
	}
}

// Create creates a block in planning
func (s *BlockService) Create(ctx context.Context, req CreateBlockRequest) (*BlockResponse, error) {
	if err := s.ensureNameFree(ctx, req.Name); err != nil {
		return nil, err
	}

	b, err := block.NewBlock(req.Name, req.TargetShipMonth, req.Notes)
	if err != nil {
		return nil, err
	}
	if err := s.blockRepo.Save(ctx, b); err != nil {
		return nil, err
	}

	response := ToBlockResponse(b)
	return &response, nil
}

// GetByID retrieves a block with its order count
func (s *BlockService) GetByID(ctx context.Context, id uuid.UUID) (*BlockResponse, error) {
	b, err := s.blockRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.orderRepo.CountByBlock(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToBlockResponse(b)
	response.OrderCount = count
	return &response, nil
}

// List retrieves blocks, soonest ship month first by default
func (s *BlockService) List(ctx context.Context, filter ListFilter) ([]BlockResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "target_ship_month"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Status != "" {
		domainFilter.Filters[block.FilterStatus] = filter.Status
	}

	blocks, err := s.blockRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.blockRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]BlockResponse, len(blocks))
	for i := range blocks {
		out[i] = ToBlockResponse(&blocks[i])
		count, err := s.orderRepo.CountByBlock(ctx, blocks[i].ID)
		if err != nil {
			return nil, 0, err
		}
		out[i].OrderCount = count
	}
	return out, total, nil
}

// Update renames, reschedules or advances a block
func (s *BlockService) Update(ctx context.Context, id uuid.UUID, req UpdateBlockRequest) (*BlockResponse, error) {
	b, err := s.blockRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != b.Name {
		if err := s.ensureNameFree(ctx, *req.Name); err != nil {
			return nil, err
		}
		if err := b.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.TargetShipMonth != nil {
		if err := b.Reschedule(*req.TargetShipMonth); err != nil {
			return nil, err
		}
	}
	if req.Status != nil {
		if err := b.ChangeStatus(block.Status(*req.Status)); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		b.SetNotes(*req.Notes)
	}

	if err := s.blockRepo.Save(ctx, b); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes a block. Blocks with linked orders are kept.
func (s *BlockService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.blockRepo.FindByID(ctx, id); err != nil {
		return err
	}
	linked, err := s.orderRepo.CountByBlock(ctx, id)
	if err != nil {
		return err
	}
	if linked > 0 {
		return shared.NewDomainError("HAS_LINKED_ORDERS",
			fmt.Sprintf("Block has %d linked order(s); move them to another block first", linked))
	}
	return s.blockRepo.Delete(ctx, id)
}

func (s *BlockService) ensureNameFree(ctx context.Context, name string) error {
	exists, err := s.blockRepo.ExistsByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "A block with this name already exists")
	}
	return nil
}
