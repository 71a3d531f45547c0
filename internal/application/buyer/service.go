package buyer

import (
	"context"
	"fmt"
	"strings"

	"github.com/exportdesk/backend/internal/domain/buyer"
	"github.com/exportdesk/backend/internal/domain/order"
	"github.com/exportdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BuyerService handles buyer business operations
type BuyerService struct {
	buyerRepo buyer.Repository
	orderRepo order.Repository
}

// NewBuyerService creates a new BuyerService
func NewBuyerService(buyerRepo buyer.Repository, orderRepo order.Repository) *BuyerService {
	return &BuyerService{
		buyerRepo: buyerRepo,
		orderRepo: orderRepo,
	}
}

// Create creates a buyer. Emails are unique when set.
func (s *BuyerService) Create(ctx context.Context, req CreateBuyerRequest) (*BuyerResponse, error) {
	if err := s.ensureEmailFree(ctx, req.Email, nil); err != nil {
		return nil, err
	}

	b, err := buyer.NewBuyer(buyer.Details{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Address: req.Address.toValue(),
		Notes:   req.Notes,
	})
	if err != nil {
		return nil, err
	}
	if err := s.buyerRepo.Save(ctx, b); err != nil {
		return nil, err
	}

	response := ToBuyerResponse(b)
	return &response, nil
}

// GetByID retrieves a buyer by ID
func (s *BuyerService) GetByID(ctx context.Context, id uuid.UUID) (*BuyerResponse, error) {
	b, err := s.buyerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToBuyerResponse(b)
	return &response, nil
}

// List retrieves buyers with search and pagination
func (s *BuyerService) List(ctx context.Context, filter ListFilter) ([]BuyerResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
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

	buyers, err := s.buyerRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.buyerRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToBuyerResponses(buyers), total, nil
}

// Update applies a partial update
func (s *BuyerService) Update(ctx context.Context, id uuid.UUID, req UpdateBuyerRequest) (*BuyerResponse, error) {
	b, err := s.buyerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	d := b.Details()
	if req.Name != nil {
		d.Name = *req.Name
	}
	if req.Email != nil {
		if err := s.ensureEmailFree(ctx, *req.Email, b); err != nil {
			return nil, err
		}
		d.Email = *req.Email
	}
	if req.Phone != nil {
		d.Phone = *req.Phone
	}
	if req.Company != nil {
		d.Company = *req.Company
	}
	if req.Address != nil {
		d.Address = req.Address.toValue()
	}
	if req.Notes != nil {
		d.Notes = *req.Notes
	}
	if err := b.Update(d); err != nil {
		return nil, err
	}
	if err := s.buyerRepo.Save(ctx, b); err != nil {
		return nil, err
	}

	response := ToBuyerResponse(b)
	return &response, nil
}

// Delete removes a buyer. Buyers with linked orders are kept.
func (s *BuyerService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.buyerRepo.FindByID(ctx, id); err != nil {
		return err
	}
	linked, err := s.orderRepo.CountByBuyer(ctx, id)
	if err != nil {
		return err
	}
	if linked > 0 {
		return linkedOrdersError(linked)
	}
	return s.buyerRepo.Delete(ctx, id)
}

// ensureEmailFree checks no other buyer uses email. self may be nil.
func (s *BuyerService) ensureEmailFree(ctx context.Context, email string, self *buyer.Buyer) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || (self != nil && self.Email == email) {
		return nil
	}
	exists, err := s.buyerRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "A buyer with this email already exists")
	}
	return nil
}

func linkedOrdersError(n int64) error {
	return shared.NewDomainError("HAS_LINKED_ORDERS",
		fmt.Sprintf("Buyer has %d linked order(s); reassign or unlink them first", n))
}
