package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/exportdesk/backend/internal/domain/block"
	"github.com/exportdesk/backend/internal/domain/buyer"
	"github.com/exportdesk/backend/internal/domain/order"
	"github.com/exportdesk/backend/internal/domain/shared"
	"github.com/exportdesk/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultCurrency is used when a manual order names none
const DefaultCurrency = "USD"

// unlinkValue clears a block or buyer link in a PATCH
const unlinkValue = "none"

// OrderService handles order business operations
type OrderService struct {
	orderRepo       order.Repository
	blockRepo       block.Repository
	buyerRepo       buyer.Repository
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo order.Repository, blockRepo block.Repository, buyerRepo buyer.Repository) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		blockRepo: blockRepo,
		buyerRepo: buyerRepo,
		logger:    zap.NewNop(),
	}
}

// SetEventPublisher sets the publisher for order events
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics recorder
func (s *OrderService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetLogger sets the logger
func (s *OrderService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Create enters a manual order
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	exists, err := s.orderRepo.ExistsByRef(ctx, strings.TrimSpace(req.OrderRef))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "An order with this reference already exists")
	}

	items := toLineItems(req.LineItems)
	total := items.Subtotal()
	if req.TotalAmount != nil {
		total = *req.TotalAmount
	}
	currency := req.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	orderDate := time.Now()
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}

	o, err := order.NewOrder(req.OrderRef, orderDate, total, currency)
	if err != nil {
		return nil, err
	}
	if req.DueDate != nil {
		if err := o.SetDates(o.OrderDate, req.DueDate); err != nil {
			return nil, err
		}
	}
	if err := o.SetLineItems(items); err != nil {
		return nil, err
	}
	if err := o.SetBuyerContact(order.Buyer(req.Buyer)); err != nil {
		return nil, err
	}
	if req.ShippingAddress != nil {
		o.SetShippingAddress(req.ShippingAddress.toValue())
	}
	if req.ShippingMethod != "" {
		if err := o.UpdateShipping(o.ShipStatus, "", req.ShippingMethod, nil); err != nil {
			return nil, err
		}
	}
	if req.BlockID != nil {
		if err := s.linkBlock(ctx, o, *req.BlockID); err != nil {
			return nil, err
		}
	}
	if req.BuyerID != nil {
		if err := s.linkBuyer(ctx, o, *req.BuyerID); err != nil {
			return nil, err
		}
	}
	o.SetNotes(req.Notes)

	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publish(ctx, o)

	response := ToOrderResponse(o)
	return &response, nil
}

// GetByID retrieves an order by ID
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// List retrieves orders with filtering and pagination
func (s *OrderService) List(ctx context.Context, filter ListFilter) ([]OrderListResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "order_date"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.PaymentStatus != "" {
		domainFilter.Filters[order.FilterPaymentStatus] = filter.PaymentStatus
	}
	if filter.ShipStatus != "" {
		domainFilter.Filters[order.FilterShipStatus] = filter.ShipStatus
	}
	if filter.Source != "" {
		domainFilter.Filters[order.FilterSource] = filter.Source
	}
	if filter.BlockID != "" {
		v, err := parseLinkFilter(filter.BlockID, "blockId")
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Filters[order.FilterBlockID] = v
	}
	if filter.BuyerID != "" {
		v, err := parseLinkFilter(filter.BuyerID, "buyerId")
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Filters[order.FilterBuyerID] = v
	}

	orders, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToOrderListResponses(orders), total, nil
}

// Update applies a partial update
func (s *OrderService) Update(ctx context.Context, id uuid.UUID, req UpdateOrderRequest) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	loaded := o.Version

	if req.OrderRef != nil && strings.TrimSpace(*req.OrderRef) != o.OrderRef {
		exists, err := s.orderRepo.ExistsByRef(ctx, strings.TrimSpace(*req.OrderRef))
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "An order with this reference already exists")
		}
		if err := o.SetOrderRef(*req.OrderRef); err != nil {
			return nil, err
		}
	}

	if req.OrderDate != nil || req.DueDate != nil {
		orderDate := o.OrderDate
		if req.OrderDate != nil {
			orderDate = *req.OrderDate
		}
		dueDate := o.DueDate
		if req.DueDate != nil {
			dueDate = req.DueDate
		}
		if err := o.SetDates(orderDate, dueDate); err != nil {
			return nil, err
		}
	}

	if req.LineItems != nil {
		if err := o.SetLineItems(toLineItems(*req.LineItems)); err != nil {
			return nil, err
		}
	}
	if req.TotalAmount != nil {
		if err := o.SetTotal(*req.TotalAmount); err != nil {
			return nil, err
		}
	}
	if req.Buyer != nil {
		if err := o.SetBuyerContact(order.Buyer(*req.Buyer)); err != nil {
			return nil, err
		}
	}
	if req.ShippingAddress != nil {
		o.SetShippingAddress(req.ShippingAddress.toValue())
	}

	if req.ShipStatus != nil || req.TrackingNumber != nil || req.ShippingMethod != nil || req.ShippedAt != nil {
		status := o.ShipStatus
		if req.ShipStatus != nil {
			status = order.ShipStatus(*req.ShipStatus)
		}
		tracking := o.TrackingNumber
		if req.TrackingNumber != nil {
			tracking = *req.TrackingNumber
		}
		method := o.ShippingMethod
		if req.ShippingMethod != nil {
			method = *req.ShippingMethod
		}
		if err := o.UpdateShipping(status, tracking, method, req.ShippedAt); err != nil {
			return nil, err
		}
	}

	if req.BlockID != nil {
		if err := s.applyBlockLink(ctx, o, *req.BlockID); err != nil {
			return nil, err
		}
	}
	if req.BuyerID != nil {
		if err := s.applyBuyerLink(ctx, o, *req.BuyerID); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		o.SetNotes(*req.Notes)
	}

	if err := s.orderRepo.SaveWithLock(ctx, o, loaded); err != nil {
		return nil, err
	}
	s.publish(ctx, o)

	response := ToOrderResponse(o)
	return &response, nil
}

// Delete removes an order
func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.orderRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.orderRepo.Delete(ctx, id)
}

// RecordPayment appends an installment. Reaching the amount due marks the
// order fully paid and raises OrderFullyPaid for the notifier.
func (s *OrderService) RecordPayment(ctx context.Context, id uuid.UUID, req RecordPaymentRequest) (*PaymentResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	loaded := o.Version

	previous := o.PaymentStatus
	paidAt := time.Now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}
	inst, err := o.RecordPayment(req.Amount, paidAt)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, o, loaded); err != nil {
		return nil, err
	}
	s.businessMetrics.RecordPayment(ctx, o.PaymentStatus.String())
	s.logger.Info("Payment recorded",
		zap.String("order_id", o.ID.String()),
		zap.String("order_ref", o.OrderRef),
		zap.Int("installment", inst.Number),
		zap.String("amount", inst.Amount.StringFixed(2)),
		zap.String("payment_status", o.PaymentStatus.String()),
	)
	s.publish(ctx, o)

	return &PaymentResponse{
		Installment:    toInstallmentResponse(*inst),
		PreviousStatus: previous.String(),
		Order:          ToOrderResponse(o),
	}, nil
}

// PaymentSummary counts orders per payment status
func (s *OrderService) PaymentSummary(ctx context.Context) (map[string]int64, error) {
	counts, err := s.orderRepo.CountByPaymentStatus(ctx)
	if err != nil {
		return nil, err
	}
	out := map[string]int64{
		order.PaymentStatusUnpaid.String():        0,
		order.PaymentStatusPartiallyPaid.String(): 0,
		order.PaymentStatusDepositPaid.String():   0,
		order.PaymentStatusFullyPaid.String():     0,
	}
	for status, n := range counts {
		out[status.String()] = n
	}
	return out, nil
}

func (s *OrderService) applyBlockLink(ctx context.Context, o *order.Order, value string) error {
	value = strings.TrimSpace(value)
	if value == "" || value == unlinkValue {
		o.ClearBlock()
		return nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return shared.NewDomainError("INVALID_BLOCK", "block_id must be a UUID or \"none\"")
	}
	if o.BlockID != nil && *o.BlockID == id {
		return nil
	}
	return s.linkBlock(ctx, o, id)
}

func (s *OrderService) applyBuyerLink(ctx context.Context, o *order.Order, value string) error {
	value = strings.TrimSpace(value)
	if value == "" || value == unlinkValue {
		o.ClearBuyer()
		return nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return shared.NewDomainError("INVALID_BUYER", "buyer_id must be a UUID or \"none\"")
	}
	if o.BuyerID != nil && *o.BuyerID == id {
		return nil
	}
	return s.linkBuyer(ctx, o, id)
}

func (s *OrderService) linkBlock(ctx context.Context, o *order.Order, id uuid.UUID) error {
	b, err := s.blockRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_BLOCK", "Block not found")
		}
		return err
	}
	if !b.AcceptsOrders() {
		return shared.NewDomainError("INVALID_STATE", "Block "+b.Name+" no longer accepts orders")
	}
	return o.AssignBlock(b.ID)
}

// linkBuyer links the buyer record and fills contact fields the order lacks
func (s *OrderService) linkBuyer(ctx context.Context, o *order.Order, id uuid.UUID) error {
	b, err := s.buyerRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_BUYER", "Buyer not found")
		}
		return err
	}
	if err := o.AssignBuyer(b.ID); err != nil {
		return err
	}

	contact := o.Buyer
	if contact.Name == "" {
		contact.Name = b.Name
	}
	if contact.Email == "" {
		contact.Email = b.Email
	}
	if contact.Phone == "" {
		contact.Phone = b.Phone
	}
	if contact.Company == "" {
		contact.Company = b.Company
	}
	if err := o.SetBuyerContact(contact); err != nil {
		return err
	}
	if o.ShippingAddress.IsEmpty() && !b.Address.IsEmpty() {
		o.SetShippingAddress(b.Address)
	}
	return nil
}

func (s *OrderService) publish(ctx context.Context, o *order.Order) {
	if err := shared.PublishPending(ctx, s.eventPublisher, o); err != nil {
		s.logger.Warn("Failed to publish order events", zap.String("order_id", o.ID.String()), zap.Error(err))
	}
}

// parseLinkFilter accepts a UUID or "none" for unlinked orders
func parseLinkFilter(value, field string) (any, error) {
	if value == unlinkValue {
		return unlinkValue, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", field+" must be a UUID or \"none\"")
	}
	return id, nil
}
