package order

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/exportdesk/backend/internal/domain/shared"
	"github.com/exportdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Buyer holds the contact captured on the order itself. It is kept even when
// the order is linked to a Buyer record so that historic orders keep the
// details they were placed with.
type Buyer struct {
	Name    string
	Email   string
	Phone   string
	Company string
}

// Order is the aggregate root for a customer order
type Order struct {
	shared.BaseAggregateRoot
	OrderRef          string
	ExternalID        *string
	Source            Source
	OrderDate         time.Time
	DueDate           *time.Time
	Buyer             Buyer
	ShippingAddress   valueobject.Address
	LineItems         LineItems
	Currency          valueobject.Currency
	TotalAmount       decimal.Decimal
	Installments      []Installment
	PaymentStatus     PaymentStatus
	ShipStatus        ShipStatus
	ShippingMethod    string
	TrackingNumber    string
	ShippedAt         *time.Time
	BlockID           *uuid.UUID
	BuyerID           *uuid.UUID
	Notes             string
	ExternalUpdatedAt *time.Time
	SyncedAt          *time.Time
}

// NewOrder creates a manually entered order
func NewOrder(orderRef string, orderDate time.Time, total decimal.Decimal, currency string) (*Order, error) {
	orderRef = strings.TrimSpace(orderRef)
	if err := validateOrderRef(orderRef); err != nil {
		return nil, err
	}
	if total.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total amount cannot be negative")
	}
	cur, err := valueobject.ParseCurrency(currency)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CURRENCY", err.Error())
	}
	if orderDate.IsZero() {
		orderDate = time.Now()
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderRef:          orderRef,
		Source:            SourceManual,
		OrderDate:         orderDate,
		LineItems:         LineItems{},
		Currency:          cur,
		TotalAmount:       valueobject.RoundCents(total),
		Installments:      make([]Installment, 0, MaxInstallments),
		PaymentStatus:     PaymentStatusUnpaid,
		ShipStatus:        ShipStatusPending,
	}
	o.AddDomainEvent(NewOrderCreatedEvent(o))
	return o, nil
}

// NewSyncedOrder creates an order imported from the commerce platform
func NewSyncedOrder(externalID, orderRef string, orderDate time.Time, total decimal.Decimal, currency string) (*Order, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_ID", "External ID cannot be empty")
	}
	if strings.TrimSpace(orderRef) == "" {
		orderRef = "EXT-" + externalID
	}
	o, err := NewOrder(orderRef, orderDate, total, currency)
	if err != nil {
		return nil, err
	}
	o.ExternalID = &externalID
	o.Source = SourceSynced
	now := time.Now()
	o.SyncedAt = &now
	return o, nil
}

func validateOrderRef(ref string) error {
	if ref == "" {
		return shared.NewDomainError("INVALID_ORDER_REF", "Order reference cannot be empty")
	}
	if len(ref) > 64 {
		return shared.NewDomainError("INVALID_ORDER_REF", "Order reference cannot exceed 64 characters")
	}
	return nil
}

// SetBuyerContact replaces the buyer contact captured on the order
func (o *Order) SetBuyerContact(b Buyer) error {
	b.Name = strings.TrimSpace(b.Name)
	b.Email = strings.ToLower(strings.TrimSpace(b.Email))
	if b.Email != "" && !emailRegex.MatchString(b.Email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid buyer email format")
	}
	o.Buyer = b
	o.touch()
	return nil
}

// SetShippingAddress replaces the shipping address
func (o *Order) SetShippingAddress(addr valueobject.Address) {
	o.ShippingAddress = addr.Normalize()
	o.touch()
}

// SetLineItems replaces the line-items snapshot
func (o *Order) SetLineItems(items LineItems) error {
	if err := items.Validate(); err != nil {
		return err
	}
	o.LineItems = items
	o.touch()
	return nil
}

// SetOrderRef renames the order
func (o *Order) SetOrderRef(ref string) error {
	ref = strings.TrimSpace(ref)
	if err := validateOrderRef(ref); err != nil {
		return err
	}
	o.OrderRef = ref
	o.touch()
	return nil
}

// SetDates updates the order and due dates
func (o *Order) SetDates(orderDate time.Time, dueDate *time.Time) error {
	if orderDate.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Order date is required")
	}
	if dueDate != nil && dueDate.Before(orderDate) {
		return shared.NewDomainError("INVALID_DATE", "Due date cannot be before the order date")
	}
	o.OrderDate = orderDate
	o.DueDate = dueDate
	o.touch()
	return nil
}

// SetNotes replaces the free-text notes
func (o *Order) SetNotes(notes string) {
	o.Notes = notes
	o.touch()
}

// SetTotal changes the amount due and recomputes the payment status.
// Lowering a positive total to or below what was already paid leaves the
// order fully paid and raises OrderFullyPaid, as a settling payment would.
func (o *Order) SetTotal(total decimal.Decimal) error {
	if total.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Total amount cannot be negative")
	}
	previous := o.PaymentStatus
	o.TotalAmount = valueobject.RoundCents(total)
	o.RecomputePaymentStatus()
	o.touch()
	if previous != PaymentStatusFullyPaid && o.IsFullyPaid() {
		o.AddDomainEvent(NewOrderFullyPaidEvent(o))
	}
	return nil
}

// DepositAmount is 25% of the total
func (o *Order) DepositAmount() decimal.Decimal {
	return DepositAmount(o.TotalAmount)
}

// PaidTotal sums the recorded installments
func (o *Order) PaidTotal() decimal.Decimal {
	total := decimal.Zero
	for _, inst := range o.Installments {
		total = total.Add(inst.Amount)
	}
	return total
}

// Balance is what remains to be paid, never negative
func (o *Order) Balance() decimal.Decimal {
	b := o.TotalAmount.Sub(o.PaidTotal())
	if b.IsNegative() {
		return decimal.Zero
	}
	return b
}

// IsFullyPaid reports whether the payment status is fully paid
func (o *Order) IsFullyPaid() bool {
	return o.PaymentStatus == PaymentStatusFullyPaid
}

// RecordPayment appends the next installment and recomputes the payment status
func (o *Order) RecordPayment(amount decimal.Decimal, paidAt time.Time) (*Installment, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if len(o.Installments) >= MaxInstallments {
		return nil, shared.NewDomainError("INSTALLMENTS_EXHAUSTED",
			fmt.Sprintf("An order can record at most %d payments", MaxInstallments))
	}
	amount = valueobject.RoundCents(amount)
	if o.PaidTotal().Add(amount).GreaterThan(o.TotalAmount) {
		return nil, shared.NewDomainError("OVERPAYMENT",
			fmt.Sprintf("Payment of %s exceeds the outstanding balance of %s", amount.StringFixed(2), o.Balance().StringFixed(2)))
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	inst := Installment{
		Number: len(o.Installments) + 1,
		Amount: amount,
		PaidAt: paidAt,
	}
	o.Installments = append(o.Installments, inst)

	previous := o.PaymentStatus
	o.RecomputePaymentStatus()
	o.touch()

	o.AddDomainEvent(NewPaymentRecordedEvent(o, inst, previous))
	if previous != PaymentStatusFullyPaid && o.IsFullyPaid() {
		o.AddDomainEvent(NewOrderFullyPaidEvent(o))
	}
	return &inst, nil
}

// RecomputePaymentStatus derives PaymentStatus from the total and installments
func (o *Order) RecomputePaymentStatus() {
	o.PaymentStatus = ComputePaymentStatus(o.TotalAmount, o.PaidTotal())
}

// UpdateShipping changes the ship status and tracking details.
// Production and shipping need the deposit to have been paid.
func (o *Order) UpdateShipping(status ShipStatus, trackingNumber, method string, shippedAt *time.Time) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_SHIP_STATUS", fmt.Sprintf("Unknown ship status %q", status))
	}
	if status.requiresDeposit() && (o.PaymentStatus == PaymentStatusUnpaid || o.PaymentStatus == PaymentStatusPartiallyPaid) {
		return shared.NewDomainError("DEPOSIT_REQUIRED", "The deposit must be paid before the order moves to "+string(status))
	}

	o.ShipStatus = status
	o.TrackingNumber = strings.TrimSpace(trackingNumber)
	o.ShippingMethod = strings.TrimSpace(method)
	if shippedAt != nil {
		o.ShippedAt = shippedAt
	}
	if (status == ShipStatusShipped || status == ShipStatusDelivered) && o.ShippedAt == nil {
		now := time.Now()
		o.ShippedAt = &now
	}
	o.touch()
	return nil
}

// AssignBlock puts the order in a shipping block
func (o *Order) AssignBlock(blockID uuid.UUID) error {
	if blockID == uuid.Nil {
		return shared.NewDomainError("INVALID_BLOCK", "Block ID cannot be empty")
	}
	o.BlockID = &blockID
	o.touch()
	return nil
}

// ClearBlock removes the order from its block
func (o *Order) ClearBlock() {
	o.BlockID = nil
	o.touch()
}

// AssignBuyer links the order to a buyer record
func (o *Order) AssignBuyer(buyerID uuid.UUID) error {
	if buyerID == uuid.Nil {
		return shared.NewDomainError("INVALID_BUYER", "Buyer ID cannot be empty")
	}
	o.BuyerID = &buyerID
	o.touch()
	return nil
}

// ClearBuyer unlinks the buyer record
func (o *Order) ClearBuyer() {
	o.BuyerID = nil
	o.touch()
}

// SyncSnapshot carries the fields the commerce platform owns
type SyncSnapshot struct {
	OrderRef          string
	OrderDate         time.Time
	Buyer             Buyer
	ShippingAddress   valueobject.Address
	LineItems         LineItems
	Currency          string
	TotalAmount       decimal.Decimal
	ExternalUpdatedAt *time.Time
}

// NeedsSync reports whether the upstream copy is newer than what is stored
func (o *Order) NeedsSync(externalUpdatedAt *time.Time) bool {
	if externalUpdatedAt == nil {
		return false
	}
	if o.ExternalUpdatedAt == nil {
		return true
	}
	return externalUpdatedAt.After(*o.ExternalUpdatedAt)
}

// ApplySync overwrites the platform-owned fields. Block, buyer link,
// shipping progress, notes and recorded installments stay as they are.
func (o *Order) ApplySync(s SyncSnapshot) error {
	if strings.TrimSpace(s.OrderRef) != "" {
		if err := validateOrderRef(strings.TrimSpace(s.OrderRef)); err != nil {
			return err
		}
		o.OrderRef = strings.TrimSpace(s.OrderRef)
	}
	if !s.OrderDate.IsZero() {
		o.OrderDate = s.OrderDate
	}
	if err := s.LineItems.Validate(); err != nil {
		return err
	}
	if s.Currency != "" {
		cur, err := valueobject.ParseCurrency(s.Currency)
		if err != nil {
			return shared.NewDomainError("INVALID_CURRENCY", err.Error())
		}
		o.Currency = cur
	}
	if err := o.SetBuyerContact(s.Buyer); err != nil {
		return err
	}
	o.ShippingAddress = s.ShippingAddress.Normalize()
	o.LineItems = s.LineItems
	if err := o.SetTotal(s.TotalAmount); err != nil {
		return err
	}
	o.ExternalUpdatedAt = s.ExternalUpdatedAt
	now := time.Now()
	o.SyncedAt = &now
	o.touch()
	return nil
}

func (o *Order) touch() {
	o.MarkChanged()
}
