package order

import (
	"context"
	"testing"
	"time"

	"github.com/exportdesk/backend/internal/domain/block"
	"github.com/exportdesk/backend/internal/domain/buyer"
	"github.com/exportdesk/backend/internal/domain/order"
	"github.com/exportdesk/backend/internal/domain/shared"
	"github.com/exportdesk/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Helpers
// =============================================================================

func newTestService() (*OrderService, *testutil.MockOrderRepository, *testutil.MockBlockRepository, *testutil.MockBuyerRepository) {
	orderRepo := new(testutil.MockOrderRepository)
	blockRepo := new(testutil.MockBlockRepository)
	buyerRepo := new(testutil.MockBuyerRepository)
	return NewOrderService(orderRepo, blockRepo, buyerRepo), orderRepo, blockRepo, buyerRepo
}

func existingOrder(t *testing.T, total int64) *order.Order {
	t.Helper()
	o, err := order.NewOrder("#1001", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(total), "USD")
	require.NoError(t, err)
	o.ClearDomainEvents()
	return o
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// =============================================================================
// Create
// =============================================================================

func TestOrderService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates manual order with total from line items", func(t *testing.T) {
		svc, orderRepo, _, _ := newTestService()
		orderRepo.On("ExistsByRef", ctx, "#2001").Return(false, nil)
		orderRepo.On("Save", ctx, mock.AnythingOfType("*order.Order")).Return(nil)

		resp, err := svc.Create(ctx, CreateOrderRequest{
			OrderRef: " #2001 ",
			Buyer:    BuyerContact{Name: "Harbour Foods", Email: "Ops@Harbour.example"},
			LineItems: []LineItem{
				{SKU: "TEA-01", Title: "Green tea", Quantity: 10, UnitPrice: dec("12.50")},
				{SKU: "TEA-02", Title: "Black tea", Quantity: 5, UnitPrice: dec("20")},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "#2001", resp.OrderRef)
		assert.Equal(t, "manual", resp.Source)
		assert.Equal(t, "USD", resp.Currency)
		assert.True(t, resp.TotalAmount.Equal(dec("225")))
		assert.True(t, resp.DepositAmount.Equal(dec("56.25")))
		assert.Equal(t, "unpaid", resp.PaymentStatus)
		assert.Equal(t, "ops@harbour.example", resp.Buyer.Email)
		assert.Len(t, resp.LineItems, 2)
		orderRepo.AssertExpectations(t)
	})

	t.Run("rejects duplicate reference", func(t *testing.T) {
		svc, orderRepo, _, _ := newTestService()
		orderRepo.On("ExistsByRef", ctx, "#2001").Return(true, nil)

		_, err := svc.Create(ctx, CreateOrderRequest{OrderRef: "#2001"})

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("links buyer and copies missing contact", func(t *testing.T) {
		svc, orderRepo, _, buyerRepo := newTestService()
		b, err := buyer.NewBuyer(buyer.Details{Name: "Lin", Email: "lin@example.com", Company: "Lin Trading"})
		require.NoError(t, err)
		total := dec("1000")

		orderRepo.On("ExistsByRef", ctx, "#3").Return(false, nil)
		buyerRepo.On("FindByID", ctx, b.ID).Return(b, nil)
		orderRepo.On("Save", ctx, mock.Anything).Return(nil)

		resp, err := svc.Create(ctx, CreateOrderRequest{OrderRef: "#3", TotalAmount: &total, BuyerID: &b.ID})

		require.NoError(t, err)
		require.NotNil(t, resp.BuyerID)
		assert.Equal(t, b.ID, *resp.BuyerID)
		assert.Equal(t, "Lin", resp.Buyer.Name)
		assert.Equal(t, "Lin Trading", resp.Buyer.Company)
	})

	t.Run("rejects closed block", func(t *testing.T) {
		svc, orderRepo, blockRepo, _ := newTestService()
		blk, err := block.NewBlock("Spring", "2024-04", "")
		require.NoError(t, err)
		blk.Status = block.StatusClosed

		orderRepo.On("ExistsByRef", ctx, "#4").Return(false, nil)
		blockRepo.On("FindByID", ctx, blk.ID).Return(blk, nil)

		_, err = svc.Create(ctx, CreateOrderRequest{OrderRef: "#4", BlockID: &blk.ID})

		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("unknown block is invalid input", func(t *testing.T) {
		svc, orderRepo, blockRepo, _ := newTestService()
		id := uuid.New()
		orderRepo.On("ExistsByRef", ctx, "#5").Return(false, nil)
		blockRepo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := svc.Create(ctx, CreateOrderRequest{OrderRef: "#5", BlockID: &id})

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_BLOCK", de.Code)
	})

	t.Run("publishes created event", func(t *testing.T) {
		svc, orderRepo, _, _ := newTestService()
		pub := new(testutil.MockEventPublisher)
		svc.SetEventPublisher(pub)
		orderRepo.On("ExistsByRef", ctx, "#6").Return(false, nil)
		orderRepo.On("Save", ctx, mock.Anything).Return(nil)
		pub.On("Publish", ctx, mock.MatchedBy(func(evs []shared.DomainEvent) bool {
			return len(evs) == 1 && evs[0].EventType() == order.EventTypeOrderCreated
		})).Return(nil)

		_, err := svc.Create(ctx, CreateOrderRequest{OrderRef: "#6"})

		require.NoError(t, err)
		pub.AssertExpectations(t)
	})
}

// =============================================================================
// List
// =============================================================================

func TestOrderService_List(t *testing.T) {
	ctx := context.Background()
	svc, orderRepo, _, _ := newTestService()
	blockID := uuid.New()

	matchFilter := mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 2 && f.PageSize == 50 && f.OrderBy == "order_date" && f.OrderDir == "desc" &&
			f.Filters[order.FilterPaymentStatus] == "fully_paid" &&
			f.Filters[order.FilterBlockID] == blockID &&
			f.Filters[order.FilterBuyerID] == "none"
	})
	orderRepo.On("FindAll", ctx, matchFilter).Return([]order.Order{*existingOrder(t, 100)}, nil)
	orderRepo.On("Count", ctx, matchFilter).Return(int64(51), nil)

	items, total, err := svc.List(ctx, ListFilter{
		Page: 2, PageSize: 50, PaymentStatus: "fully_paid",
		BlockID: blockID.String(), BuyerID: "none",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(51), total)
	assert.Len(t, items, 1)

	_, _, err = svc.List(ctx, ListFilter{BlockID: "not-a-uuid"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

// =============================================================================
// Update
// =============================================================================

func TestOrderService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("shipping needs the deposit", func(t *testing.T) {
		svc, orderRepo, _, _ := newTestService()
		o := existingOrder(t, 1000)
		orderRepo.On("FindByID", ctx, o.ID).Return(o, nil)
		status := "shipped"

		_, err := svc.Update(ctx, o.ID, UpdateOrderRequest{ShipStatus: &status})

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "DEPOSIT_REQUIRED", de.Code)
		orderRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unlinks block with none", func(t *testing.T) {
		svc, orderRepo, _, _ := newTestService()
		o := existingOrder(t, 1000)
		require.NoError(t, o.AssignBlock(uuid.New()))
		orderRepo.On("FindByID", ctx, o.ID).Return(o, nil)
		orderRepo.On("SaveWithLock", ctx, o, mock.Anything).Return(nil)
		none := "none"
		notes := "call before shipping"

		resp, err := svc.Update(ctx, o.ID, UpdateOrderRequest{BlockID: &none, Notes: &notes})

		require.NoError(t, err)
		assert.Nil(t, resp.BlockID)
		assert.Equal(t, notes, resp.Notes)
	})

	t.Run("lowering total below paid marks fully paid", func(t *testing.T) {
		svc, orderRepo, _, _ := newTestService()
		pub := new(testutil.MockEventPublisher)
		svc.SetEventPublisher(pub)
		o := existingOrder(t, 1000)
		_, err := o.RecordPayment(dec("600"), time.Now())
		require.NoError(t, err)
		o.ClearDomainEvents()
		orderRepo.On("FindByID", ctx, o.ID).Return(o, nil)
		orderRepo.On("SaveWithLock", ctx, o, mock.Anything).Return(nil)
		pub.On("Publish", ctx, mock.MatchedBy(func(evs []shared.DomainEvent) bool {
			return len(evs) == 1 && evs[0].EventType() == order.EventTypeOrderFullyPaid
		})).Return(nil)
		total := dec("500")

		resp, err := svc.Update(ctx, o.ID, UpdateOrderRequest{TotalAmount: &total})

		require.NoError(t, err)
		assert.Equal(t, "fully_paid", resp.PaymentStatus)
		assert.True(t, resp.Balance.IsZero())
		pub.AssertExpectations(t)
	})

	t.Run("renaming to a taken reference", func(t *testing.T) {
		svc, orderRepo, _, _ := newTestService()
		o := existingOrder(t, 1000)
		ref := "#taken"
		orderRepo.On("FindByID", ctx, o.ID).Return(o, nil)
		orderRepo.On("ExistsByRef", ctx, ref).Return(true, nil)

		_, err := svc.Update(ctx, o.ID, UpdateOrderRequest{OrderRef: &ref})

		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("not found", func(t *testing.T) {
		svc, orderRepo, _, _ := newTestService()
		id := uuid.New()
		orderRepo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := svc.Update(ctx, id, UpdateOrderRequest{})

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

// =============================================================================
// RecordPayment
// =============================================================================

func TestOrderService_RecordPayment(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		total      string
		payments   []string
		amount     string
		wantStatus string
		wantCode   string
	}{
		{name: "below deposit", total: "1000", amount: "100", wantStatus: "partially_paid"},
		{name: "deposit reached", total: "1000", amount: "250", wantStatus: "deposit_paid"},
		{name: "balance settles order", total: "1000", payments: []string{"250"}, amount: "750", wantStatus: "fully_paid"},
		{name: "overpayment", total: "1000", payments: []string{"900"}, amount: "200", wantCode: "OVERPAYMENT"},
		{name: "zero amount", total: "1000", amount: "0", wantCode: "INVALID_AMOUNT"},
		{name: "installments exhausted", total: "1000", payments: []string{"100", "100", "100", "100"}, amount: "100", wantCode: "INSTALLMENTS_EXHAUSTED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, orderRepo, _, _ := newTestService()
			o := existingOrder(t, 0)
			require.NoError(t, o.SetTotal(dec(tt.total)))
			for _, p := range tt.payments {
				_, err := o.RecordPayment(dec(p), time.Now())
				require.NoError(t, err)
			}
			o.ClearDomainEvents()
			orderRepo.On("FindByID", ctx, o.ID).Return(o, nil)
			orderRepo.On("SaveWithLock", ctx, o, mock.Anything).Return(nil).Maybe()

			resp, err := svc.RecordPayment(ctx, o.ID, RecordPaymentRequest{Amount: dec(tt.amount)})

			if tt.wantCode != "" {
				var de *shared.DomainError
				require.ErrorAs(t, err, &de)
				assert.Equal(t, tt.wantCode, de.Code)
				orderRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.Order.PaymentStatus)
			assert.Equal(t, len(tt.payments)+1, resp.Installment.Number)
		})
	}
}

func TestOrderService_RecordPayment_PublishesFullyPaid(t *testing.T) {
	ctx := context.Background()
	svc, orderRepo, _, _ := newTestService()
	pub := new(testutil.MockEventPublisher)
	svc.SetEventPublisher(pub)

	o := existingOrder(t, 400)
	orderRepo.On("FindByID", ctx, o.ID).Return(o, nil)
	orderRepo.On("SaveWithLock", ctx, o, mock.Anything).Return(nil)
	pub.On("Publish", ctx, mock.MatchedBy(func(evs []shared.DomainEvent) bool {
		types := make([]string, len(evs))
		for i, e := range evs {
			types[i] = e.EventType()
		}
		return assert.ObjectsAreEqual([]string{order.EventTypePaymentRecorded, order.EventTypeOrderFullyPaid}, types)
	})).Return(nil)

	resp, err := svc.RecordPayment(ctx, o.ID, RecordPaymentRequest{Amount: dec("400")})

	require.NoError(t, err)
	assert.Equal(t, "unpaid", resp.PreviousStatus)
	assert.Equal(t, "fully_paid", resp.Order.PaymentStatus)
	pub.AssertExpectations(t)
}

func TestOrderService_RecordPayment_StaleVersionConflicts(t *testing.T) {
	ctx := context.Background()
	svc, orderRepo, _, _ := newTestService()
	pub := new(testutil.MockEventPublisher)
	svc.SetEventPublisher(pub)

	o := existingOrder(t, 1000)
	o.ClearDomainEvents()
	loaded := o.Version
	conflict := shared.NewDomainError("CONFLICT", "The order was modified by another request, reload and retry")
	orderRepo.On("FindByID", ctx, o.ID).Return(o, nil)
	orderRepo.On("SaveWithLock", ctx, o, loaded).Return(conflict)

	resp, err := svc.RecordPayment(ctx, o.ID, RecordPaymentRequest{Amount: dec("250")})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, shared.ErrConflict)
	orderRepo.AssertExpectations(t)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestOrderService_PaymentSummary(t *testing.T) {
	ctx := context.Background()
	svc, orderRepo, _, _ := newTestService()
	orderRepo.On("CountByPaymentStatus", ctx).Return(map[order.PaymentStatus]int64{
		order.PaymentStatusFullyPaid: 3,
	}, nil)

	summary, err := svc.PaymentSummary(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(3), summary["fully_paid"])
	assert.Equal(t, int64(0), summary["unpaid"])
	assert.Len(t, summary, 4)
}

func TestOrderService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, orderRepo, _, _ := newTestService()
	o := existingOrder(t, 10)
	orderRepo.On("FindByID", ctx, o.ID).Return(o, nil)
	orderRepo.On("Delete", ctx, o.ID).Return(nil)

	require.NoError(t, svc.Delete(ctx, o.ID))
	orderRepo.AssertExpectations(t)
}
