package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exportdesk/backend/internal/domain/block"
	"github.com/exportdesk/backend/internal/domain/buyer"
	"github.com/exportdesk/backend/internal/domain/commerce"
	"github.com/exportdesk/backend/internal/domain/order"
	"github.com/exportdesk/backend/internal/domain/shared"
	"github.com/exportdesk/backend/internal/infrastructure/persistence"
)

func newOrder(t *testing.T, ref string, total int64) *order.Order {
	t.Helper()
	o, err := order.NewOrder(ref, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(total), "USD")
	require.NoError(t, err)
	return o
}

func TestOrderRepository_Postgres(t *testing.T) {
	tdb := NewMigratedTestDB(t)
	ctx := context.Background()
	orders := persistence.NewGormOrderRepository(tdb.DB)
	blocks := persistence.NewGormBlockRepository(tdb.DB)
	buyers := persistence.NewGormBuyerRepository(tdb.DB)

	b, err := block.NewBlock("Spring container", "2026-04", "")
	require.NoError(t, err)
	require.NoError(t, blocks.Save(ctx, b))

	by, err := buyer.NewBuyer(buyer.Details{Name: "Grace Hopper", Email: "grace@example.com", Company: "Harbor Trading"})
	require.NoError(t, err)
	require.NoError(t, buyers.Save(ctx, by))

	deposit := newOrder(t, "ORD-2001", 1000)
	require.NoError(t, deposit.AssignBlock(b.ID))
	require.NoError(t, deposit.AssignBuyer(by.ID))
	require.NoError(t, deposit.SetBuyerContact(order.Buyer{Name: "Grace Hopper", Email: "grace@example.com", Company: "Harbor Trading"}))
	_, err = deposit.RecordPayment(decimal.NewFromInt(300), time.Now())
	require.NoError(t, err)
	require.NoError(t, orders.Save(ctx, deposit))

	unpaid := newOrder(t, "ORD-2002", 500)
	require.NoError(t, orders.Save(ctx, unpaid))

	t.Run("round trip keeps decimals and links", func(t *testing.T) {
		got, err := orders.FindByID(ctx, deposit.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(1000).Equal(got.TotalAmount))
		require.NotNil(t, got.BlockID)
		assert.Equal(t, b.ID, *got.BlockID)
		require.Len(t, got.Installments, 1)
		assert.Equal(t, order.PaymentStatusDepositPaid, got.PaymentStatus)
	})

	t.Run("search is case insensitive", func(t *testing.T) {
		found, err := orders.FindAll(ctx, shared.Filter{Page: 1, PageSize: 10, Search: "HARBOR"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "ORD-2001", found[0].OrderRef)
	})

	t.Run("filters", func(t *testing.T) {
		unlinked, err := orders.FindAll(ctx, shared.Filter{Page: 1, PageSize: 10, Filters: map[string]interface{}{order.FilterBlockID: "none"}})
		require.NoError(t, err)
		require.Len(t, unlinked, 1)
		assert.Equal(t, "ORD-2002", unlinked[0].OrderRef)

		n, err := orders.CountByBlock(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = orders.CountByBuyer(ctx, by.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("payment summary", func(t *testing.T) {
		counts, err := orders.CountByPaymentStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts[order.PaymentStatusDepositPaid])
		assert.Equal(t, int64(1), counts[order.PaymentStatusUnpaid])
	})

	t.Run("order ref is unique", func(t *testing.T) {
		dup := newOrder(t, "ORD-2002", 10)
		assert.Error(t, orders.Save(ctx, dup))
	})

	t.Run("external ids lookup", func(t *testing.T) {
		synced, err := order.NewSyncedOrder("gid://shop/Order/77", "#1077", time.Now(), decimal.NewFromInt(80), "USD")
		require.NoError(t, err)
		require.NoError(t, orders.Save(ctx, synced))

		existing, err := orders.ExistingExternalIDs(ctx, []string{"gid://shop/Order/77", "gid://shop/Order/78"})
		require.NoError(t, err)
		assert.True(t, existing["gid://shop/Order/77"])
		assert.False(t, existing["gid://shop/Order/78"])
	})

	t.Run("linked block and buyer cannot be deleted", func(t *testing.T) {
		assert.ErrorIs(t, blocks.Delete(ctx, b.ID), shared.ErrHasLinkedOrders)
		assert.ErrorIs(t, buyers.Delete(ctx, by.ID), shared.ErrHasLinkedOrders)

		got, err := orders.FindByID(ctx, deposit.ID)
		require.NoError(t, err)
		require.NotNil(t, got.BlockID)
		assert.Equal(t, b.ID, *got.BlockID)
	})

	t.Run("stale version is rejected", func(t *testing.T) {
		stale, err := orders.FindByID(ctx, deposit.ID)
		require.NoError(t, err)
		fresh, err := orders.FindByID(ctx, deposit.ID)
		require.NoError(t, err)

		v := fresh.Version
		fresh.SetNotes("first writer")
		require.NoError(t, orders.SaveWithLock(ctx, fresh, v))

		v = stale.Version
		stale.SetNotes("second writer")
		assert.ErrorIs(t, orders.SaveWithLock(ctx, stale, v), shared.ErrConflict)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, orders.Delete(ctx, unpaid.ID))
		_, err := orders.FindByID(ctx, unpaid.ID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
		assert.ErrorIs(t, orders.Delete(ctx, uuid.New()), shared.ErrNotFound)
	})
}

func TestSyncRunRepository_Postgres(t *testing.T) {
	tdb := NewMigratedTestDB(t)
	ctx := context.Background()
	runs := persistence.NewGormSyncRunRepository(tdb.DB)

	_, err := runs.LastSuccessful(ctx, commerce.ResourceOrders)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	base := time.Now().Add(-time.Hour).UTC()
	for i, status := range []error{nil, errors.New("store unavailable"), nil} {
		s := commerce.NewSyncSummary(commerce.ResourceOrders)
		s.StartedAt = base.Add(time.Duration(i) * time.Minute)
		s.Fetched = i + 1
		s.Finish(status)
		require.NoError(t, runs.Save(ctx, commerce.NewSyncRun(commerce.TriggerScheduled, *s)))
	}
	p := commerce.NewSyncSummary(commerce.ResourceProducts)
	p.Finish(nil)
	require.NoError(t, runs.Save(ctx, commerce.NewSyncRun(commerce.TriggerCLI, *p)))

	recent, err := runs.FindRecent(ctx, commerce.ResourceOrders, 10)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, 3, recent[0].Summary.Fetched)

	all, err := runs.FindRecent(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	last, err := runs.LastSuccessful(ctx, commerce.ResourceOrders)
	require.NoError(t, err)
	assert.Equal(t, commerce.RunStatusSuccess, last.Summary.Status)
	assert.Equal(t, 3, last.Summary.Fetched)
}
