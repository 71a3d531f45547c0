package block

import (
	"context"
	"testing"

	"github.com/exportdesk/backend/internal/domain/block"
	"github.com/exportdesk/backend/internal/domain/shared"
	"github.com/exportdesk/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestService() (*BlockService, *testutil.MockBlockRepository, *testutil.MockOrderRepository) {
	blockRepo := new(testutil.MockBlockRepository)
	orderRepo := new(testutil.MockOrderRepository)
	return NewBlockService(blockRepo, orderRepo), blockRepo, orderRepo
}

func existingBlock(t *testing.T) *block.Block {
	t.Helper()
	b, err := block.NewBlock("Autumn container", "2024-10", "")
	require.NoError(t, err)
	return b
}

func TestBlockService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes month", func(t *testing.T) {
		svc, blockRepo, _ := newTestService()
		blockRepo.On("ExistsByName", ctx, "Winter").Return(false, nil)
		blockRepo.On("Save", ctx, mock.AnythingOfType("*block.Block")).Return(nil)

		resp, err := svc.Create(ctx, CreateBlockRequest{Name: " Winter ", TargetShipMonth: "2025-1"})

		// time.Parse is strict about two-digit months
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_SHIP_MONTH", de.Code)
		assert.Nil(t, resp)

		resp, err = svc.Create(ctx, CreateBlockRequest{Name: "Winter", TargetShipMonth: "2025-01"})
		require.NoError(t, err)
		assert.Equal(t, "2025-01", resp.TargetShipMonth)
		assert.Equal(t, "planning", resp.Status)
		assert.True(t, resp.AcceptsOrders)
	})

	t.Run("duplicate name", func(t *testing.T) {
		svc, blockRepo, _ := newTestService()
		blockRepo.On("ExistsByName", ctx, "Winter").Return(true, nil)

		_, err := svc.Create(ctx, CreateBlockRequest{Name: "Winter", TargetShipMonth: "2025-01"})

		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})
}

func TestBlockService_Update(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		from     block.Status
		to       string
		wantCode string
	}{
		{name: "planning to confirmed", from: block.StatusPlanning, to: "confirmed"},
		{name: "confirmed back to planning", from: block.StatusConfirmed, to: "planning"},
		{name: "confirmed to shipped", from: block.StatusConfirmed, to: "shipped"},
		{name: "skip confirmation", from: block.StatusPlanning, to: "shipped", wantCode: "INVALID_STATE"},
		{name: "reopen closed", from: block.StatusClosed, to: "planning", wantCode: "INVALID_STATE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, blockRepo, orderRepo := newTestService()
			b := existingBlock(t)
			b.Status = tt.from
			blockRepo.On("FindByID", ctx, b.ID).Return(b, nil)
			blockRepo.On("Save", ctx, b).Return(nil).Maybe()
			orderRepo.On("CountByBlock", ctx, b.ID).Return(int64(2), nil).Maybe()

			resp, err := svc.Update(ctx, b.ID, UpdateBlockRequest{Status: &tt.to})

			if tt.wantCode != "" {
				var de *shared.DomainError
				require.ErrorAs(t, err, &de)
				assert.Equal(t, tt.wantCode, de.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, resp.Status)
			assert.Equal(t, int64(2), resp.OrderCount)
		})
	}
}

func TestBlockService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects while orders are linked", func(t *testing.T) {
		svc, blockRepo, orderRepo := newTestService()
		b := existingBlock(t)
		blockRepo.On("FindByID", ctx, b.ID).Return(b, nil)
		orderRepo.On("CountByBlock", ctx, b.ID).Return(int64(1), nil)

		err := svc.Delete(ctx, b.ID)

		assert.ErrorIs(t, err, shared.ErrHasLinkedOrders)
		blockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("deletes empty block", func(t *testing.T) {
		svc, blockRepo, orderRepo := newTestService()
		b := existingBlock(t)
		blockRepo.On("FindByID", ctx, b.ID).Return(b, nil)
		orderRepo.On("CountByBlock", ctx, b.ID).Return(int64(0), nil)
		blockRepo.On("Delete", ctx, b.ID).Return(nil)

		require.NoError(t, svc.Delete(ctx, b.ID))
		blockRepo.AssertExpectations(t)
	})
}

func TestBlockService_List(t *testing.T) {
	ctx := context.Background()
	svc, blockRepo, orderRepo := newTestService()
	b := existingBlock(t)
	matchFilter := mock.MatchedBy(func(f shared.Filter) bool {
		return f.OrderBy == "target_ship_month" && f.OrderDir == "asc" && f.Filters[block.FilterStatus] == "planning"
	})
	blockRepo.On("FindAll", ctx, matchFilter).Return([]block.Block{*b}, nil)
	blockRepo.On("Count", ctx, matchFilter).Return(int64(1), nil)
	orderRepo.On("CountByBlock", ctx, b.ID).Return(int64(4), nil)

	items, total, err := svc.List(ctx, ListFilter{Status: "planning"})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, int64(4), items[0].OrderCount)
}
