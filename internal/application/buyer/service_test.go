package buyer

import (
	"context"
	"testing"

	"github.com/exportdesk/backend/internal/domain/buyer"
	"github.com/exportdesk/backend/internal/domain/shared"
	"github.com/exportdesk/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestService() (*BuyerService, *testutil.MockBuyerRepository, *testutil.MockOrderRepository) {
	buyerRepo := new(testutil.MockBuyerRepository)
	orderRepo := new(testutil.MockOrderRepository)
	return NewBuyerService(buyerRepo, orderRepo), buyerRepo, orderRepo
}

func existingBuyer(t *testing.T) *buyer.Buyer {
	t.Helper()
	b, err := buyer.NewBuyer(buyer.Details{Name: "Harbour Foods", Email: "ops@harbour.example"})
	require.NoError(t, err)
	return b
}

func TestBuyerService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, buyerRepo, _ := newTestService()
		buyerRepo.On("ExistsByEmail", ctx, "ada@example.com").Return(false, nil)
		buyerRepo.On("Save", ctx, mock.AnythingOfType("*buyer.Buyer")).Return(nil)

		resp, err := svc.Create(ctx, CreateBuyerRequest{
			Name:    "Ada",
			Email:   " Ada@Example.com ",
			Company: "Analytical Exports",
			Address: Address{City: "London", Country: "gb"},
		})

		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", resp.Email)
		assert.Equal(t, "Ada (Analytical Exports)", resp.DisplayName)
		assert.Equal(t, "GB", resp.Address.Country)
		assert.Equal(t, "London, GB", resp.FullAddress)
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc, buyerRepo, _ := newTestService()
		buyerRepo.On("ExistsByEmail", ctx, "ada@example.com").Return(true, nil)

		_, err := svc.Create(ctx, CreateBuyerRequest{Name: "Ada", Email: "ada@example.com"})

		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		buyerRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("no email skips uniqueness check", func(t *testing.T) {
		svc, buyerRepo, _ := newTestService()
		buyerRepo.On("Save", ctx, mock.Anything).Return(nil)

		_, err := svc.Create(ctx, CreateBuyerRequest{Name: "Walk-in"})

		require.NoError(t, err)
		buyerRepo.AssertNotCalled(t, "ExistsByEmail", mock.Anything, mock.Anything)
	})
}

func TestBuyerService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("keeping own email does not collide", func(t *testing.T) {
		svc, buyerRepo, _ := newTestService()
		b := existingBuyer(t)
		email := "OPS@harbour.example"
		phone := "+44 20 7946 0000"
		buyerRepo.On("FindByID", ctx, b.ID).Return(b, nil)
		buyerRepo.On("Save", ctx, b).Return(nil)

		resp, err := svc.Update(ctx, b.ID, UpdateBuyerRequest{Email: &email, Phone: &phone})

		require.NoError(t, err)
		assert.Equal(t, phone, resp.Phone)
		assert.Equal(t, 2, resp.Version)
		buyerRepo.AssertNotCalled(t, "ExistsByEmail", mock.Anything, mock.Anything)
	})

	t.Run("invalid phone", func(t *testing.T) {
		svc, buyerRepo, _ := newTestService()
		b := existingBuyer(t)
		phone := "call me"
		buyerRepo.On("FindByID", ctx, b.ID).Return(b, nil)

		_, err := svc.Update(ctx, b.ID, UpdateBuyerRequest{Phone: &phone})

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_PHONE", de.Code)
	})
}

func TestBuyerService_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		linked     int64
		wantErr    error
		wantDelete bool
	}{
		{name: "no linked orders", linked: 0, wantDelete: true},
		{name: "linked orders block delete", linked: 3, wantErr: shared.ErrHasLinkedOrders},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, buyerRepo, orderRepo := newTestService()
			b := existingBuyer(t)
			buyerRepo.On("FindByID", ctx, b.ID).Return(b, nil)
			orderRepo.On("CountByBuyer", ctx, b.ID).Return(tt.linked, nil)
			buyerRepo.On("Delete", ctx, b.ID).Return(nil).Maybe()

			err := svc.Delete(ctx, b.ID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			if tt.wantDelete {
				buyerRepo.AssertCalled(t, "Delete", ctx, b.ID)
			} else {
				buyerRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
			}
		})
	}

	t.Run("missing buyer", func(t *testing.T) {
		svc, buyerRepo, _ := newTestService()
		id := uuid.New()
		buyerRepo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		assert.ErrorIs(t, svc.Delete(ctx, id), shared.ErrNotFound)
	})
}

func TestBuyerService_List(t *testing.T) {
	ctx := context.Background()
	svc, buyerRepo, _ := newTestService()
	matchFilter := mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 1 && f.PageSize == 20 && f.OrderBy == "name" && f.OrderDir == "asc" && f.Search == "harb"
	})
	buyerRepo.On("FindAll", ctx, matchFilter).Return([]buyer.Buyer{*existingBuyer(t)}, nil)
	buyerRepo.On("Count", ctx, matchFilter).Return(int64(1), nil)

	items, total, err := svc.List(ctx, ListFilter{Search: "harb"})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "Harbour Foods", items[0].Name)
}
