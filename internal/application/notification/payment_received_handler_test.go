package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/exportdesk/backend/internal/domain/notification"
	"github.com/exportdesk/backend/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendOrderEmail(ctx context.Context, orderID uuid.UUID, req SendEmailRequest) (*EmailLogResponse, error) {
	args := m.Called(ctx, orderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*EmailLogResponse), args.Error(1)
}

func TestPaymentReceivedHandler(t *testing.T) {
	ctx := context.Background()
	o, err := order.NewOrder("#4001", shippedOrder(t).OrderDate, decimal.NewFromInt(100), "USD")
	require.NoError(t, err)
	ev := order.NewOrderFullyPaidEvent(o)
	want := SendEmailRequest{TemplateKey: notification.TemplatePaymentReceived}

	t.Run("sends payment_received", func(t *testing.T) {
		sender := new(mockSender)
		sender.On("SendOrderEmail", ctx, o.ID, want).Return(&EmailLogResponse{Status: "sent"}, nil)
		h := NewPaymentReceivedHandler(sender, nil)

		assert.Equal(t, []string{order.EventTypeOrderFullyPaid}, h.EventTypes())
		require.NoError(t, h.Handle(ctx, ev))
		sender.AssertExpectations(t)
	})

	t.Run("returns send failure", func(t *testing.T) {
		sender := new(mockSender)
		sender.On("SendOrderEmail", ctx, o.ID, want).Return(nil, errors.New("smtp down"))

		err := NewPaymentReceivedHandler(sender, nil).Handle(ctx, ev)

		assert.EqualError(t, err, "smtp down")
	})

	t.Run("rejects other events", func(t *testing.T) {
		sender := new(mockSender)
		other := order.NewOrderCreatedEvent(o)

		err := NewPaymentReceivedHandler(sender, nil).Handle(ctx, other)

		assert.Error(t, err)
		sender.AssertNotCalled(t, "SendOrderEmail", mock.Anything, mock.Anything, mock.Anything)
	})
}
