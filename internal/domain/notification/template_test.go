package notification

import (
	"errors"
	"testing"
	"time"

	"github.com/exportdesk/backend/internal/domain/block"
	"github.com/exportdesk/backend/internal/domain/order"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstitute(t *testing.T) {
	tokens := map[string]string{"name": "Ada", "ref": "#1001"}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Hello {{name}}", "Hello Ada"},
		{"spaced", "Order {{ ref }} is ready", "Order #1001 is ready"},
		{"repeated", "{{name}}/{{name}}", "Ada/Ada"},
		{"unknown kept", "Dear {{title}} {{name}}", "Dear {{title}} Ada"},
		{"no tokens", "Thanks", "Thanks"},
		{"malformed left alone", "{{ name", "{{ name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Substitute(tt.in, tokens))
		})
	}
}

func TestEmailTemplate_RenderAndTokens(t *testing.T) {
	tmpl, err := NewEmailTemplate(TemplateBalanceDue, "Balance for {{order_ref}}", "Hi {{buyer_name}}, {{ balance }} {{currency}} remains.", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"balance", "buyer_name", "currency", "order_ref"}, tmpl.Tokens())

	out := tmpl.Render(map[string]string{"order_ref": "#9", "buyer_name": "Lin", "balance": "750.00", "currency": "USD"})
	assert.Equal(t, "Balance for #9", out.Subject)
	assert.Equal(t, "Hi Lin, 750.00 USD remains.", out.Body)
}

func TestNewEmailTemplate_Validation(t *testing.T) {
	_, err := NewEmailTemplate("Bad Key", "s", "b", "")
	assert.Error(t, err)
	_, err = NewEmailTemplate("ok_key", "", "b", "")
	assert.Error(t, err)
}

func TestOrderTokens(t *testing.T) {
	o, err := order.NewOrder("#2001", time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(12000), "USD")
	require.NoError(t, err)
	require.NoError(t, o.SetBuyerContact(order.Buyer{Name: "Harbour Foods", Email: "ops@harbour.example"}))
	_, err = o.RecordPayment(decimal.NewFromInt(3000), time.Now())
	require.NoError(t, err)
	blk, err := block.NewBlock("Autumn container", "2024-10", "")
	require.NoError(t, err)

	tokens := OrderTokens(o, blk)
	assert.Equal(t, "12,000.00", tokens["total"])
	assert.Equal(t, "3,000.00", tokens["deposit"])
	assert.Equal(t, "9,000.00", tokens["balance"])
	assert.Equal(t, "deposit paid", tokens["payment_status"])
	assert.Equal(t, "October 2024", tokens["ship_month"])
	assert.Equal(t, "3 May 2024", tokens["order_date"])

	assert.Equal(t, "", OrderTokens(o, nil)["block_name"])
}

func TestNewEmailLog(t *testing.T) {
	ok := NewEmailLog(nil, TemplateOrderShipped, " a@b.co ", Rendered{Subject: "s", Body: "b"}, nil)
	assert.Equal(t, DeliverySent, ok.Status)
	assert.Equal(t, "a@b.co", ok.Recipient)

	failed := NewEmailLog(nil, TemplateOrderShipped, "a@b.co", Rendered{}, errors.New("smtp down"))
	assert.Equal(t, DeliveryFailed, failed.Status)
	assert.Equal(t, "smtp down", failed.Error)
}
