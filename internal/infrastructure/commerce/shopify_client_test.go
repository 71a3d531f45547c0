package commerce

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/exportdesk/backend/internal/domain/commerce"
	"github.com/exportdesk/backend/internal/infrastructure/config"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(url string) config.StoreConfig {
	return config.StoreConfig{
		URL:            url,
		AccessToken:    "shpat_test",
		APIVersion:     "2024-01",
		RequestTimeout: 5 * time.Second,
		MaxRetries:     3,
		BaseBackoff:    time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}
}

const ordersPage = `{"orders":[
 {"id":4501,"name":"#1001","email":"ada@example.com","currency":"USD","total_price":"120.50",
  "updated_at":"2024-05-02T10:00:00Z",
  "customer":{"first_name":"Ada","last_name":"Lovelace"},
  "shipping_address":{"address1":"1 Dock Rd","city":"Hamburg","country_code":"DE"},
  "line_items":[{"id":1,"sku":"TEA-1","title":"Green tea","quantity":2,"price":"60.25"}]},
 {"id":4502,"name":"#1002","currency":"USD","total_price":"10.00"}
]}`

func TestShopifyClient_FetchOrders(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/2024-01/orders.json", r.URL.Path)
		assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))
		gotQuery = r.URL.RawQuery
		w.Header().Set("Link", fmt.Sprintf(`<%s/admin/api/2024-01/orders.json?limit=2&page_info=abc123>; rel="next"`, "https://shop.example"))
		_, _ = w.Write([]byte(ordersPage))
	}))
	defer server.Close()

	client := NewShopifyClient(testConfig(server.URL))
	since := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	page, err := client.FetchOrders(context.Background(), commerce.PageRequest{
		SinceID:      4000,
		UpdatedAtMin: &since,
		Limit:        2,
		Fields:       []string{"id", "name"},
	})
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "status=any")
	assert.Contains(t, gotQuery, "since_id=4000")
	assert.Contains(t, gotQuery, "fields=id%2Cname")
	assert.Contains(t, gotQuery, "updated_at_min=2024-05-01T00%3A00%3A00Z")

	require.Len(t, page.Orders, 2)
	assert.Equal(t, "abc123", page.NextCursor)
	assert.Equal(t, int64(4502), page.LastID)
	assert.True(t, page.HasMore)

	first := page.Orders[0]
	want := commerce.ExternalOrder{
		ID:         4501,
		Name:       "#1001",
		Email:      "ada@example.com",
		Currency:   "USD",
		TotalPrice: "120.50",
		LineItems:  []commerce.ExternalLineItem{{ID: 1, SKU: "TEA-1", Title: "Green tea", Quantity: 2, Price: "60.25"}},
	}
	opts := cmp.FilterPath(func(p cmp.Path) bool {
		switch p.Last().String() {
		case ".UpdatedAt", ".Customer", ".ShippingAddress":
			return true
		}
		return false
	}, cmp.Ignore())
	assert.Empty(t, cmp.Diff(want, first, opts))
	assert.Equal(t, "Ada Lovelace", first.Customer.FullName())
	assert.Equal(t, "Hamburg", first.ShippingAddress.City)
	require.NotNil(t, first.UpdatedAt)
}

func TestShopifyClient_CursorRequestDropsFilters(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"orders":[]}`))
	}))
	defer server.Close()

	client := NewShopifyClient(testConfig(server.URL))
	page, err := client.FetchOrders(context.Background(), commerce.PageRequest{Cursor: "xyz", SinceID: 9, Limit: 50})
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "page_info=xyz")
	assert.NotContains(t, gotQuery, "since_id")
	assert.NotContains(t, gotQuery, "status")
	assert.False(t, page.HasMore)
	assert.Empty(t, page.NextCursor)
}

func TestShopifyClient_RetriesOn429(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.Header().Set("Retry-After", "0.001")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"products":[{"id":7,"title":"Tea","variants":[{"id":70,"sku":"TEA-1","price":"4.50"}]}]}`))
	}))
	defer server.Close()

	client := NewShopifyClient(testConfig(server.URL))
	page, err := client.FetchProducts(context.Background(), commerce.PageRequest{Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	require.Len(t, page.Products, 1)
	assert.Equal(t, "TEA-1", page.Products[0].Variants[0].SKU)
}

func TestShopifyClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"rate limit exhausted", http.StatusTooManyRequests, commerce.ErrRateLimited},
		{"unauthorized", http.StatusUnauthorized, commerce.ErrUnauthorized},
		{"forbidden", http.StatusForbidden, commerce.ErrUnauthorized},
		{"server error", http.StatusBadGateway, commerce.ErrRequestFailed},
		{"not found", http.StatusNotFound, commerce.ErrRequestFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"errors":"nope"}`))
			}))
			defer server.Close()

			client := NewShopifyClient(testConfig(server.URL))
			_, err := client.FetchOrders(context.Background(), commerce.PageRequest{Limit: 10})
			assert.ErrorIs(t, err, tt.want)
			if tt.status == http.StatusTooManyRequests {
				assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
			} else {
				assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
			}
		})
	}
}

func TestShopifyClient_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"orders":`))
	}))
	defer server.Close()

	_, err := NewShopifyClient(testConfig(server.URL)).FetchOrders(context.Background(), commerce.PageRequest{})
	assert.ErrorIs(t, err, commerce.ErrInvalidResponse)
}

func TestShopifyClient_MissingCredentials(t *testing.T) {
	cfg := testConfig("")
	_, err := NewShopifyClient(cfg).FetchOrders(context.Background(), commerce.PageRequest{})
	assert.ErrorIs(t, err, commerce.ErrMissingCredentials)

	cfg = testConfig("https://shop.example")
	cfg.AccessToken = " "
	_, err = NewShopifyClient(cfg).FetchProducts(context.Background(), commerce.PageRequest{})
	assert.ErrorIs(t, err, commerce.ErrMissingCredentials)
}

func TestShopifyClient_ContextCancelledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.MaxBackoff = time.Minute
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewShopifyClient(cfg).FetchOrders(ctx, commerce.PageRequest{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBackoff(t *testing.T) {
	client := NewShopifyClient(config.StoreConfig{BaseBackoff: 100 * time.Millisecond, MaxBackoff: time.Second})

	assert.Equal(t, 100*time.Millisecond, client.backoff(0, ""))
	assert.Equal(t, 400*time.Millisecond, client.backoff(2, ""))
	assert.Equal(t, time.Second, client.backoff(10, ""))
	assert.Equal(t, 700*time.Millisecond, client.backoff(0, "0.7"))
	assert.Equal(t, time.Second, client.backoff(0, "120"))
}

func TestNextPageInfo(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"", ""},
		{`<https://s/admin/api/2024-01/orders.json?page_info=prev1&limit=50>; rel="previous"`, ""},
		{`<https://s/admin/api/2024-01/orders.json?page_info=prev1>; rel="previous", <https://s/admin/api/2024-01/orders.json?limit=50&page_info=next2>; rel="next"`, "next2"},
		{`<https://s/orders.json?page_info=n3>; rel = "next"`, "n3"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, nextPageInfo(tt.link), tt.link)
	}
}

func TestShopifyClient_OversizedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"orders":[],"pad":"`))
		_, _ = w.Write([]byte(strings.Repeat("x", maxResponseSize)))
		_, _ = w.Write([]byte(`"}`))
	}))
	defer server.Close()

	_, err := NewShopifyClient(testConfig(server.URL)).FetchOrders(context.Background(), commerce.PageRequest{})
	assert.ErrorIs(t, err, commerce.ErrInvalidResponse)
}
