// Package commerce holds the REST client for the commerce platform the
// orders are sold on.
package commerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/exportdesk/backend/internal/domain/commerce"
	"github.com/exportdesk/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// maxResponseSize caps a response body (10MB)
const maxResponseSize = 10 * 1024 * 1024

const accessTokenHeader = "X-Shopify-Access-Token"

// DefaultOrderFields is the field selection sent with order listings
var DefaultOrderFields = []string{
	"id", "name", "email", "phone", "currency", "total_price", "financial_status",
	"created_at", "updated_at", "note", "customer", "shipping_address", "line_items",
}

// ShopifyClient implements commerce.Store against the Shopify Admin REST API
type ShopifyClient struct {
	config     config.StoreConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a ShopifyClient
type Option func(*ShopifyClient)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *ShopifyClient) {
		c.httpClient = client
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *ShopifyClient) {
		c.logger = logger
	}
}

// NewShopifyClient creates a client. Credentials are checked per call so the
// service starts without them.
func NewShopifyClient(cfg config.StoreConfig, opts ...Option) *ShopifyClient {
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2024-01"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 500 * time.Millisecond
	}
	if cfg.MaxBackoff < cfg.BaseBackoff {
		cfg.MaxBackoff = cfg.BaseBackoff
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	c := &ShopifyClient{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the platform name
func (c *ShopifyClient) Name() string {
	return "shopify"
}

// FetchOrders fetches one page of orders
func (c *ShopifyClient) FetchOrders(ctx context.Context, req commerce.PageRequest) (*commerce.Page, error) {
	if len(req.Fields) == 0 {
		req.Fields = DefaultOrderFields
	}
	var body struct {
		Orders []commerce.ExternalOrder `json:"orders"`
	}
	next, err := c.list(ctx, "orders.json", req, true, &body)
	if err != nil {
		return nil, err
	}

	page := &commerce.Page{Orders: body.Orders, NextCursor: next}
	for _, o := range body.Orders {
		if o.ID > page.LastID {
			page.LastID = o.ID
		}
	}
	page.HasMore = hasMore(next, len(body.Orders), req.Limit)
	return page, nil
}

// FetchProducts fetches one page of products
func (c *ShopifyClient) FetchProducts(ctx context.Context, req commerce.PageRequest) (*commerce.ProductPage, error) {
	var body struct {
		Products []commerce.ExternalProduct `json:"products"`
	}
	next, err := c.list(ctx, "products.json", req, false, &body)
	if err != nil {
		return nil, err
	}

	page := &commerce.ProductPage{Products: body.Products, NextCursor: next}
	for _, p := range body.Products {
		if p.ID > page.LastID {
			page.LastID = p.ID
		}
	}
	page.HasMore = hasMore(next, len(body.Products), req.Limit)
	return page, nil
}

func hasMore(cursor string, n, limit int) bool {
	if cursor != "" {
		return true
	}
	return limit > 0 && n >= limit
}

// list performs a GET on an admin listing and decodes it into out.
// It returns the next page_info cursor, if any.
func (c *ShopifyClient) list(ctx context.Context, resource string, req commerce.PageRequest, anyStatus bool, out any) (string, error) {
	endpoint, err := c.endpoint(resource, req, anyStatus)
	if err != nil {
		return "", err
	}

	resp, body, err := c.getWithRetry(ctx, endpoint)
	if err != nil {
		return "", err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return "", fmt.Errorf("%w: %v", commerce.ErrInvalidResponse, err)
	}
	return nextPageInfo(resp.Header.Get("Link")), nil
}

// endpoint builds the listing URL. A page_info cursor only allows limit and fields.
func (c *ShopifyClient) endpoint(resource string, req commerce.PageRequest, anyStatus bool) (string, error) {
	if strings.TrimSpace(c.config.URL) == "" || strings.TrimSpace(c.config.AccessToken) == "" {
		return "", commerce.ErrMissingCredentials
	}
	base := strings.TrimRight(strings.TrimSpace(c.config.URL), "/")
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	u, err := url.Parse(base + "/admin/api/" + c.config.APIVersion + "/" + resource)
	if err != nil {
		return "", fmt.Errorf("%w: invalid store url: %v", commerce.ErrMissingCredentials, err)
	}

	q := url.Values{}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	if len(req.Fields) > 0 {
		q.Set("fields", strings.Join(req.Fields, ","))
	}
	if req.Cursor != "" {
		q.Set("page_info", req.Cursor)
	} else {
		if anyStatus {
			q.Set("status", "any")
		}
		if req.SinceID > 0 {
			q.Set("since_id", strconv.FormatInt(req.SinceID, 10))
		}
		if req.UpdatedAtMin != nil {
			q.Set("updated_at_min", req.UpdatedAtMin.UTC().Format(time.RFC3339))
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// getWithRetry retries only on 429, backing off exponentially and honouring Retry-After
func (c *ShopifyClient) getWithRetry(ctx context.Context, endpoint string) (*http.Response, []byte, error) {
	for attempt := 0; ; attempt++ {
		resp, body, err := c.get(ctx, endpoint)
		if err != nil {
			return nil, nil, err
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			if attempt >= c.config.MaxRetries {
				return nil, nil, fmt.Errorf("%w: gave up after %d retries", commerce.ErrRateLimited, attempt)
			}
			wait := c.backoff(attempt, resp.Header.Get("Retry-After"))
			c.logger.Warn("Commerce store rate limited, backing off",
				zap.Int("attempt", attempt+1),
				zap.Duration("wait", wait),
			)
			if err := sleep(ctx, wait); err != nil {
				return nil, nil, err
			}
			continue
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, nil, fmt.Errorf("%w: HTTP %d", commerce.ErrUnauthorized, resp.StatusCode)
		case resp.StatusCode >= 300:
			return nil, nil, fmt.Errorf("%w: HTTP %d: %s", commerce.ErrRequestFailed, resp.StatusCode, snippet(body))
		}
		return resp, body, nil
	}
}

func (c *ShopifyClient) get(ctx context.Context, endpoint string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("commerce: failed to create request: %w", err)
	}
	req.Header.Set(accessTokenHeader, c.config.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		return nil, nil, fmt.Errorf("%w: %v", commerce.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to read response: %v", commerce.ErrRequestFailed, err)
	}
	if len(body) > maxResponseSize {
		return nil, nil, fmt.Errorf("%w: response exceeds %d bytes", commerce.ErrInvalidResponse, maxResponseSize)
	}
	return resp, body, nil
}

// backoff returns base*2^attempt capped at MaxBackoff. A longer Retry-After wins, within the cap.
func (c *ShopifyClient) backoff(attempt int, retryAfter string) time.Duration {
	wait := c.config.BaseBackoff
	for i := 0; i < attempt && wait < c.config.MaxBackoff; i++ {
		wait *= 2
	}
	if hinted := parseRetryAfter(retryAfter); hinted > wait {
		wait = hinted
	}
	if wait > c.config.MaxBackoff {
		wait = c.config.MaxBackoff
	}
	return wait
}

// parseRetryAfter accepts delay seconds, fractional as Shopify sends them, or an HTTP date
func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs * float64(time.Second))
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

// nextPageInfo extracts the page_info of the rel="next" entry of a Link header
func nextPageInfo(link string) string {
	for _, part := range strings.Split(link, ",") {
		segments := strings.Split(part, ";")
		if len(segments) < 2 {
			continue
		}
		isNext := false
		for _, param := range segments[1:] {
			if strings.ReplaceAll(strings.TrimSpace(param), " ", "") == `rel="next"` {
				isNext = true
			}
		}
		if !isNext {
			continue
		}
		raw := strings.Trim(strings.TrimSpace(segments[0]), "<>")
		u, err := url.Parse(raw)
		if err != nil {
			return ""
		}
		return u.Query().Get("page_info")
	}
	return ""
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}

// IsRetryable reports whether err is worth retrying on a later run
func IsRetryable(err error) bool {
	return errors.Is(err, commerce.ErrRateLimited) || errors.Is(err, commerce.ErrRequestFailed)
}

var _ commerce.Store = (*ShopifyClient)(nil)
