package commerce

import (
	"context"
	"errors"
	"time"
)

// Errors returned by Store implementations
var (
	ErrMissingCredentials = errors.New("commerce store credentials are not configured")
	ErrRateLimited        = errors.New("commerce store rate limit exceeded")
	ErrRequestFailed      = errors.New("commerce store request failed")
	ErrInvalidResponse    = errors.New("commerce store returned an invalid response")
	ErrUnauthorized       = errors.New("commerce store rejected the credentials")
)

// PageRequest selects one page of a listing.
// Cursor takes precedence over SinceID when both are set.
type PageRequest struct {
	SinceID      int64
	Cursor       string
	UpdatedAtMin *time.Time
	Limit        int
	Fields       []string
}

// Page is one page of orders
type Page struct {
	Orders     []ExternalOrder
	NextCursor string
	LastID     int64
	HasMore    bool
}

// ProductPage is one page of products
type ProductPage struct {
	Products   []ExternalProduct
	NextCursor string
	LastID     int64
	HasMore    bool
}

// Next builds the request for the page after p
func (p *Page) Next(prev PageRequest) PageRequest {
	return nextRequest(prev, p.NextCursor, p.LastID)
}

// Next builds the request for the page after p
func (p *ProductPage) Next(prev PageRequest) PageRequest {
	return nextRequest(prev, p.NextCursor, p.LastID)
}

func nextRequest(prev PageRequest, cursor string, lastID int64) PageRequest {
	next := prev
	if cursor != "" {
		// page_info cursors carry their own filters
		next.Cursor = cursor
		next.SinceID = 0
		next.UpdatedAtMin = nil
		return next
	}
	next.Cursor = ""
	next.SinceID = lastID
	return next
}

// Store reads orders and products from the commerce platform
type Store interface {
	Name() string
	FetchOrders(ctx context.Context, req PageRequest) (*Page, error)
	FetchProducts(ctx context.Context, req PageRequest) (*ProductPage, error)
}
