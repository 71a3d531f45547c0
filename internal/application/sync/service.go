// Package sync pulls orders and products from the commerce platform
// into the local store.
package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/exportdesk/backend/internal/domain/buyer"
	"github.com/exportdesk/backend/internal/domain/catalog"
	"github.com/exportdesk/backend/internal/domain/commerce"
	"github.com/exportdesk/backend/internal/domain/order"
	"github.com/exportdesk/backend/internal/domain/shared"
	"github.com/exportdesk/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Defaults for Options fields left at zero
const (
	DefaultPageSize = 50
	DefaultMaxPages = 200
	DefaultLockTTL  = 15 * time.Minute
	DefaultCurrency = "USD"
)

// Options tune the sync loop
type Options struct {
	PageSize  int
	PageDelay time.Duration
	MaxPages  int
	LockTTL   time.Duration
	// Currency is assigned to synced products, which carry none upstream
	Currency string
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.MaxPages <= 0 {
		o.MaxPages = DefaultMaxPages
	}
	if o.LockTTL <= 0 {
		o.LockTTL = DefaultLockTTL
	}
	if o.Currency == "" {
		o.Currency = DefaultCurrency
	}
	return o
}

// SyncService runs the one-way ETL from the commerce store
type SyncService struct {
	store           commerce.Store
	orderRepo       order.Repository
	buyerRepo       buyer.Repository
	productRepo     catalog.ProductRepository
	runRepo         commerce.SyncRunRepository
	locker          shared.Locker
	opts            Options
	flight          singleflight.Group
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewSyncService creates a new SyncService
func NewSyncService(
	store commerce.Store,
	orderRepo order.Repository,
	buyerRepo buyer.Repository,
	productRepo catalog.ProductRepository,
	runRepo commerce.SyncRunRepository,
	locker shared.Locker,
	opts Options,
) *SyncService {
	return &SyncService{
		store:       store,
		orderRepo:   orderRepo,
		buyerRepo:   buyerRepo,
		productRepo: productRepo,
		runRepo:     runRepo,
		locker:      locker,
		opts:        opts.withDefaults(),
		logger:      zap.NewNop(),
	}
}

// SetBusinessMetrics sets the business metrics recorder
func (s *SyncService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetLogger sets the logger
func (s *SyncService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Run executes one sync and persists its summary.
//
// Concurrent calls for the same resource in this process share one run.
// Cancelling ctx stops this caller waiting; the shared run continues for
// the other callers until it finishes or the lock TTL elapses.
// A run already holding the cross-process lock yields shared.ErrConflict.
// When paging fails before any row was fetched the summary is still
// returned, together with the fetch error.
func (s *SyncService) Run(ctx context.Context, req SyncRequest) (*commerce.SyncSummary, error) {
	if req.Resource == "" {
		req.Resource = commerce.ResourceOrders
	}
	if !req.Resource.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown sync resource %q", req.Resource))
	}
	if req.Trigger == "" {
		req.Trigger = commerce.TriggerAPI
	}

	ch := s.flight.DoChan(string(req.Resource), func() (interface{}, error) {
		// detached from the caller that started it, bounded by the lock TTL
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.LockTTL)
		defer cancel()
		return s.runLocked(runCtx, req)
	})
	select {
	case res := <-ch:
		if res.Shared {
			s.logger.Debug("Shared in-flight sync", zap.String("resource", string(req.Resource)))
		}
		summary, _ := res.Val.(*commerce.SyncSummary)
		return summary, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ListRuns returns recent sync runs, newest first
func (s *SyncService) ListRuns(ctx context.Context, filter RunListFilter) ([]SyncRunResponse, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	runs, err := s.runRepo.FindRecent(ctx, filter.Resource, filter.Limit)
	if err != nil {
		return nil, err
	}
	out := make([]SyncRunResponse, len(runs))
	for i := range runs {
		out[i] = ToSyncRunResponse(&runs[i])
	}
	return out, nil
}

func (s *SyncService) runLocked(ctx context.Context, req SyncRequest) (*commerce.SyncSummary, error) {
	lease, ok, err := s.locker.TryLock(ctx, "sync:"+string(req.Resource), s.opts.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire sync lock: %w", err)
	}
	if !ok {
		return nil, shared.NewDomainError("CONFLICT", "A sync for "+string(req.Resource)+" is already running")
	}
	defer func() {
		// the lease must be released even when ctx was cancelled mid-run
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("Failed to release sync lock", zap.Error(err))
		}
	}()

	since, err := s.resolveSince(ctx, req)
	if err != nil {
		return nil, err
	}

	summary := commerce.NewSyncSummary(req.Resource)
	var fetchErr error
	telemetry.WithProfilingLabels(ctx, telemetry.SyncLabels(string(req.Resource), string(req.Trigger)), func(ctx context.Context) {
		if req.Resource == commerce.ResourceProducts {
			fetchErr = s.syncProducts(ctx, since, summary)
			return
		}
		fetchErr = s.syncOrders(ctx, since, summary)
	})
	summary.Finish(fetchErr)

	run := commerce.NewSyncRun(req.Trigger, *summary)
	if err := s.runRepo.Save(context.WithoutCancel(ctx), run); err != nil {
		s.logger.Error("Failed to persist sync run", zap.Error(err))
	}
	if s.businessMetrics != nil {
		s.businessMetrics.RecordSync(ctx, req.Trigger, summary)
	}

	s.logger.Info("Store sync finished",
		zap.String("store", s.store.Name()),
		zap.String("resource", string(summary.Resource)),
		zap.String("trigger", string(req.Trigger)),
		zap.String("status", string(summary.Status)),
		zap.Int("pages", summary.Pages),
		zap.Int("fetched", summary.Fetched),
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errors", summary.Errors),
		zap.Int64("duration_ms", summary.DurationMs),
	)

	if summary.Status == commerce.RunStatusFailed {
		return summary, fetchErr
	}
	return summary, nil
}

// resolveSince picks the incremental starting point: the request's own
// value, else the start of the last successful run unless a full pull
// was asked for.
func (s *SyncService) resolveSince(ctx context.Context, req SyncRequest) (*time.Time, error) {
	if req.Since != nil {
		return req.Since, nil
	}
	if req.Full {
		return nil, nil
	}
	last, err := s.runRepo.LastSuccessful(ctx, req.Resource)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load last sync run: %w", err)
	}
	since := last.Summary.StartedAt
	return &since, nil
}

func (s *SyncService) syncOrders(ctx context.Context, since *time.Time, summary *commerce.SyncSummary) error {
	req := commerce.PageRequest{Limit: s.opts.PageSize, UpdatedAtMin: since}
	seen := make(map[string]bool)
	buyers := make(map[string]*buyerLink)
	pacer := newPacer(s.opts.PageDelay)

	for {
		if err := pacer.Wait(ctx); err != nil {
			return err
		}
		page, err := s.store.FetchOrders(ctx, req)
		if err != nil {
			return err
		}
		summary.Pages++
		summary.Fetched += len(page.Orders)

		ids := make([]string, 0, len(page.Orders))
		for _, ext := range page.Orders {
			if ext.ID > 0 {
				ids = append(ids, fmt.Sprint(ext.ID))
			}
		}
		existing, err := s.orderRepo.ExistingExternalIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("look up existing orders: %w", err)
		}

		for _, ext := range page.Orders {
			if err := s.syncOrder(ctx, ext, existing, seen, buyers, summary); err != nil {
				summary.RecordError(externalRef(&ext), err)
			}
		}

		if !page.HasMore || summary.Pages >= s.opts.MaxPages {
			return nil
		}
		req = page.Next(req)
	}
}

func (s *SyncService) syncOrder(
	ctx context.Context,
	ext commerce.ExternalOrder,
	existing map[string]bool,
	seen map[string]bool,
	buyers map[string]*buyerLink,
	summary *commerce.SyncSummary,
) error {
	m, err := mapExternalOrder(ext)
	if err != nil {
		return err
	}
	if seen[m.ExternalID] {
		summary.Skipped++
		return nil
	}
	seen[m.ExternalID] = true

	if !existing[m.ExternalID] {
		o, err := order.NewSyncedOrder(m.ExternalID, m.Snapshot.OrderRef, m.Snapshot.OrderDate, m.Snapshot.TotalAmount, m.Snapshot.Currency)
		if err != nil {
			return err
		}
		if err := o.ApplySync(m.Snapshot); err != nil {
			return err
		}
		o.SetNotes(m.Note)
		s.linkBuyer(ctx, o, buyers)
		if err := s.orderRepo.Save(ctx, o); err != nil {
			return err
		}
		summary.Created++
		return nil
	}

	o, err := s.orderRepo.FindByExternalID(ctx, m.ExternalID)
	if err != nil {
		return err
	}
	loaded := o.Version
	if !o.NeedsSync(m.Snapshot.ExternalUpdatedAt) {
		summary.Skipped++
		return nil
	}
	if err := o.ApplySync(m.Snapshot); err != nil {
		return err
	}
	if o.BuyerID == nil {
		s.linkBuyer(ctx, o, buyers)
	}
	if err := s.orderRepo.SaveWithLock(ctx, o, loaded); err != nil {
		return err
	}
	summary.Updated++
	return nil
}

// buyerLink memoizes the buyer resolved for an email within one run
type buyerLink struct {
	b   *buyer.Buyer
	err error
}

// linkBuyer attaches the buyer with the order's email, creating it when
// missing. Failures leave the order unlinked; they never fail the row.
func (s *SyncService) linkBuyer(ctx context.Context, o *order.Order, cache map[string]*buyerLink) {
	email := strings.ToLower(strings.TrimSpace(o.Buyer.Email))
	if email == "" {
		return
	}
	link, ok := cache[email]
	if !ok {
		link = &buyerLink{}
		link.b, link.err = s.findOrCreateBuyer(ctx, email, o)
		cache[email] = link
	}
	if link.err != nil {
		s.logger.Warn("Could not link buyer to synced order",
			zap.String("order_ref", o.OrderRef),
			zap.Error(link.err),
		)
		return
	}
	if err := o.AssignBuyer(link.b.ID); err != nil {
		s.logger.Warn("Could not link buyer to synced order", zap.String("order_ref", o.OrderRef), zap.Error(err))
	}
}

func (s *SyncService) findOrCreateBuyer(ctx context.Context, email string, o *order.Order) (*buyer.Buyer, error) {
	b, err := s.buyerRepo.FindByEmail(ctx, email)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	name := o.Buyer.Name
	if name == "" {
		name = email
	}
	b, err = buyer.NewBuyer(buyer.Details{
		Name:    name,
		Email:   email,
		Phone:   o.Buyer.Phone,
		Company: o.Buyer.Company,
		Address: o.ShippingAddress,
	})
	if err != nil {
		return nil, err
	}
	if err := s.buyerRepo.Save(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *SyncService) syncProducts(ctx context.Context, since *time.Time, summary *commerce.SyncSummary) error {
	req := commerce.PageRequest{Limit: s.opts.PageSize, UpdatedAtMin: since}
	seen := make(map[string]bool)
	pacer := newPacer(s.opts.PageDelay)

	for {
		if err := pacer.Wait(ctx); err != nil {
			return err
		}
		page, err := s.store.FetchProducts(ctx, req)
		if err != nil {
			return err
		}
		summary.Pages++

		for _, ext := range page.Products {
			variants, err := mapExternalProduct(ext, s.opts.Currency)
			if err != nil {
				summary.Fetched++
				summary.RecordError(ext.Title, err)
				continue
			}
			for _, m := range variants {
				summary.Fetched++
				if seen[m.ExternalID] {
					summary.Skipped++
					continue
				}
				seen[m.ExternalID] = true
				if err := s.syncProduct(ctx, m, summary); err != nil {
					summary.RecordError(m.Details.SKU, err)
				}
			}
		}

		if !page.HasMore || summary.Pages >= s.opts.MaxPages {
			return nil
		}
		req = page.Next(req)
	}
}

// syncProduct matches on external id, then on SKU
func (s *SyncService) syncProduct(ctx context.Context, m mappedProduct, summary *commerce.SyncSummary) error {
	p, err := s.productRepo.FindByExternalID(ctx, m.ExternalID)
	if errors.Is(err, shared.ErrNotFound) {
		p, err = s.productRepo.FindBySKU(ctx, strings.ToUpper(m.Details.SKU))
	}
	switch {
	case errors.Is(err, shared.ErrNotFound):
		p, err = catalog.NewProduct(m.Details)
		if err != nil {
			return err
		}
		p.LinkExternal(m.ExternalID)
		if err := s.productRepo.Save(ctx, p); err != nil {
			return err
		}
		summary.Created++
		return nil
	case err != nil:
		return err
	}

	linked := p.ExternalID != nil && *p.ExternalID == m.ExternalID
	if linked && sameDetails(p, m.Details) {
		summary.Skipped++
		return nil
	}
	if err := p.Replace(m.Details); err != nil {
		return err
	}
	p.LinkExternal(m.ExternalID)
	if err := s.productRepo.Save(ctx, p); err != nil {
		return err
	}
	summary.Updated++
	return nil
}

func sameDetails(p *catalog.Product, d catalog.Details) bool {
	return p.SKU == strings.ToUpper(strings.TrimSpace(d.SKU)) &&
		p.Name == strings.TrimSpace(d.Name) &&
		p.Description == d.Description &&
		p.Price.Equal(d.Price.Round(2)) &&
		p.Active == d.Active
}

// newPacer lets one page request through per delay. The first is immediate.
func newPacer(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}
