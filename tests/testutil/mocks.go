package testutil

import (
	"context"
	"io"
	"time"

	"github.com/exportdesk/backend/internal/domain/block"
	"github.com/exportdesk/backend/internal/domain/buyer"
	"github.com/exportdesk/backend/internal/domain/catalog"
	"github.com/exportdesk/backend/internal/domain/commerce"
	"github.com/exportdesk/backend/internal/domain/notification"
	"github.com/exportdesk/backend/internal/domain/order"
	"github.com/exportdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a testify mock of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByRef(ctx context.Context, ref string) (*order.Order, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByExternalID(ctx context.Context, externalID string) (*order.Order, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) ExistsByRef(ctx context.Context, ref string) (bool, error) {
	args := m.Called(ctx, ref)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) ExistingExternalIDs(ctx context.Context, externalIDs []string) (map[string]bool, error) {
	args := m.Called(ctx, externalIDs)
	return args.Get(0).(map[string]bool), args.Error(1)
}

func (m *MockOrderRepository) CountByBlock(ctx context.Context, blockID uuid.UUID) (int64, error) {
	args := m.Called(ctx, blockID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) CountByBuyer(ctx context.Context, buyerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, buyerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) CountByPaymentStatus(ctx context.Context) (map[order.PaymentStatus]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[order.PaymentStatus]int64), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, o *order.Order, expectedVersion int) error {
	args := m.Called(ctx, o, expectedVersion)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockBlockRepository is a testify mock of block.Repository
type MockBlockRepository struct {
	mock.Mock
}

func (m *MockBlockRepository) FindByID(ctx context.Context, id uuid.UUID) (*block.Block, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*block.Block), args.Error(1)
}

func (m *MockBlockRepository) FindAll(ctx context.Context, filter shared.Filter) ([]block.Block, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]block.Block), args.Error(1)
}

func (m *MockBlockRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBlockRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockBlockRepository) Save(ctx context.Context, b *block.Block) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBlockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockBuyerRepository is a testify mock of buyer.Repository
type MockBuyerRepository struct {
	mock.Mock
}

func (m *MockBuyerRepository) FindByID(ctx context.Context, id uuid.UUID) (*buyer.Buyer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*buyer.Buyer), args.Error(1)
}

func (m *MockBuyerRepository) FindByEmail(ctx context.Context, email string) (*buyer.Buyer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*buyer.Buyer), args.Error(1)
}

func (m *MockBuyerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]buyer.Buyer, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]buyer.Buyer), args.Error(1)
}

func (m *MockBuyerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBuyerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockBuyerRepository) Save(ctx context.Context, b *buyer.Buyer) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBuyerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockEventPublisher is a testify mock of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockProductRepository is a testify mock of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByExternalID(ctx context.Context, externalID string) (*catalog.Product, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	args := m.Called(ctx, sku)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	return m.Called(ctx, p).Error(0)
}

// MockImageStorage is a testify mock of catalog.ImageStorage
type MockImageStorage struct {
	mock.Mock
}

func (m *MockImageStorage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	return m.Called(ctx, key, body, size, contentType).Error(0)
}

func (m *MockImageStorage) PresignGet(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockImageStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

// MockStringCache is a testify mock of shared.StringCache
type MockStringCache struct {
	mock.Mock
}

func (m *MockStringCache) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockStringCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockStringCache) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

// MockTemplateRepository is a testify mock of notification.TemplateRepository
type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) FindByKey(ctx context.Context, key string) (*notification.EmailTemplate, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.EmailTemplate), args.Error(1)
}

func (m *MockTemplateRepository) FindAll(ctx context.Context) ([]notification.EmailTemplate, error) {
	args := m.Called(ctx)
	return args.Get(0).([]notification.EmailTemplate), args.Error(1)
}

func (m *MockTemplateRepository) Save(ctx context.Context, t *notification.EmailTemplate) error {
	return m.Called(ctx, t).Error(0)
}

// MockEmailLogRepository is a testify mock of notification.LogRepository
type MockEmailLogRepository struct {
	mock.Mock
}

func (m *MockEmailLogRepository) Save(ctx context.Context, l *notification.EmailLog) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockEmailLogRepository) FindByOrder(ctx context.Context, orderID uuid.UUID, limit int) ([]notification.EmailLog, error) {
	args := m.Called(ctx, orderID, limit)
	return args.Get(0).([]notification.EmailLog), args.Error(1)
}

// MockMailer is a testify mock of notification.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg notification.Message) error {
	return m.Called(ctx, msg).Error(0)
}

// MockSyncRunRepository is a testify mock of commerce.SyncRunRepository
type MockSyncRunRepository struct {
	mock.Mock
}

func (m *MockSyncRunRepository) Save(ctx context.Context, run *commerce.SyncRun) error {
	return m.Called(ctx, run).Error(0)
}

func (m *MockSyncRunRepository) FindRecent(ctx context.Context, resource commerce.Resource, limit int) ([]commerce.SyncRun, error) {
	args := m.Called(ctx, resource, limit)
	return args.Get(0).([]commerce.SyncRun), args.Error(1)
}

func (m *MockSyncRunRepository) LastSuccessful(ctx context.Context, resource commerce.Resource) (*commerce.SyncRun, error) {
	args := m.Called(ctx, resource)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commerce.SyncRun), args.Error(1)
}

// MockStore is a testify mock of commerce.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Name() string {
	return "mock"
}

func (m *MockStore) FetchOrders(ctx context.Context, req commerce.PageRequest) (*commerce.Page, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commerce.Page), args.Error(1)
}

func (m *MockStore) FetchProducts(ctx context.Context, req commerce.PageRequest) (*commerce.ProductPage, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commerce.ProductPage), args.Error(1)
}

// MockLocker is a testify mock of shared.Locker
type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (shared.Lease, bool, error) {
	args := m.Called(ctx, key, ttl)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(shared.Lease), args.Bool(1), args.Error(2)
}

// MockLease is a testify mock of shared.Lease
type MockLease struct {
	mock.Mock
}

func (m *MockLease) Release(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var (
	_ order.Repository                = (*MockOrderRepository)(nil)
	_ block.Repository                = (*MockBlockRepository)(nil)
	_ buyer.Repository                = (*MockBuyerRepository)(nil)
	_ shared.EventPublisher           = (*MockEventPublisher)(nil)
	_ catalog.ProductRepository       = (*MockProductRepository)(nil)
	_ catalog.ImageStorage            = (*MockImageStorage)(nil)
	_ shared.StringCache              = (*MockStringCache)(nil)
	_ notification.TemplateRepository = (*MockTemplateRepository)(nil)
	_ notification.LogRepository      = (*MockEmailLogRepository)(nil)
	_ notification.Mailer             = (*MockMailer)(nil)
	_ commerce.SyncRunRepository      = (*MockSyncRunRepository)(nil)
	_ commerce.Store                  = (*MockStore)(nil)
	_ shared.Locker                   = (*MockLocker)(nil)
	_ shared.Lease                    = (*MockLease)(nil)
)
