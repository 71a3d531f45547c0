package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	blockapp "github.com/exportdesk/backend/internal/application/block"
	buyerapp "github.com/exportdesk/backend/internal/application/buyer"
	catalogapp "github.com/exportdesk/backend/internal/application/catalog"
	notificationapp "github.com/exportdesk/backend/internal/application/notification"
	orderapp "github.com/exportdesk/backend/internal/application/order"
	"github.com/exportdesk/backend/internal/application/setup"
	syncapp "github.com/exportdesk/backend/internal/application/sync"
	"github.com/exportdesk/backend/internal/domain/commerce"
	"github.com/exportdesk/backend/internal/infrastructure/cache"
	commerceinfra "github.com/exportdesk/backend/internal/infrastructure/commerce"
	"github.com/exportdesk/backend/internal/infrastructure/config"
	"github.com/exportdesk/backend/internal/infrastructure/mail"
	"github.com/exportdesk/backend/internal/infrastructure/persistence"
	"github.com/exportdesk/backend/internal/infrastructure/persistence/models"
	"github.com/exportdesk/backend/internal/infrastructure/storage"
	"github.com/exportdesk/backend/internal/interfaces/http/dto"
	"github.com/exportdesk/backend/internal/interfaces/http/handler"
	"github.com/exportdesk/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeStore serves a fixed set of orders in a single page
type fakeStore struct {
	orders []commerce.ExternalOrder
}

func (s *fakeStore) Name() string { return "fake" }

func (s *fakeStore) FetchOrders(context.Context, commerce.PageRequest) (*commerce.Page, error) {
	return &commerce.Page{Orders: s.orders}, nil
}

func (s *fakeStore) FetchProducts(context.Context, commerce.PageRequest) (*commerce.ProductPage, error) {
	return &commerce.ProductPage{}, nil
}

type testAPI struct {
	engine *gin.Engine
	db     *gorm.DB
}

func newTestAPI(t *testing.T, store commerce.Store) *testAPI {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	orderRepo := persistence.NewGormOrderRepository(db)
	blockRepo := persistence.NewGormBlockRepository(db)
	buyerRepo := persistence.NewGormBuyerRepository(db)
	productRepo := persistence.NewGormProductRepository(db)
	runRepo := persistence.NewGormSyncRunRepository(db)
	kv := cache.NewInMemoryStore()
	t.Cleanup(func() { _ = kv.Close() })

	notificationService := notificationapp.NewNotificationService(orderRepo, blockRepo,
		persistence.NewGormEmailTemplateRepository(db), persistence.NewGormEmailLogRepository(db),
		mail.NewLogMailer(zap.NewNop()))

	h := Handlers{
		Order:         handler.NewOrderHandler(orderapp.NewOrderService(orderRepo, blockRepo, buyerRepo), notificationService),
		Block:         handler.NewBlockHandler(blockapp.NewBlockService(blockRepo, orderRepo)),
		Buyer:         handler.NewBuyerHandler(buyerapp.NewBuyerService(buyerRepo, orderRepo)),
		Product:       handler.NewProductHandler(catalogapp.NewProductService(productRepo, storage.NewMemoryImageStorage(), kv)),
		Sync:          handler.NewSyncHandler(syncapp.NewSyncService(store, orderRepo, buyerRepo, productRepo, runRepo, kv, syncapp.Options{})),
		Setup:         handler.NewSetupHandler(setup.NewService(persistence.NewSchemaManager(db), persistence.DefaultSchemaSteps())),
		EmailTemplate: handler.NewEmailTemplateHandler(notificationService),
		System:        handler.NewSystemHandler("exportdesk", "test", nil),
	}

	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(middleware.RequestID())
	Setup(engine, h)
	return &testAPI{engine: engine, db: db}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var resp dto.Response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

// field reads a top-level key of the data object
func field(t *testing.T, resp dto.Response, key string) any {
	t.Helper()
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data is %T", resp.Data)
	return data[key]
}

func (a *testAPI) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, a.db.Model(model).Count(&n).Error)
	return n
}

func TestAPI_CreateOrderIsRetrievable(t *testing.T) {
	api := newTestAPI(t, &fakeStore{})

	w, resp := api.do(t, http.MethodPost, "/api/orders", map[string]any{
		"order_ref":    "EX-1001",
		"currency":     "USD",
		"total_amount": "1200.00",
		"buyer":        map[string]any{"name": "Acme Imports", "email": "buyer@acme.example"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := field(t, resp, "id").(string)
	assert.Equal(t, "manual", field(t, resp, "source"))
	assert.Equal(t, int64(1), api.count(t, &models.OrderModel{}))

	w, resp = api.do(t, http.MethodGet, "/api/orders/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "EX-1001", field(t, resp, "order_ref"))

	w, resp = api.do(t, http.MethodGet, "/api/orders?page=1&pageSize=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
}

func TestAPI_FullPaymentMarksOrderFullyPaid(t *testing.T) {
	api := newTestAPI(t, &fakeStore{})

	_, resp := api.do(t, http.MethodPost, "/api/orders", map[string]any{
		"order_ref":    "EX-2001",
		"total_amount": "1000",
	})
	id := field(t, resp, "id").(string)

	w, _ := api.do(t, http.MethodPost, "/api/orders/"+id+"/payments", map[string]any{"amount": "250"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	_, resp = api.do(t, http.MethodGet, "/api/orders/"+id, nil)
	assert.Equal(t, "deposit_paid", field(t, resp, "payment_status"))

	w, _ = api.do(t, http.MethodPost, "/api/orders/"+id+"/payments", map[string]any{"amount": "750"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	_, resp = api.do(t, http.MethodGet, "/api/orders/"+id, nil)
	assert.Equal(t, "fully_paid", field(t, resp, "payment_status"))

	w, resp = api.do(t, http.MethodPost, "/api/orders/"+id+"/payments", map[string]any{"amount": "1"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "OVERPAYMENT", resp.Error.Code)
}

func TestAPI_DeleteWithLinkedOrdersIsRejected(t *testing.T) {
	api := newTestAPI(t, &fakeStore{})

	_, blk := api.do(t, http.MethodPost, "/api/blocks", map[string]any{
		"name":              "November container",
		"target_ship_month": "2026-11",
	})
	blockID := field(t, blk, "id").(string)
	_, byr := api.do(t, http.MethodPost, "/api/buyers", map[string]any{"name": "Nordic Trade AB"})
	buyerID := field(t, byr, "id").(string)

	w, _ := api.do(t, http.MethodPost, "/api/orders", map[string]any{
		"order_ref":    "EX-3001",
		"total_amount": "500",
		"block_id":     blockID,
		"buyer_id":     buyerID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	for _, path := range []string{"/api/blocks/" + blockID, "/api/buyers/" + buyerID} {
		w, resp := api.do(t, http.MethodDelete, path, nil)
		assert.Equal(t, http.StatusConflict, w.Code, path)
		assert.Equal(t, "HAS_LINKED_ORDERS", resp.Error.Code, path)
	}
	assert.Equal(t, int64(1), api.count(t, &models.BlockModel{}))
	assert.Equal(t, int64(1), api.count(t, &models.BuyerModel{}))

	w, _ = api.do(t, http.MethodGet, "/api/blocks/"+blockID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_SyncTwiceCreatesNoDuplicates(t *testing.T) {
	created := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	store := &fakeStore{orders: []commerce.ExternalOrder{
		{ID: 501, Name: "#1001", Email: "a@buyer.example", Currency: "USD", TotalPrice: "300.00", CreatedAt: created},
		{ID: 502, Name: "#1002", Email: "b@buyer.example", Currency: "USD", TotalPrice: "80.00", CreatedAt: created},
	}}
	api := newTestAPI(t, store)

	w, resp := api.do(t, http.MethodPost, "/api/sync", map[string]any{"resource": "orders", "full": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 2, field(t, resp, "created"))

	w, resp = api.do(t, http.MethodPost, "/api/sync", map[string]any{"resource": "orders", "full": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 0, field(t, resp, "created"))
	assert.Equal(t, int64(2), api.count(t, &models.OrderModel{}))

	w, resp = api.do(t, http.MethodGet, "/api/sync/runs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp.Data, 2)
}

func TestAPI_SyncWithoutCredentials(t *testing.T) {
	api := newTestAPI(t, commerceinfra.NewShopifyClient(config.StoreConfig{}))

	w, resp := api.do(t, http.MethodPost, "/api/sync", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, dto.ErrCodeUnavailable, resp.Error.Code)
}

func TestAPI_DBSetupIsIdempotent(t *testing.T) {
	api := newTestAPI(t, &fakeStore{})

	for i := range 2 {
		w, resp := api.do(t, http.MethodPost, "/api/db-setup", nil)
		require.Equal(t, http.StatusOK, w.Code, "run %d: %s", i+1, w.Body.String())
		assert.EqualValues(t, 0, field(t, resp, "failed"))
		assert.EqualValues(t, 0, field(t, resp, "applied"), "tables exist already")
	}
}

func TestAPI_EmailTemplateUpsert(t *testing.T) {
	api := newTestAPI(t, &fakeStore{})
	body := map[string]any{"subject": "Order {{order_ref}}", "body": "Hello {{buyer_name}}"}

	w, _ := api.do(t, http.MethodPut, "/api/email-templates/deposit_reminder", body)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body["subject"] = "Deposit due for {{order_ref}}"
	w, resp := api.do(t, http.MethodPut, "/api/email-templates/deposit_reminder", body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Deposit due for {{order_ref}}", field(t, resp, "subject"))

	w, resp = api.do(t, http.MethodPut, "/api/email-templates/Bad-Key", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_TEMPLATE_KEY", resp.Error.Code)
}

func TestAPI_ProductImageUpload(t *testing.T) {
	api := newTestAPI(t, &fakeStore{})
	_, resp := api.do(t, http.MethodPost, "/api/products", map[string]any{
		"sku":   "TEA-01",
		"name":  "Oolong 250g",
		"price": "12.50",
	})
	id := field(t, resp, "id").(string)

	upload := func(contentType string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", `form-data; name="image"; filename="tea.png"`)
		hdr.Set("Content-Type", contentType)
		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, _ = part.Write([]byte("\x89PNG fake image bytes"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/products/%s/image", id), &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		api.engine.ServeHTTP(w, req)
		return w
	}

	w := upload("image/png")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var ok dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ok))
	assert.NotEmpty(t, field(t, ok, "image_key"))

	w = upload("application/pdf")
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestAPI_HealthAndNotFound(t *testing.T) {
	api := newTestAPI(t, &fakeStore{})

	w, _ := api.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp := api.do(t, http.MethodGet, "/api/orders/00000000-0000-0000-0000-000000000001", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)

	w, resp = api.do(t, http.MethodGet, "/api/orders/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
}
