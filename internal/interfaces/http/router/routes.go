package router

import (
	"github.com/exportdesk/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers bundles everything served by the API
type Handlers struct {
	Order         *handler.OrderHandler
	Block         *handler.BlockHandler
	Buyer         *handler.BuyerHandler
	Product       *handler.ProductHandler
	Sync          *handler.SyncHandler
	Setup         *handler.SetupHandler
	EmailTemplate *handler.EmailTemplateHandler
	System        *handler.SystemHandler
}

// APIGroups builds one DomainGroup per resource
func APIGroups(h Handlers) []RouteRegistrar {
	orders := NewDomainGroup("orders", "/orders").
		GET("", h.Order.List).
		POST("", h.Order.Create).
		GET("/payment-summary", h.Order.PaymentSummary).
		GET("/:id", h.Order.Get).
		PATCH("/:id", h.Order.Update).
		DELETE("/:id", h.Order.Delete).
		POST("/:id/payments", h.Order.RecordPayment).
		POST("/:id/emails", h.Order.SendEmail).
		GET("/:id/emails", h.Order.ListEmails)

	blocks := NewDomainGroup("blocks", "/blocks").
		GET("", h.Block.List).
		POST("", h.Block.Create).
		GET("/:id", h.Block.Get).
		PATCH("/:id", h.Block.Update).
		DELETE("/:id", h.Block.Delete)

	buyers := NewDomainGroup("buyers", "/buyers").
		GET("", h.Buyer.List).
		POST("", h.Buyer.Create).
		GET("/:id", h.Buyer.Get).
		PATCH("/:id", h.Buyer.Update).
		DELETE("/:id", h.Buyer.Delete)

	products := NewDomainGroup("products", "/products").
		GET("", h.Product.List).
		POST("", h.Product.Create).
		GET("/:id", h.Product.Get).
		PUT("/:id", h.Product.Replace).
		PUT("/:id/image", h.Product.UploadImage)

	sync := NewDomainGroup("sync", "/sync").
		POST("", h.Sync.Run).
		GET("/runs", h.Sync.ListRuns)

	setup := NewDomainGroup("setup", "/db-setup").
		POST("", h.Setup.Run)

	templates := NewDomainGroup("email-templates", "/email-templates").
		GET("", h.EmailTemplate.List).
		GET("/:key", h.EmailTemplate.Get).
		PUT("/:key", h.EmailTemplate.Upsert)

	system := NewDomainGroup("system", "/system").
		GET("/info", h.System.GetSystemInfo)

	return []RouteRegistrar{orders, blocks, buyers, products, sync, setup, templates, system}
}

// Setup mounts /health on the engine and every resource under the API
// base path. apiMiddleware runs for API routes only.
func Setup(engine *gin.Engine, h Handlers, apiMiddleware ...gin.HandlerFunc) *gin.RouterGroup {
	engine.GET("/health", h.System.Health)
	return NewRouter(engine, WithMiddleware(apiMiddleware...)).
		Register(APIGroups(h)...).
		Setup()
}
