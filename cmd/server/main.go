package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	blockapp "github.com/exportdesk/backend/internal/application/block"
	buyerapp "github.com/exportdesk/backend/internal/application/buyer"
	catalogapp "github.com/exportdesk/backend/internal/application/catalog"
	notificationapp "github.com/exportdesk/backend/internal/application/notification"
	orderapp "github.com/exportdesk/backend/internal/application/order"
	"github.com/exportdesk/backend/internal/application/setup"
	syncapp "github.com/exportdesk/backend/internal/application/sync"
	"github.com/exportdesk/backend/internal/domain/catalog"
	"github.com/exportdesk/backend/internal/domain/commerce"
	"github.com/exportdesk/backend/internal/infrastructure/auth"
	"github.com/exportdesk/backend/internal/infrastructure/cache"
	commerceinfra "github.com/exportdesk/backend/internal/infrastructure/commerce"
	"github.com/exportdesk/backend/internal/infrastructure/config"
	"github.com/exportdesk/backend/internal/infrastructure/event"
	"github.com/exportdesk/backend/internal/infrastructure/logger"
	"github.com/exportdesk/backend/internal/infrastructure/mail"
	"github.com/exportdesk/backend/internal/infrastructure/persistence"
	"github.com/exportdesk/backend/internal/infrastructure/scheduler"
	"github.com/exportdesk/backend/internal/infrastructure/storage"
	"github.com/exportdesk/backend/internal/infrastructure/telemetry"
	"github.com/exportdesk/backend/internal/interfaces/http/handler"
	"github.com/exportdesk/backend/internal/interfaces/http/middleware"
	"github.com/exportdesk/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/exportdesk/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Export Desk API
//	@version		1.0
//	@description	Order, payment and shipping dashboard for an export business fed by the commerce store.

//	@contact.name	Export Desk
//	@contact.url	https://github.com/exportdesk/backend

//	@host		localhost:8080
//	@BasePath	/api

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token issued by the hosted auth provider. Format: "Bearer {token}"

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// uploadHeadroom is added to the image limit for multipart framing
const uploadHeadroom = 1 << 20

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	tel, err := telemetry.Setup(ctx, cfg.Telemetry, version, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	if tel.Logs.IsEnabled() {
		// tee to the OTLP log bridge from here on
		log, err = logger.New(logCfg, tel.Logs.Core(cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level)))
		if err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	zap.ReplaceGlobals(log)
	defer func() {
		_ = log.Sync()
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	log.Info("Starting Export Desk",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Database.SlowQuery)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracing(cfg.Telemetry), log); err != nil {
		log.Warn("Database tracing disabled", zap.Error(err))
	}
	log.Info("Database connected successfully")

	backend, err := cache.NewBackend(ctx, cfg.Redis, cache.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize cache backend", zap.Error(err))
	}
	defer func() {
		_ = backend.Close()
	}()
	if !backend.Shared {
		log.Warn("Sync lock is process-local; run a single replica or enable Redis")
	}

	imageStorage := newImageStorage(ctx, cfg, log)

	// Repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	blockRepo := persistence.NewGormBlockRepository(db.DB)
	buyerRepo := persistence.NewGormBuyerRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	syncRunRepo := persistence.NewGormSyncRunRepository(db.DB)
	templateRepo := persistence.NewGormEmailTemplateRepository(db.DB)
	emailLogRepo := persistence.NewGormEmailLogRepository(db.DB)

	// Application services
	orderService := orderapp.NewOrderService(orderRepo, blockRepo, buyerRepo)
	orderService.SetLogger(log)
	orderService.SetBusinessMetrics(tel.Metrics)

	blockService := blockapp.NewBlockService(blockRepo, orderRepo)
	buyerService := buyerapp.NewBuyerService(buyerRepo, orderRepo)

	productService := catalogapp.NewProductService(productRepo, imageStorage, backend.Cache)
	productService.SetMaxImageSize(cfg.Storage.MaxImageSize)
	productService.SetLogger(log)

	notificationService := notificationapp.NewNotificationService(
		orderRepo, blockRepo, templateRepo, emailLogRepo, mail.New(cfg.SMTP, log),
	)
	notificationService.SetLogger(log)
	notificationService.SetBusinessMetrics(tel.Metrics)

	store := commerceinfra.NewShopifyClient(cfg.Store, commerceinfra.WithLogger(log))
	if !cfg.Store.IsConfigured() {
		log.Warn("Commerce store credentials are not configured; sync will answer 503")
	}
	syncService := syncapp.NewSyncService(store, orderRepo, buyerRepo, productRepo, syncRunRepo, backend.Locker, syncapp.Options{
		PageSize:  cfg.Sync.PageSize,
		PageDelay: cfg.Sync.PageDelay,
		MaxPages:  cfg.Sync.MaxPages,
		LockTTL:   cfg.Sync.LockTTL,
	})
	syncService.SetLogger(log)
	syncService.SetBusinessMetrics(tel.Metrics)

	seeds, err := notificationapp.LoadTemplateSeedFile(cfg.SMTP.TemplatesFile)
	if err != nil {
		log.Warn("Email template seeds not loaded", zap.String("file", cfg.SMTP.TemplatesFile), zap.Error(err))
	}
	setupService := setup.NewService(persistence.NewSchemaManager(db.DB), persistence.DefaultSchemaSteps())
	setupService.SetLogger(log)
	if len(seeds) > 0 {
		setupService.SetTemplateSeeds(notificationService, seeds)
		if inserted, err := notificationService.SeedTemplates(ctx, seeds); err != nil {
			log.Warn("Failed to seed email templates", zap.Error(err))
		} else if len(inserted) > 0 {
			log.Info("Seeded email templates", zap.Strings("keys", inserted))
		}
	}

	// Events
	eventBus := event.NewInMemoryEventBus(log)
	if cfg.Sync.AutoNotify {
		paymentHandler := notificationapp.NewPaymentReceivedHandler(notificationService, log)
		eventBus.Subscribe(paymentHandler)
		log.Info("Event handlers registered", zap.Strings("payment_received_events", paymentHandler.EventTypes()))
	}
	orderService.SetEventPublisher(eventBus)

	// Scheduled sync
	if cfg.Scheduler.Enabled {
		executor := scheduler.ExecutorFunc(func(ctx context.Context, job *scheduler.SyncJob) (*commerce.SyncSummary, error) {
			return syncService.Run(ctx, syncapp.SyncRequest{Resource: job.Resource, Trigger: job.Trigger})
		})
		syncScheduler, err := scheduler.NewSyncScheduler(scheduler.ConfigFrom(cfg.Scheduler), executor, log,
			scheduler.WithRetryPolicy(func(err error) bool {
				return !errors.Is(err, commerce.ErrMissingCredentials) && !errors.Is(err, commerce.ErrUnauthorized)
			}),
		)
		if err != nil {
			log.Fatal("Failed to create sync scheduler", zap.Error(err))
		}
		if err := syncScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start sync scheduler", zap.Error(err))
		}
		defer func() {
			if err := syncScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping sync scheduler", zap.Error(err))
			}
		}()
		log.Info("Sync scheduler started",
			zap.Duration("interval", cfg.Scheduler.SyncInterval),
			zap.Int("max_concurrent_jobs", cfg.Scheduler.MaxConcurrentJobs),
		)
	}

	handlers := router.Handlers{
		Order:         handler.NewOrderHandler(orderService, notificationService),
		Block:         handler.NewBlockHandler(blockService),
		Buyer:         handler.NewBuyerHandler(buyerService),
		Product:       handler.NewProductHandler(productService),
		Sync:          handler.NewSyncHandler(syncService),
		Setup:         handler.NewSetupHandler(setupService),
		EmailTemplate: handler.NewEmailTemplateHandler(notificationService),
		System:        handler.NewSystemHandler(cfg.App.Name, version, db),
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order matters: the request id must exist before logging, tracing and
	// every error envelope.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, tel.Tracer.IsEnabled()))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.HTTPMetrics(tel.Meter))
	engine.Use(middleware.Profiling(tel.Profiler.IsEnabled()))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFrom(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize, cfg.Storage.MaxImageSize+uploadHeadroom))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer rateLimiter.Stop()
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	var apiMiddleware []gin.HandlerFunc
	var authMiddleware gin.HandlerFunc
	if cfg.Auth.Enabled {
		verifier, err := auth.NewVerifier(cfg.Auth)
		if err != nil {
			log.Fatal("Failed to initialize token verifier", zap.Error(err))
		}
		jwtConfig := middleware.DefaultJWTConfig(verifier)
		jwtConfig.Logger = log
		authMiddleware = middleware.JWTAuthMiddleware(jwtConfig)
		apiMiddleware = append(apiMiddleware, authMiddleware)
	} else {
		log.Warn("Bearer authentication is disabled")
	}
	apiMiddleware = append(apiMiddleware, middleware.SpanEnricher())

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger.Enabled, authMiddleware),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)
	router.Setup(engine, handlers, apiMiddleware...)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	log.Info("Server exited gracefully")
}

// newImageStorage returns S3 storage when configured. Outside production an
// in-memory store keeps uploads working; in production uploads answer 503.
func newImageStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) catalog.ImageStorage {
	if cfg.Storage.Enabled {
		s3, err := storage.NewS3ImageStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			log.Warn("Object storage bucket check failed", zap.String("bucket", s3.Bucket()), zap.Error(err))
		}
		return s3
	}
	if cfg.App.IsProduction() {
		log.Warn("Object storage is not configured; image uploads are disabled")
		return nil
	}
	log.Info("Using in-memory image storage")
	return storage.NewMemoryImageStorage()
}
