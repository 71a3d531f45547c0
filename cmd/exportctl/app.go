package main

import (
	"context"
	"fmt"

	notificationapp "github.com/exportdesk/backend/internal/application/notification"
	"github.com/exportdesk/backend/internal/application/setup"
	syncapp "github.com/exportdesk/backend/internal/application/sync"
	"github.com/exportdesk/backend/internal/infrastructure/cache"
	commerceinfra "github.com/exportdesk/backend/internal/infrastructure/commerce"
	"github.com/exportdesk/backend/internal/infrastructure/config"
	"github.com/exportdesk/backend/internal/infrastructure/logger"
	"github.com/exportdesk/backend/internal/infrastructure/mail"
	"github.com/exportdesk/backend/internal/infrastructure/persistence"
)

// app holds the services a command needs, built from the server config
type app struct {
	cfg           *config.Config
	db            *persistence.Database
	backend       *cache.Backend
	sync          *syncapp.SyncService
	setup         *setup.Service
	notifications *notificationapp.NotificationService
}

func openApp(ctx context.Context, cfg *config.Config) (*app, error) {
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Database.SlowQuery)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		return nil, err
	}
	backend, err := cache.NewBackend(ctx, cfg.Redis, cache.WithLogger(log))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache backend: %w", err)
	}

	orderRepo := persistence.NewGormOrderRepository(db.DB)
	blockRepo := persistence.NewGormBlockRepository(db.DB)
	buyerRepo := persistence.NewGormBuyerRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)

	store := commerceinfra.NewShopifyClient(cfg.Store, commerceinfra.WithLogger(log))
	syncService := syncapp.NewSyncService(store, orderRepo, buyerRepo, productRepo,
		persistence.NewGormSyncRunRepository(db.DB), backend.Locker, syncapp.Options{
			PageSize:  cfg.Sync.PageSize,
			PageDelay: cfg.Sync.PageDelay,
			MaxPages:  cfg.Sync.MaxPages,
			LockTTL:   cfg.Sync.LockTTL,
		})
	syncService.SetLogger(log)

	notificationService := notificationapp.NewNotificationService(orderRepo, blockRepo,
		persistence.NewGormEmailTemplateRepository(db.DB), persistence.NewGormEmailLogRepository(db.DB),
		mail.New(cfg.SMTP, log))
	notificationService.SetLogger(log)

	setupService := setup.NewService(persistence.NewSchemaManager(db.DB), persistence.DefaultSchemaSteps())
	setupService.SetLogger(log)

	return &app{
		cfg:           cfg,
		db:            db,
		backend:       backend,
		sync:          syncService,
		setup:         setupService,
		notifications: notificationService,
	}, nil
}

func (a *app) Close() {
	_ = a.backend.Close()
	_ = a.db.Close()
}

// withApp loads config, opens the app and closes it after fn
func withApp(ctx context.Context, fn func(*app) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
