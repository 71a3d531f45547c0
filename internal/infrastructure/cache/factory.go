package cache

import (
	"context"
	"io"

	"github.com/exportdesk/backend/internal/domain/shared"
	"github.com/exportdesk/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Backend bundles the lock and cache implementations picked at startup
type Backend struct {
	Locker shared.Locker
	Cache  shared.StringCache
	// Shared reports whether locks are shared across processes
	Shared bool
	closer io.Closer
}

// Close releases the Redis client or stops the in-memory cleanup
func (b *Backend) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

// FactoryOption is a functional option for configuring NewBackend
type FactoryOption func(*factory)

type factory struct {
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// process memory. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewBackend uses Redis when it is enabled and reachable, otherwise process memory
func NewBackend(ctx context.Context, cfg config.RedisConfig, opts ...FactoryOption) (*Backend, error) {
	f := &factory{logger: zap.NewNop(), allowInMemoryFallback: true}
	for _, opt := range opts {
		opt(f)
	}

	if cfg.Enabled {
		client, err := NewRedisClient(ctx, cfg)
		if err == nil {
			f.logger.Info("Using Redis for sync locks and caches")
			return newRedisBackend(client), nil
		}
		if !f.allowInMemoryFallback {
			return nil, err
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory locks. "+
			"Sync runs are not coordinated across instances.",
			zap.Error(err),
		)
	}

	store := NewInMemoryStore()
	return &Backend{Locker: store, Cache: store, closer: store}, nil
}

func newRedisBackend(client *redis.Client) *Backend {
	return &Backend{
		Locker: NewRedisLocker(client, ""),
		Cache:  NewRedisStringCache(client, ""),
		Shared: true,
		closer: client,
	}
}
