package shared

import (
	"context"
	"time"
)

// Locker hands out named leases that expire on their own.
// TryLock reports false when another holder owns an unexpired lease.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (Lease, bool, error)
}

// Lease is a held lock
type Lease interface {
	// Release frees the lock if it is still held by this lease
	Release(ctx context.Context) error
}

// StringCache stores short-lived string values
type StringCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
