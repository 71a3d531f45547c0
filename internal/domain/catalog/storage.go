package catalog

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrStorageNotConfigured is returned when no object storage is available
var ErrStorageNotConfigured = errors.New("object storage is not configured")

// ImageStorage stores product images
type ImageStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
	Delete(ctx context.Context, key string) error
}
