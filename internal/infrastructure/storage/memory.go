package storage

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/exportdesk/backend/internal/domain/catalog"
)

// MemoryImageStorage keeps images in process memory. It backs development
// setups without object storage; the URLs it hands out are not servable.
type MemoryImageStorage struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string]storedObject
}

type storedObject struct {
	data        []byte
	contentType string
}

// NewMemoryImageStorage creates a new MemoryImageStorage
func NewMemoryImageStorage() *MemoryImageStorage {
	return &MemoryImageStorage{
		BaseURL: "memory://images",
		objects: make(map[string]storedObject),
	}
}

// Put stores the image
func (s *MemoryImageStorage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if key == "" {
		return errKeyRequired
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = storedObject{data: buf.Bytes(), contentType: contentType}
	return nil
}

// PresignGet returns a fake URL for a stored key
func (s *MemoryImageStorage) PresignGet(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errKeyRequired
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/" + key + "?expires=" + url.QueryEscape(expiresAt.UTC().Format(time.RFC3339)), expiresAt, nil
}

// Delete removes the image
func (s *MemoryImageStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errKeyRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Object returns the stored bytes and content type
func (s *MemoryImageStorage) Object(key string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[key]
	return o.data, o.contentType, ok
}

var _ catalog.ImageStorage = (*MemoryImageStorage)(nil)
