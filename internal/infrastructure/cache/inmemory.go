package cache

import (
	"context"
	"sync"
	"time"

	"github.com/exportdesk/backend/internal/domain/shared"
)

// entry represents a stored value with expiration
type entry struct {
	value     string
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// InMemoryStore implements shared.Locker and shared.StringCache in process memory.
// Locks are only exclusive within this process.
type InMemoryStore struct {
	mu        sync.Mutex
	entries   map[string]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryStore creates a store and starts its cleanup goroutine
func NewInMemoryStore() *InMemoryStore {
	s := &InMemoryStore{
		entries:  make(map[string]entry),
		stopChan: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.cleanupLoop()
	return s
}

// TryLock takes the lock when it is free or its previous lease expired
func (s *InMemoryStore) TryLock(ctx context.Context, key string, ttl time.Duration) (shared.Lease, bool, error) {
	token, err := newToken()
	if err != nil {
		return nil, false, err
	}
	key = "lock:" + key

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok && !e.expired(time.Now()) {
		return nil, false, nil
	}
	s.entries[key] = entry{value: token, expiresAt: time.Now().Add(ttl)}
	return &memoryLease{store: s, key: key, token: token}, true, nil
}

type memoryLease struct {
	store *InMemoryStore
	key   string
	token string
}

func (l *memoryLease) Release(ctx context.Context) error {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	if e, ok := l.store.entries[l.key]; ok && e.value == l.token {
		delete(l.store.entries, l.key)
	}
	return nil
}

// Get returns the cached value
func (s *InMemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries["cache:"+key]
	if !ok || e.expired(time.Now()) {
		return "", false, nil
	}
	return e.value, true, nil
}

// Set stores value for ttl
func (s *InMemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries["cache:"+key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Delete removes key
func (s *InMemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, "cache:"+key)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
		}
	}
}

// Size returns the number of entries, expired ones included
func (s *InMemoryStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

var (
	_ shared.Locker      = (*InMemoryStore)(nil)
	_ shared.StringCache = (*InMemoryStore)(nil)
)
