package cache

import (
	"context"
	"sync"
	"time"

	"github.com/retailmatch/backend/internal/domain"
)

// catalogItem represents a single catalog in the store with expiration
type catalogItem struct {
	Catalog    *domain.Catalog
	Expiration time.Time
}

// MemoryCatalogStore is a thread-safe in-memory catalog store with TTL support.
// Each uploaded catalog lives under its own id, so sessions never share state.
type MemoryCatalogStore struct {
	data  map[string]catalogItem
	mutex sync.RWMutex
	done  chan struct{}
	once  sync.Once
}

// NewMemoryCatalogStore creates a store that purges expired catalogs every cleanupInterval
func NewMemoryCatalogStore(cleanupInterval time.Duration) *MemoryCatalogStore {
	if cleanupInterval <= 0 {
		cleanupInterval = 10 * time.Minute
	}

	store := &MemoryCatalogStore{
		data: make(map[string]catalogItem),
		done: make(chan struct{}),
	}

	go store.cleanupExpired(cleanupInterval)

	return store
}

// Get retrieves a catalog by id
func (s *MemoryCatalogStore) Get(ctx context.Context, id string) (*domain.Catalog, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	item, exists := s.data[id]
	if !exists {
		return nil, domain.ErrCacheMiss
	}

	if time.Now().After(item.Expiration) {
		return nil, domain.ErrCacheMiss
	}

	return item.Catalog, nil
}

// Save stores a catalog under its id with TTL
func (s *MemoryCatalogStore) Save(ctx context.Context, catalog *domain.Catalog, ttl time.Duration) error {
	if catalog == nil || catalog.ID == "" {
		return domain.ErrInvalidRequest
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[catalog.ID] = catalogItem{
		Catalog:    catalog,
		Expiration: time.Now().Add(ttl),
	}

	return nil
}

// Delete removes a catalog from the store
func (s *MemoryCatalogStore) Delete(ctx context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.data, id)
	return nil
}

// Size returns the current number of stored catalogs, expired ones included until purged
func (s *MemoryCatalogStore) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.data)
}

// Clear removes all catalogs
func (s *MemoryCatalogStore) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.data = make(map[string]catalogItem)
}

// Close stops the cleanup goroutine
func (s *MemoryCatalogStore) Close() {
	s.once.Do(func() { close(s.done) })
}

// purgeExpired removes every expired catalog
func (s *MemoryCatalogStore) purgeExpired(now time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for id, item := range s.data {
		if now.After(item.Expiration) {
			delete(s.data, id)
		}
	}
}

func (s *MemoryCatalogStore) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.purgeExpired(now)
		}
	}
}
