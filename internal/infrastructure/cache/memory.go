package cache

import (
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/unicounsel/backend/internal/domain"
)

const (
	catalogKey      = "catalog"
	cleanupInterval = 10 * time.Minute
)

// MemoryCache holds the loaded catalog in process memory.
// It implements domain.CatalogCache and is safe for concurrent use.
type MemoryCache struct {
	store *cache.Cache
	ttl   time.Duration
}

// NewMemoryCache creates a catalog cache. A ttl of zero or less keeps the
// catalog until it is explicitly invalidated.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}

	return &MemoryCache{
		store: cache.New(ttl, cleanupInterval),
		ttl:   ttl,
	}
}

// Get returns the cached catalog or domain.ErrCacheMiss
func (c *MemoryCache) Get() (*domain.Catalog, error) {
	v, found := c.store.Get(catalogKey)
	if !found {
		return nil, domain.ErrCacheMiss
	}

	catalog, ok := v.(*domain.Catalog)
	if !ok || catalog == nil {
		return nil, domain.ErrCacheMiss
	}
	return catalog, nil
}

// Set stores the catalog, replacing any previous one
func (c *MemoryCache) Set(catalog *domain.Catalog) {
	if catalog == nil {
		c.store.Delete(catalogKey)
		return
	}
	c.store.Set(catalogKey, catalog, c.ttl)
}

// Invalidate drops the cached catalog so the next load reads the sources again
func (c *MemoryCache) Invalidate() {
	c.store.Delete(catalogKey)
}

// Size returns the number of universities currently cached (for health/monitoring)
func (c *MemoryCache) Size() int {
	catalog, err := c.Get()
	if err != nil {
		return 0
	}
	return len(catalog.Universities)
}
