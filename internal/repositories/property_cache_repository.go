package repositories

import (
	"context"
	"sync"
	"time"

	"property-catalog/internal/models"
	"property-catalog/internal/query"
	"property-catalog/pkg/cache"
	"property-catalog/pkg/logger"
)

type propertyCache struct {
	store cache.Store
	ttl   time.Duration

	// mu orders generation bumps against in-flight writes: a write holds the
	// read lock from its generation check until the store call returns.
	mu  sync.RWMutex
	gen uint64
}

// NewPropertyCache caches through store. Pass cache.NoopStore{} to disable caching.
func NewPropertyCache(store cache.Store, ttl time.Duration) PropertyCache {
	return &propertyCache{store: store, ttl: ttl}
}

func (c *propertyCache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

func (c *propertyCache) GetProperty(ctx context.Context, id string) (*models.Property, bool) {
	var property models.Property
	found, err := c.store.GetJSON(ctx, cache.PropertyKey(id), &property)
	if err != nil {
		logger.GlobalLogger.Warnf("property cache read: %v", err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	return &property, true
}

func (c *propertyCache) SetProperty(ctx context.Context, gen uint64, property *models.Property) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if gen != c.gen {
		logger.GlobalLogger.Debugf("dropping stale cache write for property %s", property.ID.Hex())
		return
	}
	if err := c.store.SetJSON(ctx, cache.PropertyKey(property.ID.Hex()), property, c.ttl); err != nil {
		logger.GlobalLogger.Warnf("property cache write: %v", err)
	}
}

func (c *propertyCache) GetPage(ctx context.Context, q *query.Query) (*models.PropertyPage, bool) {
	var page models.PropertyPage
	found, err := c.store.GetJSON(ctx, cache.PropertyListKey(q.CacheKey()), &page)
	if err != nil {
		logger.GlobalLogger.Warnf("listing cache read: %v", err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	return &page, true
}

func (c *propertyCache) SetPage(ctx context.Context, gen uint64, q *query.Query, page *models.PropertyPage) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if gen != c.gen {
		logger.GlobalLogger.Debugf("dropping stale listing cache write")
		return
	}
	key := cache.PropertyListKey(q.CacheKey())
	if err := c.store.SetTracked(ctx, cache.PropertyListSetKey(), key, page, c.ttl); err != nil {
		logger.GlobalLogger.Warnf("listing cache write: %v", err)
	}
}

func (c *propertyCache) Invalidate(ctx context.Context, id string) {
	c.mu.Lock()
	c.gen++
	c.mu.Unlock()

	if id != "" {
		if err := c.store.Delete(ctx, cache.PropertyKey(id)); err != nil {
			logger.GlobalLogger.Warnf("property cache evict %s: %v", id, err)
		}
	}
	n, err := c.store.InvalidateTracked(ctx, cache.PropertyListSetKey())
	if err != nil {
		logger.GlobalLogger.Warnf("listing cache invalidate: %v", err)
		return
	}
	if n > 0 {
		logger.GlobalLogger.Debugf("invalidated %d cached listing pages", n)
	}
}
