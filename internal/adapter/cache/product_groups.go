package cache

import (
	"sync"
	"time"

	"github.com/niksmo/finsearch/internal/core/domain"
	"github.com/niksmo/finsearch/internal/core/port"
)

var _ port.ProductGroupCache = (*ProductGroupCache)(nil)

type productGroups struct {
	categories map[string][]domain.Category
	expireAt   time.Time
}

// ProductGroupCache holds the categories that dynamic product groups add to
// products, per shop.
type ProductGroupCache struct {
	mu    sync.RWMutex
	shops map[string]productGroups
	ttl   time.Duration
	now   func() time.Time
}

func NewProductGroupCache(ttl time.Duration) *ProductGroupCache {
	return &ProductGroupCache{
		shops: make(map[string]productGroups),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (c *ProductGroupCache) Store(shopKey string, categories map[string][]domain.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shops[shopKey] = productGroups{
		categories: categories,
		expireAt:   c.now().Add(c.ttl),
	}
}

func (c *ProductGroupCache) Categories(shopKey, productID string) ([]domain.Category, bool) {
	pg, ok := c.get(shopKey)
	if !ok {
		return nil, false
	}
	cats, ok := pg.categories[productID]
	return cats, ok
}

func (c *ProductGroupCache) IsWarmedUp(shopKey string) bool {
	_, ok := c.get(shopKey)
	return ok
}

func (c *ProductGroupCache) get(shopKey string) (productGroups, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pg, ok := c.shops[shopKey]
	if !ok || c.now().After(pg.expireAt) {
		return productGroups{}, false
	}
	return pg, true
}
