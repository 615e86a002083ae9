// Package catalog caches the last fetched product list. The cache backs the
// confirmation workflow's best-effort price auto-fill with an indexed,
// case-insensitive name lookup instead of a scan.
package catalog

import (
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"voxstock/internal/domain"
)

const snapshotKey = "products:snapshot"

func priceKey(name string) string {
	return "price:" + strings.ToLower(strings.TrimSpace(name))
}

// Cache is a TTL snapshot of the backend's product list.
type Cache struct {
	items *cache.Cache
}

func New(ttl time.Duration, purgeInterval time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if purgeInterval <= 0 {
		purgeInterval = time.Minute
	}
	return &Cache{items: cache.New(ttl, purgeInterval)}
}

// Update replaces the snapshot and rebuilds the name index. The index is
// rebuilt from scratch so a product absent from the newest list stops
// resolving immediately instead of lingering until its TTL.
func (c *Cache) Update(products []domain.Product) {
	snapshot := make([]domain.Product, len(products))
	copy(snapshot, products)

	c.items.Flush()
	c.items.Set(snapshotKey, snapshot, cache.DefaultExpiration)

	for _, p := range snapshot {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		c.items.Set(priceKey(p.Name), p.Price, cache.DefaultExpiration)
	}
}

// Products returns the cached snapshot, if it has not expired.
func (c *Cache) Products() ([]domain.Product, bool) {
	if x, found := c.items.Get(snapshotKey); found {
		return x.([]domain.Product), true
	}
	return nil, false
}

// PriceByName returns the known unit price of a product whose name matches
// case-insensitively and exactly.
func (c *Cache) PriceByName(name string) (float64, bool) {
	if strings.TrimSpace(name) == "" {
		return 0, false
	}
	if x, found := c.items.Get(priceKey(name)); found {
		return x.(float64), true
	}
	return 0, false
}
