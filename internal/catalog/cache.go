// Package catalog holds the locally cached product snapshot used for price
// lookup and stock validation. The backend owns the data; the snapshot may be
// stale between refreshes and that is accepted.
package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"orderdesk/internal/backend"
)

// Source is the backend call the cache refreshes from.
type Source interface {
	Products(ctx context.Context) ([]backend.Product, error)
}

type Cache struct {
	source Source

	mu          sync.RWMutex
	products    []backend.Product
	byID        map[int]backend.Product
	refreshedAt time.Time
}

func NewCache(source Source) *Cache {
	return &Cache{
		source: source,
		byID:   map[int]backend.Product{},
	}
}

// Refresh replaces the snapshot with the backend's current product list.
// On error the previous snapshot is kept.
func (c *Cache) Refresh(ctx context.Context) error {
	products, err := c.source.Products(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("catalog: refresh failed, keeping previous snapshot")
		return fmt.Errorf("catalog: failed to refresh products: %w", err)
	}

	byID := make(map[int]backend.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	c.mu.Lock()
	c.products = products
	c.byID = byID
	c.refreshedAt = time.Now()
	c.mu.Unlock()

	log.Debug().Int("products", len(products)).Msg("catalog: snapshot refreshed")
	return nil
}

// Products returns a copy of the cached list.
func (c *Cache) Products() []backend.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]backend.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Product looks up a cached product by id.
func (c *Cache) Product(id int) (backend.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byID[id]
	return p, ok
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}

// RefreshedAt reports when the snapshot was last replaced. Zero time means
// the cache was never refreshed.
func (c *Cache) RefreshedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshedAt
}
