// Package wishlist keeps one shared copy of each customer's wishlist so
// product cards and detail pages do not refetch it per view.
package wishlist

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Backend is the subset of the backend client the cache needs.
type Backend interface {
	Wishlist(ctx context.Context, token string) ([]int64, error)
	AddToWishlist(ctx context.Context, token string, productID int64) error
	RemoveFromWishlist(ctx context.Context, token string, productID int64) error
}

type entry struct {
	ids      []int64
	loadedAt time.Time
}

// Cache is a per-customer wishlist cache. Concurrent misses for the same
// customer share one backend call.
type Cache struct {
	backend Backend
	ttl     time.Duration
	now     func() time.Time
	logger  zerolog.Logger

	group   singleflight.Group
	mu      sync.RWMutex
	entries map[string]entry
	// gens counts writes per customer. A load that started before a
	// write is not cached.
	gens map[string]uint64
}

func NewCache(backend Backend, ttl time.Duration, logger zerolog.Logger) *Cache {
	return &Cache{
		backend: backend,
		ttl:     ttl,
		now:     time.Now,
		logger:  logger.With().Str("component", "wishlist").Logger(),
		entries: make(map[string]entry),
		gens:    make(map[string]uint64),
	}
}

// List returns the product ids on the customer's wishlist.
func (c *Cache) List(ctx context.Context, customerID, token string) ([]int64, error) {
	if ids, ok := c.cached(customerID); ok {
		return ids, nil
	}

	// The load is shared, so one caller going away must not cancel it
	// for the others.
	loadCtx := context.WithoutCancel(ctx)
	v, err, shared := c.group.Do(customerID, func() (any, error) {
		gen := c.generation(customerID)
		ids, err := c.backend.Wishlist(loadCtx, token)
		if err != nil {
			return nil, err
		}
		c.store(customerID, ids, gen)
		return ids, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load wishlist: %w", err)
	}

	c.logger.Debug().
		Str("customer_id", customerID).
		Bool("shared", shared).
		Msg("wishlist loaded")

	return slices.Clone(v.([]int64)), nil
}

// Contains reports whether productID is on the customer's wishlist.
func (c *Cache) Contains(ctx context.Context, customerID, token string, productID int64) (bool, error) {
	ids, err := c.List(ctx, customerID, token)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, productID), nil
}

// Add puts productID on the wishlist and updates the cached copy.
func (c *Cache) Add(ctx context.Context, customerID, token string, productID int64) error {
	if err := c.backend.AddToWishlist(ctx, token, productID); err != nil {
		return fmt.Errorf("failed to add to wishlist: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[customerID]++
	if e, ok := c.entries[customerID]; ok && !slices.Contains(e.ids, productID) {
		e.ids = append(slices.Clone(e.ids), productID)
		c.entries[customerID] = e
	}
	return nil
}

// Remove takes productID off the wishlist and updates the cached copy.
func (c *Cache) Remove(ctx context.Context, customerID, token string, productID int64) error {
	if err := c.backend.RemoveFromWishlist(ctx, token, productID); err != nil {
		return fmt.Errorf("failed to remove from wishlist: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[customerID]++
	if e, ok := c.entries[customerID]; ok {
		e.ids = slices.DeleteFunc(slices.Clone(e.ids), func(id int64) bool { return id == productID })
		c.entries[customerID] = e
	}
	return nil
}

// Invalidate drops the cached copy for customerID.
func (c *Cache) Invalidate(customerID string) {
	c.mu.Lock()
	c.gens[customerID]++
	delete(c.entries, customerID)
	c.mu.Unlock()
}

func (c *Cache) cached(customerID string) ([]int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[customerID]
	if !ok || c.now().Sub(e.loadedAt) >= c.ttl {
		return nil, false
	}
	return slices.Clone(e.ids), true
}

func (c *Cache) generation(customerID string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gens[customerID]
}

// store caches ids unless the wishlist was written since gen was read.
func (c *Cache) store(customerID string, ids []int64, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[customerID] != gen {
		c.logger.Debug().Str("customer_id", customerID).Msg("wishlist changed during load, not cached")
		return
	}
	c.entries[customerID] = entry{ids: slices.Clone(ids), loadedAt: c.now()}
}
