// Package orders holds the in-memory order snapshot and keeps it in
// sync with the spreadsheet and the SQLite fallback copy.
package orders

import (
	"sync/atomic"
	"time"

	"github.com/avolkov/osg-linebot-go/internal/metrics"
	"github.com/avolkov/osg-linebot-go/internal/storage"
)

// snapshot is an immutable view of the order sheet. Lookups read the
// current snapshot without locking; refreshes swap in a new one.
type snapshot struct {
	orders    []storage.Order
	byKey     map[string]int
	fetchedAt time.Time
}

// Cache is the lock-free order cache. The zero value is not usable;
// create one with NewCache.
type Cache struct {
	current atomic.Pointer[snapshot]
	metrics *metrics.Metrics
}

// NewCache creates an empty cache.
func NewCache(m *metrics.Metrics) *Cache {
	c := &Cache{metrics: m}
	c.current.Store(&snapshot{byKey: map[string]int{}})
	return c
}

// Replace swaps in a new snapshot wholesale.
func (c *Cache) Replace(orders []storage.Order, fetchedAt time.Time) {
	byKey := make(map[string]int, len(orders))
	for i, o := range orders {
		byKey[o.Key()] = i
	}
	c.current.Store(&snapshot{
		orders:    orders,
		byKey:     byKey,
		fetchedAt: fetchedAt,
	})
	if c.metrics != nil {
		c.metrics.SetCachedOrders(len(orders))
	}
}

// Lookup returns the order with the given key.
func (c *Cache) Lookup(key string) (storage.Order, bool) {
	s := c.current.Load()
	idx, ok := s.byKey[key]
	if !ok {
		if c.metrics != nil {
			c.metrics.RecordCacheMiss("orders")
		}
		return storage.Order{}, false
	}
	if c.metrics != nil {
		c.metrics.RecordCacheHit("orders")
	}
	return s.orders[idx], true
}

// All returns the snapshot's orders in sheet order. Callers must not
// modify the returned slice.
func (c *Cache) All() []storage.Order {
	return c.current.Load().orders
}

// Len returns the number of cached orders.
func (c *Cache) Len() int {
	return len(c.current.Load().orders)
}

// FetchedAt returns when the current snapshot was fetched from the
// sheet. Zero when the cache has never been filled.
func (c *Cache) FetchedAt() time.Time {
	return c.current.Load().fetchedAt
}
