package orders

import (
	"context"
	"fmt"

	"github.com/avolkov/osg-linebot-go/internal/logger"
	"github.com/avolkov/osg-linebot-go/internal/sheets"
	"github.com/avolkov/osg-linebot-go/internal/storage"
)

// Refresher pulls the sheet, persists the snapshot and swaps the cache.
type Refresher struct {
	client *sheets.Client
	cache  *Cache
	db     *storage.DB
	log    *logger.Logger
}

// NewRefresher wires the fetch pipeline together.
func NewRefresher(client *sheets.Client, cache *Cache, db *storage.DB, log *logger.Logger) *Refresher {
	return &Refresher{
		client: client,
		cache:  cache,
		db:     db,
		log:    log.WithModule("orders"),
	}
}

// Refresh fetches the sheet and, on success, persists the snapshot and
// swaps the in-memory cache. On failure the previous snapshot stays in
// place. Returns the number of orders loaded.
func (r *Refresher) Refresh(ctx context.Context) (int, error) {
	res, err := r.client.Fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("sheet fetch failed: %w", err)
	}

	// Persist first so a crash right after still leaves the new
	// snapshot recoverable. A persistence failure is logged but does
	// not block serving the fresh data.
	if err := r.db.ReplaceOrders(ctx, res.Orders, res.FetchedAt); err != nil {
		r.log.WithError(err).Error("failed to persist order snapshot")
	}

	r.cache.Replace(res.Orders, res.FetchedAt)

	r.log.WithFields(map[string]any{
		"orders":  len(res.Orders),
		"skipped": res.Skipped,
	}).Info("order cache refreshed")

	return len(res.Orders), nil
}

// Restore loads the last persisted snapshot into the cache. Called at
// startup so lookups work before the first sheet fetch completes.
// Returns the number of orders restored.
func (r *Refresher) Restore(ctx context.Context) (int, error) {
	orders, fetchedAt, err := r.db.GetAllOrders(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load persisted snapshot: %w", err)
	}
	if len(orders) == 0 {
		return 0, nil
	}

	r.cache.Replace(orders, fetchedAt)

	r.log.WithFields(map[string]any{
		"orders":     len(orders),
		"fetched_at": fetchedAt,
	}).Info("order cache restored from database")

	return len(orders), nil
}
