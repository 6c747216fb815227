// Package main provides the LINE bot server entry point.
package main

import (
	"context"
	"time"

	"github.com/avolkov/osg-linebot-go/internal/config"
	"github.com/avolkov/osg-linebot-go/internal/logger"
	ordercache "github.com/avolkov/osg-linebot-go/internal/orders"
)

// refreshOrdersPeriodically keeps the order cache in sync with the
// sheet. The first fetch runs shortly after startup (the restored
// snapshot covers the gap), subsequent fetches at the configured
// interval. A failed fetch leaves the previous snapshot serving.
func refreshOrdersPeriodically(ctx context.Context, refresher *ordercache.Refresher, interval time.Duration, log *logger.Logger) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(config.SheetRefreshInitialDelay):
		runRefresh(ctx, refresher, log)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runRefresh(ctx, refresher, log)
		}
	}
}

func runRefresh(ctx context.Context, refresher *ordercache.Refresher, log *logger.Logger) {
	count, err := refresher.Refresh(ctx)
	if err != nil {
		log.WithError(err).Error("Scheduled sheet refresh failed")
		return
	}
	log.WithField("orders", count).Debug("Scheduled sheet refresh complete")
}
