// Package main provides the LINE bot server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/avolkov/osg-linebot-go/internal/bot"
	"github.com/avolkov/osg-linebot-go/internal/config"
	"github.com/avolkov/osg-linebot-go/internal/logger"
	"github.com/avolkov/osg-linebot-go/internal/metrics"
	ordersmodule "github.com/avolkov/osg-linebot-go/internal/modules/orders"
	osgmodule "github.com/avolkov/osg-linebot-go/internal/modules/osg"
	usagemodule "github.com/avolkov/osg-linebot-go/internal/modules/usage"
	ordercache "github.com/avolkov/osg-linebot-go/internal/orders"
	"github.com/avolkov/osg-linebot-go/internal/ratelimit"
	"github.com/avolkov/osg-linebot-go/internal/sentry"
	"github.com/avolkov/osg-linebot-go/internal/sheets"
	"github.com/avolkov/osg-linebot-go/internal/storage"
	"github.com/avolkov/osg-linebot-go/internal/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("Starting OSG LineBot Server")

	if err := sentry.Initialize(sentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		SampleRate:  cfg.SentrySampleRate,
	}); err != nil {
		log.WithError(err).Warn("Failed to initialize Sentry, error tracking disabled")
	} else if sentry.IsEnabled() {
		defer sentry.Flush(2 * time.Second)
		log.Info("Sentry initialized")
	}

	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		log.WithError(err).Fatal("Failed to open database")
	}
	defer func() { _ = db.Close() }()
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())

	m := metrics.New(registry)
	log.Info("Metrics initialized")

	params := cfg.ShelfLife()

	sheetClient := sheets.NewClient(cfg.SheetCSVURL(), cfg.SheetTimeout, cfg.SheetMaxRetries, m, log)
	cache := ordercache.NewCache(m)
	refresher := ordercache.NewRefresher(sheetClient, cache, db, log)

	// Serve the persisted snapshot until the first sheet fetch lands.
	if restored, err := refresher.Restore(context.Background()); err != nil {
		log.WithError(err).Warn("Failed to restore order snapshot")
	} else if restored > 0 {
		log.WithField("orders", restored).Info("Order snapshot restored")
	}

	userLimiter := ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Name:          "user",
		Burst:         cfg.UserRateBurst,
		RefillRate:    cfg.UserRateRefill,
		CleanupPeriod: 10 * time.Minute,
		Metrics:       m,
	})
	defer userLimiter.Stop()

	botRegistry := bot.NewRegistry()
	botRegistry.Register(ordersmodule.NewHandler(
		cache, refresher, sheetClient, params,
		cfg.DeliveryZone, cfg.MaxOrderButtons, log, m,
	))
	botRegistry.Register(usagemodule.NewHandler(userLimiter, cfg.UserRateBurst, log))
	// The date module matches last: anything that parses as a date.
	botRegistry.Register(osgmodule.NewHandler(params, cfg.PickupZone, cfg.DeliveryZone, log, m))

	processor := bot.NewProcessor(bot.ProcessorConfig{
		Registry:       botRegistry,
		UserLimiter:    userLimiter,
		Logger:         log,
		WebhookTimeout: cfg.WebhookTimeout,
	})

	webhookHandler, err := webhook.NewHandler(webhook.HandlerConfig{
		ChannelSecret:       cfg.LineChannelSecret,
		ChannelToken:        cfg.LineChannelToken,
		Metrics:             m,
		Logger:              log,
		Processor:           processor,
		GlobalRateRPS:       cfg.GlobalRateRPS,
		MaxMessagesPerReply: cfg.MaxMessagesPerReply,
		MaxEventsPerWebhook: cfg.MaxEventsPerWebhook,
		MinReplyTokenLength: cfg.MinReplyTokenLength,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create webhook handler")
	}
	log.Info("Webhook handler created")

	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(log))
	if sentry.IsEnabled() {
		router.Use(sentryMiddleware())
	}

	setupRoutes(router, cfg, webhookHandler, db, cache, sheetClient, registry)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  config.WebhookHTTPRead,
		WriteTimeout: config.WebhookHTTPWrite,
		IdleTimeout:  config.WebhookHTTPIdle,
	}

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	jobsDone := make(chan struct{})
	go func() {
		defer close(jobsDone)
		defer func() {
			if r := recover(); r != nil {
				log.WithField("panic", r).Error("Panic in sheet refresh goroutine")
			}
		}()
		if sheetClient.URL() == "" {
			log.Warn("No sheet configured, serving persisted snapshot only")
			return
		}
		refreshOrdersPeriodically(jobCtx, refresher, cfg.SheetRefreshInterval, log)
	}()

	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	cancelJobs()
	select {
	case <-jobsDone:
	case <-time.After(5 * time.Second):
		log.Warn("Timeout waiting for background jobs to stop")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := webhookHandler.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Timeout waiting for in-flight events")
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	if err := db.Close(); err != nil {
		log.WithError(err).Error("Failed to close database")
	}

	log.Info("Server stopped")
}
