// Package config provides application configuration management.
// It loads settings from environment variables, applies defaults, and
// validates the shelf-life parameters fail-fast at startup.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/avolkov/osg-linebot-go/internal/shelflife"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Default shelf-life parameters. The 82% ceiling variant is the newer of the
// two production deployments; the orders-sheet one overrides percent and
// rounding via environment.
const (
	DefaultShelfLifeDays    = 360
	DefaultTargetPercent    = "82"
	DefaultSafetyBufferDays = 2
)

// Default timezones: assembly in Asha (Chelyabinsk region, UTC+5), delivery
// in Moscow (UTC+3). Fixed-offset fallbacks cover hosts without tzdata.
const (
	DefaultPickupZone   = "Asia/Yekaterinburg"
	DefaultDeliveryZone = "Europe/Moscow"

	pickupFallbackOffset   = 5 * 60 * 60
	deliveryFallbackOffset = 3 * 60 * 60
)

// Config holds all application configuration
type Config struct {
	// LINE Bot Configuration
	LineChannelToken  string
	LineChannelSecret string

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Data Configuration
	DataDir string // Data directory for the SQLite order snapshot

	// Order sheet Configuration
	SheetURL             string // Full CSV export URL; built from SheetID/SheetName when empty
	SheetID              string
	SheetName            string
	SheetRefreshInterval time.Duration
	SheetTimeout         time.Duration
	SheetMaxRetries      int

	// Shelf-life parameters (validated via ShelfLife())
	ShelfLifeDays    int
	TargetPercent    decimal.Decimal
	SafetyBufferDays int
	Rounding         shelflife.Rounding

	// Timezones
	PickupZone   *time.Location
	DeliveryZone *time.Location

	// Webhook Configuration
	WebhookTimeout time.Duration

	// Rate Limits (Token Bucket Algorithm)
	GlobalRateRPS  float64 // Global LINE API rate limit in requests per second
	UserRateBurst  float64 // Maximum burst tokens per chat
	UserRateRefill float64 // Tokens refilled per second per chat

	// LINE API Constraints
	MaxMessagesPerReply int // LINE API limit: 5
	MaxEventsPerWebhook int // Maximum events accepted per webhook batch
	MinReplyTokenLength int
	MaxPostbackDataSize int // LINE API limit: 300 bytes

	// Business Limits
	MaxOrderButtons int // Maximum order buttons shown per /orders request

	// Metrics Authentication
	MetricsUsername string
	MetricsPassword string // empty = no auth

	// Sentry
	SentryDSN         string
	SentryEnvironment string
	SentrySampleRate  float64
}

// Load reads configuration from environment variables.
// It attempts to load a .env file first, then reads from env vars.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	targetPercent, err := decimal.NewFromString(getEnv(EnvTargetPercent, DefaultTargetPercent))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", EnvTargetPercent, err)
	}

	rounding, err := shelflife.ParseRounding(getEnv(EnvRounding, ""))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", EnvRounding, err)
	}

	cfg := &Config{
		// LINE Bot Configuration
		LineChannelToken:  getEnv(EnvLineChannelAccessToken, ""),
		LineChannelSecret: getEnv(EnvLineChannelSecret, ""),

		// Server Configuration
		Port:            getEnv(EnvPort, "10000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, 30*time.Second),

		// Data Configuration
		DataDir: getEnv(EnvDataDir, "./data"),

		// Order sheet Configuration
		SheetURL:             getEnv(EnvSheetURL, ""),
		SheetID:              getEnv(EnvSheetID, ""),
		SheetName:            getEnv(EnvSheetName, "Orders"),
		SheetRefreshInterval: getDurationEnv(EnvSheetRefreshInterval, time.Hour),
		SheetTimeout:         getDurationEnv(EnvSheetTimeout, SheetRequest),
		SheetMaxRetries:      getIntEnv(EnvSheetMaxRetries, 4),

		// Shelf-life parameters
		ShelfLifeDays:    getIntEnv(EnvShelfLifeDays, DefaultShelfLifeDays),
		TargetPercent:    targetPercent,
		SafetyBufferDays: getIntEnv(EnvSafetyBufferDays, DefaultSafetyBufferDays),
		Rounding:         rounding,

		// Timezones
		PickupZone:   loadZone(getEnv(EnvPickupZone, DefaultPickupZone), pickupFallbackOffset),
		DeliveryZone: loadZone(getEnv(EnvDeliveryZone, DefaultDeliveryZone), deliveryFallbackOffset),

		// Webhook Configuration
		WebhookTimeout: getDurationEnv(EnvWebhookTimeout, WebhookProcessing),

		// Rate Limits
		GlobalRateRPS:  getFloatEnv(EnvGlobalRateRPS, 100),
		UserRateBurst:  getFloatEnv(EnvUserRateBurst, 15),
		UserRateRefill: getFloatEnv(EnvUserRateRefill, 0.1),

		// LINE API Constraints
		MaxMessagesPerReply: 5,
		MaxEventsPerWebhook: 100,
		MinReplyTokenLength: 10,
		MaxPostbackDataSize: 300,

		// Business Limits
		MaxOrderButtons: 30, // 10 carousel columns x 3 actions

		// Metrics Authentication
		MetricsUsername: getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword: getEnv(EnvMetricsPassword, ""),

		// Sentry
		SentryDSN:         getEnv(EnvSentryDSN, ""),
		SentryEnvironment: getEnv(EnvSentryEnvironment, "production"),
		SentrySampleRate:  getFloatEnv(EnvSentrySampleRate, 1.0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required settings and the shelf-life invariants.
// Invalid configuration fails startup; nothing is silently clamped.
func (c *Config) Validate() error {
	if c.LineChannelToken == "" {
		return fmt.Errorf("%s is required", EnvLineChannelAccessToken)
	}
	if c.LineChannelSecret == "" {
		return fmt.Errorf("%s is required", EnvLineChannelSecret)
	}

	if err := c.ShelfLife().Validate(); err != nil {
		return fmt.Errorf("shelf-life configuration: %w", err)
	}

	if c.SheetRefreshInterval < time.Minute {
		return fmt.Errorf("%s must be at least 1m, got %s", EnvSheetRefreshInterval, c.SheetRefreshInterval)
	}
	if c.SheetMaxRetries < 0 {
		return fmt.Errorf("%s must be non-negative", EnvSheetMaxRetries)
	}

	return nil
}

// ShelfLife returns the immutable shelf-life parameters derived from the
// configuration. Both core functions receive these explicitly; nothing reads
// the environment per call.
func (c *Config) ShelfLife() shelflife.Params {
	return shelflife.Params{
		ShelfLifeDays:    c.ShelfLifeDays,
		TargetPercent:    c.TargetPercent,
		SafetyBufferDays: c.SafetyBufferDays,
		Rounding:         c.Rounding,
	}
}

// SQLitePath returns the path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "orders.db")
}

// SheetCSVURL returns the CSV export URL for the configured sheet.
// Returns empty string when no sheet is configured (orders module then
// serves only the persisted snapshot).
func (c *Config) SheetCSVURL() string {
	if c.SheetURL != "" {
		return c.SheetURL
	}
	if c.SheetID == "" {
		return ""
	}
	return fmt.Sprintf(
		"https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:csv&sheet=%s",
		c.SheetID, url.QueryEscape(c.SheetName),
	)
}

// loadZone loads a timezone by name with a fixed-offset fallback for hosts
// without tzdata.
func loadZone(name string, fallbackOffsetSeconds int) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone(name, fallbackOffsetSeconds)
	}
	return loc
}

// getEnv returns the value of the environment variable or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv returns the integer value of the environment variable or a default
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getFloatEnv returns the float value of the environment variable or a default
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getDurationEnv returns the duration value of the environment variable or a default
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
