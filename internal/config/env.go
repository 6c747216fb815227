// Package config defines environment variable keys for configuration.
package config

//nolint:gosec // Environment variable keys are not credentials.
const (
	// Core (Required)
	EnvLineChannelAccessToken = "OSG_LINE_CHANNEL_ACCESS_TOKEN"
	EnvLineChannelSecret      = "OSG_LINE_CHANNEL_SECRET"

	// Server
	EnvPort            = "OSG_PORT"
	EnvLogLevel        = "OSG_LOG_LEVEL"
	EnvShutdownTimeout = "OSG_SHUTDOWN_TIMEOUT"

	// Data
	EnvDataDir = "OSG_DATA_DIR"

	// Order sheet
	EnvSheetURL             = "OSG_SHEET_URL"
	EnvSheetID              = "OSG_SHEET_ID"
	EnvSheetName            = "OSG_SHEET_NAME"
	EnvSheetRefreshInterval = "OSG_SHEET_REFRESH_INTERVAL"
	EnvSheetTimeout         = "OSG_SHEET_TIMEOUT"
	EnvSheetMaxRetries      = "OSG_SHEET_MAX_RETRIES"

	// Shelf-life parameters
	EnvShelfLifeDays    = "OSG_SHELF_LIFE_DAYS"
	EnvTargetPercent    = "OSG_TARGET_PERCENT"
	EnvSafetyBufferDays = "OSG_SAFETY_BUFFER_DAYS"
	EnvRounding         = "OSG_ROUNDING"

	// Timezones
	EnvPickupZone   = "OSG_PICKUP_TZ"
	EnvDeliveryZone = "OSG_DELIVERY_TZ"

	// Webhook
	EnvWebhookTimeout = "OSG_WEBHOOK_TIMEOUT"

	// Rate Limits
	EnvGlobalRateRPS  = "OSG_GLOBAL_RATE_RPS"
	EnvUserRateBurst  = "OSG_USER_RATE_BURST"
	EnvUserRateRefill = "OSG_USER_RATE_REFILL"

	// Metrics Auth
	EnvMetricsUsername = "OSG_METRICS_USERNAME"
	EnvMetricsPassword = "OSG_METRICS_PASSWORD"

	// Sentry
	EnvSentryDSN         = "OSG_SENTRY_DSN"
	EnvSentryEnvironment = "OSG_SENTRY_ENVIRONMENT"
	EnvSentrySampleRate  = "OSG_SENTRY_SAMPLE_RATE"
)
