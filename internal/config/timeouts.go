// Package config provides centralized timeout constants for the application.
//
// These values are tuned for the LINE Messaging API constraints (reply tokens
// should be used quickly, webhooks expect a fast 200 OK) and for the Google
// Sheets CSV export endpoint, which is occasionally slow but never
// interactive-path critical (refreshes run in the background).
package config

import "time"

// Webhook timeouts
const (
	// WebhookProcessing is the default timeout for processing a single
	// webhook event. Lookups are in-memory and SQLite-backed, so this is
	// generous; the budget exists for on-demand sheet reloads triggered
	// from chat.
	WebhookProcessing = 30 * time.Second

	// WebhookHTTPRead is the HTTP server read timeout for webhook requests.
	// Should be short since LINE sends small JSON payloads.
	WebhookHTTPRead = 10 * time.Second

	// WebhookHTTPWrite is the HTTP server write timeout.
	// Should accommodate WebhookProcessing + response serialization.
	WebhookHTTPWrite = 35 * time.Second

	// WebhookHTTPIdle is the HTTP server idle timeout for keep-alive connections.
	WebhookHTTPIdle = 120 * time.Second
)

// Order sheet timeouts
const (
	// SheetRequest is the timeout for a single HTTP request to the sheet's
	// CSV export endpoint.
	SheetRequest = 30 * time.Second

	// SheetRetryInitial is the initial delay before retrying a failed fetch.
	// Uses exponential backoff: 2s -> 4s -> 8s -> 16s
	SheetRetryInitial = 2 * time.Second

	// SheetRefreshInitialDelay is how long the background refresher waits
	// after startup before the first fetch, letting the server come up on
	// the persisted snapshot first.
	SheetRefreshInitialDelay = 5 * time.Second
)

// Database timeouts
const (
	// DatabaseBusyTimeout is SQLite busy_timeout pragma value.
	DatabaseBusyTimeout = 30 * time.Second

	// DatabaseConnMaxLifetime is the maximum lifetime of database connections.
	DatabaseConnMaxLifetime = time.Hour
)
