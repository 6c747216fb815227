package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Sheet fetch metrics
	SheetFetchesTotal    *prometheus.CounterVec
	SheetFetchDuration   prometheus.Histogram
	SheetRowsParsedTotal prometheus.Counter

	// Order cache metrics
	CachedOrders     prometheus.Gauge
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Shelf-life lookup metrics
	LookupsTotal *prometheus.CounterVec

	// Webhook metrics
	WebhookDurationSeconds *prometheus.HistogramVec
	WebhookRequestsTotal   *prometheus.CounterVec

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec

	// Rate limiter metrics
	RateLimiterDropped *prometheus.CounterVec

	// Singleflight metrics
	SingleflightDedupTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		// Sheet fetch metrics
		SheetFetchesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "osg_sheet_fetches_total",
				Help: "Total number of spreadsheet fetch attempts by status",
			},
			[]string{"status"}, // status: success, error, timeout
		),

		SheetFetchDuration: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "osg_sheet_fetch_duration_seconds",
				Help:    "Spreadsheet fetch duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60}, // Matches fetch timeout + backoff
			},
		),

		SheetRowsParsedTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "osg_sheet_rows_parsed_total",
				Help: "Total number of spreadsheet rows parsed across all fetches",
			},
		),

		// Order cache metrics
		CachedOrders: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "osg_cached_orders",
				Help: "Number of orders in the current cache snapshot",
			},
		),

		CacheHitsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "osg_cache_hits_total",
				Help: "Total number of order cache hits by module",
			},
			[]string{"module"},
		),

		CacheMissesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "osg_cache_misses_total",
				Help: "Total number of order cache misses by module",
			},
			[]string{"module"},
		),

		// Shelf-life lookup metrics
		LookupsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "osg_lookups_total",
				Help: "Total number of shelf-life lookups by source and status",
			},
			[]string{"source", "status"}, // source: message, postback; status: success, unrecognized
		),

		// Webhook metrics
		WebhookDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "osg_webhook_duration_seconds",
				Help:    "Webhook processing duration in seconds by event type",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5}, // Faster buckets for webhook
			},
			[]string{"event_type"}, // event_type: message, postback, follow
		),

		WebhookRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "osg_webhook_requests_total",
				Help: "Total number of webhook requests by event type and status",
			},
			[]string{"event_type", "status"}, // status: success, error
		),

		// HTTP metrics
		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "osg_http_errors_total",
				Help: "Total HTTP errors by type and module",
			},
			[]string{"error_type", "module"}, // error_type: timeout, rate_limit, invalid_signature, etc.
		),

		// Rate limiter metrics
		RateLimiterDropped: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "osg_rate_limiter_dropped_total",
				Help: "Total number of requests dropped by rate limiter",
			},
			[]string{"limiter_type"}, // limiter_type: user, global
		),

		// Singleflight metrics
		SingleflightDedupTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "osg_singleflight_dedup_total",
				Help: "Total number of deduplicated fetches (callers that waited instead of executing)",
			},
			[]string{"module"},
		),
	}

	return m
}

// RecordSheetFetch records a spreadsheet fetch attempt with status
func (m *Metrics) RecordSheetFetch(status string, duration float64) {
	m.SheetFetchesTotal.WithLabelValues(status).Inc()
	m.SheetFetchDuration.Observe(duration)
}

// RecordSheetRows records the number of rows parsed from a fetch
func (m *Metrics) RecordSheetRows(n int) {
	m.SheetRowsParsedTotal.Add(float64(n))
}

// SetCachedOrders sets the current cache snapshot size
func (m *Metrics) SetCachedOrders(n int) {
	m.CachedOrders.Set(float64(n))
}

// RecordCacheHit records an order cache hit
func (m *Metrics) RecordCacheHit(module string) {
	m.CacheHitsTotal.WithLabelValues(module).Inc()
}

// RecordCacheMiss records an order cache miss
func (m *Metrics) RecordCacheMiss(module string) {
	m.CacheMissesTotal.WithLabelValues(module).Inc()
}

// RecordLookup records a shelf-life lookup outcome
func (m *Metrics) RecordLookup(source, status string) {
	m.LookupsTotal.WithLabelValues(source, status).Inc()
}

// RecordWebhook records a webhook request
func (m *Metrics) RecordWebhook(eventType, status string, duration float64) {
	m.WebhookRequestsTotal.WithLabelValues(eventType, status).Inc()
	m.WebhookDurationSeconds.WithLabelValues(eventType).Observe(duration)
}

// RecordHTTPError records HTTP error metrics
func (m *Metrics) RecordHTTPError(errorType, module string) {
	m.HTTPErrorsTotal.WithLabelValues(errorType, module).Inc()
}

// RecordRateLimiterDrop records a request dropped by rate limiter
func (m *Metrics) RecordRateLimiterDrop(limiterType string) {
	m.RateLimiterDropped.WithLabelValues(limiterType).Inc()
}

// RecordSingleflightDedup records a deduplicated fetch
func (m *Metrics) RecordSingleflightDedup(module string) {
	m.SingleflightDedupTotal.WithLabelValues(module).Inc()
}
