package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNew(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	if m == nil {
		t.Fatal("New() returned nil")
	}

	// Verify all metric fields are initialized
	if m.SheetFetchesTotal == nil {
		t.Error("SheetFetchesTotal is nil")
	}
	if m.SheetFetchDuration == nil {
		t.Error("SheetFetchDuration is nil")
	}
	if m.SheetRowsParsedTotal == nil {
		t.Error("SheetRowsParsedTotal is nil")
	}
	if m.CachedOrders == nil {
		t.Error("CachedOrders is nil")
	}
	if m.CacheHitsTotal == nil {
		t.Error("CacheHitsTotal is nil")
	}
	if m.CacheMissesTotal == nil {
		t.Error("CacheMissesTotal is nil")
	}
	if m.LookupsTotal == nil {
		t.Error("LookupsTotal is nil")
	}
	if m.WebhookDurationSeconds == nil {
		t.Error("WebhookDurationSeconds is nil")
	}
	if m.WebhookRequestsTotal == nil {
		t.Error("WebhookRequestsTotal is nil")
	}
	if m.HTTPErrorsTotal == nil {
		t.Error("HTTPErrorsTotal is nil")
	}
	if m.RateLimiterDropped == nil {
		t.Error("RateLimiterDropped is nil")
	}
	if m.SingleflightDedupTotal == nil {
		t.Error("SingleflightDedupTotal is nil")
	}
}

func TestRecordSheetFetch(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	// Should not panic
	m.RecordSheetFetch("success", 1.5)
	m.RecordSheetFetch("error", 2.0)
	m.RecordSheetFetch("timeout", 30.0)
	m.RecordSheetRows(42)
}

func TestSetCachedOrders(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	// Should not panic; gauge accepts overwrite
	m.SetCachedOrders(0)
	m.SetCachedOrders(100)
	m.SetCachedOrders(37)
}

func TestRecordCacheHitMiss(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	// Should not panic
	m.RecordCacheHit("orders")
	m.RecordCacheMiss("orders")
}

func TestRecordLookup(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	// Should not panic
	m.RecordLookup("message", "success")
	m.RecordLookup("message", "unrecognized")
	m.RecordLookup("postback", "success")
}

func TestRecordWebhook(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	// Should not panic
	m.RecordWebhook("message", "success", 0.5)
	m.RecordWebhook("postback", "error", 1.0)
	m.RecordWebhook("follow", "success", 0.1)
}

func TestRecordHTTPError(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	// Should not panic
	m.RecordHTTPError("timeout", "webhook")
	m.RecordHTTPError("rate_limit", "sheets")
	m.RecordHTTPError("invalid_signature", "webhook")
}

func TestRecordRateLimiterDrop(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	// Should not panic
	m.RecordRateLimiterDrop("user")
	m.RecordRateLimiterDrop("global")
}

func TestMetrics_WithDefaultRegistry(t *testing.T) {
	// Test that metrics can be created with a new registry
	// without conflicting with default registry
	registry := prometheus.NewRegistry()
	m := New(registry)

	// Record some metrics
	m.RecordSheetFetch("success", 1.0)
	m.SetCachedOrders(12)
	m.RecordLookup("message", "success")
	m.RecordWebhook("message", "success", 0.5)

	// Gather metrics to verify they were recorded
	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	// Should have metrics registered
	if len(metricFamilies) == 0 {
		t.Error("No metrics were gathered")
	}

	// Check for specific metric names
	expectedMetrics := map[string]bool{
		"osg_sheet_fetches_total":          false,
		"osg_sheet_fetch_duration_seconds": false,
		"osg_cached_orders":                false,
		"osg_lookups_total":                false,
		"osg_webhook_requests_total":       false,
		"osg_webhook_duration_seconds":     false,
	}

	for _, mf := range metricFamilies {
		if _, ok := expectedMetrics[mf.GetName()]; ok {
			expectedMetrics[mf.GetName()] = true
		}
	}

	for name, found := range expectedMetrics {
		if !found {
			t.Errorf("Expected metric %q not found", name)
		}
	}
}
