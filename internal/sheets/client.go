// Package sheets fetches the order sheet as CSV and parses it into
// order records. The sheet is published through the Google Sheets CSV
// export endpoint, so a plain HTTP GET is all that is needed.
package sheets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/avolkov/osg-linebot-go/internal/config"
	apperrors "github.com/avolkov/osg-linebot-go/internal/errors"
	"github.com/avolkov/osg-linebot-go/internal/logger"
	"github.com/avolkov/osg-linebot-go/internal/metrics"
	"github.com/avolkov/osg-linebot-go/internal/storage"
)

// maxResponseBytes caps the CSV body size. Order sheets are a few
// hundred rows; anything larger is a misconfigured URL.
const maxResponseBytes = 10 << 20

// Result is a parsed sheet fetch.
type Result struct {
	Orders    []storage.Order
	Skipped   int
	FetchedAt time.Time
}

// Client fetches and parses the order sheet.
type Client struct {
	httpClient *http.Client
	url        string
	maxRetries int
	group      singleflight.Group
	metrics    *metrics.Metrics
	log        *logger.Logger
}

// NewClient creates a sheet client for the given CSV export URL.
func NewClient(url string, timeout time.Duration, maxRetries int, m *metrics.Metrics, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		url:        url,
		maxRetries: maxRetries,
		metrics:    m,
		log:        log.WithModule("sheets"),
	}
}

// URL returns the configured CSV export URL.
func (c *Client) URL() string {
	return c.url
}

// Fetch downloads and parses the sheet. Concurrent callers share a
// single in-flight request via singleflight.
func (c *Client) Fetch(ctx context.Context) (*Result, error) {
	v, err, shared := c.group.Do("fetch", func() (interface{}, error) {
		return c.fetch(ctx)
	})
	if shared && c.metrics != nil {
		c.metrics.RecordSingleflightDedup("sheets")
	}
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

func (c *Client) fetch(ctx context.Context) (*Result, error) {
	if c.url == "" {
		return nil, fmt.Errorf("no sheet URL configured")
	}

	start := time.Now()

	var body []byte
	err := RetryWithBackoff(ctx, c.maxRetries, config.SheetRetryInitial, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
		if err != nil {
			return Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Accept", "text/csv")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			sheetErr := apperrors.NewSheetError(c.url, resp.StatusCode, fmt.Errorf("unexpected status"))
			switch resp.StatusCode {
			case http.StatusNotFound, http.StatusForbidden, http.StatusUnauthorized:
				// Wrong URL or revoked sharing; retrying won't help
				return Permanent(sheetErr)
			default:
				return sheetErr
			}
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		return nil
	})

	duration := time.Since(start).Seconds()
	if err != nil {
		if c.metrics != nil {
			status := "error"
			if ctx.Err() != nil {
				status = "timeout"
			}
			c.metrics.RecordSheetFetch(status, duration)
		}
		return nil, err
	}

	orders, skipped, err := ParseOrders(bytes.NewReader(body))
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordSheetFetch("error", duration)
		}
		return nil, fmt.Errorf("failed to parse sheet: %w", err)
	}

	if c.metrics != nil {
		c.metrics.RecordSheetFetch("success", duration)
		c.metrics.RecordSheetRows(len(orders))
	}

	c.log.WithFields(map[string]any{
		"orders":      len(orders),
		"skipped":     skipped,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("sheet fetched")

	return &Result{
		Orders:    orders,
		Skipped:   skipped,
		FetchedAt: time.Now(),
	}, nil
}

// Describe fetches the sheet and returns a human-readable diagnostic
// summary for the debug command.
func (c *Client) Describe(ctx context.Context) (string, error) {
	res, err := c.Fetch(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Строк с заказами: %d\nПропущено строк: %d\nURL: %s", len(res.Orders), res.Skipped, c.url), nil
}
