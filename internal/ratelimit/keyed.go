package ratelimit

import (
	"sync"
	"time"

	"github.com/avolkov/osg-linebot-go/internal/metrics"
)

// KeyedConfig configures a KeyedLimiter instance.
type KeyedConfig struct {
	// Name identifies this limiter for metrics (e.g., "user")
	Name string

	// Token bucket settings
	Burst      float64 // Maximum tokens (burst capacity)
	RefillRate float64 // Tokens refilled per second

	// CleanupPeriod controls how often inactive limiters are removed
	CleanupPeriod time.Duration

	// Optional metrics reporter
	Metrics *metrics.Metrics
}

// KeyedLimiter tracks rate limits per key (e.g., chat ID).
// It creates a separate token bucket for each key and automatically
// cleans up buckets that have refilled to capacity.
type KeyedLimiter struct {
	mu      sync.RWMutex
	buckets map[string]*Limiter
	config  KeyedConfig
	onDrop  func()
	stopCh  chan struct{}
}

// NewKeyedLimiter creates a new per-key rate limiter.
//
// Example:
//
//	limiter := NewKeyedLimiter(KeyedConfig{
//	    Name:          "user",
//	    Burst:         15,
//	    RefillRate:    0.1, // 1 token per 10 seconds
//	    CleanupPeriod: 5 * time.Minute,
//	})
//	defer limiter.Stop()
func NewKeyedLimiter(cfg KeyedConfig) *KeyedLimiter {
	kl := &KeyedLimiter{
		buckets: make(map[string]*Limiter),
		config:  cfg,
		stopCh:  make(chan struct{}),
	}

	if cfg.Metrics != nil {
		kl.onDrop = func() {
			cfg.Metrics.RecordRateLimiterDrop(cfg.Name)
		}
	}

	go kl.cleanupLoop()

	return kl
}

// Allow checks if a request for the given key is allowed.
// Returns true if allowed (token consumed), false if rate limit exceeded.
// An empty key is always allowed.
func (kl *KeyedLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	if kl.getOrCreateBucket(key).Allow() {
		return true
	}

	if kl.onDrop != nil {
		kl.onDrop()
	}
	return false
}

// getOrCreateBucket returns the bucket for a key, creating it if needed.
func (kl *KeyedLimiter) getOrCreateBucket(key string) *Limiter {
	kl.mu.RLock()
	bucket, exists := kl.buckets[key]
	kl.mu.RUnlock()

	if exists {
		return bucket
	}

	kl.mu.Lock()
	defer kl.mu.Unlock()

	// Double-check after acquiring write lock
	bucket, exists = kl.buckets[key]
	if exists {
		return bucket
	}

	bucket = New(kl.config.Burst, kl.config.RefillRate)
	kl.buckets[key] = bucket
	return bucket
}

// GetAvailable returns the number of available tokens for a key.
// Returns Burst if the key has no bucket yet.
func (kl *KeyedLimiter) GetAvailable(key string) float64 {
	if key == "" {
		return kl.config.Burst
	}

	kl.mu.RLock()
	bucket, exists := kl.buckets[key]
	kl.mu.RUnlock()

	if !exists {
		return kl.config.Burst
	}

	return bucket.Available()
}

// GetActiveCount returns the number of active buckets.
func (kl *KeyedLimiter) GetActiveCount() int {
	kl.mu.RLock()
	defer kl.mu.RUnlock()
	return len(kl.buckets)
}

// cleanupLoop periodically removes inactive buckets.
func (kl *KeyedLimiter) cleanupLoop() {
	ticker := time.NewTicker(kl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-kl.stopCh:
			return
		case <-ticker.C:
			kl.mu.Lock()
			for key, bucket := range kl.buckets {
				// Full bucket means no recent activity
				if bucket.IsFull() {
					delete(kl.buckets, key)
				}
			}
			kl.mu.Unlock()
		}
	}
}

// Stop gracefully stops the cleanup goroutine.
// Safe to call multiple times.
func (kl *KeyedLimiter) Stop() {
	select {
	case <-kl.stopCh:
		// Already stopped
	default:
		close(kl.stopCh)
	}
}
