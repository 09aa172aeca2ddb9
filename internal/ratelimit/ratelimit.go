package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter defines the interface for rate limiting
// This abstraction allows swapping between in-memory and distributed implementations
type RateLimiter interface {
	// Allow checks if a request from the given key (IP, user ID, etc.) is allowed
	// Returns true if allowed, false if rate limit exceeded
	Allow(ctx context.Context, key string) bool
}

// InMemoryRateLimiter implements rate limiting using in-memory token buckets.
// Suitable for single-instance deployments.
type InMemoryRateLimiter struct {
	// rate is requests per second
	rate rate.Limit

	// burst is the maximum burst size
	burst int

	// limiters stores per-key rate limiters
	limiters sync.Map // map[string]*rate.Limiter

	// cleanupInterval is how often to clean up old limiters
	cleanupInterval time.Duration

	// maxAge is how long to keep inactive limiters
	maxAge time.Duration

	// lastAccess tracks when each limiter was last used
	lastAccess sync.Map // map[string]time.Time

	// stopCleanup signals cleanup goroutine to stop
	stopCleanup chan struct{}
}

// NewInMemoryRateLimiter creates a new in-memory rate limiter
// rps: requests per second; burst: maximum burst size
func NewInMemoryRateLimiter(rps float64, burst int) *InMemoryRateLimiter {
	limiter := &InMemoryRateLimiter{
		rate:            rate.Limit(rps),
		burst:           burst,
		cleanupInterval: 5 * time.Minute,
		maxAge:          10 * time.Minute,
		stopCleanup:     make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

// Allow checks if a single request is allowed
func (l *InMemoryRateLimiter) Allow(ctx context.Context, key string) bool {
	limiter := l.getLimiter(key)
	l.lastAccess.Store(key, time.Now().UTC())
	return limiter.Allow()
}

// getLimiter returns the limiter for key, creating it if needed
func (l *InMemoryRateLimiter) getLimiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}
	v, _ := l.limiters.LoadOrStore(key, rate.NewLimiter(l.rate, l.burst))
	return v.(*rate.Limiter)
}

// Stop terminates the cleanup goroutine
func (l *InMemoryRateLimiter) Stop() {
	close(l.stopCleanup)
}

// cleanup periodically removes limiters that have not been used recently
func (l *InMemoryRateLimiter) cleanup() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-l.maxAge)
			l.lastAccess.Range(func(key, value any) bool {
				if value.(time.Time).Before(cutoff) {
					l.limiters.Delete(key)
					l.lastAccess.Delete(key)
				}
				return true
			})
		case <-l.stopCleanup:
			return
		}
	}
}
