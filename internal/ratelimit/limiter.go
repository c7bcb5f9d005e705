// Package ratelimit throttles outbound page fetches per target host so the
// pipeline never hammers a site it is analyzing.
package ratelimit

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter gates outbound requests. The fetcher calls Wait before every GET;
// Allow exists for callers that prefer to skip instead of block.
type Limiter interface {
	// Wait blocks until a request to urlStr may proceed, or the context is
	// cancelled.
	Wait(ctx context.Context, urlStr string) error

	// Allow reports whether a request to urlStr may proceed right now.
	Allow(urlStr string) bool
}

// HostLimiter is a token-bucket Limiter keyed by URL host. Buckets are
// created on first use and kept for the process lifetime; the pipeline
// touches a handful of hosts per run, so there is no eviction.
type HostLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	perHost  rate.Limit
	burst    int
}

func NewHostLimiter(requestsPerSecond float64, burst int) *HostLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2.0
	}
	if burst <= 0 {
		burst = 4
	}
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		perHost:  rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

func (hl *HostLimiter) Wait(ctx context.Context, urlStr string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	host := hostOf(urlStr)
	if host == "" {
		// Unparseable URL; the fetch itself will report the real error.
		return nil
	}
	return hl.bucket(host).Wait(ctx)
}

func (hl *HostLimiter) Allow(urlStr string) bool {
	host := hostOf(urlStr)
	if host == "" {
		return true
	}
	return hl.bucket(host).Allow()
}

func (hl *HostLimiter) bucket(host string) *rate.Limiter {
	hl.mu.RLock()
	limiter, ok := hl.limiters[host]
	hl.mu.RUnlock()
	if ok {
		return limiter
	}

	hl.mu.Lock()
	defer hl.mu.Unlock()
	if limiter, ok := hl.limiters[host]; ok {
		return limiter
	}
	limiter = rate.NewLimiter(hl.perHost, hl.burst)
	hl.limiters[host] = limiter
	return limiter
}

func hostOf(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Host
}
