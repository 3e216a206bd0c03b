// Package ratelimit paces navigations per tracking host.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	urlutil "github.com/law-makers/shiptrack/internal/utils/url"
)

// HostLimiter keeps one token bucket per host so the tracking site sees at
// most one page load per interval, regardless of how many ships are queued.
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	every    rate.Limit
	burst    int
}

// NewHostLimiter allows burst navigations and then one every interval per
// host. A non-positive interval disables limiting.
func NewHostLimiter(interval time.Duration, burst int) *HostLimiter {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		every:    limit,
		burst:    burst,
	}
}

// Wait blocks until a navigation to rawURL may start
func (l *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	host := urlutil.Host(rawURL)
	if host == "" {
		// Invalid URL, let navigation fail on its own
		return nil
	}
	return l.get(host).Wait(ctx)
}

func (l *HostLimiter) get(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[host]
	if !ok {
		lim = rate.NewLimiter(l.every, l.burst)
		l.limiters[host] = lim
	}
	return lim
}
