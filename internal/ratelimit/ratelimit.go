// Package ratelimit tracks daily request budgets for the free-tier news
// providers, so a busy dashboard cannot burn through a day's quota before
// lunch.
package ratelimit

import (
	"log/slog"
	"sync"
	"time"
)

// Limiter counts requests per provider against a daily budget. Providers
// without a configured limit are unrestricted. Counters reset 24 hours after
// the previous reset.
type Limiter struct {
	mu        sync.Mutex
	counts    map[string]int
	limits    map[string]int
	resetTime time.Time
	now       func() time.Time
}

func NewLimiter(limits map[string]int) *Limiter {
	l := &Limiter{
		counts: make(map[string]int),
		limits: limits,
		now:    time.Now,
	}
	l.resetTime = l.now().Add(24 * time.Hour)
	return l
}

// TryUse records one request for the provider if budget remains. It returns
// false when the provider has exhausted its daily budget.
func (l *Limiter) TryUse(provider string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.checkReset()

	limit, limited := l.limits[provider]
	if !limited {
		return true
	}
	if l.counts[provider] >= limit {
		slog.Warn("daily request budget exhausted", "provider", provider, "limit", limit)
		return false
	}

	l.counts[provider]++
	return true
}

// Remaining reports how many requests the provider has left today, or -1 for
// unrestricted providers.
func (l *Limiter) Remaining(provider string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.checkReset()

	limit, limited := l.limits[provider]
	if !limited {
		return -1
	}
	remaining := limit - l.counts[provider]
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (l *Limiter) GetStats() map[string]interface{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.checkReset()

	stats := make(map[string]interface{}, len(l.limits)+1)
	for provider, limit := range l.limits {
		stats[provider+"_used"] = l.counts[provider]
		stats[provider+"_limit"] = limit
	}
	stats["reset_time"] = l.resetTime.Format(time.RFC3339)
	return stats
}

func (l *Limiter) checkReset() {
	if l.now().After(l.resetTime) {
		slog.Info("resetting provider request budgets")
		l.counts = make(map[string]int)
		l.resetTime = l.now().Add(24 * time.Hour)
	}
}
