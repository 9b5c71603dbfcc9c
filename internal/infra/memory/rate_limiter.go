package memory

import (
	"context"
	"sync"
	"time"

	"aura-vcf-bot/internal/domain/ports/repository"

	"golang.org/x/time/rate"
)

var _ repository.RateLimiter = (*RateLimiter)(nil)

// RateLimiter keeps one token bucket per key. A bucket refills limit tokens
// per window and bursts up to limit.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{limiters: make(map[string]*rate.Limiter)}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return false, nil
	}
	r.mu.Lock()
	l, ok := r.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)
		r.limiters[key] = l
	}
	r.mu.Unlock()
	return l.Allow(), nil
}
