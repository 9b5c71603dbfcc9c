package repository

import (
	"context"
	"time"
)

// RateLimiter decides whether another event under key fits the window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
