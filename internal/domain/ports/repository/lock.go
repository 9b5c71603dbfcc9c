package repository

import (
	"context"
	"time"
)

// Locker guards a key across goroutines or processes.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}
