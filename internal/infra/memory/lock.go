package memory

import (
	"context"
	"sync"
	"time"

	"aura-vcf-bot/internal/domain"
	"aura-vcf-bot/internal/domain/ports/repository"

	"github.com/google/uuid"
)

var _ repository.Locker = (*Locker)(nil)

type lease struct {
	token   string
	expires time.Time
}

// Locker is an in-process lock table with expiring leases.
type Locker struct {
	mu     sync.Mutex
	leases map[string]lease
	now    func() time.Time
}

func NewLocker() *Locker {
	return &Locker{leases: make(map[string]lease), now: time.Now}
}

func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if cur, ok := l.leases[key]; ok && l.now().Before(cur.expires) {
		return "", domain.ErrBatchLocked
	}
	token := uuid.NewString()
	l.leases[key] = lease{token: token, expires: l.now().Add(ttl)}
	return token, nil
}

func (l *Locker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if cur, ok := l.leases[key]; ok && cur.token == token {
		delete(l.leases, key)
	}
	return nil
}
