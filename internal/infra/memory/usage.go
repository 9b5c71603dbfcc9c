package memory

import (
	"context"
	"sync"
	"time"

	"aura-vcf-bot/internal/domain/model"
	"aura-vcf-bot/internal/domain/ports/repository"
)

var _ repository.UsageRepository = (*UsageRepo)(nil)

// UsageRepo keeps the most recent usage records in a bounded ring.
type UsageRepo struct {
	mu      sync.Mutex
	records []model.UsageRecord
	max     int
}

func NewUsageRepo(max int) *UsageRepo {
	if max <= 0 {
		max = 10000
	}
	return &UsageRepo{max: max}
}

func (u *UsageRepo) Record(ctx context.Context, rec *model.UsageRecord) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.records = append(u.records, *rec)
	if over := len(u.records) - u.max; over > 0 {
		u.records = append(u.records[:0], u.records[over:]...)
	}
	return nil
}

func (u *UsageRepo) Summary(ctx context.Context, since time.Time) (*model.UsageSummary, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	sum := &model.UsageSummary{Since: since, Operations: make(map[model.Operation]int)}
	users := make(map[int64]struct{})
	for _, r := range u.records {
		if r.CreatedAt.Before(since) {
			continue
		}
		users[r.ChatID] = struct{}{}
		sum.Operations[r.Operation]++
		sum.FilesOut += r.Files
		sum.ContactsOut += r.Contacts
	}
	sum.Users = len(users)
	return sum, nil
}
