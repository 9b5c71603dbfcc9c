// File: internal/usecase/mocks_test.go
package usecase_test

import (
	"context"
	"io"
	"sync"
	"time"

	"aura-vcf-bot/internal/domain"
	"aura-vcf-bot/internal/domain/model"

	"github.com/rs/zerolog"
)

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// memUsageRepo is a small in-memory implementation used by unit tests.
type memUsageRepo struct {
	mu        sync.Mutex
	records   []*model.UsageRecord
	recordErr error // used by tests to simulate write failures
	summary   *model.UsageSummary
	sumErr    error
}

func (m *memUsageRepo) Record(ctx context.Context, rec *model.UsageRecord) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.records = append(m.records, &cp)
	return nil
}

func (m *memUsageRepo) Summary(ctx context.Context, since time.Time) (*model.UsageSummary, error) {
	if m.sumErr != nil {
		return nil, m.sumErr
	}
	if m.summary == nil {
		return nil, domain.ErrNotFound
	}
	cp := *m.summary
	return &cp, nil
}
