package repository

import (
	"context"
	"time"

	"aura-vcf-bot/internal/domain/model"
)

// UsageRepository persists metadata-only usage records.
type UsageRepository interface {
	Record(ctx context.Context, rec *model.UsageRecord) error
	Summary(ctx context.Context, since time.Time) (*model.UsageSummary, error)
}
