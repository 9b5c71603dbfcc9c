package usecase

import (
	"context"
	"errors"
	"time"

	"aura-vcf-bot/internal/domain"
	"aura-vcf-bot/internal/domain/model"
	"aura-vcf-bot/internal/domain/ports/repository"
	"aura-vcf-bot/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// StatsUseCase records finished operations and reports totals to admins.
type StatsUseCase interface {
	Record(ctx context.Context, chatID int64, op model.Operation, files, contacts int) error
	Summary(ctx context.Context, since time.Time) (*model.UsageSummary, error)
}

type statsUC struct {
	usage repository.UsageRepository
	log   *zerolog.Logger
}

func NewStatsUseCase(usage repository.UsageRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{usage: usage, log: logger}
}

func (s *statsUC) Record(ctx context.Context, chatID int64, op model.Operation, files, contacts int) error {
	defer logging.TraceDuration(s.log, "StatsUC.Record")()

	rec, err := model.NewUsageRecord(chatID, op, files, contacts)
	if err != nil {
		return err
	}
	if err := s.usage.Record(ctx, rec); err != nil {
		logging.With(ctx, s.log).Error().Err(err).Str("operation", string(op)).Msg("record usage")
		return err
	}
	return nil
}

func (s *statsUC) Summary(ctx context.Context, since time.Time) (*model.UsageSummary, error) {
	defer logging.TraceDuration(s.log, "StatsUC.Summary")()

	if since.After(time.Now()) {
		return nil, domain.ErrInvalidArgument
	}
	sum, err := s.usage.Summary(ctx, since)
	if errors.Is(err, domain.ErrNotFound) {
		return &model.UsageSummary{Since: since, Operations: map[model.Operation]int{}}, nil
	}
	if err != nil {
		return nil, err
	}
	if sum.Operations == nil {
		sum.Operations = map[model.Operation]int{}
	}
	return sum, nil
}
