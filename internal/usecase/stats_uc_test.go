//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"aura-vcf-bot/internal/domain"
	"aura-vcf-bot/internal/domain/model"
	"aura-vcf-bot/internal/usecase"
)

func TestStatsUseCase(t *testing.T) {
	ctx := context.Background()
	testLogger := newTestLogger()

	t.Run("Record should store a metadata-only usage row", func(t *testing.T) {
		repo := &memUsageRepo{}
		uc := usecase.NewStatsUseCase(repo, testLogger)

		if err := uc.Record(ctx, 42, model.OpRenameFiles, 3, 0); err != nil {
			t.Fatalf("expected no error, but got %v", err)
		}
		if len(repo.records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(repo.records))
		}
		rec := repo.records[0]
		if rec.ChatID != 42 || rec.Operation != model.OpRenameFiles || rec.Files != 3 {
			t.Errorf("unexpected record: %+v", rec)
		}
	})

	t.Run("Record should reject an unknown operation", func(t *testing.T) {
		uc := usecase.NewStatsUseCase(&memUsageRepo{}, testLogger)
		err := uc.Record(ctx, 42, model.Operation("bogus"), 1, 1)
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Record should propagate repository errors", func(t *testing.T) {
		boom := errors.New("db down")
		uc := usecase.NewStatsUseCase(&memUsageRepo{recordErr: boom}, testLogger)
		if err := uc.Record(ctx, 1, model.OpCount, 1, 0); !errors.Is(err, boom) {
			t.Errorf("expected repository error, got %v", err)
		}
	})

	t.Run("Summary should return an empty summary when nothing was recorded", func(t *testing.T) {
		uc := usecase.NewStatsUseCase(&memUsageRepo{}, testLogger)
		since := time.Now().Add(-24 * time.Hour)
		sum, err := uc.Summary(ctx, since)
		if err != nil {
			t.Fatalf("expected no error, but got %v", err)
		}
		if sum.Users != 0 || sum.Operations == nil {
			t.Errorf("unexpected summary: %+v", sum)
		}
	})

	t.Run("Summary should pass through repository totals", func(t *testing.T) {
		repo := &memUsageRepo{summary: &model.UsageSummary{
			Users:      5,
			Operations: map[model.Operation]int{model.OpCount: 7},
			FilesOut:   9,
		}}
		uc := usecase.NewStatsUseCase(repo, testLogger)
		sum, err := uc.Summary(ctx, time.Now().Add(-time.Hour))
		if err != nil {
			t.Fatalf("expected no error, but got %v", err)
		}
		if sum.Users != 5 || sum.Operations[model.OpCount] != 7 || sum.FilesOut != 9 {
			t.Errorf("unexpected summary: %+v", sum)
		}
	})

	t.Run("Summary should reject a future start", func(t *testing.T) {
		uc := usecase.NewStatsUseCase(&memUsageRepo{}, testLogger)
		if _, err := uc.Summary(ctx, time.Now().Add(time.Hour)); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
