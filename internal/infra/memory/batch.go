package memory

import (
	"context"
	"sync"

	"aura-vcf-bot/internal/domain/model"
	"aura-vcf-bot/internal/domain/ports/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

type BatchRepo struct {
	mu      sync.Mutex
	batches map[int64][]model.InputFile
}

func NewBatchRepo() *BatchRepo {
	return &BatchRepo{batches: make(map[int64][]model.InputFile)}
}

func (b *BatchRepo) Append(ctx context.Context, tgID int64, file model.InputFile) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.batches[tgID] = append(b.batches[tgID], file)
	return len(b.batches[tgID]), nil
}

func (b *BatchRepo) List(ctx context.Context, tgID int64) ([]model.InputFile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.InputFile(nil), b.batches[tgID]...), nil
}

func (b *BatchRepo) Clear(ctx context.Context, tgID int64) error {
	b.mu.Lock()
	delete(b.batches, tgID)
	b.mu.Unlock()
	return nil
}
