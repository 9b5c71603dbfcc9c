package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"aura-vcf-bot/internal/domain/model"
	"aura-vcf-bot/internal/domain/ports/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo keeps each user's pending uploads as a Redis list of JSON files.
type BatchRepo struct {
	client RedisClient
	ttl    time.Duration
}

func NewBatchRepo(client RedisClient, ttl time.Duration) *BatchRepo {
	return &BatchRepo{client: client, ttl: ttl}
}

func batchKey(tgID int64) string {
	return fmt.Sprintf("upload_batch:%d", tgID)
}

func (b *BatchRepo) Append(ctx context.Context, tgID int64, file model.InputFile) (int, error) {
	data, err := json.Marshal(file)
	if err != nil {
		return 0, err
	}
	n, err := b.client.RPush(ctx, batchKey(tgID), data)
	if err != nil {
		return 0, err
	}
	// refresh on every upload so an active batch never expires mid-flow
	if err := b.client.Expire(ctx, batchKey(tgID), b.ttl); err != nil {
		return 0, err
	}
	return int(n), nil
}

func (b *BatchRepo) List(ctx context.Context, tgID int64) ([]model.InputFile, error) {
	raw, err := b.client.LRange(ctx, batchKey(tgID), 0, -1)
	if err != nil {
		return nil, err
	}
	files := make([]model.InputFile, 0, len(raw))
	for _, item := range raw {
		var f model.InputFile
		if err := json.Unmarshal([]byte(item), &f); err != nil {
			return nil, fmt.Errorf("decode batch item: %w", err)
		}
		files = append(files, f)
	}
	return files, nil
}

func (b *BatchRepo) Clear(ctx context.Context, tgID int64) error {
	return b.client.Del(ctx, batchKey(tgID))
}
