package repository

import (
	"context"

	"aura-vcf-bot/internal/domain/model"
)

// BatchRepository collects the files a user uploads until the quiet period ends.
type BatchRepository interface {
	// Append adds a file to the user's batch and returns the new batch size.
	Append(ctx context.Context, tgID int64, file model.InputFile) (int, error)
	// List returns the batch in upload order.
	List(ctx context.Context, tgID int64) ([]model.InputFile, error)
	Clear(ctx context.Context, tgID int64) error
}
