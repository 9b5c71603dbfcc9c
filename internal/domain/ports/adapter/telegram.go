// File: internal/domain/ports/adapter/telegram.go
package adapter

import (
	"context"

	"aura-vcf-bot/internal/domain/model"
)

type InlineButton struct {
	Text string
	Data string
	URL  string
}

type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, telegramID int64, text string) error
	SendButtons(ctx context.Context, telegramID int64, text string, rows [][]InlineButton) error
	// SendDocument delivers a generated file; transient failures are retried by the adapter.
	SendDocument(ctx context.Context, telegramID int64, file model.OutputFile) error
}

// DocumentRef describes an uploaded document before it is downloaded.
type DocumentRef struct {
	FileID   string
	FileName string
	FileSize int64
}

// FileDownloader fetches an uploaded document, refusing anything above maxBytes.
type FileDownloader interface {
	Download(ctx context.Context, fileID string, maxBytes int64) ([]byte, error)
}

// MembershipChecker reports whether a user joined every required channel.
type MembershipChecker interface {
	IsMemberOfAll(ctx context.Context, userID int64) (bool, error)
}
