package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"aura-vcf-bot/internal/domain"
	"aura-vcf-bot/internal/domain/model"
	"aura-vcf-bot/internal/infra/logging"
	"aura-vcf-bot/internal/infra/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// SendDocument uploads a generated file. Transient failures are retried;
// consecutive documents are paced so a large batch does not hit flood limits.
func (r *RealTelegramBotAdapter) SendDocument(ctx context.Context, telegramID int64, file model.OutputFile) error {
	doc := tgbotapi.NewDocument(telegramID, tgbotapi.FileBytes{Name: file.Name, Bytes: file.Data})
	if err := r.send(ctx, doc); err != nil {
		metrics.IncDocumentSent("failed")
		return fmt.Errorf("send %s: %w", file.Name, err)
	}
	metrics.IncDocumentSent("ok")
	return sleepCtx(ctx, r.sendGap)
}

// send delivers c, retrying up to limits.SendRetries times on network
// errors, flood control and server errors with a linear backoff.
func (r *RealTelegramBotAdapter) send(ctx context.Context, c tgbotapi.Chattable) error {
	var err error
	for attempt := 0; attempt <= r.limits.SendRetries; attempt++ {
		if attempt > 0 {
			metrics.IncDocumentSent("retried")
			if werr := sleepCtx(ctx, retryDelay(err, r.backoff, attempt)); werr != nil {
				return werr
			}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err = r.bot.Send(c); err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		logging.With(ctx, r.log).Warn().Err(err).Int("attempt", attempt+1).Msg("telegram send failed")
	}
	return err
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, io.ErrUnexpectedEOF)
}

// retryDelay honors retry_after from flood control, otherwise backoff*attempt.
func retryDelay(err error, backoff time.Duration, attempt int) time.Duration {
	d := backoff * time.Duration(attempt)
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		if ra := time.Duration(apiErr.RetryAfter) * time.Second; ra > d {
			return ra
		}
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Download fetches an uploaded document. Files above maxBytes are refused
// with domain.ErrFileTooLarge; the returned bytes are then only a prefix.
func (r *RealTelegramBotAdapter) Download(ctx context.Context, fileID string, maxBytes int64) ([]byte, error) {
	f, err := r.bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	if maxBytes > 0 && int64(f.FileSize) > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(r.fileEndpoint, r.bot.Token, f.FilePath), nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if maxBytes > 0 {
		body = io.LimitReader(resp.Body, maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return data, domain.ErrFileTooLarge
	}
	metrics.ObserveDownload(len(data))
	return data, nil
}
