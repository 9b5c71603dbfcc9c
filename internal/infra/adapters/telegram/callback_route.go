package telegram

import (
	"context"
	"errors"
	"strings"

	"aura-vcf-bot/internal/infra/logging"
	"aura-vcf-bot/internal/infra/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleQuery answers the callback to stop the client spinner and forwards
// the button data to the handler.
func (r *RealTelegramBotAdapter) handleQuery(ctx context.Context, h Handler, query *tgbotapi.CallbackQuery) error {
	if query.From == nil {
		return errors.New("invalid callback query")
	}
	metrics.IncTelegramUpdate("callback")

	// Stop telegram spinner when we return
	defer func() { _, _ = r.bot.Request(tgbotapi.NewCallback(query.ID, "")) }()

	chatID := query.From.ID
	if query.Message != nil && query.Message.Chat != nil {
		chatID = query.Message.Chat.ID
	}
	ctx = logging.WithTgID(ctx, chatID)

	if !r.allow(ctx, query.From.ID, "callback") {
		return r.SendMessage(ctx, chatID, r.translator.T("rate_limited"))
	}

	data := strings.TrimSpace(query.Data)
	if err := h.HandleCallback(ctx, chatID, query.From.ID, data); err != nil {
		logging.With(ctx, r.log).Error().Err(err).Str("data", data).Msg("callback failed")
		return r.SendMessage(ctx, chatID, r.translator.T("error_generic"))
	}
	return nil
}
