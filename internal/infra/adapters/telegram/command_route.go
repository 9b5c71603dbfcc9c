package telegram

import (
	"context"

	"aura-vcf-bot/internal/infra/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type commandHandler func(ctx context.Context, h Handler, message *tgbotapi.Message) error

// commandRoutes defines all available bot commands and their handlers.
func (r *RealTelegramBotAdapter) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start":  r.handleStartCommand,
		"cancel": r.handleCancelCommand,
		"help":   r.handleHelpCommand,

		"stats": r.adminOnly(r.handleStatsCommand),
	}
}

func (r *RealTelegramBotAdapter) adminOnly(next commandHandler) commandHandler {
	return func(ctx context.Context, h Handler, message *tgbotapi.Message) error {
		if _, isAdmin := r.adminIDsMap[message.From.ID]; !isAdmin {
			metrics.IncAdminCommand("/"+message.Command(), "unauthorized")
			return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_only"))
		}
		metrics.IncAdminCommand("/"+message.Command(), "authorized")
		return next(ctx, h, message)
	}
}

func (r *RealTelegramBotAdapter) handleStartCommand(ctx context.Context, h Handler, message *tgbotapi.Message) error {
	_, isAdmin := r.adminIDsMap[message.From.ID]
	if err := r.SetMenuCommands(ctx, message.Chat.ID, isAdmin); err != nil {
		// Log the error but don't block the user
		r.log.Warn().Err(err).Int64("tg_id", message.From.ID).Msg("failed to set menu commands")
	}
	return h.HandleStart(ctx, message.Chat.ID, message.From.ID)
}

func (r *RealTelegramBotAdapter) handleCancelCommand(ctx context.Context, h Handler, message *tgbotapi.Message) error {
	return h.HandleCancel(ctx, message.Chat.ID)
}

func (r *RealTelegramBotAdapter) handleHelpCommand(ctx context.Context, h Handler, message *tgbotapi.Message) error {
	return h.HandleHelp(ctx, message.Chat.ID)
}

func (r *RealTelegramBotAdapter) handleStatsCommand(ctx context.Context, h Handler, message *tgbotapi.Message) error {
	return h.HandleStats(ctx, message.Chat.ID)
}

// SetMenuCommands sets the command list shown in the chat's menu button.
// Admins additionally see /stats.
func (r *RealTelegramBotAdapter) SetMenuCommands(ctx context.Context, chatID int64, isAdmin bool) error {
	commands := []tgbotapi.BotCommand{
		{Command: "start", Description: "Open the menu"},
		{Command: "cancel", Description: "Abort the current task"},
		{Command: "help", Description: "Show help"},
	}
	if isAdmin {
		commands = append(commands, tgbotapi.BotCommand{Command: "stats", Description: "Usage statistics"})
	}
	cfg := tgbotapi.NewSetMyCommandsWithScope(tgbotapi.NewBotCommandScopeChat(chatID), commands...)
	_, err := r.bot.Request(cfg)
	return err
}
