package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"aura-vcf-bot/internal/application"
	"aura-vcf-bot/internal/config"
	"aura-vcf-bot/internal/domain/ports/adapter"
	"aura-vcf-bot/internal/domain/ports/repository"
	"aura-vcf-bot/internal/infra/i18n"
	"aura-vcf-bot/internal/infra/logging"
	"aura-vcf-bot/internal/infra/metrics"
	red "aura-vcf-bot/internal/infra/redis"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrQueueFull is returned by Enqueue when workers cannot keep up.
var ErrQueueFull = errors.New("update queue full")

// Handler is the flow layer updates are forwarded to.
type Handler interface {
	HandleStart(ctx context.Context, chatID, userID int64) error
	HandleCancel(ctx context.Context, chatID int64) error
	HandleHelp(ctx context.Context, chatID int64) error
	HandleStats(ctx context.Context, chatID int64) error
	HandleCallback(ctx context.Context, chatID, userID int64, data string) error
	HandleText(ctx context.Context, chatID int64, text string) error
	HandleDocument(ctx context.Context, chatID int64, doc adapter.DocumentRef) error
}

var (
	_ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)
	_ adapter.FileDownloader     = (*RealTelegramBotAdapter)(nil)
	_ adapter.MembershipChecker  = (*RealTelegramBotAdapter)(nil)
	_ Handler                    = (*application.BotFacade)(nil)
)

// RealTelegramBotAdapter talks to the Bot API through tgbotapi and feeds
// updates, from polling or the webhook, to a pool of workers.
type RealTelegramBotAdapter struct {
	bot        *tgbotapi.BotAPI
	cfg        *config.BotConfig
	limits     config.LimitsConfig
	limiter    repository.RateLimiter
	translator *i18n.Translator
	log        *zerolog.Logger

	httpClient   *http.Client
	fileEndpoint string
	backoff      time.Duration
	sendGap      time.Duration

	adminIDsMap   map[int64]struct{}
	updateWorkers int
	updates       chan tgbotapi.Update

	mu            sync.RWMutex
	handler       Handler
	cancelPolling context.CancelFunc
	startOnce     sync.Once
	wg            sync.WaitGroup
}

// NewRealTelegramBotAdapter authenticates with the Bot API. limiter may be nil.
func NewRealTelegramBotAdapter(cfg *config.BotConfig, limits config.LimitsConfig, limiter repository.RateLimiter, translator *i18n.Translator, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if translator == nil {
		return nil, errors.New("translator is nil")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	return newAdapter(bot, cfg, limits, limiter, translator, logger), nil
}

func newAdapter(bot *tgbotapi.BotAPI, cfg *config.BotConfig, limits config.LimitsConfig, limiter repository.RateLimiter, translator *i18n.Translator, logger *zerolog.Logger) *RealTelegramBotAdapter {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}
	adminMap := make(map[int64]struct{}, len(cfg.AdminIDs))
	for _, id := range cfg.AdminIDs {
		adminMap[id] = struct{}{}
	}
	l := logger.With().Str("component", "TelegramAdapter").Str("bot", bot.Self.UserName).Logger()
	return &RealTelegramBotAdapter{
		bot:           bot,
		cfg:           cfg,
		limits:        limits,
		limiter:       limiter,
		translator:    translator,
		log:           &l,
		httpClient:    &http.Client{Timeout: 60 * time.Second},
		fileEndpoint:  tgbotapi.FileEndpoint,
		backoff:       500 * time.Millisecond,
		sendGap:       50 * time.Millisecond,
		adminIDsMap:   adminMap,
		updateWorkers: workers,
		updates:       make(chan tgbotapi.Update, 100),
	}
}

// SetHandler wires the flow layer. Updates arriving before it is set are dropped.
func (r *RealTelegramBotAdapter) SetHandler(h Handler) {
	r.mu.Lock()
	r.handler = h
	r.mu.Unlock()
}

func (r *RealTelegramBotAdapter) getHandler() Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handler
}

// Username is the bot's @handle as reported by getMe.
func (r *RealTelegramBotAdapter) Username() string { return r.bot.Self.UserName }

// StartWorkers launches the update workers once. They exit when ctx ends.
func (r *RealTelegramBotAdapter) StartWorkers(ctx context.Context) {
	r.startOnce.Do(func() {
		for i := 0; i < r.updateWorkers; i++ {
			r.wg.Add(1)
			go func(workerID int) {
				defer r.wg.Done()
				for {
					select {
					case update := <-r.updates:
						if err := r.handleUpdate(ctx, update); err != nil {
							r.log.Error().Err(err).Int("worker", workerID).Int("update_id", update.UpdateID).Msg("error handling update")
						}
					case <-ctx.Done():
						return
					}
				}
			}(i + 1)
		}
		r.log.Info().Int("workers", r.updateWorkers).Msg("update workers started")
	})
}

// Wait blocks until all update workers returned.
func (r *RealTelegramBotAdapter) Wait() { r.wg.Wait() }

// Enqueue hands a webhook update to the workers without blocking.
func (r *RealTelegramBotAdapter) Enqueue(update tgbotapi.Update) error {
	select {
	case r.updates <- update:
		return nil
	default:
		return ErrQueueFull
	}
}

// StartPolling drops any webhook and long-polls until ctx is canceled.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	if _, err := r.bot.MakeRequest("deleteWebhook", nil); err != nil {
		r.log.Warn().Err(err).Msg("delete webhook before polling")
	}

	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancelPolling = cancel
	r.mu.Unlock()

	r.StartWorkers(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)
	r.log.Info().Msg("polling started")

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				r.wg.Wait()
				return errors.New("update channel closed")
			}
			select {
			case r.updates <- update:
			case <-ctx.Done():
			}
		case <-ctx.Done():
			r.bot.StopReceivingUpdates()
			r.wg.Wait()
			r.log.Info().Msg("polling stopped")
			return nil
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

// RegisterWebhook points Telegram at baseURL + "/webhook".
func (r *RealTelegramBotAdapter) RegisterWebhook(ctx context.Context, baseURL string) error {
	webhookURL := strings.TrimRight(baseURL, "/") + "/webhook"
	params := tgbotapi.Params{"url": webhookURL}
	if r.cfg.SecretToken != "" {
		params["secret_token"] = r.cfg.SecretToken
	}
	if _, err := r.bot.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	r.log.Info().Str("url", webhookURL).Msg("webhook registered")
	return nil
}

// Ping checks the token against getMe.
func (r *RealTelegramBotAdapter) Ping(ctx context.Context) error {
	_, err := r.bot.GetMe()
	return err
}

func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, tgID int64, text string) error {
	return r.send(ctx, tgbotapi.NewMessage(tgID, text))
}

// SendButtons sends a message with inline buttons.
// - If btn.URL is set, the button opens a link
// - Else if btn.Data is set, the button sends callback data
// - Else the label is used as callback data
func (r *RealTelegramBotAdapter) SendButtons(ctx context.Context, telegramID int64, text string, rows [][]adapter.InlineButton) error {
	msg := tgbotapi.NewMessage(telegramID, text)
	if markup, ok := inlineKeyboard(rows); ok {
		msg.ReplyMarkup = markup
	}
	return r.send(ctx, msg)
}

func inlineKeyboard(rows [][]adapter.InlineButton) (tgbotapi.InlineKeyboardMarkup, bool) {
	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		kr := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			switch {
			case btn.URL != "":
				kr = append(kr, tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL))
			case btn.Data != "":
				kr = append(kr, tgbotapi.NewInlineKeyboardButtonData(label, btn.Data))
			default:
				kr = append(kr, tgbotapi.NewInlineKeyboardButtonData(label, label))
			}
		}
		kbRows = append(kbRows, kr)
	}
	if len(kbRows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(kbRows...), true
}

// handleUpdate processes a single Telegram update.
func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	h := r.getHandler()
	if h == nil {
		return errors.New("no update handler")
	}
	ctx = logging.WithTraceID(ctx, uuid.NewString())

	switch {
	case update.CallbackQuery != nil:
		return r.handleQuery(ctx, h, update.CallbackQuery)
	case update.Message != nil:
		return r.handleMessage(ctx, h, update.Message)
	}
	metrics.IncTelegramUpdate("other")
	return nil
}

func (r *RealTelegramBotAdapter) handleMessage(ctx context.Context, h Handler, message *tgbotapi.Message) error {
	if message.From == nil || message.Chat == nil {
		return nil
	}
	chatID := message.Chat.ID
	ctx = logging.WithTgID(ctx, chatID)

	kind := messageKind(message)
	metrics.IncTelegramUpdate(kind)
	if !r.allow(ctx, message.From.ID, kind) {
		return r.SendMessage(ctx, chatID, r.translator.T("rate_limited"))
	}

	var err error
	switch kind {
	case "command":
		if fn, ok := r.commandRoutes()[message.Command()]; ok {
			err = fn(ctx, h, message)
		} else {
			err = r.SendMessage(ctx, chatID, r.translator.T("use_menu"))
		}
	case "document":
		d := message.Document
		err = h.HandleDocument(ctx, chatID, adapter.DocumentRef{
			FileID:   d.FileID,
			FileName: d.FileName,
			FileSize: int64(d.FileSize),
		})
	case "text":
		err = h.HandleText(ctx, chatID, message.Text)
	default:
		return nil
	}
	if err != nil {
		logging.With(ctx, r.log).Error().Err(err).Str("kind", kind).Msg("handler failed")
		_ = r.SendMessage(ctx, chatID, r.translator.T("error_generic"))
	}
	return nil
}

func messageKind(m *tgbotapi.Message) string {
	switch {
	case m.IsCommand():
		return "command"
	case m.Document != nil:
		return "document"
	case m.Text != "":
		return "text"
	}
	return "other"
}

// allow applies the per-user budget for kind. Uploads get a larger budget
// since a single batch may hold many files. Limiter errors let the update through.
func (r *RealTelegramBotAdapter) allow(ctx context.Context, userID int64, kind string) bool {
	if r.limiter == nil || r.limits.RatePerMinute <= 0 {
		return true
	}
	limit := r.limits.RatePerMinute
	if kind == "document" {
		limit *= 4
	}
	ok, err := r.limiter.Allow(ctx, red.UserUpdateKey(userID, kind), limit, time.Minute)
	if err != nil {
		logging.With(ctx, r.log).Warn().Err(err).Msg("rate limiter unavailable")
		return true
	}
	if !ok {
		metrics.IncRateLimitTriggered()
	}
	return ok
}
