package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"aura-vcf-bot/internal/infra/logging"
	"aura-vcf-bot/internal/infra/metrics"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// SecretHeader carries the webhook secret Telegram echoes back.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

const maxUpdateBytes = 1 << 20

// UpdateSink accepts decoded webhook updates for asynchronous processing.
type UpdateSink interface {
	Enqueue(update tgbotapi.Update) error
}

type Options struct {
	Version        string
	SecretToken    string
	RequestTimeout time.Duration
}

// Server serves health, the Telegram webhook and Prometheus metrics. It is
// usable before the bot is attached; /webhook answers 500 until then.
type Server struct {
	opts Options
	log  *zerolog.Logger

	mu   sync.RWMutex
	sink UpdateSink
}

func NewServer(opts Options, logger *zerolog.Logger) *Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	l := logger.With().Str("component", "HTTPServer").Logger()
	return &Server{opts: opts, log: &l}
}

// AttachBot marks the bot initialized and routes webhook updates to sink.
func (s *Server) AttachBot(sink UpdateSink) {
	s.mu.Lock()
	s.sink = sink
	s.mu.Unlock()
}

func (s *Server) bot() UpdateSink {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sink
}

// Router builds the chi router with the standard middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID(), Recover(s.log), RequestLog(s.log), Timeout(s.opts.RequestTimeout))

	r.Get("/health", s.handleHealth)
	r.With(RequireSecret(SecretHeader, s.opts.SecretToken)).Post("/webhook", s.handleWebhook)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

type botStatus struct {
	Status  string `json:"status"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

type healthResponse struct {
	Status      string    `json:"status"`
	Service     string    `json:"service"`
	Version     string    `json:"version"`
	TelegramBot botStatus `json:"telegram_bot"`
}

// handleHealth always answers 200 while the process serves HTTP.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok", Service: "aura-vcf-bot", Version: s.opts.Version}
	if s.bot() == nil {
		resp.TelegramBot = botStatus{Status: "not_initialized", Reason: "Telegram bot initialization failed or timed out"}
	} else {
		resp.TelegramBot = botStatus{Status: "initialized", Message: "Telegram bot is ready"}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	l := logging.With(r.Context(), s.log)
	sink := s.bot()
	if sink == nil {
		metrics.IncWebhook("5xx")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Bot not initialized"})
		return
	}

	var update tgbotapi.Update
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBytes))
	if err := dec.Decode(&update); err != nil {
		metrics.IncWebhook("4xx")
		l.Warn().Err(err).Msg("bad webhook payload")
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
		return
	}

	if err := sink.Enqueue(update); err != nil {
		metrics.IncWebhook("5xx")
		l.Error().Err(err).Int("update_id", update.UpdateID).Msg("enqueue update")
		// Telegram redelivers on 5xx
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"detail": err.Error()})
		return
	}
	metrics.IncWebhook("2xx")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
