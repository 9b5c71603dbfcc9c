package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		telegramUpdatesTotal,
		telegramRateLimitTriggeredTotal,
		telegramDocumentsSentTotal,
		telegramDownloadBytes,
		webhookRequestsTotal,
		adminCommandsTotal,
	)
}

var (
	telegramUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_updates_received_total",
			Help: "Counts incoming commands, callbacks, texts and documents.",
		},
		[]string{"kind"},
	)

	telegramRateLimitTriggeredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_rate_limit_triggered_total",
			Help: "Total number of times users have been rate-limited.",
		},
	)

	telegramDocumentsSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_documents_sent_total",
			Help: "Generated documents delivered to chats, labeled by result.",
		},
		[]string{"result"}, // 'ok', 'retried', 'failed'
	)

	telegramDownloadBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "telegram_download_bytes",
			Help:    "Size of downloaded user uploads.",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		},
	)

	webhookRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_requests_total",
			Help: "Webhook requests, labeled by response status class.",
		},
		[]string{"status"},
	)

	adminCommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_admin_commands_total",
			Help: "Admin commands, labeled by command and authorization result.",
		},
		[]string{"command", "result"},
	)
)

func IncTelegramUpdate(kind string) {
	telegramUpdatesTotal.WithLabelValues(norm(kind)).Inc()
}

func IncRateLimitTriggered() {
	telegramRateLimitTriggeredTotal.Inc()
}

func IncDocumentSent(result string) {
	telegramDocumentsSentTotal.WithLabelValues(norm(result)).Inc()
}

func ObserveDownload(size int) {
	telegramDownloadBytes.Observe(float64(size))
}

func IncWebhook(status string) {
	webhookRequestsTotal.WithLabelValues(norm(status)).Inc()
}

func IncAdminCommand(command, result string) {
	adminCommandsTotal.WithLabelValues(norm(command), norm(result)).Inc()
}
