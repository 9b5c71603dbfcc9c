package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(workerTasksTotal, keepAlivePingsTotal) }

var (
	workerTasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_tasks_total",
			Help: "Tasks handled by the worker pool, labeled by result.",
		},
		[]string{"result"}, // 'done', 'dropped', 'panic'
	)

	keepAlivePingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keepalive_pings_total",
			Help: "Keep-alive pings against the Telegram API, labeled by result.",
		},
		[]string{"result"},
	)
)

func IncWorkerTask(result string) {
	workerTasksTotal.WithLabelValues(norm(result)).Inc()
}

func IncKeepAlive(ok bool) {
	if ok {
		keepAlivePingsTotal.WithLabelValues("ok").Inc()
		return
	}
	keepAlivePingsTotal.WithLabelValues("error").Inc()
}
