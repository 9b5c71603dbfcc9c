package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(dbPoolConns, usagePrunedTotal) }

var (
	dbPoolConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "aura_db_pool_connections",
			Help: "Connections of the usage ledger pool by state.",
		},
		[]string{"state"}, // total, idle, in_use
	)
	usagePrunedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aura_usage_pruned_rows_total",
		Help: "Raw usage rows deleted by retention.",
	})
)

func SetDBPoolStats(total, idle, inUse int32) {
	dbPoolConns.WithLabelValues("total").Set(float64(total))
	dbPoolConns.WithLabelValues("idle").Set(float64(idle))
	dbPoolConns.WithLabelValues("in_use").Set(float64(inUse))
}

func AddUsagePruned(n int64) {
	if n > 0 {
		usagePrunedTotal.Add(float64(n))
	}
}
