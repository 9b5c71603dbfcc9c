package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(vcfOperationsTotal, vcfContactsTotal, batchDuration)
}

var (
	vcfOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vcf_operations_total",
			Help: "Completed transformer operations, labeled by operation and status.",
		},
		[]string{"operation", "status"},
	)

	vcfContactsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vcf_contacts_written_total",
			Help: "Contacts written into generated files, labeled by operation.",
		},
		[]string{"operation"},
	)

	batchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vcf_batch_duration_seconds",
			Help:    "Time spent processing one upload batch.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

func IncOperation(op, status string) {
	vcfOperationsTotal.WithLabelValues(norm(op), norm(status)).Inc()
}

func AddContacts(op string, n int) {
	if n <= 0 {
		return
	}
	vcfContactsTotal.WithLabelValues(norm(op)).Add(float64(n))
}

func ObserveBatch(op string, d time.Duration) {
	batchDuration.WithLabelValues(norm(op)).Observe(d.Seconds())
}
