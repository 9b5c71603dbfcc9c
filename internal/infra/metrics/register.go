// Package metrics holds the Prometheus collectors of the bot. Every file
// enqueues its collectors from init; MustRegister publishes them once.
package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once       sync.Once
	collectors []prometheus.Collector
)

func register(cs ...prometheus.Collector) {
	collectors = append(collectors, cs...)
}

// MustRegister publishes the enqueued collectors on the default registry.
// Later calls are no-ops.
func MustRegister() { MustRegisterWith(prometheus.DefaultRegisterer) }

// MustRegisterWith is MustRegister against reg.
func MustRegisterWith(reg prometheus.Registerer) {
	once.Do(func() {
		if len(collectors) > 0 {
			reg.MustRegister(collectors...)
		}
	})
}

// norm lowercases a label value. Empty values become "unknown".
func norm(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "unknown"
	}
	return s
}
