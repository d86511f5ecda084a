package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ask outcomes
const (
	OutcomeAnswered = "answered"
	OutcomeWarning  = "warning"
	OutcomeError    = "error"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	askTotal     *prometheus.CounterVec
	modelLatency prometheus.Histogram
	cacheTotal   *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		askTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "insights",
			Name:      "ask_total",
			Help:      "Questions answered by route and outcome",
		}, []string{"route", "outcome"}),
		modelLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "insights",
			Name:      "model_request_seconds",
			Help:      "Latency of text-generation requests",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}),
		cacheTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "insights",
			Subsystem: "intent_cache",
			Name:      "lookups_total",
			Help:      "Intent cache lookups by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) observeAsk(route, outcome string) {
	if m == nil {
		return
	}
	m.askTotal.WithLabelValues(route, outcome).Inc()
}

func (m *Metrics) observeModel(d time.Duration) {
	if m == nil {
		return
	}
	m.modelLatency.Observe(d.Seconds())
}

func (m *Metrics) observeCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheTotal.WithLabelValues(result).Inc()
}
