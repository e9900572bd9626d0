package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ordersync/backend/internal/domain/sync"
)

// Metrics is the prometheus surface of the orchestrator. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	cyclesTotal          *prometheus.CounterVec
	sourceSuccessTotal   *prometheus.CounterVec
	sourceFailureTotal   *prometheus.CounterVec
	ordersProcessedTotal *prometheus.CounterVec
	consecutiveFailures  *prometheus.GaugeVec
	cycleDuration        prometheus.Histogram
	sourceUp             *prometheus.GaugeVec
}

// NewMetrics registers the orchestrator metrics on the given registerer
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		cyclesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ordersync",
			Name:      "cycles_total",
			Help:      "Completed sync cycles by result.",
		}, []string{"result"}),
		sourceSuccessTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ordersync",
			Name:      "source_success_total",
			Help:      "Successful source pulls by platform.",
		}, []string{"platform"}),
		sourceFailureTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ordersync",
			Name:      "source_failure_total",
			Help:      "Failed source pulls by platform.",
		}, []string{"platform"}),
		ordersProcessedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ordersync",
			Name:      "orders_processed_total",
			Help:      "Order records processed by platform and result.",
		}, []string{"platform", "result"}),
		consecutiveFailures: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ordersync",
			Name:      "consecutive_failures",
			Help:      "Consecutive failed pulls per source.",
		}, []string{"platform"}),
		cycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ordersync",
			Name:      "cycle_duration_seconds",
			Help:      "Wall-clock duration of sync cycles.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		sourceUp: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ordersync",
			Name:      "source_up",
			Help:      "1 when the source API answered the last health probe.",
		}, []string{"platform"}),
	}
}

func (m *Metrics) observeCycle(result *CycleResult, streaks map[sync.Platform]int) {
	if m == nil {
		return
	}
	outcome := "success"
	if !result.Succeeded {
		outcome = "failure"
	}
	m.cyclesTotal.WithLabelValues(outcome).Inc()
	m.cycleDuration.Observe(result.Duration.Seconds())
	for platform, streak := range streaks {
		m.consecutiveFailures.WithLabelValues(platform.String()).Set(float64(streak))
	}

	for i := range result.Sources {
		src := &result.Sources[i]
		platform := src.Platform.String()
		if src.OK() {
			m.sourceSuccessTotal.WithLabelValues(platform).Inc()
		} else {
			m.sourceFailureTotal.WithLabelValues(platform).Inc()
		}
		if src.Processed > 0 {
			m.ordersProcessedTotal.WithLabelValues(platform, "success").Add(float64(src.Processed))
		}
		if src.Failed > 0 {
			m.ordersProcessedTotal.WithLabelValues(platform, "failure").Add(float64(src.Failed))
		}
	}
}

func (m *Metrics) observeHealth(platform string, healthy bool) {
	if m == nil {
		return
	}
	value := 0.0
	if healthy {
		value = 1.0
	}
	m.sourceUp.WithLabelValues(platform).Set(value)
}
