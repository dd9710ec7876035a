// Package metrics prometheus коллекторы сервиса.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bundles"

// FulfillmentMetrics метрики обработчика очереди отправки. Методы безопасны для nil.
type FulfillmentMetrics struct {
	outcomes *prometheus.CounterVec
	duration prometheus.Histogram
	claimed  prometheus.Counter
	skipped  prometheus.Counter
}

// NewFulfillmentMetrics регистрирует метрики в reg. При reg == nil метрики не собираются.
func NewFulfillmentMetrics(reg prometheus.Registerer) *FulfillmentMetrics {
	if reg == nil {
		return &FulfillmentMetrics{}
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fulfillment_jobs_total",
		Help:      "Processed fulfillment jobs by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fulfillment_tick_duration_seconds",
		Help:      "Duration of a fulfillment tick in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
	claimed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fulfillment_jobs_claimed_total",
		Help:      "Due jobs claimed from the queue.",
	})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fulfillment_ticks_skipped_total",
		Help:      "Ticks skipped because another replica holds the lock.",
	})
	reg.MustRegister(outcomes, duration, claimed, skipped)
	return &FulfillmentMetrics{
		outcomes: outcomes,
		duration: duration,
		claimed:  claimed,
		skipped:  skipped,
	}
}

func (m *FulfillmentMetrics) IncOutcome(outcome string) {
	if m == nil || m.outcomes == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.outcomes.WithLabelValues(outcome).Inc()
}

func (m *FulfillmentMetrics) AddClaimed(n int) {
	if m == nil || m.claimed == nil {
		return
	}
	m.claimed.Add(float64(n))
}

func (m *FulfillmentMetrics) IncSkippedTick() {
	if m == nil || m.skipped == nil {
		return
	}
	m.skipped.Inc()
}

func (m *FulfillmentMetrics) ObserveTick(d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.Observe(d.Seconds())
}
