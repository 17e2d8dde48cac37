package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// SessionsStartedTotal counts checkout sessions opened against a cart.
	SessionsStartedTotal prometheus.Counter
	// StepAdvanceTotal counts advance attempts by origin step and outcome.
	StepAdvanceTotal *prometheus.CounterVec
	// SubmitTotal counts order submission outcomes.
	SubmitTotal *prometheus.CounterVec
	// SubmitLatency records order submission latency in milliseconds.
	SubmitLatency *prometheus.HistogramVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		SessionsStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Total number of checkout sessions started.",
		})
		StepAdvanceTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "step_advance_total",
			Help:      "Count of step advance attempts by origin step and result.",
		}, []string{"from", "result"})
		SubmitTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submit_total",
			Help:      "Count of order submission outcomes.",
		}, []string{"result"})
		SubmitLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submit_duration_ms",
			Help:      "Latency of order submission calls in milliseconds.",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}, []string{"result"})

		mustRegisterCollector(reg, SessionsStartedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				SessionsStartedTotal = v
			}
		})
		mustRegisterCollector(reg, StepAdvanceTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				StepAdvanceTotal = v
			}
		})
		mustRegisterCollector(reg, SubmitTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				SubmitTotal = v
			}
		})
		mustRegisterCollector(reg, SubmitLatency, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.HistogramVec); ok {
				SubmitLatency = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
