// Package observability exposes Prometheus metrics for the validation
// pipeline and the conversation layer.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	validationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "querygate_validations_total",
			Help: "Validation runs by outcome and strategy.",
		},
		[]string{"outcome", "strategy"},
	)

	validationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "querygate_validation_duration_seconds",
			Help:    "End-to-end validation latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)

	checkTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "querygate_checks_total",
			Help: "Individual check verdicts by check name and status.",
		},
		[]string{"check", "status"},
	)

	decisionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "querygate_decisions_total",
			Help: "Gate decisions by action.",
		},
		[]string{"action"},
	)

	regenerationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "querygate_regenerations_total",
			Help: "Regeneration attempts by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		validationTotal,
		validationDuration,
		checkTotal,
		decisionTotal,
		regenerationTotal,
	)
}

// ObserveValidation records one completed validation run.
func ObserveValidation(outcome, strategy string, elapsed time.Duration) {
	validationTotal.WithLabelValues(outcome, strategy).Inc()
	validationDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
}

// ObserveCheck records one check verdict.
func ObserveCheck(check, status string) {
	checkTotal.WithLabelValues(check, status).Inc()
}

// ObserveDecision records one gate decision.
func ObserveDecision(action string) {
	decisionTotal.WithLabelValues(action).Inc()
}

// ObserveRegeneration records one regeneration attempt result.
func ObserveRegeneration(result string) {
	regenerationTotal.WithLabelValues(result).Inc()
}
