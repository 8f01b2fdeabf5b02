// Package metrics records prometheus metrics for scenario runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	MetricsNamespace = "specstream"
)

var (
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	stepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "steps_total",
		Help:      "Count of executed steps",
	}, []string{
		"feature",
		"kind",
		"result",
		"failure_kind",
	})

	scenariosTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "scenarios_total",
		Help:      "Count of executed scenarios",
	}, []string{
		"feature",
		"result",
	})

	scenarioDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: MetricsNamespace,
		Name:      "scenario_duration_seconds",
		Help:      "Scenario execution time",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{
		"feature",
	})

	featureResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "feature_results",
		Help:      "Step counts of the most recent feature run",
	}, []string{
		"feature",
		"result",
		"bucket",
	})

	featureDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "feature_duration_seconds",
		Help:      "Duration of the most recent feature run",
	}, []string{
		"feature",
	})
)

// RecordError increments the error counter for the named error.
func RecordError(name string) {
	errorsTotal.WithLabelValues(name).Inc()
}

// RecordErrorDetails records the error with its message attached.
func RecordErrorDetails(name string, err error) {
	if err == nil {
		RecordError(name)
		return
	}
	RecordError(name + ": " + err.Error())
}

// RecordStep counts one finished step. failureKind is empty for steps that
// did not fail.
func RecordStep(feature, kind, result, failureKind string) {
	stepsTotal.WithLabelValues(feature, kind, result, failureKind).Inc()
}

// RecordScenario counts one finished scenario and observes its duration.
func RecordScenario(feature, result string, duration time.Duration) {
	scenariosTotal.WithLabelValues(feature, result).Inc()
	scenarioDuration.WithLabelValues(feature).Observe(duration.Seconds())
}

// RecordFeature publishes the aggregate outcome of a feature run.
func RecordFeature(feature, result string, total, passed, failed, skipped int, duration time.Duration) {
	featureResults.WithLabelValues(feature, result, "total").Set(float64(total))
	featureResults.WithLabelValues(feature, result, "passed").Set(float64(passed))
	featureResults.WithLabelValues(feature, result, "failed").Set(float64(failed))
	featureResults.WithLabelValues(feature, result, "skipped").Set(float64(skipped))
	featureDuration.WithLabelValues(feature).Set(duration.Seconds())
}
