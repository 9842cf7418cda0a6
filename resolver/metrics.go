package resolver

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/truemediaorg/mediaresolver/model"
	"github.com/truemediaorg/mediaresolver/provider"
)

// Provider labels are bounded by the registry; URLs never become labels.
var (
	providerAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mediaresolver_provider_attempts_total",
		Help: "Total number of provider calls, by provider and result.",
	}, []string{"provider", "result"})

	providerAttemptDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mediaresolver_provider_attempt_duration_seconds",
		Help:    "Time spent waiting on a single provider call.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15, 20},
	}, []string{"provider"})

	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mediaresolver_resolutions_total",
		Help: "Total number of resolutions, by platform and outcome.",
	}, []string{"platform", "outcome"})

	resolutionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mediaresolver_resolution_duration_seconds",
		Help:    "End-to-end time of one resolution.",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
	}, []string{"outcome"})
)

func observeAttempt(attempt provider.Attempt) {
	result := "success"
	if attempt.Failed() {
		result = string(attempt.ErrorKind)
	}
	providerAttemptsTotal.WithLabelValues(attempt.Provider, result).Inc()
	providerAttemptDuration.WithLabelValues(attempt.Provider).Observe(attempt.Duration.Seconds())
}

func observeOutcome(outcome model.Outcome, elapsed time.Duration) {
	label := outcome.Label()
	resolutionsTotal.WithLabelValues(string(outcome.Request.Platform), label).Inc()
	resolutionDuration.WithLabelValues(label).Observe(elapsed.Seconds())
}
