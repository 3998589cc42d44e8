// Package telemetry holds the service's Prometheus collectors.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "attendance"

// Submission outcomes
const (
	OutcomeCreated      = "created"
	OutcomeEdited       = "edited"
	OutcomeInvalid      = "invalid"
	OutcomeInvalidRange = "invalid_range"
	OutcomeNoMatch      = "no_match"
	OutcomeAmbiguous    = "ambiguous"
	OutcomeNoOverlap    = "no_overlap"
	OutcomeError        = "error"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_total",
		Help:      "Attendance submissions by target kind and outcome.",
	}, []string{"target", "outcome"})

	MetricsComputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "metrics_compute_seconds",
		Help:      "Time taken to compute one user's period metrics.",
		Buckets:   prometheus.DefBuckets,
	})

	ReportGenerateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "report_generate_seconds",
		Help:      "Time taken to generate a period report.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	ExcuseRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "excuse_requests_total",
		Help:      "Excuse requests by lifecycle event.",
	}, []string{"event"})

	// Set by the daily compliance digest.
	UsersBelowThreshold = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "users_below_threshold",
		Help:      "Users failing a requirement in the current period, by requirement.",
	}, []string{"requirement"})

	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Notifications delivered to live streams, by type.",
	}, []string{"type"})

	StreamSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stream_subscribers",
		Help:      "Open event streams.",
	})

	StreamEventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stream_events_dropped_total",
		Help:      "Events not delivered because a stream buffer was full.",
	})

	DigestLastRun = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "digest_last_run_timestamp_seconds",
		Help:      "Unix time of the last successful compliance digest.",
	})
)

func ObserveSubmission(target, outcome string) {
	SubmissionsTotal.WithLabelValues(target, outcome).Inc()
}

// Since observes the seconds elapsed from start on h.
func Since(h prometheus.Observer, start time.Time) {
	h.Observe(time.Since(start).Seconds())
}
