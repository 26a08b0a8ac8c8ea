package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "ethshell_build_info",
			Help:        "Build information",
			ConstLabels: prometheus.Labels{"component": "shell"},
		},
		[]string{"date", "sha", "version"},
	)

	bridgeRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ethshell_bridge_requests_total",
			Help: "Number of bridge requests handled, by method and outcome",
		},
		[]string{"method", "outcome"},
	)

	consentDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ethshell_consent_decisions_total",
			Help: "Consent gate decisions, by method",
		},
		[]string{"method", "decision"},
	)

	droppedFrames = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ethshell_bridge_dropped_frames_total",
			Help: "Inbound frames dropped as malformed or unrecognized",
		},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ethshell_bridge_request_duration_seconds",
			Help:    "Time from request receipt to response emission",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	sessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ethshell_bridge_sessions",
			Help: "Connected content sessions",
		},
	)
)

// Register registers all metrics with the provided registerer.
func Register(r prometheus.Registerer) {
	r.MustRegister(buildInfo, bridgeRequests, consentDecisions, droppedFrames, requestDuration, sessions)
}

// SetBuildInfo sets the build info metric for the shell.
func SetBuildInfo(version, sha, date string) {
	buildInfo.WithLabelValues(date, sha, version).Set(1)
}

// RecordRequest increments the bridge request counter.
func RecordRequest(method string, success bool) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	bridgeRequests.WithLabelValues(method, outcome).Inc()
}

// RecordConsent increments the consent decision counter.
func RecordConsent(method string, approved bool) {
	decision := "approved"
	if !approved {
		decision = "rejected"
	}
	consentDecisions.WithLabelValues(method, decision).Inc()
}

// RecordDroppedFrame counts an inbound frame that was discarded unanswered.
func RecordDroppedFrame() {
	droppedFrames.Inc()
}

// ObserveRequestDuration records the duration of a bridge request.
func ObserveRequestDuration(method string, d time.Duration) {
	requestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// SessionOpened increments the connected session gauge.
func SessionOpened() {
	sessions.Inc()
}

// SessionClosed decrements the connected session gauge.
func SessionClosed() {
	sessions.Dec()
}
