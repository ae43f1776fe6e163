package metrics

import (
	"sync"
	"time"

	"github.com/go-authgate/accountgate/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is a type alias for core.Recorder.
type Recorder = core.Recorder

const (
	resultSuccess = "success"
	resultFailure = "failure"
)

// Ensure Metrics implements Recorder interface at compile time
var _ Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Account Metrics
	AuthAttemptsTotal       *prometheus.CounterVec
	AuthFailuresTotal       *prometheus.CounterVec
	AuthDuration            *prometheus.HistogramVec
	AccountDeletionsTotal   *prometheus.CounterVec
	IdentityAPICallDuration *prometheus.HistogramVec

	// HTTP Request Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init initializes metrics based on enabled flag
// If enabled=true, returns Prometheus-based Metrics
// If enabled=false, returns NoopMetrics (zero overhead)
// Uses sync.Once to ensure Prometheus metrics are only registered once
func Init(enabled bool) Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

func initMetrics() *Metrics {
	return &Metrics{
		AuthAttemptsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "account_auth_attempts_total",
				Help: "Total number of email/password authentication attempts",
			},
			[]string{"provider", "result"}, // success, failure
		),
		AuthFailuresTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "account_auth_failures_total",
				Help: "Total number of failed account operations by provider error kind",
			},
			[]string{"provider", "kind"},
		),
		AuthDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "account_auth_duration_seconds",
				Help:    "Authentication duration including the identity provider round trip",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		AccountDeletionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "account_deletions_total",
				Help: "Total number of account deletion attempts",
			},
			[]string{"provider", "result"},
		),
		IdentityAPICallDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "identity_api_call_duration_seconds",
				Help:    "Identity provider API call duration",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"provider", "operation"},
		),

		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being processed",
			},
		),
	}
}

func resultLabel(success bool) string {
	if success {
		return resultSuccess
	}
	return resultFailure
}

// RecordAuthAttempt records an authentication attempt
func (m *Metrics) RecordAuthAttempt(provider string, success bool, duration time.Duration) {
	m.AuthAttemptsTotal.WithLabelValues(provider, resultLabel(success)).Inc()
	m.AuthDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordAuthFailure records the provider error kind of a failed operation
func (m *Metrics) RecordAuthFailure(provider, kind string) {
	if kind == "" {
		kind = "unknown"
	}
	m.AuthFailuresTotal.WithLabelValues(provider, kind).Inc()
}

// RecordAccountDeletion records an account deletion attempt
func (m *Metrics) RecordAccountDeletion(provider string, success bool) {
	m.AccountDeletionsTotal.WithLabelValues(provider, resultLabel(success)).Inc()
}

// RecordExternalAPICall records an identity provider API round trip
func (m *Metrics) RecordExternalAPICall(provider, operation string, duration time.Duration) {
	m.IdentityAPICallDuration.WithLabelValues(provider, operation).Observe(duration.Seconds())
}
