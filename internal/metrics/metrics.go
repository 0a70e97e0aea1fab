package metrics

import (
	"sync"
	"time"

	"github.com/go-authgate/authbridge/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ensure Metrics implements Recorder interface at compile time
var _ core.Recorder = (*Metrics)(nil)

const (
	resultSuccess = "success"
	resultError   = "error"
	resultFailure = "failure"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Login Metrics
	AuthAttemptsTotal *prometheus.CounterVec
	AuthLoginDuration *prometheus.HistogramVec
	AuthFailuresTotal *prometheus.CounterVec

	// Upstream Metrics
	ExternalAPICallsTotal *prometheus.CounterVec
	ExternalAPIDuration   *prometheus.HistogramVec
	FederationTotal       *prometheus.CounterVec

	// Certificate Metrics
	CertificateReloadsTotal *prometheus.CounterVec
	CertificateLoaded       prometheus.Gauge

	// Audit Metrics
	RecentLoginFailures prometheus.Gauge

	// HTTP Request Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Database Query Metrics
	DatabaseQueryErrorsTotal *prometheus.CounterVec
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init initializes metrics based on enabled flag
// If enabled=true, returns Prometheus-based Metrics
// If enabled=false, returns NoopMetrics (zero overhead)
// Uses sync.Once to ensure Prometheus metrics are only registered once
func Init(enabled bool) core.Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

// GetMetrics returns the Prometheus metrics, initializing them if needed.
func GetMetrics() *Metrics {
	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

// initMetrics creates and registers all Prometheus metrics
func initMetrics() *Metrics {
	return &Metrics{
		AuthAttemptsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_attempts_total",
				Help: "Total number of login attempts",
			},
			[]string{"method", "result"}, // method: directory, certificate; result: success, failure
		),
		AuthLoginDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "auth_login_duration_seconds",
				Help:    "Time taken to complete a login",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		AuthFailuresTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_failures_total",
				Help: "Total number of failed logins by stage and reason",
			},
			[]string{"stage", "reason"},
		),

		ExternalAPICallsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_external_api_calls_total",
				Help: "Total number of calls to directory, token and federation endpoints",
			},
			[]string{"provider", "result"}, // provider: ldap, http_ntlm, azure_certificate, aws_sts
		),
		ExternalAPIDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "auth_external_api_duration_seconds",
				Help:    "Duration of calls to upstream identity endpoints",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		FederationTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_federation_total",
				Help: "Total number of federated identity lookups",
			},
			[]string{"result", "source"}, // source: cache, live
		),

		CertificateReloadsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_certificate_reloads_total",
				Help: "Total number of certificate reload attempts",
			},
			[]string{"result"},
		),
		CertificateLoaded: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "auth_certificate_loaded",
				Help: "Whether certificate key material is loaded (1) or not (0)",
			},
		),

		RecentLoginFailures: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "auth_recent_login_failures",
				Help: "Failed logins recorded in the audit trail during the last hour",
			},
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
				Help:    "HTTP request latency",
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

		DatabaseQueryErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "database_query_errors_total",
				Help: "Total number of database query errors",
			},
			[]string{"operation"},
		),
	}
}

func resultLabel(success bool, failure string) string {
	if success {
		return resultSuccess
	}
	return failure
}

// RecordAuthAttempt records a completed login
func (m *Metrics) RecordAuthAttempt(method string, success bool, duration time.Duration) {
	m.AuthAttemptsTotal.WithLabelValues(method, resultLabel(success, resultFailure)).Inc()
	m.AuthLoginDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordAuthFailure records why a login failed
func (m *Metrics) RecordAuthFailure(stage, reason string) {
	m.AuthFailuresTotal.WithLabelValues(stage, reason).Inc()
}

// RecordExternalAPICall records one upstream call
func (m *Metrics) RecordExternalAPICall(provider string, success bool, duration time.Duration) {
	m.ExternalAPICallsTotal.WithLabelValues(provider, resultLabel(success, resultError)).Inc()
	m.ExternalAPIDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordFederation records a federated identity lookup
func (m *Metrics) RecordFederation(success, cached bool) {
	source := "live"
	if cached {
		source = "cache"
	}
	m.FederationTotal.WithLabelValues(resultLabel(success, resultError), source).Inc()
}

// RecordCertificateReload records a reload attempt
func (m *Metrics) RecordCertificateReload(success bool) {
	m.CertificateReloadsTotal.WithLabelValues(resultLabel(success, resultError)).Inc()
}

// SetCertificateLoaded sets the certificate loaded gauge
func (m *Metrics) SetCertificateLoaded(loaded bool) {
	if loaded {
		m.CertificateLoaded.Set(1)
		return
	}
	m.CertificateLoaded.Set(0)
}

// SetRecentLoginFailures sets the recent failure gauge (for periodic updates)
func (m *Metrics) SetRecentLoginFailures(count int64) {
	m.RecentLoginFailures.Set(float64(count))
}

// RecordDatabaseQueryError records a database query error during metric collection
func (m *Metrics) RecordDatabaseQueryError(operation string) {
	m.DatabaseQueryErrorsTotal.WithLabelValues(operation).Inc()
}
