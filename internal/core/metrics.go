package core

import "time"

// Recorder defines the interface for recording application metrics.
// Implementations include Metrics (Prometheus-based) and NoopMetrics (no-op).
type Recorder interface {
	// Login pipeline
	RecordAuthAttempt(method string, success bool, duration time.Duration)
	RecordAuthFailure(stage, reason string)
	RecordExternalAPICall(provider string, success bool, duration time.Duration)
	RecordFederation(success, cached bool)

	// Certificate material
	RecordCertificateReload(success bool)
	SetCertificateLoaded(loaded bool)

	// Gauge updates (periodic)
	SetRecentLoginFailures(count int64)

	// Database Operations
	RecordDatabaseQueryError(operation string)
}
