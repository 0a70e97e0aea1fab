package metrics

import (
	"time"

	"github.com/go-authgate/authbridge/internal/core"
)

// NoopMetrics is a no-operation implementation of Recorder
// All methods are empty and do nothing, providing zero overhead when metrics are disabled
type NoopMetrics struct{}

// Ensure NoopMetrics implements Recorder interface at compile time
var _ core.Recorder = (*NoopMetrics)(nil)

// NewNoopMetrics creates a new no-operation metrics recorder
func NewNoopMetrics() core.Recorder {
	return &NoopMetrics{}
}

func (n *NoopMetrics) RecordAuthAttempt(method string, success bool, duration time.Duration) {}
func (n *NoopMetrics) RecordAuthFailure(stage, reason string)                                {}
func (n *NoopMetrics) RecordExternalAPICall(
	provider string,
	success bool,
	duration time.Duration,
) {
}
func (n *NoopMetrics) RecordFederation(success, cached bool)     {}
func (n *NoopMetrics) RecordCertificateReload(success bool)      {}
func (n *NoopMetrics) SetCertificateLoaded(loaded bool)          {}
func (n *NoopMetrics) SetRecentLoginFailures(count int64)        {}
func (n *NoopMetrics) RecordDatabaseQueryError(operation string) {}
