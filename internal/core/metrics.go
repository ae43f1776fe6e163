package core

import "time"

// Recorder defines the interface for recording application metrics.
// Implementations include Metrics (Prometheus-based) and NoopMetrics (no-op).
type Recorder interface {
	// Account operations
	RecordAuthAttempt(provider string, success bool, duration time.Duration)
	RecordAuthFailure(provider, kind string)
	RecordAccountDeletion(provider string, success bool)
	RecordExternalAPICall(provider, operation string, duration time.Duration)
}
