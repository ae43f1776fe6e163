package metrics

import "time"

// NoopMetrics is a no-operation implementation of Recorder
type NoopMetrics struct{}

// Ensure NoopMetrics implements Recorder interface at compile time
var _ Recorder = (*NoopMetrics)(nil)

// NewNoopMetrics creates a new no-operation metrics recorder
func NewNoopMetrics() Recorder {
	return &NoopMetrics{}
}

func (n *NoopMetrics) RecordAuthAttempt(provider string, success bool, duration time.Duration) {}
func (n *NoopMetrics) RecordAuthFailure(provider, kind string)                                  {}
func (n *NoopMetrics) RecordAccountDeletion(provider string, success bool)                      {}
func (n *NoopMetrics) RecordExternalAPICall(provider, operation string, duration time.Duration) {}
