package metrics

import "time"

// NullMetrics is a no-op MetricsCollector.
type NullMetrics struct{}

// NewNullMetrics creates a new NullMetrics instance
func NewNullMetrics() *NullMetrics {
	return &NullMetrics{}
}

func (nm *NullMetrics) IncrementReports()                     {}
func (nm *NullMetrics) IncrementCommands(string)              {}
func (nm *NullMetrics) IncrementCommandErrors(string)         {}
func (nm *NullMetrics) ObserveDispatchDuration(time.Duration) {}
func (nm *NullMetrics) SetDeviceConnected(bool)               {}
func (nm *NullMetrics) SetQueueDepth(int)                     {}
