package metrics

import "time"

// MetricsCollector collects bridge runtime metrics.
//
// Implementations:
//   - PrometheusMetrics: client_golang collectors in a private registry
//   - NullMetrics: no-op, used when the status server is disabled
type MetricsCollector interface {
	// IncrementReports counts reports read from the device
	IncrementReports()

	// IncrementCommands counts successfully dispatched commands by name
	IncrementCommands(name string)

	// IncrementCommandErrors counts failed dispatches by name
	IncrementCommandErrors(name string)

	// ObserveDispatchDuration records how long one actuation call took
	ObserveDispatchDuration(duration time.Duration)

	// SetDeviceConnected records whether the HID device is open
	SetDeviceConnected(connected bool)

	// SetQueueDepth records the number of commands waiting for the worker
	SetQueueDepth(depth int)
}

var _ MetricsCollector = (*PrometheusMetrics)(nil)
var _ MetricsCollector = (*NullMetrics)(nil)
