package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics tracks bridge metrics in a dedicated Prometheus
// registry and keeps running totals for the diagnostics endpoint.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	reports          prometheus.Counter
	commands         *prometheus.CounterVec
	commandErrors    *prometheus.CounterVec
	dispatchDuration prometheus.Histogram
	deviceConnected  prometheus.Gauge
	queueDepth       prometheus.Gauge

	mu    sync.RWMutex
	stats MetricStats
	// total dispatch time in seconds, for AvgDispatchDuration
	durationSum float64
}

// NewPrometheusMetrics creates a new Prometheus metrics collector
func NewPrometheusMetrics() *PrometheusMetrics {
	pm := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
		reports: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bridge_reports_total",
			Help: "Total number of controller reports read",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bridge_commands_total",
			Help: "Total number of commands dispatched",
		}, []string{"command"}),
		commandErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bridge_command_errors_total",
			Help: "Total number of failed command dispatches",
		}, []string{"command"}),
		dispatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bridge_dispatch_duration_seconds",
			Help:    "Duration of actuation calls in seconds",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		deviceConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bridge_device_connected",
			Help: "Current device status (1 = open, 0 = closed)",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bridge_dispatch_queue_depth",
			Help: "Commands waiting for the dispatch worker",
		}),
	}

	pm.registry.MustRegister(
		pm.reports,
		pm.commands,
		pm.commandErrors,
		pm.dispatchDuration,
		pm.deviceConnected,
		pm.queueDepth,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return pm
}

// Registry returns the registry the bridge metrics are registered in
func (pm *PrometheusMetrics) Registry() *prometheus.Registry {
	return pm.registry
}

// Handler serves the registry in the Prometheus exposition format
func (pm *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(pm.registry, promhttp.HandlerOpts{Registry: pm.registry})
}

// IncrementReports increments the report counter
func (pm *PrometheusMetrics) IncrementReports() {
	pm.reports.Inc()
	pm.mu.Lock()
	pm.stats.ReportsTotal++
	pm.mu.Unlock()
}

// IncrementCommands increments the dispatched counter for name
func (pm *PrometheusMetrics) IncrementCommands(name string) {
	pm.commands.WithLabelValues(name).Inc()
	pm.mu.Lock()
	pm.stats.CommandsTotal++
	pm.mu.Unlock()
}

// IncrementCommandErrors increments the failure counter for name
func (pm *PrometheusMetrics) IncrementCommandErrors(name string) {
	pm.commandErrors.WithLabelValues(name).Inc()
	pm.mu.Lock()
	pm.stats.CommandErrorsTotal++
	pm.mu.Unlock()
}

// ObserveDispatchDuration records a dispatch duration
func (pm *PrometheusMetrics) ObserveDispatchDuration(duration time.Duration) {
	seconds := duration.Seconds()
	pm.dispatchDuration.Observe(seconds)

	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.durationSum += seconds
	pm.stats.DispatchDurationCount++
	pm.stats.AvgDispatchDuration = pm.durationSum / float64(pm.stats.DispatchDurationCount)
}

// SetDeviceConnected sets the device gauge (1 = open, 0 = closed)
func (pm *PrometheusMetrics) SetDeviceConnected(connected bool) {
	if connected {
		pm.deviceConnected.Set(1)
	} else {
		pm.deviceConnected.Set(0)
	}
	pm.mu.Lock()
	pm.stats.DeviceConnected = connected
	pm.mu.Unlock()
}

// SetQueueDepth sets the dispatch queue gauge
func (pm *PrometheusMetrics) SetQueueDepth(depth int) {
	pm.queueDepth.Set(float64(depth))
	pm.mu.Lock()
	pm.stats.QueueDepth = depth
	pm.mu.Unlock()
}

// GetStats returns current metric values
func (pm *PrometheusMetrics) GetStats() MetricStats {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.stats
}

// MetricStats represents current metric statistics
type MetricStats struct {
	ReportsTotal          int64   `json:"reports_total"`
	CommandsTotal         int64   `json:"commands_total"`
	CommandErrorsTotal    int64   `json:"command_errors_total"`
	DeviceConnected       bool    `json:"device_connected"`
	QueueDepth            int     `json:"queue_depth"`
	AvgDispatchDuration   float64 `json:"avg_dispatch_duration_seconds"`
	DispatchDurationCount int64   `json:"dispatch_duration_count"`
}
