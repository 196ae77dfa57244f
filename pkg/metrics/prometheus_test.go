package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusMetrics(t *testing.T) {
	pm := NewPrometheusMetrics()

	pm.IncrementReports()
	pm.IncrementReports()
	pm.IncrementCommands("set_speed")
	pm.IncrementCommands("set_speed")
	pm.IncrementCommands("set_steer")
	pm.IncrementCommandErrors("set_speed")
	pm.SetDeviceConnected(true)
	pm.SetQueueDepth(3)
	pm.ObserveDispatchDuration(100 * time.Millisecond)
	pm.ObserveDispatchDuration(300 * time.Millisecond)

	stats := pm.GetStats()
	if stats.ReportsTotal != 2 {
		t.Errorf("Expected 2 reports, got %d", stats.ReportsTotal)
	}
	if stats.CommandsTotal != 3 || stats.CommandErrorsTotal != 1 {
		t.Errorf("Unexpected command counts: %+v", stats)
	}
	if !stats.DeviceConnected || stats.QueueDepth != 3 {
		t.Errorf("Unexpected gauges: %+v", stats)
	}
	if stats.AvgDispatchDuration < 0.199 || stats.AvgDispatchDuration > 0.201 {
		t.Errorf("Expected ~0.2s average, got %f", stats.AvgDispatchDuration)
	}

	if got := testutil.ToFloat64(pm.commands.WithLabelValues("set_speed")); got != 2 {
		t.Errorf("Expected 2 set_speed commands, got %v", got)
	}
	if got := testutil.ToFloat64(pm.commandErrors.WithLabelValues("set_speed")); got != 1 {
		t.Errorf("Expected 1 set_speed failure, got %v", got)
	}
	if got := testutil.ToFloat64(pm.deviceConnected); got != 1 {
		t.Errorf("Expected device gauge 1, got %v", got)
	}
	if got := testutil.ToFloat64(pm.queueDepth); got != 3 {
		t.Errorf("Expected queue gauge 3, got %v", got)
	}
}

func TestPrometheusHandler(t *testing.T) {
	pm := NewPrometheusMetrics()
	pm.IncrementReports()
	pm.IncrementCommands("set_auto_steer")
	pm.ObserveDispatchDuration(20 * time.Millisecond)

	rec := httptest.NewRecorder()
	pm.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	body, _ := io.ReadAll(rec.Body)
	text := string(body)
	for _, want := range []string{
		"bridge_reports_total 1",
		`bridge_commands_total{command="set_auto_steer"} 1`,
		"bridge_dispatch_duration_seconds_count 1",
		`bridge_dispatch_duration_seconds_bucket{le="0.025"} 1`,
		"# TYPE bridge_device_connected gauge",
		"go_goroutines",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Metrics output missing %q", want)
		}
	}
}

func TestCollectorsAreIsolated(t *testing.T) {
	a := NewPrometheusMetrics()
	b := NewPrometheusMetrics()
	a.IncrementReports()

	if got := testutil.ToFloat64(b.reports); got != 0 {
		t.Errorf("Second collector should not see the first one's reports, got %v", got)
	}
}

func TestNullMetrics(t *testing.T) {
	var c MetricsCollector = NewNullMetrics()
	c.IncrementReports()
	c.IncrementCommands("set_speed")
	c.IncrementCommandErrors("set_speed")
	c.ObserveDispatchDuration(time.Second)
	c.SetDeviceConnected(true)
	c.SetQueueDepth(1)
}
