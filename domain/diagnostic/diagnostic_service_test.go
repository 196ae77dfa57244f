package diagnostic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/open-teleop/gamepad-bridge/domain/teleop"
	"github.com/open-teleop/gamepad-bridge/pkg/dispatch"
	bridgeerrors "github.com/open-teleop/gamepad-bridge/pkg/errors"
	"github.com/open-teleop/gamepad-bridge/pkg/metrics"
)

type fakeQueue struct{}

func (fakeQueue) Mode() string { return dispatch.ModeAsync }
func (fakeQueue) QueueMetrics() dispatch.QueueMetrics {
	return dispatch.QueueMetrics{QueuedCount: 5, HandledCount: 4, BlockedCount: 1}
}

func newService() (*DiagnosticService, *metrics.PrometheusMetrics) {
	m := metrics.NewPrometheusMetrics()
	s := NewDiagnosticService("046d:c216", TransportStatus{Kind: "http", Address: "192.168.0.135:5000"}, m, fakeQueue{})
	return s, m
}

func TestDiagnosticsCountDispatches(t *testing.T) {
	s, m := newService()
	m.SetDeviceConnected(true)

	s.OnDispatch(dispatch.Result{Command: teleop.SetSpeed(0.3)})
	failure := bridgeerrors.NewDispatchError("set_steer", context.DeadlineExceeded, "http")
	s.OnDispatch(dispatch.Result{Command: teleop.SetSteer(1), Err: failure})

	d := s.GetDiagnostics()
	if d.Dispatch.Dispatched != 2 || d.Dispatch.Failed != 1 {
		t.Errorf("Unexpected dispatch counts %+v", d.Dispatch)
	}
	if d.Dispatch.LastCommand != "set_steer{steer:1}" {
		t.Errorf("Unexpected last command %q", d.Dispatch.LastCommand)
	}
	if d.Dispatch.Mode != dispatch.ModeAsync || d.Dispatch.QueueBlocked != 1 {
		t.Errorf("Unexpected queue state %+v", d.Dispatch)
	}
	if !d.Device.Connected || d.Device.Name != "046d:c216" {
		t.Errorf("Unexpected device status %+v", d.Device)
	}
	if d.LastError == nil || d.LastError.Code != bridgeerrors.CodeDispatch || !d.LastError.Recoverable {
		t.Errorf("Unexpected last error %+v", d.LastError)
	}
	if d.ErrorsByCode[bridgeerrors.CodeDispatch] != 1 {
		t.Errorf("Unexpected error counts %v", d.ErrorsByCode)
	}
}

func TestRecordFatalError(t *testing.T) {
	s, _ := newService()
	s.RecordError(nil)
	s.RecordError(bridgeerrors.NewDeviceError("read", errors.New("unplugged"), "046d:c216"))
	s.RecordError(errors.New("plain"))

	d := s.GetDiagnostics()
	if d.ErrorsByCode[bridgeerrors.CodeDevice] != 1 || d.ErrorsByCode[bridgeerrors.CodeGeneric] != 1 {
		t.Errorf("Unexpected error counts %v", d.ErrorsByCode)
	}
	if d.LastError.Message != "plain" {
		t.Errorf("Expected newest error, got %+v", d.LastError)
	}
}

func TestDiagnosticsHandler(t *testing.T) {
	s, _ := newService()
	s.now = func() time.Time { return s.startedAt.Add(90 * time.Second) }

	app := fiber.New()
	app.Get("/diag", s.GetDiagnosticsHandler)

	resp, err := app.Test(httptest.NewRequest("GET", "/diag", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)

	var out struct {
		Status      string            `json:"status"`
		Diagnostics BridgeDiagnostics `json:"diagnostics"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if out.Status != "success" || out.Diagnostics.UptimeSeconds != 90 {
		t.Errorf("Unexpected response %s", body)
	}
	if out.Diagnostics.Transport.Kind != "http" {
		t.Errorf("Unexpected transport %+v", out.Diagnostics.Transport)
	}
}
