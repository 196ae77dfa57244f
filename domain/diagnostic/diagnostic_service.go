package diagnostic

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/open-teleop/gamepad-bridge/pkg/dispatch"
	bridgeerrors "github.com/open-teleop/gamepad-bridge/pkg/errors"
	"github.com/open-teleop/gamepad-bridge/pkg/metrics"
)

// BridgeDiagnostics represents the bridge health as served by the status API
type BridgeDiagnostics struct {
	Timestamp     time.Time           `json:"timestamp"`
	StartedAt     time.Time           `json:"started_at"`
	UptimeSeconds float64             `json:"uptime_seconds"`
	Device        DeviceStatus        `json:"device"`
	Transport     TransportStatus     `json:"transport"`
	Dispatch      DispatchStatus      `json:"dispatch"`
	ErrorsByCode  map[int]int64       `json:"errors_by_code"`
	LastError     *ErrorRecord        `json:"last_error,omitempty"`
	Metrics       metrics.MetricStats `json:"metrics"`
}

// DeviceStatus describes the input device
type DeviceStatus struct {
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
}

// TransportStatus describes the actuation transport
type TransportStatus struct {
	Kind    string `json:"kind"`
	Address string `json:"address"`
}

// DispatchStatus summarizes command delivery
type DispatchStatus struct {
	Mode         string `json:"mode"`
	Dispatched   int64  `json:"dispatched"`
	Failed       int64  `json:"failed"`
	QueueQueued  int64  `json:"queue_queued"`
	QueueHandled int64  `json:"queue_handled"`
	QueueBlocked int64  `json:"queue_blocked"`
	LastCommand  string `json:"last_command,omitempty"`
}

// ErrorRecord is the most recent error seen by the bridge
type ErrorRecord struct {
	Message     string    `json:"message"`
	Code        int       `json:"code"`
	Recoverable bool      `json:"recoverable"`
	At          time.Time `json:"at"`
}

// StatsSource provides aggregate runtime metrics
type StatsSource interface {
	GetStats() metrics.MetricStats
}

// QueueSource provides dispatcher state
type QueueSource interface {
	Mode() string
	QueueMetrics() dispatch.QueueMetrics
}

// DiagnosticService collects bridge diagnostics. It observes every dispatch
// result and any error reported by the main loop.
type DiagnosticService struct {
	mu           sync.RWMutex
	startedAt    time.Time
	device       string
	transport    TransportStatus
	stats        StatsSource
	queue        QueueSource
	dispatched   int64
	failed       int64
	lastCommand  string
	errorsByCode map[int]int64
	lastError    *ErrorRecord
	now          func() time.Time
}

// NewDiagnosticService creates a new diagnostic service instance
func NewDiagnosticService(device string, transport TransportStatus, stats StatsSource, queue QueueSource) *DiagnosticService {
	return &DiagnosticService{
		startedAt:    time.Now(),
		device:       device,
		transport:    transport,
		stats:        stats,
		queue:        queue,
		errorsByCode: make(map[int]int64),
		now:          time.Now,
	}
}

// OnDispatch implements dispatch.Observer
func (s *DiagnosticService) OnDispatch(r dispatch.Result) {
	s.mu.Lock()
	s.dispatched++
	s.lastCommand = r.Command.String()
	if r.OK() {
		s.mu.Unlock()
		return
	}
	s.failed++
	s.mu.Unlock()

	s.RecordError(r.Err)
}

// RecordError stores err as the last error and counts it by code
func (s *DiagnosticService) RecordError(err error) {
	if err == nil {
		return
	}
	code := bridgeerrors.GetDiagnosticCode(err)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.errorsByCode[code]++
	s.lastError = &ErrorRecord{
		Message:     err.Error(),
		Code:        code,
		Recoverable: bridgeerrors.IsRecoverable(err),
		At:          s.now(),
	}
}

// GetDiagnostics returns a snapshot of the bridge diagnostics
func (s *DiagnosticService) GetDiagnostics() BridgeDiagnostics {
	var stats metrics.MetricStats
	if s.stats != nil {
		stats = s.stats.GetStats()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	d := BridgeDiagnostics{
		Timestamp:     now,
		StartedAt:     s.startedAt,
		UptimeSeconds: now.Sub(s.startedAt).Seconds(),
		Device:        DeviceStatus{Name: s.device, Connected: stats.DeviceConnected},
		Transport:     s.transport,
		Dispatch: DispatchStatus{
			Dispatched:  s.dispatched,
			Failed:      s.failed,
			LastCommand: s.lastCommand,
		},
		ErrorsByCode: make(map[int]int64, len(s.errorsByCode)),
		Metrics:      stats,
	}
	for code, n := range s.errorsByCode {
		d.ErrorsByCode[code] = n
	}
	if s.lastError != nil {
		e := *s.lastError
		d.LastError = &e
	}
	if s.queue != nil {
		qm := s.queue.QueueMetrics()
		d.Dispatch.Mode = s.queue.Mode()
		d.Dispatch.QueueQueued = qm.QueuedCount
		d.Dispatch.QueueHandled = qm.HandledCount
		d.Dispatch.QueueBlocked = qm.BlockedCount
	}
	return d
}

// GetDiagnosticsHandler handles API requests for bridge diagnostics
func (s *DiagnosticService) GetDiagnosticsHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":      "success",
		"diagnostics": s.GetDiagnostics(),
	})
}
