package api

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/open-teleop/gamepad-bridge/domain/teleop"
	"github.com/open-teleop/gamepad-bridge/pkg/dispatch"
)

// FieldSource lists the observed input fields
type FieldSource interface {
	GetAllFields() []teleop.FieldInfo
}

// DispatchSource exposes dispatcher state
type DispatchSource interface {
	Mode() string
	LastResult() (dispatch.Result, bool)
}

// MetricsSource serves metrics in the Prometheus exposition format
type MetricsSource interface {
	Handler() http.Handler
}

// HealthFunc reports nil while the bridge is able to translate input
type HealthFunc func() error

// StateResponse is the body of GET /api/v1/state
type StateResponse struct {
	Timestamp  time.Time          `json:"timestamp"`
	Mode       string             `json:"dispatch_mode"`
	Fields     []teleop.FieldInfo `json:"fields"`
	LastResult *dispatch.Event    `json:"last_result"`
}

// StatusHandler serves the health, state and metrics endpoints
type StatusHandler struct {
	fields   FieldSource
	dispatch DispatchSource
	metrics  MetricsSource
	health   HealthFunc
	started  time.Time
}

// NewStatusHandler creates a new status handler. health and metrics may
// be nil.
func NewStatusHandler(fields FieldSource, disp DispatchSource, m MetricsSource, health HealthFunc) *StatusHandler {
	return &StatusHandler{
		fields:   fields,
		dispatch: disp,
		metrics:  m,
		health:   health,
		started:  time.Now(),
	}
}

func (h *StatusHandler) handleHealth(c *fiber.Ctx) error {
	uptime := time.Since(h.started).Round(time.Second).String()
	if h.health != nil {
		if err := h.health(); err != nil {
			return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"error":  err.Error(),
				"uptime": uptime,
			})
		}
	}
	return c.JSON(fiber.Map{"status": "healthy", "uptime": uptime})
}

func (h *StatusHandler) handleState(c *fiber.Ctx) error {
	resp := StateResponse{
		Timestamp: time.Now(),
		Mode:      h.dispatch.Mode(),
		Fields:    h.fields.GetAllFields(),
	}
	if r, ok := h.dispatch.LastResult(); ok {
		ev := dispatch.NewEvent(r)
		resp.LastResult = &ev
	}
	return c.JSON(resp)
}

func (h *StatusHandler) metricsHandler() fiber.Handler {
	if h.metrics == nil {
		return func(c *fiber.Ctx) error {
			return fiber.ErrNotFound
		}
	}
	return adaptor.HTTPHandler(h.metrics.Handler())
}
