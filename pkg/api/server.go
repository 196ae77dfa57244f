// Package api serves the bridge status endpoints and the live command feed.
package api

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/open-teleop/gamepad-bridge/domain/diagnostic"
	customlog "github.com/open-teleop/gamepad-bridge/pkg/log"
	"github.com/open-teleop/gamepad-bridge/services"
)

// Dependencies holds everything the status server reads from
type Dependencies struct {
	Fields      FieldSource
	Dispatch    DispatchSource
	Metrics     MetricsSource
	Health      HealthFunc
	Diagnostics *diagnostic.DiagnosticService
	Config      services.BridgeConfigService
	Feed        *CommandFeed
}

// Server is the status HTTP server
type Server struct {
	app    *fiber.App
	feed   *CommandFeed
	logger customlog.Logger
}

// NewServer builds the Fiber app and registers every route
func NewServer(deps Dependencies, logger customlog.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "Gamepad Bridge",
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Debugf("%s %s -> %d (%v)", c.Method(), c.Path(), c.Response().StatusCode(), time.Since(start))
		return err
	})

	status := NewStatusHandler(deps.Fields, deps.Dispatch, deps.Metrics, deps.Health)
	app.Get("/health", status.handleHealth)
	app.Get("/metrics", status.metricsHandler())

	v1 := app.Group("/api/v1")
	v1.Get("/state", status.handleState)
	if deps.Diagnostics != nil {
		v1.Get("/diagnostics", deps.Diagnostics.GetDiagnosticsHandler)
	}
	if deps.Config != nil {
		RegisterConfigRoutes(app, deps.Config, logger)
	}

	if deps.Feed != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws/commands", deps.Feed.Handler())
	}

	return &Server{app: app, feed: deps.Feed, logger: logger}
}

// App returns the underlying Fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Serve accepts connections on ln until Shutdown
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Infof("Status server listening on %s", ln.Addr())
	return s.app.Listener(ln)
}

// ListenAndServe listens on host:port
func (s *Server) ListenAndServe(host string, port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return fmt.Errorf("status server: %w", err)
	}
	return s.Serve(ln)
}

// Shutdown disconnects feed clients and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.feed != nil {
		s.feed.Close()
	}
	return s.app.ShutdownWithContext(ctx)
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
