// Package actuator implements the transports that deliver commands to the
// vehicle actuation service.
package actuator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/open-teleop/gamepad-bridge/domain/teleop"
)

// HTTPSink posts each command as JSON to http://host:port/<command>.
type HTTPSink struct {
	baseURL string
}

// NewHTTPSink creates a sink for the service at address (host:port).
func NewHTTPSink(address string) *HTTPSink {
	return &HTTPSink{baseURL: "http://" + address}
}

// Name implements dispatch.Sink
func (s *HTTPSink) Name() string {
	return "http"
}

// URL returns the endpoint for a command name
func (s *HTTPSink) URL(command string) string {
	return s.baseURL + "/" + command
}

// Send posts cmd and waits for the response. Any 2xx status is success;
// the response body is ignored.
func (s *HTTPSink) Send(ctx context.Context, cmd teleop.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	agent := fiber.Post(s.URL(cmd.Name))
	agent.JSON(cmd.Payload)
	if deadline, ok := ctx.Deadline(); ok {
		timeout := time.Until(deadline)
		if timeout <= 0 {
			return context.DeadlineExceeded
		}
		agent.Timeout(timeout)
	}

	code, _, errs := agent.Bytes()
	if len(errs) > 0 {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("POST %s: %w", s.URL(cmd.Name), errors.Join(errs...))
	}
	if code < 200 || code > 299 {
		return fmt.Errorf("POST %s: unexpected status %d", s.URL(cmd.Name), code)
	}
	return nil
}

// Close implements dispatch.Sink
func (s *HTTPSink) Close() error {
	return nil
}
