// Package dispatch delivers commands to the actuation service in order and
// reports every outcome to registered observers.
package dispatch

import (
	"context"
	"time"

	"github.com/open-teleop/gamepad-bridge/domain/teleop"
)

// Sink is an actuation transport.
type Sink interface {
	// Send performs one call and returns once the service answered or ctx
	// expired. A nil error means the call succeeded.
	Send(ctx context.Context, cmd teleop.Command) error
	Name() string
	Close() error
}

// Result is the outcome of one dispatched command.
type Result struct {
	Command   teleop.Command
	Transport string
	Err       error
	Duration  time.Duration
	Timestamp time.Time
}

// OK reports whether the command was accepted by the transport.
func (r Result) OK() bool {
	return r.Err == nil
}

// Observer receives every Result after the call returns. Observers are
// invoked from the dispatching goroutine, in command order, and must not
// block for long. Wrap network mirrors in an AsyncObserver.
type Observer interface {
	OnDispatch(result Result)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Result)

func (f ObserverFunc) OnDispatch(r Result) { f(r) }
