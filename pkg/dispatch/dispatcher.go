package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/open-teleop/gamepad-bridge/domain/teleop"
	bridgeerrors "github.com/open-teleop/gamepad-bridge/pkg/errors"
	customlog "github.com/open-teleop/gamepad-bridge/pkg/log"
	"github.com/open-teleop/gamepad-bridge/pkg/metrics"
)

// Dispatch modes
const (
	ModeSync  = "sync"
	ModeAsync = "async"
)

// Options configure a Dispatcher
type Options struct {
	Mode      string
	QueueSize int
	Timeout   time.Duration
	FailFast  bool
}

// DefaultOptions returns the options used when none are configured
func DefaultOptions() Options {
	return Options{
		Mode:      ModeAsync,
		QueueSize: 64,
		Timeout:   time.Second,
	}
}

// Dispatcher hands commands to a Sink one at a time, in the order
// Dispatch was called, and fans every Result out to observers.
//
// In sync mode Dispatch performs the call itself. In async mode it queues
// the command for a single worker and returns immediately, blocking only
// when the queue is full.
type Dispatcher struct {
	logger    customlog.Logger
	sink      Sink
	opts      Options
	metrics   metrics.MetricsCollector
	queue     *CommandQueue
	observers []Observer
	now       func() time.Time

	mu       sync.RWMutex
	fatalErr error
	last     *Result
}

// NewDispatcher creates a dispatcher for sink
func NewDispatcher(sink Sink, opts Options, collector metrics.MetricsCollector, logger customlog.Logger) (*Dispatcher, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	if collector == nil {
		collector = metrics.NewNullMetrics()
	}

	d := &Dispatcher{
		logger:  logger,
		sink:    sink,
		opts:    opts,
		metrics: collector,
		now:     time.Now,
	}

	switch opts.Mode {
	case ModeSync:
	case ModeAsync, "":
		d.opts.Mode = ModeAsync
		d.queue = NewCommandQueue(opts.QueueSize, d.handleQueued, logger)
	default:
		return nil, fmt.Errorf("unknown dispatch mode %q", opts.Mode)
	}

	logger.Infof("Dispatcher initialized: mode=%s transport=%s timeout=%v fail_fast=%v",
		d.opts.Mode, sink.Name(), d.opts.Timeout, d.opts.FailFast)
	return d, nil
}

// AddObserver registers o. Must be called before Start.
func (d *Dispatcher) AddObserver(o Observer) {
	d.observers = append(d.observers, o)
}

// Start starts the worker in async mode
func (d *Dispatcher) Start() {
	if d.queue != nil {
		d.queue.Start()
	}
}

// Stop drains pending commands and closes the sink
func (d *Dispatcher) Stop() {
	if d.queue != nil {
		d.queue.Stop()
	}
	if err := d.sink.Close(); err != nil {
		d.logger.Warnf("Error closing %s transport: %v", d.sink.Name(), err)
	}
}

// Mode returns the effective dispatch mode
func (d *Dispatcher) Mode() string {
	return d.opts.Mode
}

// Dispatch sends cmd. Delivery failures are logged and counted; they only
// surface as an error when FailFast is set. In async mode such an error is
// returned by the first Dispatch call after the failing command ran.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd teleop.Command) error {
	if err := d.Err(); err != nil {
		return err
	}

	if d.queue == nil {
		return d.deliver(ctx, cmd)
	}

	if err := d.queue.Enqueue(ctx, cmd); err != nil {
		return fmt.Errorf("enqueue %s: %w", cmd.Name, err)
	}
	d.metrics.SetQueueDepth(d.queue.Len())
	return nil
}

// Err returns the failure that stopped a fail-fast dispatcher
func (d *Dispatcher) Err() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.fatalErr
}

// LastResult returns the most recent outcome, if any
func (d *Dispatcher) LastResult() (Result, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.last == nil {
		return Result{}, false
	}
	return *d.last, true
}

// QueueMetrics returns the worker queue metrics; zero in sync mode
func (d *Dispatcher) QueueMetrics() QueueMetrics {
	if d.queue == nil {
		return QueueMetrics{}
	}
	return d.queue.GetMetrics()
}

func (d *Dispatcher) handleQueued(cmd teleop.Command) {
	d.metrics.SetQueueDepth(d.queue.Len())
	// Commands already queued are still sent on shutdown.
	_ = d.deliver(context.Background(), cmd)
}

func (d *Dispatcher) deliver(ctx context.Context, cmd teleop.Command) error {
	callCtx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	defer cancel()

	start := d.now()
	err := d.sink.Send(callCtx, cmd)
	elapsed := d.now().Sub(start)

	result := Result{
		Command:   cmd,
		Transport: d.sink.Name(),
		Duration:  elapsed,
		Timestamp: start,
	}
	d.metrics.ObserveDispatchDuration(elapsed)

	logger := d.logger.WithField("command", cmd.Name).WithField("seq", cmd.Seq)
	if err != nil {
		dispatchErr := bridgeerrors.NewDispatchError(cmd.Name, err, d.sink.Name())
		result.Err = dispatchErr
		d.metrics.IncrementCommandErrors(cmd.Name)
		logger.Errorf("Dispatch of %s failed: %v", cmd, err)
	} else {
		d.metrics.IncrementCommands(cmd.Name)
		logger.Debugf("Dispatched %s in %v", cmd, elapsed)
	}

	d.mu.Lock()
	d.last = &result
	if result.Err != nil && d.opts.FailFast && d.fatalErr == nil {
		d.fatalErr = result.Err
	}
	d.mu.Unlock()

	for _, o := range d.observers {
		o.OnDispatch(result)
	}

	if result.Err != nil && d.opts.FailFast {
		return result.Err
	}
	return nil
}
