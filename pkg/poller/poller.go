// Package poller drives the bridge: it reads controller reports and pushes
// the resulting commands to the dispatcher.
package poller

import (
	"context"
	"errors"
	"time"

	"github.com/open-teleop/gamepad-bridge/domain/teleop"
	bridgeerrors "github.com/open-teleop/gamepad-bridge/pkg/errors"
	customlog "github.com/open-teleop/gamepad-bridge/pkg/log"
	"github.com/open-teleop/gamepad-bridge/pkg/metrics"
)

// Source is a non-blocking report reader. Read returns 0 and a nil error
// when no report is pending.
type Source interface {
	Read(buf []byte) (int, error)
	Reopen() error
	Name() string
}

// Translator turns one report into commands.
type Translator interface {
	Process(report []byte) ([]teleop.Command, error)
}

// Dispatcher accepts commands in order.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd teleop.Command) error
}

// Config is the runtime config the poller needs.
type Config struct {
	IdleSleep         time.Duration
	ReconnectAttempts int
	ReconnectInterval time.Duration
	BufferSize        int
}

// Poller owns the device handle and the translation state. Only the
// goroutine calling Run or PollOnce may touch them.
type Poller struct {
	cfg        Config
	src        Source
	translator Translator
	dispatcher Dispatcher
	metrics    metrics.MetricsCollector
	logger     customlog.Logger
	buf        []byte
}

// New creates a poller with immutable config.
func New(cfg Config, src Source, translator Translator, dispatcher Dispatcher, collector metrics.MetricsCollector, logger customlog.Logger) (*Poller, error) {
	if src == nil || translator == nil || dispatcher == nil {
		return nil, errors.New("poller: source, translator and dispatcher are required")
	}
	if cfg.IdleSleep < 0 {
		return nil, errors.New("poller: idle sleep must be >= 0")
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 64
	}
	if collector == nil {
		collector = metrics.NewNullMetrics()
	}
	return &Poller{
		cfg:        cfg,
		src:        src,
		translator: translator,
		dispatcher: dispatcher,
		metrics:    collector,
		logger:     logger,
		buf:        make([]byte, cfg.BufferSize),
	}, nil
}

// PollOnce performs exactly one read. It reports whether a report was
// available. Commands produced by the report are dispatched in order; the
// first dispatch error aborts the cycle.
func (p *Poller) PollOnce(ctx context.Context) (bool, error) {
	n, err := p.src.Read(p.buf)
	if err != nil {
		return false, bridgeerrors.NewDeviceError("read", err, p.src.Name())
	}
	if n == 0 {
		return false, nil
	}
	p.metrics.IncrementReports()

	cmds, err := p.translator.Process(p.buf[:n])
	if err != nil {
		return true, err
	}

	for _, cmd := range cmds {
		if err := p.dispatcher.Dispatch(ctx, cmd); err != nil {
			return true, err
		}
	}
	return true, nil
}

// Run polls until ctx is cancelled or an unrecoverable error occurs.
// Device read errors trigger up to ReconnectAttempts reopen attempts.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Infof("Polling %s (idle sleep %v)", p.src.Name(), p.cfg.IdleSleep)
	p.metrics.SetDeviceConnected(true)

	for {
		if ctx.Err() != nil {
			return nil
		}

		got, err := p.PollOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			var devErr *bridgeerrors.DeviceError
			if errors.As(err, &devErr) {
				p.metrics.SetDeviceConnected(false)
				p.logger.Errorf("Device error: %v", err)
				if rerr := p.reconnect(ctx); rerr != nil {
					return rerr
				}
				p.metrics.SetDeviceConnected(true)
				continue
			}
			return err
		}

		if !got {
			if err := sleep(ctx, p.cfg.IdleSleep); err != nil {
				return nil
			}
		}
	}
}

func (p *Poller) reconnect(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= p.cfg.ReconnectAttempts; attempt++ {
		if err := sleep(ctx, p.cfg.ReconnectInterval); err != nil {
			return nil
		}

		p.logger.Infof("Reopening %s (attempt %d/%d)", p.src.Name(), attempt, p.cfg.ReconnectAttempts)
		if lastErr = p.src.Reopen(); lastErr == nil {
			p.logger.Infof("Device %s reopened", p.src.Name())
			return nil
		}
		p.logger.Warnf("Reopen failed: %v", lastErr)
	}

	if lastErr == nil {
		lastErr = errors.New("reconnect disabled")
	}
	return bridgeerrors.NewDeviceError("reconnect", lastErr, p.src.Name())
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
