package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/open-teleop/gamepad-bridge/domain/diagnostic"
	"github.com/open-teleop/gamepad-bridge/domain/teleop"
	"github.com/open-teleop/gamepad-bridge/pkg/api"
	"github.com/open-teleop/gamepad-bridge/pkg/config"
	"github.com/open-teleop/gamepad-bridge/pkg/device"
	"github.com/open-teleop/gamepad-bridge/pkg/dispatch"
	customlog "github.com/open-teleop/gamepad-bridge/pkg/log"
	"github.com/open-teleop/gamepad-bridge/pkg/metrics"
	"github.com/open-teleop/gamepad-bridge/pkg/poller"
	"github.com/open-teleop/gamepad-bridge/services"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "gamepad-bridge: %v\n", err)
		return 2
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gamepad-bridge: %v\n", err)
		return 1
	}

	logger, err := customlog.NewLogrusLogger(cfg.Logging.Level, cfg.Logging.Dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gamepad-bridge: %v\n", err)
		return 1
	}
	defer device.Shutdown()

	if opts.list {
		return listDevices(logger)
	}

	if err := cfg.Validate(); err != nil {
		logger.Errorf("Invalid configuration: %v", err)
		return 1
	}

	sel, err := device.ParseSelector(cfg.Device.ID)
	if err != nil {
		logger.Errorf("%v", err)
		return 1
	}
	reader := device.NewHIDReader(sel)
	if err := reader.Open(); err != nil {
		logger.Errorf("Failed to open controller: %v", err)
		return 1
	}
	defer reader.Close()

	info := reader.Info()
	logger.Infof("Opened %s %s (%04x:%04x)", info.Manufacturer, info.Product, info.VendorID, info.ProductID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.calibrate {
		if err := poller.NewCalibrator(reader, poller.CalibrationInterval, logger).Run(ctx); err != nil {
			logger.Errorf("Calibration stopped: %v", err)
			return 1
		}
		return 0
	}

	if err := drive(ctx, cfg, opts.configPath, reader, logger); err != nil {
		logger.Errorf("Bridge stopped: %v", err)
		return 1
	}
	logger.Infof("Bridge exited properly")
	return 0
}

// drive runs the bridge until ctx is cancelled or a fatal error occurs.
func drive(ctx context.Context, cfg *config.Config, configPath string, reader *device.HIDReader, logger customlog.Logger) error {
	collector := metrics.NewPrometheusMetrics()

	sink, err := buildSink(cfg, logger)
	if err != nil {
		return err
	}
	dispatcher, err := dispatch.NewDispatcher(sink, dispatch.Options{
		Mode:      cfg.Dispatch.Mode,
		QueueSize: cfg.Dispatch.QueueSize,
		Timeout:   cfg.Dispatch.Timeout,
		FailFast:  cfg.Dispatch.FailFast,
	}, collector, logger)
	if err != nil {
		sink.Close()
		return err
	}
	logger.Infof("Dispatching to %s://%s (%s mode)", sink.Name(), cfg.Transport.Address(), dispatcher.Mode())

	service := teleop.NewTeleopService(cfg.Calibration, teleop.Limits{
		DefaultDriveSpeed: cfg.Drive.DefaultDriveSpeed,
		MaxDriveSpeed:     cfg.Drive.MaxDriveSpeed,
		MaxSteer:          cfg.Drive.MaxSteer,
	}, logger)

	diagnostics := diagnostic.NewDiagnosticService(reader.Name(), diagnostic.TransportStatus{
		Kind:    cfg.Transport.Kind,
		Address: cfg.Transport.Address(),
	}, collector, dispatcher)
	dispatcher.AddObserver(diagnostics)

	mirrorCtx, cancelMirrors := context.WithCancel(ctx)
	defer cancelMirrors()
	m, err := startMirrors(mirrorCtx, cfg, dispatcher, logger)
	if err != nil {
		dispatcher.Stop()
		return err
	}
	defer m.Close()

	var server *api.Server
	if cfg.Status.Enabled {
		server, err = startStatusServer(cfg, configPath, service, dispatcher, collector, diagnostics, logger)
		if err != nil {
			dispatcher.Stop()
			return err
		}
	}

	p, err := poller.New(poller.Config{
		IdleSleep:         cfg.Device.IdleSleep,
		ReconnectAttempts: cfg.Device.ReconnectAttempts,
		ReconnectInterval: cfg.Device.ReconnectInterval,
		BufferSize:        device.ReportSize,
	}, reader, service, dispatcher, collector, logger)
	if err != nil {
		dispatcher.Stop()
		return err
	}

	dispatcher.Start()
	runErr := p.Run(ctx)
	if runErr != nil {
		diagnostics.RecordError(runErr)
	}

	logger.Infof("Shutting down...")
	dispatcher.Stop()
	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("Status server forced to shutdown: %v", err)
		}
	}
	return runErr
}

func startStatusServer(cfg *config.Config, configPath string, service *teleop.TeleopService, d *dispatch.Dispatcher,
	collector *metrics.PrometheusMetrics, diagnostics *diagnostic.DiagnosticService, logger customlog.Logger) (*api.Server, error) {
	cfgService, err := services.NewBridgeConfigService(cfg, configPath, logger)
	if err != nil {
		return nil, err
	}

	feed := api.NewCommandFeed(logger)
	d.AddObserver(dispatch.NewPublishingObserver(feed, dispatch.JSONEncoder(""), logger))

	server := api.NewServer(api.Dependencies{
		Fields:      service.Registry(),
		Dispatch:    d,
		Metrics:     collector,
		Diagnostics: diagnostics,
		Config:      cfgService,
		Feed:        feed,
		Health: func() error {
			if !collector.GetStats().DeviceConnected {
				return errors.New("controller disconnected")
			}
			return nil
		},
	}, logger)

	go func() {
		if err := server.ListenAndServe(cfg.Status.Host, cfg.Status.Port); err != nil {
			logger.Errorf("Status server stopped: %v", err)
		}
	}()
	return server, nil
}

func listDevices(logger customlog.Logger) int {
	devices, err := device.Enumerate(0, 0)
	if err != nil {
		logger.Errorf("Failed to list devices: %v", err)
		return 1
	}
	for _, d := range devices {
		fmt.Printf("%04x:%04x  %-20s  %s %s\n", d.VendorID, d.ProductID, d.Path, d.Manufacturer, d.Product)
	}
	return 0
}
