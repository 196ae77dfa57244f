package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/open-teleop/gamepad-bridge/pkg/config"
)

// options holds the parsed command line
type options struct {
	configPath string
	calibrate  bool
	list       bool
	overrides  config.Overrides
}

func parseFlags(args []string, output io.Writer) (*options, error) {
	fs := flag.NewFlagSet("gamepad-bridge", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: gamepad-bridge [flags] [device]\n\n")
		fmt.Fprintf(fs.Output(), "device is vid:pid in hex (046d:c216) or a hidraw path.\n\n")
		fs.PrintDefaults()
	}

	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "Path to the bridge YAML configuration")
	fs.BoolVar(&opts.calibrate, "calibrate", false, "Log raw reports and the most changed byte instead of driving")
	fs.BoolVar(&opts.list, "list", false, "List attached HID devices and exit")

	deviceID := fs.String("device", "", "Controller vid:pid or hidraw path")
	host := fs.String("host", config.DefaultHost, "Actuation service host")
	port := fs.Int("port", config.DefaultPort, "Actuation service port")
	defaultDrive := fs.Float64("default-drive-speed", config.DefaultDriveSpeed, "Speed sent by the drive button")
	maxDrive := fs.Float64("max-drive-speed", config.DefaultMaxDriveSpeed, "Scale applied to the speed axis")
	maxSteer := fs.Float64("max-steer", config.DefaultMaxSteer, "Scale applied to the steer axis")
	transport := fs.String("transport", config.TransportHTTP, "Actuation transport: http, zmq or modbus")
	logLevel := fs.String("log-level", "info", "Log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch fs.NArg() {
	case 0:
	case 1:
		if *deviceID != "" && *deviceID != fs.Arg(0) {
			return nil, errors.New("device given both as argument and --device")
		}
		*deviceID = fs.Arg(0)
	default:
		return nil, fmt.Errorf("unexpected arguments %v", fs.Args()[1:])
	}

	// Only flags given on the command line override the file.
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	o := &opts.overrides
	if *deviceID != "" {
		o.DeviceID = deviceID
	}
	if set["host"] {
		o.Host = host
	}
	if set["port"] {
		o.Port = port
	}
	if set["default-drive-speed"] {
		o.DefaultDriveSpeed = defaultDrive
	}
	if set["max-drive-speed"] {
		o.MaxDriveSpeed = maxDrive
	}
	if set["max-steer"] {
		o.MaxSteer = maxSteer
	}
	if set["transport"] {
		o.Transport = transport
	}
	if set["log-level"] {
		o.LogLevel = logLevel
	}
	return opts, nil
}

// loadConfig reads the file, if any, and applies command line overrides.
func loadConfig(opts *options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(opts.configPath); err != nil {
			return nil, err
		}
	}
	cfg.ApplyOverrides(opts.overrides)
	return cfg, nil
}
