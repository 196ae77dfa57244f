package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/open-teleop/gamepad-bridge/pkg/config"
	customlog "github.com/open-teleop/gamepad-bridge/pkg/log"
)

func TestParseFlagsDefaultsLeaveFileUntouched(t *testing.T) {
	opts, err := parseFlags([]string{"046d:c216"}, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}
	o := opts.overrides
	if o.DeviceID == nil || *o.DeviceID != "046d:c216" {
		t.Errorf("Expected positional device, got %v", o.DeviceID)
	}
	if o.Host != nil || o.Port != nil || o.MaxSteer != nil || o.Transport != nil {
		t.Errorf("Unset flags must not override: %+v", o)
	}
}

func TestParseFlagsOverrides(t *testing.T) {
	opts, err := parseFlags([]string{
		"--device", "/dev/hidraw3",
		"--host", "10.0.0.2",
		"--port", "6000",
		"--default-drive-speed", "0.2",
		"--max-drive-speed", "0.5",
		"--max-steer", "0.8",
		"--transport", "zmq",
		"--calibrate",
	}, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}
	if !opts.calibrate {
		t.Error("Expected calibrate flag")
	}

	cfg := config.Default()
	cfg.ApplyOverrides(opts.overrides)
	if cfg.Device.ID != "/dev/hidraw3" || cfg.Transport.Host != "10.0.0.2" || cfg.Transport.Port != 6000 {
		t.Errorf("Unexpected transport %+v / device %+v", cfg.Transport, cfg.Device)
	}
	if cfg.Drive.DefaultDriveSpeed != 0.2 || cfg.Drive.MaxDriveSpeed != 0.5 || cfg.Drive.MaxSteer != 0.8 {
		t.Errorf("Unexpected drive limits %+v", cfg.Drive)
	}
	if cfg.Transport.Kind != config.TransportZMQ {
		t.Errorf("Expected zmq transport, got %s", cfg.Transport.Kind)
	}
}

func TestParseFlagsRejectsConflicts(t *testing.T) {
	if _, err := parseFlags([]string{"--device", "1:2", "3:4"}, io.Discard); err == nil {
		t.Error("Expected error for conflicting device")
	}
	if _, err := parseFlags([]string{"1:2", "3:4"}, io.Discard); err == nil {
		t.Error("Expected error for extra arguments")
	}
	if _, err := parseFlags([]string{"--port", "many"}, io.Discard); err == nil {
		t.Error("Expected error for bad port")
	}
}

func TestLoadConfigFlagsWinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	content := "device:\n  id: \"1234:5678\"\ntransport:\n  host: 10.1.1.1\n  port: 7000\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	opts, err := parseFlags([]string{"--config", path, "--port", "7100"}, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Device.ID != "1234:5678" || cfg.Transport.Host != "10.1.1.1" || cfg.Transport.Port != 7100 {
		t.Errorf("Unexpected config %+v %+v", cfg.Device, cfg.Transport)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}

func TestBuildSink(t *testing.T) {
	cfg := config.Default()
	for _, kind := range []string{config.TransportHTTP, config.TransportModbus} {
		cfg.Transport.Kind = kind
		sink, err := buildSink(cfg, customlog.NewNopLogger())
		if err != nil {
			t.Fatalf("buildSink(%s) failed: %v", kind, err)
		}
		if sink.Name() != kind {
			t.Errorf("Expected %s sink, got %s", kind, sink.Name())
		}
		sink.Close()
	}

	cfg.Transport.Kind = "smoke-signals"
	if _, err := buildSink(cfg, customlog.NewNopLogger()); err == nil {
		t.Error("Expected error for unknown transport")
	}
}
