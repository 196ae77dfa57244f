package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/open-teleop/gamepad-bridge/pkg/calibration"
	bridgeerrors "github.com/open-teleop/gamepad-bridge/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	configContent := `
version: "1.0"

device:
  id: "046d:c216"
  idle_sleep: 5ms
  reconnect_attempts: 3
  reconnect_interval: 500ms

transport:
  kind: zmq
  host: 10.0.0.7
  port: 5555

drive:
  default_drive_speed: 0.2
  max_drive_speed: 0.8

dispatch:
  mode: sync
  timeout: 250ms
  fail_fast: true

calibration:
  speed: 1
  steer: {byte: 4, reverse: true}
  switch_manual: [7, 1]
  switch_auto: [7, 0]
  stop: [5, 5]
  drive: [5, 7]

mirrors:
  mqtt:
    enabled: true
    broker: tcp://localhost:1883
    qos: 1

logging:
  level: debug
`
	config, err := LoadConfig(writeConfig(t, configContent))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if err := config.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if config.Device.ID != "046d:c216" || config.Device.IdleSleep != 5*time.Millisecond {
		t.Errorf("Unexpected device config: %+v", config.Device)
	}
	if config.Device.ReconnectAttempts != 3 || config.Device.ReconnectInterval != 500*time.Millisecond {
		t.Errorf("Unexpected reconnect settings: %+v", config.Device)
	}
	if config.Transport.Kind != TransportZMQ || config.Transport.Address() != "10.0.0.7:5555" {
		t.Errorf("Unexpected transport: %+v", config.Transport)
	}
	if config.Drive.DefaultDriveSpeed != 0.2 || config.Drive.MaxDriveSpeed != 0.8 {
		t.Errorf("Unexpected drive config: %+v", config.Drive)
	}
	// max_steer was omitted
	if config.Drive.MaxSteer != DefaultMaxSteer {
		t.Errorf("Expected default max_steer, got %v", config.Drive.MaxSteer)
	}
	if config.Dispatch.Mode != "sync" || config.Dispatch.Timeout != 250*time.Millisecond || !config.Dispatch.FailFast {
		t.Errorf("Unexpected dispatch config: %+v", config.Dispatch)
	}
	if config.Dispatch.QueueSize != DefaultQueueSize {
		t.Errorf("Expected default queue size, got %d", config.Dispatch.QueueSize)
	}
	if e := config.Calibration[calibration.FieldSteer]; e.Byte != 4 || !e.Reverse {
		t.Errorf("Unexpected steer calibration: %+v", e)
	}
	if e := config.Calibration[calibration.FieldSwitchManual]; e.Kind != calibration.Digital || e.Byte != 7 || e.Bit != 1 {
		t.Errorf("Unexpected switch_manual calibration: %+v", e)
	}
	if !config.Mirrors.MQTT.Enabled || config.Mirrors.MQTT.TopicPrefix != DefaultMQTTTopicPrefix {
		t.Errorf("Unexpected MQTT config: %+v", config.Mirrors.MQTT)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("Expected debug logging, got %s", config.Logging.Level)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadConfigBadCalibration(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "calibration:\n  stop: [5, 5, 5]\n"))
	if err == nil {
		t.Fatal("Expected parse error for malformed calibration entry")
	}
}

func TestLoadConfigKeepsExplicitZeros(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, `
device:
  idle_sleep: 0s
drive:
  default_drive_speed: 0
  max_drive_speed: 0
  max_steer: 0
`))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Drive.DefaultDriveSpeed != 0 || config.Drive.MaxDriveSpeed != 0 || config.Drive.MaxSteer != 0 {
		t.Errorf("Expected zero drive limits, got %+v", config.Drive)
	}
	if config.Device.IdleSleep != 0 {
		t.Errorf("Expected busy poll, got idle sleep %v", config.Device.IdleSleep)
	}
	if config.Transport.Port != DefaultPort || config.Dispatch.Timeout != DefaultDispatchTimeout {
		t.Errorf("Missing keys should keep their defaults: port=%d timeout=%v", config.Transport.Port, config.Dispatch.Timeout)
	}
	if len(config.Calibration) != len(calibration.Default()) {
		t.Errorf("Expected default calibration, got %d entries", len(config.Calibration))
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Zero limits should validate: %v", err)
	}
}

func TestParseConfigReplacesCalibration(t *testing.T) {
	config, err := ParseConfig([]byte("calibration:\n  drive: 3\n  switch_manual: [5, 7]\n"))
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}
	if len(config.Calibration) != 2 {
		t.Errorf("Expected the file's calibration to replace the default, got %d entries", len(config.Calibration))
	}
}

func TestDefaults(t *testing.T) {
	c := Default()

	if c.Transport.Host != "192.168.0.135" || c.Transport.Port != 5000 {
		t.Errorf("Unexpected default endpoint: %s", c.Transport.Address())
	}
	if c.Drive.DefaultDriveSpeed != 0.3 || c.Drive.MaxDriveSpeed != 0.6 || c.Drive.MaxSteer != 1 {
		t.Errorf("Unexpected default drive config: %+v", c.Drive)
	}
	if c.Dispatch.Mode != "async" || c.Dispatch.Timeout != time.Second {
		t.Errorf("Unexpected default dispatch config: %+v", c.Dispatch)
	}
	if c.Device.IdleSleep != 2*time.Millisecond {
		t.Errorf("Unexpected idle sleep: %v", c.Device.IdleSleep)
	}
	if len(c.Calibration) != 6 {
		t.Errorf("Expected default calibration map, got %d entries", len(c.Calibration))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"missing device", func(c *Config) { c.Device.ID = "" }, "device.id"},
		{"slow idle", func(c *Config) { c.Device.IdleSleep = time.Second }, "device.idle_sleep"},
		{"bad transport", func(c *Config) { c.Transport.Kind = "carrier-pigeon" }, "transport.kind"},
		{"bad port", func(c *Config) { c.Transport.Port = 70000 }, "transport.port"},
		{"bad mode", func(c *Config) { c.Dispatch.Mode = "batch" }, "dispatch.mode"},
		{"zero timeout", func(c *Config) { c.Dispatch.Timeout = 0 }, "dispatch.timeout"},
		{"missing field", func(c *Config) { delete(c.Calibration, calibration.FieldDrive) }, "calibration"},
		{"digital speed", func(c *Config) { c.Calibration[calibration.FieldSpeed] = calibration.DigitalEntry(2, 0) }, "calibration"},
		{"analog stop", func(c *Config) { c.Calibration[calibration.FieldStop] = calibration.AnalogEntry(5, false) }, "calibration"},
		{"mqtt without broker", func(c *Config) { c.Mirrors.MQTT.Enabled = true }, "mirrors.mqtt.broker"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			c.Device.ID = "046d:c216"
			tt.mutate(c)

			err := c.Validate()
			var cfgErr *bridgeerrors.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Expected ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, cfgErr.Field)
			}
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	c := Default()
	host := "127.0.0.1"
	port := 8000
	maxSteer := 0.5
	device := "/dev/hidraw3"

	c.ApplyOverrides(Overrides{DeviceID: &device, Host: &host, Port: &port, MaxSteer: &maxSteer})

	if c.Transport.Address() != "127.0.0.1:8000" {
		t.Errorf("Unexpected address %s", c.Transport.Address())
	}
	if c.Drive.MaxSteer != 0.5 || c.Drive.MaxDriveSpeed != DefaultMaxDriveSpeed {
		t.Errorf("Unexpected drive config: %+v", c.Drive)
	}
	if c.Device.ID != device {
		t.Errorf("Expected device %s, got %s", device, c.Device.ID)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	c := Default()
	c.Device.ID = "046d:c216"

	out, err := c.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(out), "timeout: 1s") {
		t.Errorf("Expected durations rendered as strings:\n%s", out)
	}

	back, err := LoadConfig(writeConfig(t, string(out)))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if err := back.Validate(); err != nil {
		t.Errorf("Round-tripped config should validate: %v", err)
	}
	if back.Calibration[calibration.FieldSteer] != c.Calibration[calibration.FieldSteer] {
		t.Errorf("Steer calibration lost in round trip")
	}
}
