package config

import (
	"errors"
	"fmt"

	"github.com/open-teleop/gamepad-bridge/pkg/calibration"
	bridgeerrors "github.com/open-teleop/gamepad-bridge/pkg/errors"
)

// RequiredFields must be present in every calibration map.
var RequiredFields = []string{
	calibration.FieldSpeed,
	calibration.FieldSteer,
	calibration.FieldSwitchManual,
	calibration.FieldSwitchAuto,
	calibration.FieldStop,
	calibration.FieldDrive,
}

// Validate performs structural validation of the configuration.
// It does not mutate the config.
func (c *Config) Validate() error {
	if c.Device.ID == "" {
		return bridgeerrors.NewConfigError("device.id", errors.New("required (vid:pid or hidraw path)"))
	}
	if c.Device.IdleSleep < 0 || c.Device.IdleSleep > maxIdleSleep {
		return bridgeerrors.NewConfigError("device.idle_sleep", fmt.Errorf("must be between 0 and %v", maxIdleSleep))
	}
	if c.Device.ReconnectAttempts < 0 {
		return bridgeerrors.NewConfigError("device.reconnect_attempts", errors.New("must be >= 0"))
	}

	switch c.Transport.Kind {
	case TransportHTTP, TransportZMQ, TransportModbus:
	default:
		return bridgeerrors.NewConfigError("transport.kind", fmt.Errorf("unknown transport %q", c.Transport.Kind))
	}
	if c.Transport.Host == "" {
		return bridgeerrors.NewConfigError("transport.host", errors.New("required"))
	}
	if c.Transport.Port <= 0 || c.Transport.Port > 65535 {
		return bridgeerrors.NewConfigError("transport.port", fmt.Errorf("invalid port %d", c.Transport.Port))
	}
	if c.Transport.Kind == TransportModbus && c.Transport.Modbus.RegisterScale <= 0 {
		return bridgeerrors.NewConfigError("transport.modbus.register_scale", errors.New("must be > 0"))
	}

	if c.Drive.MaxDriveSpeed < 0 || c.Drive.MaxSteer < 0 {
		return bridgeerrors.NewConfigError("drive", errors.New("limits must be >= 0"))
	}

	switch c.Dispatch.Mode {
	case "sync", "async":
	default:
		return bridgeerrors.NewConfigError("dispatch.mode", fmt.Errorf("unknown mode %q", c.Dispatch.Mode))
	}
	if c.Dispatch.QueueSize < 1 {
		return bridgeerrors.NewConfigError("dispatch.queue_size", errors.New("must be >= 1"))
	}
	if c.Dispatch.Timeout <= 0 {
		return bridgeerrors.NewConfigError("dispatch.timeout", errors.New("must be > 0"))
	}

	if err := c.Calibration.Validate(); err != nil {
		return bridgeerrors.NewConfigError("calibration", err)
	}
	for _, name := range RequiredFields {
		if _, ok := c.Calibration[name]; !ok {
			return bridgeerrors.NewConfigError("calibration", fmt.Errorf("missing field %s", name))
		}
	}
	for _, name := range []string{calibration.FieldSpeed, calibration.FieldSteer} {
		if c.Calibration[name].Kind != calibration.Analog {
			return bridgeerrors.NewConfigError("calibration", fmt.Errorf("field %s must be analog", name))
		}
	}
	for _, name := range RequiredFields[2:] {
		if c.Calibration[name].Kind != calibration.Digital {
			return bridgeerrors.NewConfigError("calibration", fmt.Errorf("field %s must be digital", name))
		}
	}

	if c.Mirrors.MQTT.Enabled {
		if c.Mirrors.MQTT.Broker == "" {
			return bridgeerrors.NewConfigError("mirrors.mqtt.broker", errors.New("required when enabled"))
		}
		if c.Mirrors.MQTT.QoS > 2 {
			return bridgeerrors.NewConfigError("mirrors.mqtt.qos", errors.New("must be 0, 1 or 2"))
		}
	}
	if c.Mirrors.ZeroMQ.Enabled && c.Mirrors.ZeroMQ.PublishBindAddress == "" {
		return bridgeerrors.NewConfigError("mirrors.zeromq.publish_bind_address", errors.New("required when enabled"))
	}

	if c.Status.Enabled && (c.Status.Port <= 0 || c.Status.Port > 65535) {
		return bridgeerrors.NewConfigError("status.port", fmt.Errorf("invalid port %d", c.Status.Port))
	}

	return nil
}
