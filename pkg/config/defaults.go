package config

import (
	"time"

	"github.com/open-teleop/gamepad-bridge/pkg/calibration"
)

// Default values
const (
	DefaultHost              = "192.168.0.135"
	DefaultPort              = 5000
	DefaultDriveSpeed        = 0.3
	DefaultMaxDriveSpeed     = 0.6
	DefaultMaxSteer          = 1.0
	DefaultIdleSleep         = 2 * time.Millisecond
	DefaultReconnectInterval = time.Second
	DefaultDispatchTimeout   = time.Second
	DefaultQueueSize         = 64
	DefaultStatusPort        = 8080
	DefaultRegisterScale     = 1000
	DefaultMQTTTopicPrefix   = "teleop/bridge"
	DefaultMQTTClientID      = "gamepad-bridge"
	DefaultMQTTKeepAlive     = 30 * time.Second
	DefaultPublishAddress    = "tcp://*:5556"

	maxIdleSleep = 50 * time.Millisecond
)

// Default returns a configuration with every default applied
func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills zero values. Booleans are never touched.
func (c *Config) ApplyDefaults() {
	if c.Version == "" {
		c.Version = "1.0"
	}

	if c.Device.IdleSleep == 0 {
		c.Device.IdleSleep = DefaultIdleSleep
	}
	if c.Device.ReconnectInterval == 0 {
		c.Device.ReconnectInterval = DefaultReconnectInterval
	}

	if c.Transport.Kind == "" {
		c.Transport.Kind = TransportHTTP
	}
	if c.Transport.Host == "" {
		c.Transport.Host = DefaultHost
	}
	if c.Transport.Port == 0 {
		c.Transport.Port = DefaultPort
	}
	if c.Transport.Modbus.RegisterScale == 0 {
		c.Transport.Modbus.RegisterScale = DefaultRegisterScale
	}
	if c.Transport.Modbus.SlaveID == 0 {
		c.Transport.Modbus.SlaveID = 1
	}

	if c.Drive.DefaultDriveSpeed == 0 {
		c.Drive.DefaultDriveSpeed = DefaultDriveSpeed
	}
	if c.Drive.MaxDriveSpeed == 0 {
		c.Drive.MaxDriveSpeed = DefaultMaxDriveSpeed
	}
	if c.Drive.MaxSteer == 0 {
		c.Drive.MaxSteer = DefaultMaxSteer
	}

	if c.Dispatch.Mode == "" {
		c.Dispatch.Mode = "async"
	}
	if c.Dispatch.QueueSize == 0 {
		c.Dispatch.QueueSize = DefaultQueueSize
	}
	if c.Dispatch.Timeout == 0 {
		c.Dispatch.Timeout = DefaultDispatchTimeout
	}

	if len(c.Calibration) == 0 {
		c.Calibration = calibration.Default()
	}

	if c.Mirrors.ZeroMQ.PublishBindAddress == "" {
		c.Mirrors.ZeroMQ.PublishBindAddress = DefaultPublishAddress
	}
	if c.Mirrors.MQTT.TopicPrefix == "" {
		c.Mirrors.MQTT.TopicPrefix = DefaultMQTTTopicPrefix
	}
	if c.Mirrors.MQTT.ClientID == "" {
		c.Mirrors.MQTT.ClientID = DefaultMQTTClientID
	}
	if c.Mirrors.MQTT.KeepAlive == 0 {
		c.Mirrors.MQTT.KeepAlive = DefaultMQTTKeepAlive
	}

	if c.Status.Port == 0 {
		c.Status.Port = DefaultStatusPort
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
