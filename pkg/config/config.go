package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/open-teleop/gamepad-bridge/pkg/calibration"
)

// Config represents the bridge configuration
type Config struct {
	Version     string          `yaml:"version" json:"version"`
	Device      DeviceConfig    `yaml:"device" json:"device"`
	Transport   TransportConfig `yaml:"transport" json:"transport"`
	Drive       DriveConfig     `yaml:"drive" json:"drive"`
	Dispatch    DispatchConfig  `yaml:"dispatch" json:"dispatch"`
	Calibration calibration.Map `yaml:"calibration" json:"-"`
	Mirrors     MirrorsConfig   `yaml:"mirrors" json:"mirrors"`
	Status      StatusConfig    `yaml:"status" json:"status"`
	Logging     LoggingConfig   `yaml:"logging" json:"logging"`
}

// DeviceConfig selects the HID controller and how it is polled
type DeviceConfig struct {
	// ID is "vid:pid" in hex or a hidraw device path
	ID                string        `yaml:"id" json:"id"`
	IdleSleep         time.Duration `yaml:"idle_sleep" json:"idle_sleep"`
	ReconnectAttempts int           `yaml:"reconnect_attempts" json:"reconnect_attempts"`
	ReconnectInterval time.Duration `yaml:"reconnect_interval" json:"reconnect_interval"`
}

// Transport kinds
const (
	TransportHTTP   = "http"
	TransportZMQ    = "zmq"
	TransportModbus = "modbus"
)

// TransportConfig describes how commands reach the actuation service
type TransportConfig struct {
	Kind   string       `yaml:"kind" json:"kind"`
	Host   string       `yaml:"host" json:"host"`
	Port   int          `yaml:"port" json:"port"`
	Modbus ModbusConfig `yaml:"modbus" json:"modbus"`
}

// Address returns host:port
func (t TransportConfig) Address() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// ModbusConfig maps commands onto registers and coils
type ModbusConfig struct {
	SlaveID       uint8   `yaml:"slave_id" json:"slave_id"`
	SpeedRegister uint16  `yaml:"speed_register" json:"speed_register"`
	SteerRegister uint16  `yaml:"steer_register" json:"steer_register"`
	AutoSteerCoil uint16  `yaml:"auto_steer_coil" json:"auto_steer_coil"`
	RegisterScale float64 `yaml:"register_scale" json:"register_scale"`
}

// DriveConfig holds the speed and steering limits
type DriveConfig struct {
	DefaultDriveSpeed float64 `yaml:"default_drive_speed" json:"default_drive_speed"`
	MaxDriveSpeed     float64 `yaml:"max_drive_speed" json:"max_drive_speed"`
	MaxSteer          float64 `yaml:"max_steer" json:"max_steer"`
}

// DispatchConfig controls command delivery
type DispatchConfig struct {
	Mode      string        `yaml:"mode" json:"mode"`
	QueueSize int           `yaml:"queue_size" json:"queue_size"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
	FailFast  bool          `yaml:"fail_fast" json:"fail_fast"`
}

// MirrorsConfig holds the optional command mirrors
type MirrorsConfig struct {
	ZeroMQ ZeroMQMirrorConfig `yaml:"zeromq" json:"zeromq"`
	MQTT   MQTTConfig         `yaml:"mqtt" json:"mqtt"`
}

// ZeroMQMirrorConfig holds the PUB socket settings
type ZeroMQMirrorConfig struct {
	Enabled            bool   `yaml:"enabled" json:"enabled"`
	PublishBindAddress string `yaml:"publish_bind_address" json:"publish_bind_address"`
}

// MQTTConfig holds MQTT broker settings
type MQTTConfig struct {
	Enabled     bool          `yaml:"enabled" json:"enabled"`
	Broker      string        `yaml:"broker" json:"broker"`
	ClientID    string        `yaml:"client_id" json:"client_id"`
	Username    string        `yaml:"username" json:"username,omitempty"`
	Password    string        `yaml:"password" json:"-"`
	TopicPrefix string        `yaml:"topic_prefix" json:"topic_prefix"`
	QoS         byte          `yaml:"qos" json:"qos"`
	KeepAlive   time.Duration `yaml:"keep_alive" json:"keep_alive"`
}

// StatusConfig holds the status HTTP server settings
type StatusConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Host    string `yaml:"host" json:"host"`
	Port    int    `yaml:"port" json:"port"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	Dir   string `yaml:"dir,omitempty" json:"dir,omitempty"`
}

// LoadConfig loads configuration from the specified file path. Keys
// missing from the file keep their defaults. Validation is left to the
// caller so that flag overrides can be applied first.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	return config, nil
}

// ParseConfig decodes YAML on top of Default, so an explicit zero in the
// document is kept rather than replaced.
func ParseConfig(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}
	return config, nil
}

// Marshal renders the effective configuration as YAML
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
