package actuator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/goburrow/modbus"

	"github.com/open-teleop/gamepad-bridge/domain/teleop"
)

// ModbusConfig maps commands onto the actuator's register table.
type ModbusConfig struct {
	Endpoint      string
	SlaveID       uint8
	Timeout       time.Duration
	SpeedRegister uint16
	SteerRegister uint16
	AutoSteerCoil uint16
	RegisterScale float64
}

// ModbusSink writes commands to a Modbus TCP actuator. set_speed and
// set_steer write a holding register holding value*scale as a signed
// 16 bit integer; set_auto_steer writes a coil.
type ModbusSink struct {
	mu      sync.Mutex
	cfg     ModbusConfig
	handler *modbus.TCPClientHandler
	client  modbus.Client
}

// NewModbusSink creates a sink. The TCP connection is opened on first use
// and reopened by the handler after failures.
func NewModbusSink(cfg ModbusConfig) (*ModbusSink, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("modbus sink: endpoint required")
	}
	if cfg.RegisterScale <= 0 {
		return nil, errors.New("modbus sink: register scale must be > 0")
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout
	h.SlaveId = cfg.SlaveID

	return &ModbusSink{
		cfg:     cfg,
		handler: h,
		client:  modbus.NewClient(h),
	}, nil
}

// Name implements dispatch.Sink
func (s *ModbusSink) Name() string {
	return "modbus"
}

// Send implements dispatch.Sink. The call is bounded by the handler
// timeout; ctx is only checked before the write starts.
func (s *ModbusSink) Send(ctx context.Context, cmd teleop.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch cmd.Name {
	case teleop.CommandSetSpeed:
		return s.writeScaled(s.cfg.SpeedRegister, cmd.Payload[teleop.KeySpeed])
	case teleop.CommandSetSteer:
		return s.writeScaled(s.cfg.SteerRegister, cmd.Payload[teleop.KeySteer])
	case teleop.CommandSetAutoSteer:
		on, ok := cmd.Payload[teleop.KeyAutoSteer].(bool)
		if !ok {
			return fmt.Errorf("set_auto_steer: payload is not a bool")
		}
		value := uint16(0x0000)
		if on {
			value = 0xFF00
		}
		_, err := s.client.WriteSingleCoil(s.cfg.AutoSteerCoil, value)
		return err
	}
	return fmt.Errorf("modbus sink: unsupported command %q", cmd.Name)
}

func (s *ModbusSink) writeScaled(register uint16, v interface{}) error {
	f, ok := v.(float64)
	if !ok {
		return fmt.Errorf("register %d: payload is not a number", register)
	}
	raw, err := EncodeRegister(f, s.cfg.RegisterScale)
	if err != nil {
		return fmt.Errorf("register %d: %w", register, err)
	}
	_, err = s.client.WriteSingleRegister(register, raw)
	return err
}

// EncodeRegister scales v and returns it as a two's complement 16 bit word.
func EncodeRegister(v, scale float64) (uint16, error) {
	scaled := math.Round(v * scale)
	if scaled < math.MinInt16 || scaled > math.MaxInt16 {
		return 0, fmt.Errorf("value %v scaled by %v overflows int16", v, scale)
	}
	return uint16(int16(scaled)), nil
}

// Close implements dispatch.Sink
func (s *ModbusSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handler.Close()
}
