package main

import (
	"context"
	"fmt"

	"github.com/open-teleop/gamepad-bridge/pkg/actuator"
	"github.com/open-teleop/gamepad-bridge/pkg/config"
	"github.com/open-teleop/gamepad-bridge/pkg/dispatch"
	customlog "github.com/open-teleop/gamepad-bridge/pkg/log"
	"github.com/open-teleop/gamepad-bridge/pkg/mqtt"
	"github.com/open-teleop/gamepad-bridge/pkg/zeromq"
)

// buildSink creates the configured actuation transport
func buildSink(cfg *config.Config, logger customlog.Logger) (dispatch.Sink, error) {
	address := cfg.Transport.Address()

	switch cfg.Transport.Kind {
	case config.TransportHTTP:
		return actuator.NewHTTPSink(address), nil
	case config.TransportZMQ:
		sink, err := zeromq.NewReqSink(address, logger.WithField("transport", "zmq"))
		if err != nil {
			return nil, err
		}
		return sink, nil
	case config.TransportModbus:
		mb := cfg.Transport.Modbus
		sink, err := actuator.NewModbusSink(actuator.ModbusConfig{
			Endpoint:      address,
			SlaveID:       mb.SlaveID,
			Timeout:       cfg.Dispatch.Timeout,
			SpeedRegister: mb.SpeedRegister,
			SteerRegister: mb.SteerRegister,
			AutoSteerCoil: mb.AutoSteerCoil,
			RegisterScale: mb.RegisterScale,
		})
		if err != nil {
			return nil, err
		}
		return sink, nil
	}
	return nil, fmt.Errorf("unknown transport %q", cfg.Transport.Kind)
}

// mirrors owns the optional command mirrors
type mirrors struct {
	zmq       *zeromq.CommandPublisher
	mqtt      *mqtt.Publisher
	observers []*dispatch.AsyncObserver
}

// attach registers o behind its own buffered delivery goroutine.
func (m *mirrors) attach(d *dispatch.Dispatcher, o dispatch.Observer, logger customlog.Logger) {
	async := dispatch.NewAsyncObserver(o, dispatch.DefaultMirrorBuffer, logger)
	m.observers = append(m.observers, async)
	d.AddObserver(async)
}

// startMirrors attaches every enabled mirror to the dispatcher. The MQTT
// connection is established in the background.
func startMirrors(ctx context.Context, cfg *config.Config, d *dispatch.Dispatcher, logger customlog.Logger) (*mirrors, error) {
	m := &mirrors{}

	if cfg.Mirrors.ZeroMQ.Enabled {
		pub, err := zeromq.NewCommandPublisher(cfg.Mirrors.ZeroMQ.PublishBindAddress, logger.WithField("mirror", "zeromq"))
		if err != nil {
			return nil, err
		}
		m.zmq = pub
		m.attach(d, dispatch.NewPublishingObserver(pub, zeromq.FrameEncoder, logger), logger)
	}

	if cfg.Mirrors.MQTT.Enabled {
		mqttLogger := logger.WithField("mirror", "mqtt")
		pub := mqtt.NewPublisher(cfg.Mirrors.MQTT, mqttLogger)
		m.mqtt = pub
		m.attach(d, dispatch.NewPublishingObserver(pub, dispatch.JSONEncoder(pub.CommandTopicPrefix()), mqttLogger), mqttLogger)
		go func() {
			if err := pub.Connect(ctx); err != nil {
				mqttLogger.Warnf("MQTT mirror not connected: %v", err)
			}
		}()
	}

	return m, nil
}

// Close flushes the mirror buffers, then closes the publishers
func (m *mirrors) Close() {
	for _, o := range m.observers {
		o.Close()
	}
	if m.mqtt != nil {
		m.mqtt.Disconnect()
	}
	if m.zmq != nil {
		m.zmq.Close()
	}
}
