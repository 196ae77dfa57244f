// Package mqtt mirrors dispatched commands to an MQTT broker and keeps a
// retained online/offline status for the bridge.
package mqtt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/open-teleop/gamepad-bridge/pkg/config"
	customlog "github.com/open-teleop/gamepad-bridge/pkg/log"
)

// Status payloads
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

const (
	publishTimeout    = 2 * time.Second
	disconnectQuiesce = 250
	defaultRetryDelay = 5 * time.Second
)

// ErrNotConnected is returned by PublishMessage while the broker is down.
var ErrNotConnected = errors.New("mqtt client not connected")

// Publisher publishes command events under <prefix>/command/<name>.
type Publisher struct {
	client     paho.Client
	cfg        config.MQTTConfig
	logger     customlog.Logger
	retryDelay time.Duration
}

// NewPublisher creates a publisher. The last will marks the bridge offline
// if the connection drops without a clean disconnect.
func NewPublisher(cfg config.MQTTConfig, logger customlog.Logger) *Publisher {
	p := &Publisher{cfg: cfg, logger: logger, retryDelay: defaultRetryDelay}

	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(cfg.KeepAlive)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetWill(p.StatusTopic(), StatusOffline, cfg.QoS, true)

	opts.SetOnConnectHandler(func(client paho.Client) {
		logger.Infof("Connected to MQTT broker %s", cfg.Broker)
		if token := client.Publish(p.StatusTopic(), cfg.QoS, true, StatusOnline); token.WaitTimeout(publishTimeout) && token.Error() != nil {
			logger.Warnf("Error publishing online status on connect: %v", token.Error())
		}
	})
	opts.SetConnectionLostHandler(func(client paho.Client, err error) {
		logger.Errorf("MQTT connection lost: %v", err)
	})

	p.client = paho.NewClient(opts)
	return p
}

func newPublisherWithClient(client paho.Client, cfg config.MQTTConfig, logger customlog.Logger) *Publisher {
	return &Publisher{client: client, cfg: cfg, logger: logger, retryDelay: 10 * time.Millisecond}
}

// StatusTopic returns <prefix>/status
func (p *Publisher) StatusTopic() string {
	return p.topic("status")
}

// CommandTopicPrefix returns the prefix for command events, ending in "/".
func (p *Publisher) CommandTopicPrefix() string {
	return p.topic("command") + "/"
}

func (p *Publisher) topic(suffix string) string {
	return strings.TrimSuffix(p.cfg.TopicPrefix, "/") + "/" + suffix
}

// Connect retries until the broker accepts the connection or ctx is done.
func (p *Publisher) Connect(ctx context.Context) error {
	for attempt := 1; ; attempt++ {
		p.logger.Debugf("Connecting to MQTT broker %s (attempt %d)", p.cfg.Broker, attempt)

		token := p.client.Connect()
		if token.Wait() && token.Error() == nil {
			return nil
		}

		p.logger.Warnf("MQTT connection failed (attempt %d): %v", attempt, token.Error())
		select {
		case <-ctx.Done():
			return fmt.Errorf("mqtt connect cancelled: %w", ctx.Err())
		case <-time.After(p.retryDelay):
		}
	}
}

// PublishMessage implements dispatch.MessagePublisher
func (p *Publisher) PublishMessage(topic string, data []byte) error {
	if !p.client.IsConnected() {
		return ErrNotConnected
	}

	token := p.client.Publish(topic, p.cfg.QoS, false, data)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	return token.Error()
}

// Disconnect publishes the offline status and closes the connection.
func (p *Publisher) Disconnect() {
	if !p.client.IsConnected() {
		return
	}
	token := p.client.Publish(p.StatusTopic(), p.cfg.QoS, true, StatusOffline)
	if token.WaitTimeout(publishTimeout) && token.Error() != nil {
		p.logger.Warnf("Error publishing offline status: %v", token.Error())
	}
	p.client.Disconnect(disconnectQuiesce)
}
