package zeromq

import (
	"fmt"
	"sync"
	"time"

	"github.com/pebbe/zmq4"

	customlog "github.com/open-teleop/gamepad-bridge/pkg/log"
)

// CommandPublisher mirrors dispatch results on a PUB socket. Each message
// is sent as two frames: the topic, then the body.
type CommandPublisher struct {
	mu      sync.Mutex
	ctx     *zmq4.Context
	socket  *zmq4.Socket
	address string
	logger  customlog.Logger
	closed  bool
}

// NewCommandPublisher binds a PUB socket to address.
func NewCommandPublisher(address string, logger customlog.Logger) (*CommandPublisher, error) {
	ctx, err := zmq4.NewContext()
	if err != nil {
		return nil, fmt.Errorf("failed to create ZMQ context: %w", err)
	}

	socket, err := ctx.NewSocket(zmq4.Type(zmq4.PUB))
	if err != nil {
		ctx.Term()
		return nil, fmt.Errorf("failed to create PUB socket: %w", err)
	}
	if err := socket.SetLinger(0); err != nil {
		socket.Close()
		ctx.Term()
		return nil, fmt.Errorf("failed to set linger option: %w", err)
	}
	if err := socket.SetSndtimeo(100 * time.Millisecond); err != nil {
		socket.Close()
		ctx.Term()
		return nil, fmt.Errorf("failed to set send timeout: %w", err)
	}
	if err := socket.Bind(address); err != nil {
		socket.Close()
		ctx.Term()
		return nil, fmt.Errorf("failed to bind to %s: %w", address, err)
	}

	bound := address
	if ep, err := socket.GetLastEndpoint(); err == nil && ep != "" {
		bound = ep
	}
	logger.Infof("Command publisher bound to %s", bound)

	return &CommandPublisher{
		ctx:     ctx,
		socket:  socket,
		address: bound,
		logger:  logger,
	}, nil
}

// Address returns the bound endpoint, with any wildcard port resolved.
func (p *CommandPublisher) Address() string {
	return p.address
}

// PublishMessage implements dispatch.MessagePublisher
func (p *CommandPublisher) PublishMessage(topic string, message []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrServiceClosed
	}

	if _, err := p.socket.Send(topic, zmq4.Flag(zmq4.SNDMORE)); err != nil {
		return fmt.Errorf("failed to send topic: %w", err)
	}
	if _, err := p.socket.SendBytes(message, 0); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Close releases the socket and its context
func (p *CommandPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	p.socket.Close()
	return p.ctx.Term()
}
