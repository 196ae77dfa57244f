package zeromq

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pebbe/zmq4"

	"github.com/open-teleop/gamepad-bridge/domain/teleop"
	customlog "github.com/open-teleop/gamepad-bridge/pkg/log"
)

// DefaultRequestTimeout bounds a request when ctx carries no deadline.
const DefaultRequestTimeout = 1 * time.Second

// ReqSink sends each command as a REQ/REP round trip. After a failed round
// trip the socket is discarded and reconnected on the next send, since a
// REQ socket that missed its reply cannot send again.
type ReqSink struct {
	mu       sync.Mutex
	ctx      *zmq4.Context
	socket   *zmq4.Socket
	endpoint string
	logger   customlog.Logger
	closed   bool
	now      func() time.Time
}

// NewReqSink creates a sink for address, either host:port or a full
// ZeroMQ endpoint. The socket is connected lazily.
func NewReqSink(address string, logger customlog.Logger) (*ReqSink, error) {
	ctx, err := zmq4.NewContext()
	if err != nil {
		return nil, fmt.Errorf("failed to create ZMQ context: %w", err)
	}

	endpoint := address
	if !strings.Contains(endpoint, "://") {
		endpoint = "tcp://" + endpoint
	}

	return &ReqSink{
		ctx:      ctx,
		endpoint: endpoint,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Name implements dispatch.Sink
func (s *ReqSink) Name() string {
	return "zmq"
}

// Endpoint returns the connect address
func (s *ReqSink) Endpoint() string {
	return s.endpoint
}

// Send implements dispatch.Sink
func (s *ReqSink) Send(ctx context.Context, cmd teleop.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	timeout := DefaultRequestTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return context.DeadlineExceeded
		}
	}

	request, err := NewCommandMessage(cmd, s.now())
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrServiceClosed
	}

	socket, err := s.connect()
	if err != nil {
		return err
	}

	reply, err := roundTrip(socket, request, timeout)
	if err != nil {
		s.logger.Warnf("Request %s to %s failed, resetting socket: %v", cmd.Name, s.endpoint, err)
		s.reset()
		return fmt.Errorf("%s: %w", cmd.Name, err)
	}

	return ParseReply(cmd.Name, reply)
}

func roundTrip(socket *zmq4.Socket, request []byte, timeout time.Duration) ([]byte, error) {
	if err := socket.SetSndtimeo(timeout); err != nil {
		return nil, fmt.Errorf("failed to set send timeout: %w", err)
	}
	if err := socket.SetRcvtimeo(timeout); err != nil {
		return nil, fmt.Errorf("failed to set receive timeout: %w", err)
	}
	if _, err := socket.SendBytes(request, 0); err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}
	reply, err := socket.RecvBytes(0)
	if err != nil {
		return nil, fmt.Errorf("no reply within %v: %w", timeout, err)
	}
	return reply, nil
}

// connect must be called with mu held
func (s *ReqSink) connect() (*zmq4.Socket, error) {
	if s.socket != nil {
		return s.socket, nil
	}

	socket, err := s.ctx.NewSocket(zmq4.Type(zmq4.REQ))
	if err != nil {
		return nil, fmt.Errorf("failed to create REQ socket: %w", err)
	}
	if err := socket.SetLinger(0); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to set linger option: %w", err)
	}
	if err := socket.Connect(s.endpoint); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", s.endpoint, err)
	}

	s.logger.Debugf("REQ socket connected to %s", s.endpoint)
	s.socket = socket
	return socket, nil
}

// reset must be called with mu held
func (s *ReqSink) reset() {
	if s.socket != nil {
		s.socket.Close()
		s.socket = nil
	}
}

// Close implements dispatch.Sink
func (s *ReqSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.reset()
	return s.ctx.Term()
}
