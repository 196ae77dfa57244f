package api

import (
	"errors"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	customlog "github.com/open-teleop/gamepad-bridge/pkg/log"
)

const (
	feedClientBuffer = 64
	feedWriteTimeout = time.Second
)

// CommandFeed fans dispatch events out to WebSocket clients. It is a
// dispatch.MessagePublisher; slow clients lose messages rather than
// delaying dispatch.
type CommandFeed struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]chan []byte
	closed  bool
	logger  customlog.Logger
}

// NewCommandFeed creates an empty feed
func NewCommandFeed(logger customlog.Logger) *CommandFeed {
	return &CommandFeed{
		clients: make(map[*websocket.Conn]chan []byte),
		logger:  logger,
	}
}

// PublishMessage implements dispatch.MessagePublisher. The topic is not
// sent; events carry the command name.
func (f *CommandFeed) PublishMessage(topic string, data []byte) error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for conn, ch := range f.clients {
		select {
		case ch <- data:
		default:
			f.logger.Debugf("Command feed client %s is behind, dropping %s", conn.RemoteAddr(), topic)
		}
	}
	return nil
}

// Clients returns the number of connected clients
func (f *CommandFeed) Clients() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// Close disconnects every client
func (f *CommandFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	for conn, ch := range f.clients {
		close(ch)
		delete(f.clients, conn)
	}
}

// Handler returns the Fiber handler for the feed endpoint
func (f *CommandFeed) Handler() fiber.Handler {
	return websocket.New(f.serve)
}

func (f *CommandFeed) add(conn *websocket.Conn) (chan []byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, false
	}
	ch := make(chan []byte, feedClientBuffer)
	f.clients[conn] = ch
	return ch, true
}

func (f *CommandFeed) remove(conn *websocket.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ch, ok := f.clients[conn]; ok {
		close(ch)
		delete(f.clients, conn)
	}
}

func (f *CommandFeed) serve(conn *websocket.Conn) {
	ch, ok := f.add(conn)
	if !ok {
		return
	}
	defer f.remove(conn)
	f.logger.Infof("Command feed client connected: %s", conn.RemoteAddr())

	// Clients only listen; reading detects the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				f.logClose(err)
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case data, ok := <-ch:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				f.logger.Warnf("Command feed write to %s failed: %v", conn.RemoteAddr(), err)
				return
			}
		}
	}
}

func (f *CommandFeed) logClose(err error) {
	if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
		f.logger.Errorf("Command feed read error: %v", err)
	} else if errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) {
		f.logger.Infof("Command feed connection reset")
	} else {
		f.logger.Infof("Command feed connection closed: %v", err)
	}
}
