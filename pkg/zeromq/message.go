// Package zeromq carries commands over ZeroMQ: a REQ transport to an
// actuation service and a PUB socket mirroring dispatch results.
package zeromq

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/open-teleop/gamepad-bridge/domain/teleop"
)

// Common errors
var (
	ErrServiceClosed  = errors.New("zeromq service is closed")
	ErrInvalidMessage = errors.New("invalid message format")
)

// Message types
const (
	MsgTypeAck   = "ACK"
	MsgTypeError = "ERROR"
)

// ZeroMQMessage represents a generic message structure for ZeroMQ communication
type ZeroMQMessage struct {
	Type      string      `json:"type"`
	Timestamp float64     `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// ErrorResponse represents an error response message
type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// ReplyError is returned when the service answers with an ERROR message.
type ReplyError struct {
	Command string
	ErrorResponse
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("%s rejected (code %d): %s", e.Command, e.Code, e.Message)
}

// NewCommandMessage wraps cmd in a request envelope. The message type is
// the command name and the data is its payload.
func NewCommandMessage(cmd teleop.Command, now time.Time) ([]byte, error) {
	msg := ZeroMQMessage{
		Type:      cmd.Name,
		Timestamp: float64(now.UnixNano()) / 1e9,
		Data:      cmd.Payload,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", cmd.Name, err)
	}
	return data, nil
}

// ParseReply checks a reply to a command request. Any well formed reply
// other than ERROR counts as acceptance.
func ParseReply(command string, data []byte) error {
	var reply struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &reply); err != nil || reply.Type == "" {
		return fmt.Errorf("%w: %d byte reply to %s", ErrInvalidMessage, len(data), command)
	}
	if reply.Type != MsgTypeError {
		return nil
	}

	re := &ReplyError{Command: command}
	if len(reply.Data) > 0 {
		if err := json.Unmarshal(reply.Data, &re.ErrorResponse); err != nil {
			re.Message = string(reply.Data)
		}
	}
	return re
}
