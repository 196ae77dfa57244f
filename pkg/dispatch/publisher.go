package dispatch

import (
	"encoding/json"

	"github.com/open-teleop/gamepad-bridge/domain/teleop"
	customlog "github.com/open-teleop/gamepad-bridge/pkg/log"
)

// MessagePublisher defines the interface for publishing messages
type MessagePublisher interface {
	PublishMessage(topic string, data []byte) error
}

// Encoder turns a Result into a topic and message body
type Encoder func(result Result) (topic string, data []byte, err error)

// Event is the JSON form of a Result shared by the command mirrors.
type Event struct {
	Seq        uint64         `json:"seq"`
	Field      string         `json:"field"`
	Command    string         `json:"command"`
	Payload    teleop.Payload `json:"payload"`
	Transport  string         `json:"transport"`
	OK         bool           `json:"ok"`
	Error      string         `json:"error,omitempty"`
	DurationMs float64        `json:"duration_ms"`
	Timestamp  int64          `json:"timestamp"`
}

// NewEvent converts a Result
func NewEvent(r Result) Event {
	ev := Event{
		Seq:        r.Command.Seq,
		Field:      r.Command.Field,
		Command:    r.Command.Name,
		Payload:    r.Command.Payload,
		Transport:  r.Transport,
		OK:         r.OK(),
		DurationMs: float64(r.Duration.Microseconds()) / 1000.0,
		Timestamp:  r.Timestamp.UnixNano(),
	}
	if r.Err != nil {
		ev.Error = r.Err.Error()
	}
	return ev
}

// JSONEncoder encodes results as Event JSON under prefix + command name.
func JSONEncoder(prefix string) Encoder {
	return func(r Result) (string, []byte, error) {
		data, err := json.Marshal(NewEvent(r))
		if err != nil {
			return "", nil, err
		}
		return prefix + r.Command.Name, data, nil
	}
}

// PublishingObserver logs results and mirrors them to a publisher
type PublishingObserver struct {
	logger    customlog.Logger
	publisher MessagePublisher
	encode    Encoder
}

// NewPublishingObserver creates a new publishing observer
func NewPublishingObserver(publisher MessagePublisher, encode Encoder, logger customlog.Logger) *PublishingObserver {
	return &PublishingObserver{
		logger:    logger,
		publisher: publisher,
		encode:    encode,
	}
}

// OnDispatch publishes one result. Mirror failures never affect dispatch.
func (o *PublishingObserver) OnDispatch(result Result) {
	topic, data, err := o.encode(result)
	if err != nil {
		o.logger.Errorf("Failed to encode %s for mirroring: %v", result.Command.Name, err)
		return
	}

	if err := o.publisher.PublishMessage(topic, data); err != nil {
		o.logger.Warnf("Failed to publish message for topic '%s': %v", topic, err)
	} else {
		o.logger.Debugf("Published message for topic '%s'", topic)
	}
}
