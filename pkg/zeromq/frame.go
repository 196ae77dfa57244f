package zeromq

import (
	"fmt"
	"sort"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/open-teleop/gamepad-bridge/domain/teleop"
	"github.com/open-teleop/gamepad-bridge/pkg/dispatch"
	"github.com/open-teleop/gamepad-bridge/pkg/flatbuffers/open_teleop/command"
)

// CommandTopicPrefix prefixes the command name on mirrored frames.
const CommandTopicPrefix = "teleop.command."

// FrameVersion is written into every CommandFrame.
const FrameVersion = 1

var payloadKeys = map[string]string{
	teleop.CommandSetSpeed:     teleop.KeySpeed,
	teleop.CommandSetSteer:     teleop.KeySteer,
	teleop.CommandSetAutoSteer: teleop.KeyAutoSteer,
}

// Frame is a decoded CommandFrame.
type Frame struct {
	Version     byte
	TimestampNs int64
	Command     teleop.Command
	OK          bool
	Error       string
}

// EncodeFrame serializes a dispatch result as a CommandFrame.
func EncodeFrame(r dispatch.Result) ([]byte, error) {
	key := payloadKey(r.Command)
	value, ok := r.Command.Payload[key]
	if !ok && len(r.Command.Payload) > 0 {
		return nil, fmt.Errorf("%s: missing payload key %q", r.Command.Name, key)
	}

	kind := command.ValueKindNumber
	var number float64
	var flag bool
	switch v := value.(type) {
	case nil:
	case float64:
		number = v
	case bool:
		kind = command.ValueKindFlag
		flag = v
	default:
		return nil, fmt.Errorf("%s: unsupported payload value %T", r.Command.Name, value)
	}

	b := flatbuffers.NewBuilder(128)
	name := b.CreateString(r.Command.Name)
	field := b.CreateString(r.Command.Field)
	var errMsg flatbuffers.UOffsetT
	if r.Err != nil {
		errMsg = b.CreateString(r.Err.Error())
	}

	command.CommandFrameStart(b)
	command.CommandFrameAddVersion(b, FrameVersion)
	command.CommandFrameAddSeq(b, r.Command.Seq)
	command.CommandFrameAddTimestampNs(b, r.Timestamp.UnixNano())
	command.CommandFrameAddName(b, name)
	command.CommandFrameAddField(b, field)
	command.CommandFrameAddKind(b, kind)
	command.CommandFrameAddNumber(b, number)
	command.CommandFrameAddFlag(b, flag)
	command.CommandFrameAddOk(b, r.OK())
	if r.Err != nil {
		command.CommandFrameAddError(b, errMsg)
	}
	command.FinishCommandFrameBuffer(b, command.CommandFrameEnd(b))

	return b.FinishedBytes(), nil
}

// DecodeFrame parses a CommandFrame produced by EncodeFrame.
func DecodeFrame(data []byte) (f Frame, err error) {
	if len(data) < flatbuffers.SizeUOffsetT {
		return Frame{}, ErrInvalidMessage
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInvalidMessage, r)
		}
	}()

	fb := command.GetRootAsCommandFrame(data, 0)
	cmd := teleop.Command{
		Name:  string(fb.Name()),
		Field: string(fb.Field()),
		Seq:   fb.Seq(),
	}
	key, ok := payloadKeys[cmd.Name]
	if !ok {
		key = "value"
	}
	if fb.Kind() == command.ValueKindFlag {
		cmd.Payload = teleop.Payload{key: fb.Flag()}
	} else {
		cmd.Payload = teleop.Payload{key: fb.Number()}
	}

	return Frame{
		Version:     fb.Version(),
		TimestampNs: fb.TimestampNs(),
		Command:     cmd,
		OK:          fb.Ok(),
		Error:       string(fb.Error()),
	}, nil
}

// FrameEncoder is the dispatch.Encoder used by the PUB mirror.
func FrameEncoder(r dispatch.Result) (string, []byte, error) {
	data, err := EncodeFrame(r)
	if err != nil {
		return "", nil, err
	}
	return CommandTopicPrefix + r.Command.Name, data, nil
}

func payloadKey(cmd teleop.Command) string {
	if key, ok := payloadKeys[cmd.Name]; ok {
		return key
	}
	keys := make([]string, 0, len(cmd.Payload))
	for k := range cmd.Payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}
