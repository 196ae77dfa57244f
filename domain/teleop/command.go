package teleop

import (
	"fmt"
	"sort"
	"strings"
)

// Command names accepted by the actuation service.
const (
	CommandSetSpeed     = "set_speed"
	CommandSetSteer     = "set_steer"
	CommandSetAutoSteer = "set_auto_steer"
)

// Payload keys, one per command.
const (
	KeySpeed     = "speed"
	KeySteer     = "steer"
	KeyAutoSteer = "auto_steer"
)

// Payload holds float64 or bool values keyed by parameter name.
type Payload map[string]interface{}

// Command is one outbound actuation request.
type Command struct {
	Name    string  `json:"name"`
	Payload Payload `json:"payload"`

	// Field is the input field that produced the command and Seq its
	// position in the output stream. Neither is sent to the actuator.
	Field string `json:"field"`
	Seq   uint64 `json:"seq"`
}

// SetSpeed builds a set_speed command.
func SetSpeed(v float64) Command {
	return Command{Name: CommandSetSpeed, Payload: Payload{KeySpeed: v}}
}

// SetSteer builds a set_steer command.
func SetSteer(v float64) Command {
	return Command{Name: CommandSetSteer, Payload: Payload{KeySteer: v}}
}

// SetAutoSteer builds a set_auto_steer command.
func SetAutoSteer(on bool) Command {
	return Command{Name: CommandSetAutoSteer, Payload: Payload{KeyAutoSteer: on}}
}

// String renders the command as name{key:value,...} with sorted keys.
func (c Command) String() string {
	keys := make([]string, 0, len(c.Payload))
	for k := range c.Payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", k, c.Payload[k]))
	}
	return c.Name + "{" + strings.Join(parts, ",") + "}"
}

// Equal compares name and payload, ignoring provenance.
func (c Command) Equal(o Command) bool {
	if c.Name != o.Name || len(c.Payload) != len(o.Payload) {
		return false
	}
	for k, v := range c.Payload {
		if ov, ok := o.Payload[k]; !ok || ov != v {
			return false
		}
	}
	return true
}
