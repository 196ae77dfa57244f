// Package calibration describes where each semantic control lives inside a
// raw controller report.
package calibration

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// MaxReportLength is the largest report the device reader hands out.
const MaxReportLength = 64

// Field names understood by the translation service.
const (
	FieldSpeed        = "speed"
	FieldSteer        = "steer"
	FieldSwitchManual = "switch_manual"
	FieldSwitchAuto   = "switch_auto"
	FieldStop         = "stop"
	FieldDrive        = "drive"
)

// Kind distinguishes axis bytes from button bits.
type Kind int

const (
	Analog Kind = iota
	Digital
)

func (k Kind) String() string {
	switch k {
	case Analog:
		return "analog"
	case Digital:
		return "digital"
	default:
		return "unknown"
	}
}

// Entry locates one control in the report.
type Entry struct {
	Kind    Kind
	Byte    int
	Bit     int  // digital only, 0 is least significant
	Reverse bool // analog only, flips the sign of the normalized value
}

// AnalogEntry returns an axis entry at byte offset b.
func AnalogEntry(b int, reverse bool) Entry {
	return Entry{Kind: Analog, Byte: b, Reverse: reverse}
}

// DigitalEntry returns a button entry at bit of byte offset b.
func DigitalEntry(b, bit int) Entry {
	return Entry{Kind: Digital, Byte: b, Bit: bit}
}

// Map is the field name to entry table. It is built once at startup and
// treated as read-only afterwards.
type Map map[string]Entry

// Default reproduces the layout of the reference controller.
func Default() Map {
	return Map{
		FieldSpeed:        AnalogEntry(2, false),
		FieldSteer:        AnalogEntry(3, true),
		FieldSwitchManual: DigitalEntry(6, 1),
		FieldSwitchAuto:   DigitalEntry(6, 0),
		FieldStop:         DigitalEntry(5, 5),
		FieldDrive:        DigitalEntry(5, 7),
	}
}

// RequiredLength is the shortest report the map can be applied to.
func (m Map) RequiredLength() int {
	n := 0
	for _, e := range m {
		if e.Byte+1 > n {
			n = e.Byte + 1
		}
	}
	return n
}

// Names returns the field names in lexical order.
func (m Map) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks every entry against the report geometry.
func (m Map) Validate() error {
	if len(m) == 0 {
		return fmt.Errorf("calibration map is empty")
	}
	for _, name := range m.Names() {
		e := m[name]
		if name == "" {
			return fmt.Errorf("calibration entry with empty name")
		}
		if e.Byte < 0 || e.Byte >= MaxReportLength {
			return fmt.Errorf("field %s: byte offset %d outside 0..%d", name, e.Byte, MaxReportLength-1)
		}
		switch e.Kind {
		case Analog:
		case Digital:
			if e.Bit < 0 || e.Bit > 7 {
				return fmt.Errorf("field %s: bit %d outside 0..7", name, e.Bit)
			}
			if e.Reverse {
				return fmt.Errorf("field %s: reverse is only valid for analog entries", name)
			}
		default:
			return fmt.Errorf("field %s: unknown kind %d", name, e.Kind)
		}
	}
	return nil
}

// rawEntry is the canonical mapping form of an entry in configuration.
type rawEntry struct {
	Byte    int  `mapstructure:"byte"`
	Bit     *int `mapstructure:"bit"`
	Reverse bool `mapstructure:"reverse"`
}

// Parse builds a Map from loosely typed configuration. Each value may be a
// byte offset (analog), a [byte, bit] pair (digital) or a mapping with
// byte, bit and reverse keys.
func Parse(raw map[string]interface{}) (Map, error) {
	m := make(Map, len(raw))
	for name, value := range raw {
		var re rawEntry
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			DecodeHook:  shorthandHook,
			Result:      &re,
			ErrorUnused: true,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(value); err != nil {
			return nil, fmt.Errorf("calibration field %s: %w", name, err)
		}
		if re.Bit != nil {
			m[name] = Entry{Kind: Digital, Byte: re.Byte, Bit: *re.Bit, Reverse: re.Reverse}
		} else {
			m[name] = Entry{Kind: Analog, Byte: re.Byte, Reverse: re.Reverse}
		}
	}
	return m, nil
}

// shorthandHook expands the scalar and pair forms into the mapping form.
func shorthandHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to != reflect.TypeOf(rawEntry{}) {
		return data, nil
	}
	switch from.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]interface{}{"byte": data}, nil
	case reflect.Slice, reflect.Array:
		v := reflect.ValueOf(data)
		if v.Len() != 2 {
			return nil, fmt.Errorf("expected [byte, bit], got %d elements", v.Len())
		}
		return map[string]interface{}{
			"byte": v.Index(0).Interface(),
			"bit":  v.Index(1).Interface(),
		}, nil
	}
	return data, nil
}

// UnmarshalYAML accepts the shorthand forms documented on Parse.
func (m *Map) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]interface{}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalYAML writes the shortest form of every entry.
func (m Map) MarshalYAML() (interface{}, error) {
	out := make(map[string]interface{}, len(m))
	for name, e := range m {
		switch {
		case e.Kind == Digital:
			out[name] = []int{e.Byte, e.Bit}
		case e.Reverse:
			out[name] = map[string]interface{}{"byte": e.Byte, "reverse": true}
		default:
			out[name] = e.Byte
		}
	}
	return out, nil
}
