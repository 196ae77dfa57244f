// Package report turns raw controller reports into per-field values.
package report

import (
	"github.com/open-teleop/gamepad-bridge/pkg/calibration"
	bridgeerrors "github.com/open-teleop/gamepad-bridge/pkg/errors"
)

// Length is the size of one HID input report.
const Length = calibration.MaxReportLength

// Value is the decoded state of one field.
type Value struct {
	Kind  calibration.Kind
	Raw   byte
	Float float64 // analog: normalized to about [-1, 1]
	Bit   int     // digital: 0 or 1
}

// Normalize maps a raw axis byte onto [-0.9921875, 1] with 128 at rest.
// Smaller raw values give larger results.
func Normalize(raw byte) float64 {
	return -(float64(raw)/128.0 - 1.0)
}

// BitAt extracts bit n of raw.
func BitAt(raw byte, n int) int {
	return int((raw >> uint(n)) & 1)
}

// Decode applies m to r. It fails before reading any byte when r is
// shorter than m requires.
func Decode(r []byte, m calibration.Map) (map[string]Value, error) {
	if need := m.RequiredLength(); len(r) < need {
		return nil, bridgeerrors.NewCalibrationError(longestField(m), need, len(r))
	}

	out := make(map[string]Value, len(m))
	for name, e := range m {
		raw := r[e.Byte]
		switch e.Kind {
		case calibration.Digital:
			out[name] = Value{Kind: e.Kind, Raw: raw, Bit: BitAt(raw, e.Bit)}
		default:
			v := Normalize(raw)
			if e.Reverse {
				v = -v
			}
			out[name] = Value{Kind: e.Kind, Raw: raw, Float: v}
		}
	}
	return out, nil
}

// longestField names the field with the highest byte offset, for errors.
func longestField(m calibration.Map) string {
	best, off := "", -1
	for _, name := range m.Names() {
		if m[name].Byte > off {
			best, off = name, m[name].Byte
		}
	}
	return best
}
