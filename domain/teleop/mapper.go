package teleop

import "github.com/open-teleop/gamepad-bridge/pkg/calibration"

// Mapper turns a detected field change into commands.
type Mapper struct {
	DefaultDriveSpeed float64
}

// Map returns the commands for a change of field to value, in the order
// they must be sent. Unknown fields produce nothing.
func (m Mapper) Map(field string, value float64) []Command {
	switch field {
	case calibration.FieldSpeed:
		return []Command{SetSpeed(value)}
	case calibration.FieldSteer:
		return []Command{SetSteer(value)}
	case calibration.FieldSwitchManual:
		return []Command{SetSpeed(0), SetAutoSteer(false), SetSteer(0)}
	case calibration.FieldSwitchAuto:
		return []Command{SetAutoSteer(true)}
	case calibration.FieldStop:
		return []Command{SetSpeed(0)}
	case calibration.FieldDrive:
		return []Command{SetSpeed(m.DefaultDriveSpeed)}
	}
	return nil
}
