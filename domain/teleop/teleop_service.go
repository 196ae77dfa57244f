package teleop

import (
	"sync/atomic"
	"time"

	"github.com/open-teleop/gamepad-bridge/pkg/calibration"
	customlog "github.com/open-teleop/gamepad-bridge/pkg/log"
	"github.com/open-teleop/gamepad-bridge/pkg/report"
)

// FieldOrder is the order in which fields are examined for every report.
// Commands from one report leave in this order.
var FieldOrder = []string{
	calibration.FieldSpeed,
	calibration.FieldSteer,
	calibration.FieldSwitchManual,
	calibration.FieldSwitchAuto,
	calibration.FieldStop,
	calibration.FieldDrive,
}

// Limits scale the normalized axes and set the drive button speed.
type Limits struct {
	DefaultDriveSpeed float64
	MaxDriveSpeed     float64
	MaxSteer          float64
}

// TeleopService translates raw controller reports into commands
type TeleopService struct {
	logger      customlog.Logger
	calibration calibration.Map
	limits      Limits
	detector    *Detector
	mapper      Mapper
	registry    *FieldRegistry
	seq         atomic.Uint64
	now         func() time.Time
}

// NewTeleopService creates a new teleop service instance
func NewTeleopService(m calibration.Map, limits Limits, logger customlog.Logger) *TeleopService {
	registry := NewFieldRegistry(logger)
	registry.LoadFromCalibration(m)

	return &TeleopService{
		logger:      logger,
		calibration: m,
		limits:      limits,
		detector:    NewDetector(),
		mapper:      Mapper{DefaultDriveSpeed: limits.DefaultDriveSpeed},
		registry:    registry,
		now:         time.Now,
	}
}

// Registry exposes per-field statistics
func (s *TeleopService) Registry() *FieldRegistry {
	return s.registry
}

// Detector exposes the change detector
func (s *TeleopService) Detector() *Detector {
	return s.detector
}

// Process decodes one report and returns the commands it triggers, in
// dispatch order. Field state is updated whether or not anything is sent.
func (s *TeleopService) Process(r []byte) ([]Command, error) {
	values, err := report.Decode(r, s.calibration)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var out []Command
	for _, field := range FieldOrder {
		v, ok := values[field]
		if !ok {
			continue
		}

		var (
			changed bool
			value   float64
		)
		switch v.Kind {
		case calibration.Digital:
			value = float64(v.Bit)
			changed = s.detector.Digital(field, v.Bit)
		default:
			value = s.scale(field, v.Float)
			changed = s.detector.Analog(field, value)
		}

		var cmds []Command
		if changed {
			cmds = s.mapper.Map(field, value)
			for i := range cmds {
				cmds[i].Field = field
				cmds[i].Seq = s.seq.Add(1)
			}
			s.logger.WithField("field", field).Debugf("Change detected, value=%v commands=%d", value, len(cmds))
		}
		s.registry.Observe(field, v.Raw, value, changed, len(cmds), now)
		out = append(out, cmds...)
	}
	return out, nil
}

func (s *TeleopService) scale(field string, v float64) float64 {
	switch field {
	case calibration.FieldSpeed:
		return v * s.limits.MaxDriveSpeed
	case calibration.FieldSteer:
		return v * s.limits.MaxSteer
	}
	return v
}
