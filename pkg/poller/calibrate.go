package poller

import (
	"context"
	"fmt"
	"strings"
	"time"

	bridgeerrors "github.com/open-teleop/gamepad-bridge/pkg/errors"
	customlog "github.com/open-teleop/gamepad-bridge/pkg/log"
)

// CalibrationInterval is how often the calibrator samples the device.
const CalibrationInterval = 200 * time.Millisecond

// BiggestDiffIndex returns the offset whose value differs most between a
// and b, and that difference. Ties go to the lowest offset. Offsets past
// the shorter slice are ignored.
func BiggestDiffIndex(a, b []byte) (int, int) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	index, delta := 0, 0
	for i := 0; i < n; i++ {
		d := int(a[i]) - int(b[i])
		if d < 0 {
			d = -d
		}
		if d > delta {
			index, delta = i, d
		}
	}
	return index, delta
}

// Sample is one calibration observation.
type Sample struct {
	Report    []byte
	DiffIndex int
	DiffDelta int
}

// Calibrator logs raw reports so a calibration map can be written for an
// unknown controller.
type Calibrator struct {
	src      Source
	logger   customlog.Logger
	interval time.Duration
	buf      []byte
	prev     []byte
}

// NewCalibrator creates a calibrator sampling src every interval
func NewCalibrator(src Source, interval time.Duration, logger customlog.Logger) *Calibrator {
	if interval <= 0 {
		interval = CalibrationInterval
	}
	return &Calibrator{
		src:      src,
		logger:   logger,
		interval: interval,
		buf:      make([]byte, 64),
	}
}

// maxDrain bounds how many queued reports one sample may consume.
const maxDrain = 256

// SampleOnce drains pending reports and keeps the newest. It returns
// false when nothing arrived since the last sample.
func (c *Calibrator) SampleOnce() (Sample, bool, error) {
	var latest []byte
	for i := 0; i < maxDrain; i++ {
		n, err := c.src.Read(c.buf)
		if err != nil {
			return Sample{}, false, bridgeerrors.NewDeviceError("read", err, c.src.Name())
		}
		if n == 0 {
			break
		}
		latest = append(latest[:0], c.buf[:n]...)
	}
	if latest == nil {
		return Sample{}, false, nil
	}

	s := Sample{Report: latest}
	if c.prev != nil {
		s.DiffIndex, s.DiffDelta = BiggestDiffIndex(c.prev, latest)
	}
	c.prev = latest
	return s, true, nil
}

// Run samples until ctx is cancelled or the device fails.
func (c *Calibrator) Run(ctx context.Context) error {
	c.logger.Infof("Starting gamepad calibration on %s, move one control at a time", c.src.Name())

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		s, ok, err := c.SampleOnce()
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		logger := c.logger.WithField("len", len(s.Report))
		if s.DiffDelta > 0 {
			logger = logger.WithField("changed_byte", s.DiffIndex).WithField("delta", s.DiffDelta)
		}
		logger.Infof("%s", FormatReport(s.Report))
	}
}

// FormatReport renders a report as space separated decimal bytes.
func FormatReport(r []byte) string {
	parts := make([]string, len(r))
	for i, b := range r {
		parts[i] = fmt.Sprintf("%d", b)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
