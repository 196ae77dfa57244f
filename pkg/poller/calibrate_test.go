package poller

import (
	"errors"
	"fmt"
	"testing"

	bridgeerrors "github.com/open-teleop/gamepad-bridge/pkg/errors"
	customlog "github.com/open-teleop/gamepad-bridge/pkg/log"
)

func TestBiggestDiffIndex(t *testing.T) {
	tests := []struct {
		name      string
		a, b      []byte
		wantIndex int
		wantDelta int
	}{
		{"identical", []byte{1, 2, 3}, []byte{1, 2, 3}, 0, 0},
		{"single change", []byte{128, 128, 0}, []byte{128, 96, 0}, 1, 32},
		{"decrease counts", []byte{0, 255}, []byte{0, 0}, 1, 255},
		{"tie goes low", []byte{10, 10}, []byte{0, 20}, 0, 10},
		{"length mismatch", []byte{0, 0, 0}, []byte{0, 5}, 1, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i, d := BiggestDiffIndex(tt.a, tt.b)
			if i != tt.wantIndex || d != tt.wantDelta {
				t.Errorf("Expected (%d, %d), got (%d, %d)", tt.wantIndex, tt.wantDelta, i, d)
			}
		})
	}
}

func TestCalibratorKeepsNewestReport(t *testing.T) {
	src := &scriptedSource{steps: []readStep{
		{data: []byte{0, 0, 128, 128}},
	}}
	c := NewCalibrator(src, 0, customlog.NewNopLogger())

	first, ok, err := c.SampleOnce()
	if err != nil || !ok {
		t.Fatalf("Expected a sample, got ok=%v err=%v", ok, err)
	}
	if first.DiffDelta != 0 {
		t.Errorf("First sample has nothing to compare against: %+v", first)
	}

	src.steps = []readStep{
		{data: []byte{0, 0, 128, 100}},
		{data: []byte{0, 0, 128, 60}},
		{data: []byte{0, 32, 128, 60}},
	}
	second, ok, err := c.SampleOnce()
	if err != nil || !ok {
		t.Fatalf("Expected a sample, got ok=%v err=%v", ok, err)
	}
	if second.Report[1] != 32 || second.DiffIndex != 3 || second.DiffDelta != 68 {
		t.Errorf("Unexpected sample: %+v", second)
	}

	if _, ok, _ := c.SampleOnce(); ok {
		t.Error("Expected no sample when the device is idle")
	}
}

func TestCalibratorDeviceError(t *testing.T) {
	src := &scriptedSource{steps: []readStep{{err: fmt.Errorf("gone")}}}
	c := NewCalibrator(src, 0, customlog.NewNopLogger())

	_, _, err := c.SampleOnce()
	var devErr *bridgeerrors.DeviceError
	if !errors.As(err, &devErr) {
		t.Errorf("Expected DeviceError, got %v", err)
	}
}

func TestFormatReport(t *testing.T) {
	if got := FormatReport([]byte{0, 128, 255}); got != "[0 128 255]" {
		t.Errorf("Unexpected format %s", got)
	}
}
