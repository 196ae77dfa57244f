package teleop

import "testing"

func TestDetectorAnalog(t *testing.T) {
	tests := []struct {
		name  string
		prev  float64
		next  float64
		fired bool
	}{
		{"equal", 0.25, 0.25, false},
		{"increase", 0.25, 0.5, true},
		{"decrease", 0.5, -0.5, true},
		{"back to zero", 0.5, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector()
			d.Analog("speed", tt.prev)
			if got := d.Analog("speed", tt.next); got != tt.fired {
				t.Errorf("Analog(%v -> %v): expected %v, got %v", tt.prev, tt.next, tt.fired, got)
			}
			if d.Value("speed") != tt.next {
				t.Errorf("Expected stored value %v, got %v", tt.next, d.Value("speed"))
			}
		})
	}
}

func TestDetectorAnalogInitialZero(t *testing.T) {
	d := NewDetector()
	if d.Analog("steer", 0) {
		t.Error("Zero should not be a change from the initial state")
	}
	if !d.Analog("steer", 0.1) {
		t.Error("Expected change from initial state")
	}
}

func TestDetectorDigitalEdges(t *testing.T) {
	tests := []struct {
		name  string
		seq   []int
		fired []bool
	}{
		{"press", []int{0, 1}, []bool{false, true}},
		{"release", []int{1, 0}, []bool{true, false}},
		{"held", []int{1, 1}, []bool{true, false}},
		{"press twice", []int{1, 0, 1}, []bool{true, false, true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector()
			for i, bit := range tt.seq {
				if got := d.Digital("stop", bit); got != tt.fired[i] {
					t.Errorf("step %d (bit %d): expected %v, got %v", i, bit, tt.fired[i], got)
				}
				if d.Value("stop") != float64(bit) {
					t.Errorf("step %d: state not overwritten", i)
				}
			}
		})
	}
}

func TestDetectorSnapshotIsCopy(t *testing.T) {
	d := NewDetector()
	d.Analog("speed", 0.3)

	snap := d.Snapshot()
	snap["speed"] = 1

	if d.Value("speed") != 0.3 {
		t.Error("Snapshot should not alias detector state")
	}
}
