package device

import "testing"

func TestParseSelector(t *testing.T) {
	tests := []struct {
		in      string
		want    Selector
		wantErr bool
	}{
		{in: "046d:c216", want: Selector{VendorID: 0x046d, ProductID: 0xc216}},
		{in: "0x054C:0x0268", want: Selector{VendorID: 0x054c, ProductID: 0x0268}},
		{in: "/dev/hidraw2", want: Selector{Path: "/dev/hidraw2"}},
		{in: "046d", wantErr: true},
		{in: "046d:c216:1", wantErr: true},
		{in: "zzzz:c216", wantErr: true},
		{in: "046d:10000", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSelector(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSelector failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestSelectorString(t *testing.T) {
	if s := (Selector{VendorID: 0x46d, ProductID: 0xc216}).String(); s != "046d:c216" {
		t.Errorf("Unexpected string %s", s)
	}
	if s := (Selector{Path: "/dev/hidraw0"}).String(); s != "/dev/hidraw0" {
		t.Errorf("Unexpected string %s", s)
	}
}

func TestReadBeforeOpen(t *testing.T) {
	r := NewHIDReader(Selector{VendorID: 1, ProductID: 2})
	if _, err := r.Read(make([]byte, ReportSize)); err == nil {
		t.Error("Expected error reading an unopened device")
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close of unopened reader should be a no-op: %v", err)
	}
}
