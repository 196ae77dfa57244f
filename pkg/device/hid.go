// Package device reads raw input reports from a HID game controller.
package device

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sstallion/go-hid"
)

// ReportSize is the read buffer size, one full input report.
const ReportSize = 64

// Selector identifies a device either by vendor and product id or by path.
type Selector struct {
	VendorID  uint16
	ProductID uint16
	Path      string
}

func (s Selector) String() string {
	if s.Path != "" {
		return s.Path
	}
	return fmt.Sprintf("%04x:%04x", s.VendorID, s.ProductID)
}

// ParseSelector accepts "vid:pid" in hex (for example "046d:c216") or a
// device path such as /dev/hidraw0.
func ParseSelector(id string) (Selector, error) {
	if strings.HasPrefix(id, "/") {
		return Selector{Path: id}, nil
	}

	ids := strings.Split(id, ":")
	if len(ids) != 2 {
		return Selector{}, errors.Errorf("device id %q: expected vid:pid or a path", id)
	}
	vid, err := strconv.ParseUint(strings.TrimPrefix(ids[0], "0x"), 16, 16)
	if err != nil {
		return Selector{}, errors.Wrapf(err, "device id %q: vendor id", id)
	}
	pid, err := strconv.ParseUint(strings.TrimPrefix(ids[1], "0x"), 16, 16)
	if err != nil {
		return Selector{}, errors.Wrapf(err, "device id %q: product id", id)
	}
	return Selector{VendorID: uint16(vid), ProductID: uint16(pid)}, nil
}

// Info describes an open or enumerated device.
type Info struct {
	Path         string `json:"path"`
	VendorID     uint16 `json:"vendor_id"`
	ProductID    uint16 `json:"product_id"`
	Manufacturer string `json:"manufacturer"`
	Product      string `json:"product"`
}

var initOnce sync.Once
var initErr error

func ensureInit() error {
	initOnce.Do(func() {
		initErr = hid.Init()
	})
	return initErr
}

// Shutdown releases the HID library. Call once on process exit.
func Shutdown() error {
	return hid.Exit()
}

// HIDReader reads reports from one controller in non-blocking mode.
type HIDReader struct {
	sel  Selector
	mu   sync.Mutex
	dev  *hid.Device
	info Info
}

// NewHIDReader creates a reader; Open must be called before Read.
func NewHIDReader(sel Selector) *HIDReader {
	return &HIDReader{sel: sel}
}

// Name returns the selector string
func (r *HIDReader) Name() string {
	return r.sel.String()
}

// Open opens the device and switches it to non-blocking reads.
func (r *HIDReader) Open() error {
	if err := ensureInit(); err != nil {
		return errors.Wrap(err, "hid init")
	}

	var (
		dev *hid.Device
		err error
	)
	if r.sel.Path != "" {
		dev, err = hid.OpenPath(r.sel.Path)
	} else {
		dev, err = hid.OpenFirst(r.sel.VendorID, r.sel.ProductID)
	}
	if err != nil {
		return errors.Wrapf(err, "open %s", r.sel)
	}

	if err := dev.SetNonblock(true); err != nil {
		dev.Close()
		return errors.Wrapf(err, "set non-blocking on %s", r.sel)
	}

	info := Info{Path: r.sel.Path, VendorID: r.sel.VendorID, ProductID: r.sel.ProductID}
	if di, err := dev.GetDeviceInfo(); err == nil {
		info = Info{
			Path:         di.Path,
			VendorID:     di.VendorID,
			ProductID:    di.ProductID,
			Manufacturer: di.MfrStr,
			Product:      di.ProductStr,
		}
	}

	r.mu.Lock()
	r.dev = dev
	r.info = info
	r.mu.Unlock()
	return nil
}

// Read copies one report into buf. It returns 0 and a nil error when no
// report is pending.
func (r *HIDReader) Read(buf []byte) (int, error) {
	r.mu.Lock()
	dev := r.dev
	r.mu.Unlock()

	if dev == nil {
		return 0, errors.Errorf("device %s is not open", r.sel)
	}
	n, err := dev.Read(buf)
	if err != nil {
		return 0, errors.Wrapf(err, "read %s", r.sel)
	}
	return n, nil
}

// Reopen closes the current handle, if any, and opens the device again.
func (r *HIDReader) Reopen() error {
	r.Close()
	return r.Open()
}

// Close closes the device handle
func (r *HIDReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.dev == nil {
		return nil
	}
	err := r.dev.Close()
	r.dev = nil
	return err
}

// Info returns the details of the open device
func (r *HIDReader) Info() Info {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.info
}

// Enumerate lists attached HID devices. Zero ids match any device.
func Enumerate(vid, pid uint16) ([]Info, error) {
	if err := ensureInit(); err != nil {
		return nil, errors.Wrap(err, "hid init")
	}

	var out []Info
	err := hid.Enumerate(vid, pid, func(di *hid.DeviceInfo) error {
		out = append(out, Info{
			Path:         di.Path,
			VendorID:     di.VendorID,
			ProductID:    di.ProductID,
			Manufacturer: di.MfrStr,
			Product:      di.ProductStr,
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "enumerate")
	}
	return out, nil
}
