package teleop

import (
	"sort"
	"sync"
	"time"

	"github.com/open-teleop/gamepad-bridge/pkg/calibration"
	customlog "github.com/open-teleop/gamepad-bridge/pkg/log"
)

// FieldInfo holds the observed state of one input field
type FieldInfo struct {
	Name       string    `json:"name"`
	Kind       string    `json:"kind"`
	Byte       int       `json:"byte"`
	Bit        int       `json:"bit,omitempty"`
	Value      float64   `json:"value"`
	Raw        byte      `json:"raw"`
	Changes    int64     `json:"changes"`
	Commands   int64     `json:"commands"`
	LastChange time.Time `json:"last_change,omitempty"`
}

// FieldRegistry keeps per-field statistics for the status API. Writers
// are the translation service, readers are HTTP handlers.
type FieldRegistry struct {
	logger customlog.Logger
	fields map[string]*FieldInfo
	mu     sync.RWMutex
}

// NewFieldRegistry creates a new field registry
func NewFieldRegistry(logger customlog.Logger) *FieldRegistry {
	return &FieldRegistry{
		logger: logger,
		fields: make(map[string]*FieldInfo),
	}
}

// LoadFromCalibration registers every field of the calibration map
func (r *FieldRegistry) LoadFromCalibration(m calibration.Map) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.fields = make(map[string]*FieldInfo, len(m))
	for name, e := range m {
		info := &FieldInfo{Name: name, Kind: e.Kind.String(), Byte: e.Byte}
		if e.Kind == calibration.Digital {
			info.Bit = e.Bit
		}
		r.fields[name] = info
	}

	r.logger.Infof("Loaded %d fields into registry", len(r.fields))
}

// Observe records the latest value of field. changed marks a detected
// change and commands the number of commands it produced.
func (r *FieldRegistry) Observe(field string, raw byte, value float64, changed bool, commands int, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, exists := r.fields[field]
	if !exists {
		info = &FieldInfo{Name: field}
		r.fields[field] = info
	}

	info.Raw = raw
	info.Value = value
	if changed {
		info.Changes++
		info.Commands += int64(commands)
		info.LastChange = now
	}
}

// GetField returns a copy of the info for field
func (r *FieldRegistry) GetField(field string) (FieldInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, exists := r.fields[field]
	if !exists {
		return FieldInfo{}, false
	}
	return *info, true
}

// GetAllFields returns copies of every field sorted by name
func (r *FieldRegistry) GetAllFields() []FieldInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]FieldInfo, 0, len(r.fields))
	for _, info := range r.fields {
		out = append(out, *info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
