package teleop

// Detector remembers the last observation of every field and decides
// whether a new observation is worth a command. Axes report any change,
// buttons only report presses. It is owned by the poll loop and is not
// safe for concurrent use.
type Detector struct {
	state map[string]float64
}

// NewDetector creates a detector with every field at 0.
func NewDetector() *Detector {
	return &Detector{state: make(map[string]float64)}
}

// Analog stores v and reports whether it differs from the previous value.
func (d *Detector) Analog(field string, v float64) bool {
	changed := v != d.state[field]
	d.state[field] = v
	return changed
}

// Digital stores bit and reports a 0 to 1 transition.
func (d *Detector) Digital(field string, bit int) bool {
	changed := float64(bit) > d.state[field]
	d.state[field] = float64(bit)
	return changed
}

// Value returns the stored observation for field.
func (d *Detector) Value(field string) float64 {
	return d.state[field]
}

// Snapshot copies the whole state.
func (d *Detector) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(d.state))
	for k, v := range d.state {
		out[k] = v
	}
	return out
}
