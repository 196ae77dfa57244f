package log

import (
	"fmt"
	"sync"
)

// Recorder is a Logger that keeps formatted messages in memory, for tests.
type Recorder struct {
	mu      sync.Mutex
	entries []RecordedEntry
	fields  map[string]interface{}
	parent  *Recorder
}

// RecordedEntry is one captured log line.
type RecordedEntry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

var _ Logger = (*Recorder)(nil)

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) root() *Recorder {
	if r.parent != nil {
		return r.parent.root()
	}
	return r
}

func (r *Recorder) record(level, format string, args ...interface{}) {
	root := r.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	root.entries = append(root.entries, RecordedEntry{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
		Fields:  r.fields,
	})
}

func (r *Recorder) Debugf(format string, args ...interface{}) { r.record("debug", format, args...) }
func (r *Recorder) Infof(format string, args ...interface{})  { r.record("info", format, args...) }
func (r *Recorder) Warnf(format string, args ...interface{})  { r.record("warn", format, args...) }
func (r *Recorder) Errorf(format string, args ...interface{}) { r.record("error", format, args...) }

// Fatalf records the message at fatal level. It does not exit.
func (r *Recorder) Fatalf(format string, args ...interface{}) { r.record("fatal", format, args...) }

func (r *Recorder) WithField(key string, value interface{}) Logger {
	fields := make(map[string]interface{}, len(r.fields)+1)
	for k, v := range r.fields {
		fields[k] = v
	}
	fields[key] = value
	return &Recorder{fields: fields, parent: r.root()}
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []RecordedEntry {
	root := r.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	out := make([]RecordedEntry, len(root.entries))
	copy(out, root.entries)
	return out
}

// Count returns how many entries were recorded at level.
func (r *Recorder) Count(level string) int {
	n := 0
	for _, e := range r.Entries() {
		if e.Level == level {
			n++
		}
	}
	return n
}
