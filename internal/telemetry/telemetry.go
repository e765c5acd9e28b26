package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Recorder appends run events as JSON lines to a file.
// A nil or disabled Recorder drops every event.
type Recorder struct {
	enabled bool
	path    string

	mu  sync.Mutex
	now func() time.Time
}

func NewRecorder(enabled bool, path string) *Recorder {
	return &Recorder{enabled: enabled, path: path, now: time.Now}
}

func (r *Recorder) Enabled() bool {
	return r != nil && r.enabled && r.path != ""
}

// Emit writes a single JSON line for the named event.
// It augments fields with RFC3339Nano time and the event name.
func (r *Recorder) Emit(name string, fields map[string]any) {
	if !r.Enabled() {
		return
	}

	// Make a shallow copy so callers' maps aren't mutated.
	m := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		m[k] = v
	}
	m["time"] = r.now().UTC().Format(time.RFC3339Nano)
	m["event"] = name

	b, err := json.Marshal(m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: marshal: %v\n", err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "telemetry: mkdir %s: %v\n", dir, err)
			return
		}
	}

	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: open %s: %v\n", r.path, err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(b, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: write %s: %v\n", r.path, err)
	}
}
