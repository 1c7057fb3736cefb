package rig

import (
	"sync"

	"github.com/san-kum/pantrack/internal/pantilt"
)

// Recorder keeps the time history of a run. It is safe to read while the
// control loop appends.
type Recorder struct {
	mu      sync.RWMutex
	records []pantilt.Record
	limit   int
}

// NewRecorder keeps at most limit records, dropping the oldest; zero keeps
// everything.
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit}
}

func (r *Recorder) OnTick(rec pantilt.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	if r.limit > 0 && len(r.records) > r.limit {
		n := copy(r.records, r.records[len(r.records)-r.limit:])
		r.records = r.records[:n]
	}
}

// Records returns a copy of the history.
func (r *Recorder) Records() []pantilt.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]pantilt.Record, len(r.records))
	copy(out, r.records)
	return out
}

func (r *Recorder) Last() (pantilt.Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.records) == 0 {
		return pantilt.Record{}, false
	}
	return r.records[len(r.records)-1], true
}

func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
