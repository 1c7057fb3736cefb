package associate

import "github.com/san-kum/pantrack/internal/pantilt"

// Tracker owns the control loop's private object list and the raw detection
// history since the last reset.
type Tracker struct {
	radius  Radius
	objects []Object
	history []pantilt.Detection
}

func NewTracker(r Radius) *Tracker {
	return &Tracker{radius: r}
}

// Add merges a batch of detections. Empty batches are a no-op.
func (t *Tracker) Add(dets []pantilt.Detection) {
	if len(dets) == 0 {
		return
	}
	t.history = append(t.history, dets...)
	t.objects = Associate(t.objects, dets, t.radius)
}

// Objects returns a copy of the tracked list.
func (t *Tracker) Objects() []Object {
	out := make([]Object, len(t.objects))
	copy(out, t.objects)
	return out
}

func (t *Tracker) Len() int { return len(t.objects) }

// History returns a copy of every detection seen since the last ClearHistory.
func (t *Tracker) History() []pantilt.Detection {
	out := make([]pantilt.Detection, len(t.history))
	copy(out, t.history)
	return out
}

// ClearHistory drops the detection history. Tracked objects are kept.
func (t *Tracker) ClearHistory() { t.history = t.history[:0] }
