// Package shared is the only state exchanged between the control loop and
// the perception loop.
//
// Every field sits behind one mutex and is reachable only through the typed
// methods of Channel, each of which is a single critical section. Callers
// must not do I/O inside the callbacks they pass in.
package shared

import (
	"sync"

	"github.com/san-kum/pantrack/internal/pantilt"
)

type state struct {
	motor     pantilt.Pose
	fresh     bool
	pending   []pantilt.Detection
	latest    pantilt.Detection
	hasLatest bool
	stop      bool
	published int
}

type Channel struct {
	mu sync.Mutex
	s  state
}

func New() *Channel {
	return &Channel{}
}

func (c *Channel) with(fn func(*state)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.s)
}

// Exchange publishes the control loop's feedback pose, takes any detections
// published since the previous call and reports whether stop was requested.
func (c *Channel) Exchange(motor pantilt.Pose) (dets []pantilt.Detection, stop bool) {
	c.with(func(s *state) {
		s.motor = motor
		if s.fresh {
			dets = s.pending
			s.pending = nil
			s.fresh = false
		}
		stop = s.stop
	})
	return dets, stop
}

// Publish converts a frame against the current motor pose and queues the
// result for the control loop. convert runs under the lock and must be pure.
func (c *Channel) Publish(convert func(pantilt.Pose) []pantilt.Detection) (stop bool) {
	c.with(func(s *state) {
		dets := convert(s.motor)
		if len(dets) > 0 {
			s.pending = append(s.pending, dets...)
			s.fresh = true
			s.latest = dets[len(dets)-1]
			s.hasLatest = true
			s.published += len(dets)
		}
		stop = s.stop
	})
	return stop
}

func (c *Channel) MotorPose() (p pantilt.Pose) {
	c.with(func(s *state) { p = s.motor })
	return p
}

// Latest is the most recently published detection, for display.
func (c *Channel) Latest() (d pantilt.Detection, ok bool) {
	c.with(func(s *state) { d, ok = s.latest, s.hasLatest })
	return d, ok
}

// Published counts every detection accepted since construction.
func (c *Channel) Published() (n int) {
	c.with(func(s *state) { n = s.published })
	return n
}

func (c *Channel) RequestStop() {
	c.with(func(s *state) { s.stop = true })
}

func (c *Channel) StopRequested() (stop bool) {
	c.with(func(s *state) { stop = s.stop })
	return stop
}
