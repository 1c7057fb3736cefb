package metrics

import (
	"math"

	"github.com/san-kum/pantrack/internal/pantilt"
)

// TrackingError is the RMS distance between commanded and measured pose.
type TrackingError struct {
	sumSq   float64
	samples int
}

func NewTrackingError() *TrackingError { return &TrackingError{} }

func (m *TrackingError) Name() string { return "tracking_error_rms" }

func (m *TrackingError) Observe(r pantilt.Record) {
	e := PositionError(r)
	m.sumSq += e * e
	m.samples++
}

func (m *TrackingError) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return math.Sqrt(m.sumSq / float64(m.samples))
}

func (m *TrackingError) Reset() {
	m.sumSq = 0
	m.samples = 0
}

// PointingError is the RMS distance between the measured pose and the object
// of interest, over ticks spent tracking with an object in view.
type PointingError struct {
	sumSq   float64
	samples int
}

func NewPointingError() *PointingError { return &PointingError{} }

func (m *PointingError) Name() string { return "pointing_error_rms" }

func (m *PointingError) Observe(r pantilt.Record) {
	if !r.HasObject || r.Mode != "tracking" {
		return
	}
	e := math.Hypot(r.Object.Pan-r.Act.Pan.Pos, r.Object.Tilt-r.Act.Tilt.Pos)
	m.sumSq += e * e
	m.samples++
}

func (m *PointingError) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return math.Sqrt(m.sumSq / float64(m.samples))
}

func (m *PointingError) Reset() {
	m.sumSq = 0
	m.samples = 0
}
