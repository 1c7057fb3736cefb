package metrics

import (
	"math"

	"github.com/san-kum/pantrack/internal/pantilt"
)

// Saturation is the fraction of ticks where either axis was commanded past
// its velocity limit.
type Saturation struct {
	name       string
	panVMax    float64
	tiltVMax   float64
	violations int
	samples    int
}

func NewSaturation(panVMax, tiltVMax float64) *Saturation {
	return &Saturation{
		name:     "saturation",
		panVMax:  panVMax,
		tiltVMax: tiltVMax,
	}
}

func (s *Saturation) Name() string {
	return s.name
}

func (s *Saturation) Observe(r pantilt.Record) {
	s.samples++
	if math.Abs(r.Cmd.Pan.Vel) > s.panVMax || math.Abs(r.Cmd.Tilt.Vel) > s.tiltVMax {
		s.violations++
	}
}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.violations) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.violations = 0
	s.samples = 0
}
