// Package trajectory generates per-tick setpoints for both axes.
//
// A trajectory is one of three shapes: Hold freezes a pose, Spline blends
// between two boundary samples over a bounded window, and Scan sweeps the
// field open-endedly. The Engine owns exactly one of them at a time and
// replaces it, never mutates it, on every transition.
package trajectory

import (
	"fmt"
	"math"

	"github.com/san-kum/pantrack/internal/motion"
	"github.com/san-kum/pantrack/internal/pantilt"
)

// Kind identifies the shape of the active trajectory.
type Kind int

const (
	KindHold Kind = iota
	KindSpline
	KindScan
)

func (k Kind) String() string {
	switch k {
	case KindHold:
		return "hold"
	case KindSpline:
		return "spline"
	case KindScan:
		return "scan"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Spec is a trajectory shape. The set of implementations is closed.
type Spec interface {
	Kind() Kind
	Eval(t float64) pantilt.Pair
	sealed()
}

// Hold keeps a fixed pose at zero velocity.
type Hold struct {
	Pan, Tilt float64
}

// HoldAt returns a Hold at pose p.
func HoldAt(p pantilt.Pose) Hold { return Hold{Pan: p.Pan, Tilt: p.Tilt} }

func (Hold) Kind() Kind { return KindHold }
func (Hold) sealed()    {}

func (h Hold) Eval(float64) pantilt.Pair {
	return pantilt.Pair{
		Pan:  pantilt.Sample{Pos: h.Pan},
		Tilt: pantilt.Sample{Pos: h.Tilt},
	}
}

// Spline is a cubic blend over [T0, T1]. Both axes share the window so they
// arrive together.
type Spline struct {
	T0, T1    float64
	Pan, Tilt motion.Cubic
}

func (Spline) Kind() Kind { return KindSpline }
func (Spline) sealed()    {}

func (s Spline) Eval(t float64) pantilt.Pair {
	pp, pv := motion.Evaluate(s.T0, t, s.Pan)
	tp, tv := motion.Evaluate(s.T0, t, s.Tilt)
	return pantilt.Pair{
		Pan:  pantilt.Sample{Pos: pp, Vel: pv},
		Tilt: pantilt.Sample{Pos: tp, Vel: tv},
	}
}

// Duration returns the length of the blend window.
func (s Spline) Duration() float64 { return s.T1 - s.T0 }

// Wave is one axis of a scan: p = A·sin(ωτ+φ).
type Wave struct {
	Amplitude   float64
	AngularFreq float64
	Phase       float64
}

// At returns position and velocity τ seconds into the sweep.
func (w Wave) At(tau float64) pantilt.Sample {
	arg := w.AngularFreq*tau + w.Phase
	return pantilt.Sample{
		Pos: w.Amplitude * math.Sin(arg),
		Vel: w.Amplitude * w.AngularFreq * math.Cos(arg),
	}
}

// Scan is an open-ended sweep starting at T0. It never completes.
type Scan struct {
	T0        float64
	Pan, Tilt Wave
}

func (Scan) Kind() Kind { return KindScan }
func (Scan) sealed()    {}

func (s Scan) Eval(t float64) pantilt.Pair {
	tau := t - s.T0
	return pantilt.Pair{Pan: s.Pan.At(tau), Tilt: s.Tilt.At(tau)}
}

// Start is the sample the sweep begins with.
func (s Scan) Start() pantilt.Pair { return s.Eval(s.T0) }

// Default sweep: three pan cycles per tilt cycle over ScanPeriod seconds.
const (
	ScanPeriod    = 17.6243347866
	PanAmplitude  = 1.309
	TiltAmplitude = math.Pi / 6
)

// DefaultScan returns the standard field sweep starting at t0.
func DefaultScan(t0 float64) Scan {
	return Scan{
		T0: t0,
		Pan: Wave{
			Amplitude:   PanAmplitude,
			AngularFreq: 6 * math.Pi / ScanPeriod,
		},
		Tilt: Wave{
			Amplitude:   TiltAmplitude,
			AngularFreq: 2 * math.Pi / ScanPeriod,
			Phase:       math.Pi / 2,
		},
	}
}
