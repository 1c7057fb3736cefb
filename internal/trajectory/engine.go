package trajectory

import (
	"math"

	"github.com/san-kum/pantrack/internal/motion"
	"github.com/san-kum/pantrack/internal/pantilt"
)

type Config struct {
	Dt       float64 `yaml:"dt"`
	PanVMax  float64 `yaml:"pan_vmax"`
	TiltVMax float64 `yaml:"tilt_vmax"`
	MinMove  float64 `yaml:"min_move"`
}

func DefaultConfig() Config {
	return Config{
		Dt:       0.01,
		PanVMax:  1.4,
		TiltVMax: 1.2,
		MinMove:  0.1,
	}
}

// Engine produces one setpoint pair per tick from the active Spec. It never
// changes mode; the caller decides what replaces a completed Spline.
type Engine struct {
	cfg  Config
	spec Spec
	last pantilt.Pair
}

// NewEngine starts in a Hold at the measured start pose.
func NewEngine(cfg Config, start pantilt.Pose) *Engine {
	return &Engine{
		cfg:  cfg,
		spec: HoldAt(start),
		last: start.At(),
	}
}

// Tick evaluates the active spec at t and remembers the result.
func (e *Engine) Tick(t float64) pantilt.Pair {
	e.last = e.spec.Eval(t)
	return e.last
}

// Latch re-targets an active Hold to the measured pose. Other specs are left
// alone.
func (e *Engine) Latch(measured pantilt.Pose) {
	if _, ok := e.spec.(Hold); ok {
		e.spec = HoldAt(measured)
	}
}

// Complete reports whether the active Spline ends before the next tick.
func (e *Engine) Complete(t float64) bool {
	s, ok := e.spec.(Spline)
	return ok && t+e.cfg.Dt > s.T1
}

// MoveTo replaces the active spec with a Spline from the last commanded
// sample at t to target. The window is the longer of the two axis durations,
// floored to minDur.
func (e *Engine) MoveTo(t float64, target pantilt.Pair, minDur float64) Spline {
	from := e.last
	dPan := motion.Duration(from.Pan.Pos, target.Pan.Pos, from.Pan.Vel, target.Pan.Vel, e.cfg.PanVMax)
	dTilt := motion.Duration(from.Tilt.Pos, target.Tilt.Pos, from.Tilt.Vel, target.Tilt.Vel, e.cfg.TiltVMax)
	t1 := t + math.Max(math.Max(dPan, dTilt), minDur)

	s := Spline{
		T0:   t,
		T1:   t1,
		Pan:  motion.SplineCoefficients(t, t1, from.Pan.Pos, target.Pan.Pos, from.Pan.Vel, target.Pan.Vel),
		Tilt: motion.SplineCoefficients(t, t1, from.Tilt.Pos, target.Tilt.Pos, from.Tilt.Vel, target.Tilt.Vel),
	}
	e.spec = s
	return s
}

func (e *Engine) StartScan(s Scan) { e.spec = s }

func (e *Engine) Hold(p pantilt.Pose) { e.spec = HoldAt(p) }

func (e *Engine) Spec() Spec { return e.spec }

func (e *Engine) Kind() Kind { return e.spec.Kind() }

// Last is the most recent commanded sample.
func (e *Engine) Last() pantilt.Pair { return e.last }

func (e *Engine) Config() Config { return e.cfg }
