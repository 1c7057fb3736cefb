// Package sim is a software stand-in for the pan/tilt hardware: a servo
// plant that answers setpoints with feedback, and a camera that sees a set
// of objects through the plant's true pose.
package sim

import (
	"fmt"
	"sync"

	"github.com/san-kum/pantrack/internal/integrators"
	"github.com/san-kum/pantrack/internal/pantilt"
)

type PlantConfig struct {
	Pan        Servo     `yaml:"pan"`
	Tilt       Servo     `yaml:"tilt"`
	Integrator string    `yaml:"integrator"`
	Substeps   int       `yaml:"substeps"`
	Start      []float64 `yaml:"start"`
}

func DefaultPlantConfig() PlantConfig {
	return PlantConfig{
		Pan:        DefaultServo(),
		Tilt:       DefaultServo(),
		Integrator: "rk4",
		Substeps:   4,
	}
}

// Plant integrates both axes toward the latest setpoint. It is safe for
// concurrent use: the actuator drives it while the camera reads its pose.
type Plant struct {
	mu       sync.Mutex
	x        integrators.State // pan pos, pan vel, tilt pos, tilt vel
	sp       pantilt.Pair
	pan      Servo
	tilt     Servo
	integ    integrators.Integrator
	substeps int
	t        float64

	stepped chan struct{}
}

func NewPlant(cfg PlantConfig) (*Plant, error) {
	integ, err := integrators.New(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	if cfg.Substeps <= 0 {
		cfg.Substeps = 1
	}

	x := make(integrators.State, 4)
	switch len(cfg.Start) {
	case 0:
	case 2:
		x[0], x[2] = cfg.Start[0], cfg.Start[1]
	default:
		return nil, fmt.Errorf("start pose needs 2 values, got %d", len(cfg.Start))
	}

	p := &Plant{
		x:        x,
		pan:      cfg.Pan,
		tilt:     cfg.Tilt,
		integ:    integ,
		substeps: cfg.Substeps,
		stepped:  make(chan struct{}, 1),
	}
	p.sp = p.feedbackLocked()
	return p, nil
}

func (p *Plant) Derive(x integrators.State, t float64) integrators.State {
	return integrators.State{
		x[1], p.pan.Accel(p.sp.Pan, x[0], x[1]),
		x[3], p.tilt.Accel(p.sp.Tilt, x[2], x[3]),
	}
}

// SetSetpoint replaces the target both servos track.
func (p *Plant) SetSetpoint(sp pantilt.Pair) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sp = sp
}

// Step advances the plant by dt.
func (p *Plant) Step(dt float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	h := dt / float64(p.substeps)
	x := p.x
	for i := 0; i < p.substeps; i++ {
		x = p.integ.Step(p, x, p.t+float64(i)*h, h)
	}
	if !x.IsValid() {
		return fmt.Errorf("plant diverged at t=%.4f", p.t)
	}
	p.pan.Integrate(p.sp.Pan, x[0], dt)
	p.tilt.Integrate(p.sp.Tilt, x[2], dt)
	p.x = x
	p.t += dt

	select {
	case p.stepped <- struct{}{}:
	default:
	}
	return nil
}

func (p *Plant) Feedback() pantilt.Pair {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.feedbackLocked()
}

func (p *Plant) feedbackLocked() pantilt.Pair {
	return pantilt.Pair{
		Pan:  pantilt.Sample{Pos: p.x[0], Vel: p.x[1]},
		Tilt: pantilt.Sample{Pos: p.x[2], Vel: p.x[3]},
	}
}

// Pose is the true motor pose.
func (p *Plant) Pose() pantilt.Pose { return p.Feedback().Pose() }

func (p *Plant) Time() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.t
}

// Stepped is signalled after each Step. Signals coalesce.
func (p *Plant) Stepped() <-chan struct{} { return p.stepped }
