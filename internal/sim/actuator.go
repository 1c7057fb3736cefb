package sim

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/pantrack/internal/pantilt"
)

type ActuatorConfig struct {
	Dt       float64 `yaml:"dt"`
	Realtime bool    `yaml:"realtime"`
	// Noise is the standard deviation added to reported positions.
	Noise float64 `yaml:"noise"`
	Seed  uint64  `yaml:"seed"`
}

// Actuator drives a Plant as if it were the motor controller on the far end
// of a link: Send stores the setpoint, Next advances one period and reports.
type Actuator struct {
	cfg    ActuatorConfig
	plant  *Plant
	ticker *time.Ticker
	noise  *distuv.Normal

	closeOnce sync.Once
}

func NewActuator(plant *Plant, cfg ActuatorConfig) *Actuator {
	a := &Actuator{cfg: cfg, plant: plant}
	if cfg.Realtime {
		a.ticker = time.NewTicker(time.Duration(cfg.Dt * float64(time.Second)))
	}
	if cfg.Noise > 0 {
		a.noise = &distuv.Normal{Mu: 0, Sigma: cfg.Noise, Src: rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)}
	}
	return a
}

func (a *Actuator) Send(cmd pantilt.Pair) error {
	a.plant.SetSetpoint(cmd)
	return nil
}

func (a *Actuator) Next(ctx context.Context) (pantilt.Pair, error) {
	if a.ticker != nil {
		select {
		case <-ctx.Done():
			return pantilt.Pair{}, ctx.Err()
		case <-a.ticker.C:
		}
	} else if err := ctx.Err(); err != nil {
		return pantilt.Pair{}, err
	}

	if err := a.plant.Step(a.cfg.Dt); err != nil {
		return pantilt.Pair{}, err
	}

	fb := a.plant.Feedback()
	if a.noise != nil {
		fb.Pan.Pos += a.noise.Rand()
		fb.Tilt.Pos += a.noise.Rand()
	}
	return fb, nil
}

func (a *Actuator) Plant() *Plant { return a.plant }

func (a *Actuator) Close() error {
	a.closeOnce.Do(func() {
		if a.ticker != nil {
			a.ticker.Stop()
		}
	})
	return nil
}
