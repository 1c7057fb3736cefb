package sim

import (
	"context"
	"io"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/pantrack/internal/pantilt"
	"github.com/san-kum/pantrack/internal/perception"
)

// Object is a target in the simulated scene. A non-zero Sway moves it on a
// horizontal sinusoid around its pose.
type Object struct {
	Pan   float64 `yaml:"pan"`
	Tilt  float64 `yaml:"tilt"`
	Area  float64 `yaml:"area"`
	Sway  float64 `yaml:"sway"`
	Speed float64 `yaml:"speed"`
}

// At returns where the object is at time t.
func (o Object) At(t float64) pantilt.Pose {
	return pantilt.Pose{Pan: o.Pan + o.Sway*math.Sin(o.Speed*t), Tilt: o.Tilt}
}

type World struct {
	Objects []Object `yaml:"objects"`
	// Noise is the pixel standard deviation of blob centroids.
	Noise float64 `yaml:"noise"`
	FPS   float64 `yaml:"fps"`
	Seed  uint64  `yaml:"seed"`
}

func DefaultWorld() World {
	return World{
		Objects: []Object{
			{Pan: 0.6, Tilt: 0.25, Area: 6000},
			{Pan: -0.5, Tilt: 0.1, Area: 8000, Sway: 0.1, Speed: 0.5},
			{Pan: 0.1, Tilt: 0.4, Area: 5000},
		},
		Noise: 1.5,
		FPS:   30,
		Seed:  1,
	}
}

// Camera renders the World as seen from the plant's true pose. It implements
// perception.Source.
type Camera struct {
	world  World
	model  perception.Camera
	plant  *Plant
	period float64
	wait   time.Duration
	noise  *distuv.Normal

	mu     sync.Mutex
	next   float64
	seq    uint64
	closed bool
}

// NewCamera paces frames on plant time, one every 1/FPS seconds. wait bounds
// how long Next blocks before reporting perception.ErrNoFrame.
func NewCamera(world World, model perception.Camera, plant *Plant, wait time.Duration) *Camera {
	fps := world.FPS
	if fps <= 0 {
		fps = 30
	}
	if wait <= 0 {
		wait = perception.DefaultReadTimeout
	}
	c := &Camera{
		world:  world,
		model:  model,
		plant:  plant,
		period: 1 / fps,
		wait:   wait,
	}
	if world.Noise > 0 {
		c.noise = &distuv.Normal{Mu: 0, Sigma: world.Noise, Src: rand.NewPCG(world.Seed, world.Seed+1)}
	}
	return c
}

func (c *Camera) Next(ctx context.Context) (perception.Frame, error) {
	timeout := time.NewTimer(c.wait)
	defer timeout.Stop()

	for {
		c.mu.Lock()
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return perception.Frame{}, io.EOF
		}

		if t := c.plant.Time(); t >= c.next {
			return c.capture(t), nil
		}

		select {
		case <-ctx.Done():
			return perception.Frame{}, ctx.Err()
		case <-timeout.C:
			return perception.Frame{}, perception.ErrNoFrame
		case <-c.plant.Stepped():
		}
	}
}

func (c *Camera) capture(t float64) perception.Frame {
	motor := c.plant.Pose()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.next = t + c.period
	c.seq++

	var blobs []perception.Blob
	for _, o := range c.world.Objects {
		x, y, ok := c.model.Project(motor, o.At(t))
		if !ok {
			continue
		}
		if c.noise != nil {
			x += c.noise.Rand()
			y += c.noise.Rand()
		}
		blobs = append(blobs, perception.Blob{X: x, Y: y, Area: o.Area})
	}
	return perception.Frame{Seq: c.seq, Blobs: blobs}
}

func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
