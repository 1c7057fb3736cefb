package pantilt

import (
	"context"
	"fmt"
	"math"
)

// Sample is the commanded or measured state of one axis at one tick.
type Sample struct {
	Pos float64
	Vel float64
}

func (s Sample) IsValid() bool {
	return !math.IsNaN(s.Pos) && !math.IsInf(s.Pos, 0) &&
		!math.IsNaN(s.Vel) && !math.IsInf(s.Vel, 0)
}

// Pair holds one Sample per axis.
type Pair struct {
	Pan  Sample
	Tilt Sample
}

func (p Pair) Pose() Pose {
	return Pose{Pan: p.Pan.Pos, Tilt: p.Tilt.Pos}
}

func (p Pair) IsValid() bool {
	return p.Pan.IsValid() && p.Tilt.IsValid()
}

func (p Pair) String() string {
	return fmt.Sprintf("pan=%+.4f/%+.4f tilt=%+.4f/%+.4f", p.Pan.Pos, p.Pan.Vel, p.Tilt.Pos, p.Tilt.Vel)
}

// At returns a zero-velocity Pair resting at the pose.
func (p Pose) At() Pair {
	return Pair{Pan: Sample{Pos: p.Pan}, Tilt: Sample{Pos: p.Tilt}}
}

type Pose struct {
	Pan  float64
	Tilt float64
}

// Detection is one object position estimate in the motor frame, already
// corrected by the motor pose at the time the frame was processed.
type Detection struct {
	Pan  float64
	Tilt float64
}

// Actuator is the motor transport. Send is fire-and-forget; Next blocks until
// the next feedback sample arrives and therefore paces the control loop.
type Actuator interface {
	Send(cmd Pair) error
	Next(ctx context.Context) (Pair, error)
	Close() error
}
