package metrics

import (
	"math"

	"github.com/san-kum/pantrack/internal/pantilt"
)

// ControlEffort is the mean absolute commanded velocity summed over both
// axes.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(r pantilt.Record) {
	c.sum += math.Abs(r.Cmd.Pan.Vel) + math.Abs(r.Cmd.Tilt.Vel)
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
