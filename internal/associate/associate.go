// Package associate merges per-frame detections into a persistent list of
// tracked objects by spatial proximity.
package associate

import "github.com/san-kum/pantrack/internal/pantilt"

// Object is the current estimate of one real-world object.
type Object struct {
	Pan, Tilt float64
}

func (o Object) Pose() pantilt.Pose { return pantilt.Pose{Pan: o.Pan, Tilt: o.Tilt} }

// Radius is the per-axis match window in radians.
type Radius struct {
	Pan  float64 `yaml:"pan"`
	Tilt float64 `yaml:"tilt"`
}

// DefaultRadius is 0.3 rad on both axes.
var DefaultRadius = Radius{Pan: 0.3, Tilt: 0.3}

func (r Radius) matches(o Object, d pantilt.Detection) bool {
	return abs(d.Pan-o.Pan) < r.Pan && abs(d.Tilt-o.Tilt) < r.Tilt
}

// Associate folds dets into tracked, in order. Each detection overwrites the
// first object within r on both axes, or is appended when none is. The
// returned slice never shares storage with tracked.
func Associate(tracked []Object, dets []pantilt.Detection, r Radius) []Object {
	out := make([]Object, len(tracked), len(tracked)+len(dets))
	copy(out, tracked)

	for _, d := range dets {
		matched := false
		for i := range out {
			if r.matches(out[i], d) {
				out[i] = Object{Pan: d.Pan, Tilt: d.Tilt}
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, Object{Pan: d.Pan, Tilt: d.Tilt})
		}
	}
	return out
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
