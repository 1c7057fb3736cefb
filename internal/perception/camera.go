// Package perception turns camera frames into pan/tilt detections and feeds
// them to the control loop through the shared channel.
package perception

import (
	"sort"

	"github.com/san-kum/pantrack/internal/pantilt"
)

// Blob is one segmented region in pixel space.
type Blob struct {
	X, Y float64
	Area float64
}

// Frame is everything segmented from one camera image.
type Frame struct {
	Seq   uint64
	Blobs []Blob
}

// Camera is a linear model mapping pixel offsets from the
// image centre to angle offsets from the motor pose.
type Camera struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	ScalePan  float64 `yaml:"scale_pan"`
	ScaleTilt float64 `yaml:"scale_tilt"`
	MinArea   float64 `yaml:"min_area"`
}

func DefaultCamera() Camera {
	return Camera{
		Width:     640,
		Height:    480,
		ScalePan:  -0.00147078307,
		ScaleTilt: -0.00060742317,
		MinArea:   4000,
	}
}

// Convert maps blobs larger than MinArea to absolute detections, largest
// first. motor must be the pose read in the same critical section that
// publishes the result.
func (c Camera) Convert(motor pantilt.Pose, blobs []Blob) []pantilt.Detection {
	kept := make([]Blob, 0, len(blobs))
	for _, b := range blobs {
		if b.Area > c.MinArea {
			kept = append(kept, b)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Area > kept[j].Area })

	xc, yc := c.Width/2, c.Height/2
	out := make([]pantilt.Detection, len(kept))
	for i, b := range kept {
		out[i] = pantilt.Detection{
			Pan:  motor.Pan + c.ScalePan*float64(int(b.X)-xc),
			Tilt: motor.Tilt + c.ScaleTilt*float64(int(b.Y)-yc),
		}
	}
	return out
}

// Project is the inverse of Convert for a single target: the pixel position
// at which an object at absolute pose obj appears when the motors sit at
// motor. ok is false when it falls outside the image.
func (c Camera) Project(motor, obj pantilt.Pose) (x, y float64, ok bool) {
	x = float64(c.Width/2) + (obj.Pan-motor.Pan)/c.ScalePan
	y = float64(c.Height/2) + (obj.Tilt-motor.Tilt)/c.ScaleTilt
	ok = x >= 0 && x < float64(c.Width) && y >= 0 && y < float64(c.Height)
	return x, y, ok
}
