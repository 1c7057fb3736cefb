package viz

import (
	"math"
	"strings"
)

// Braille cell dot bits, indexed [row][col]; a cell is 2x4 dots.
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a braille dot grid mapped onto a pan/tilt window in radians.
type Canvas struct {
	Width, Height int
	Grid          [][]rune

	PanMin, PanMax   float64
	TiltMin, TiltMax float64
}

func NewCanvas(w, h int, panRange, tiltRange float64) *Canvas {
	c := &Canvas{
		Width:   w,
		Height:  h,
		Grid:    make([][]rune, h),
		PanMin:  -panRange,
		PanMax:  panRange,
		TiltMin: -tiltRange,
		TiltMax: tiltRange,
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the dot at sub-cell coordinates; the dot grid is
// (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// Dot maps a pose to dot coordinates. Tilt grows upwards.
func (c *Canvas) Dot(pan, tilt float64) (x, y int, ok bool) {
	if pan < c.PanMin || pan > c.PanMax || tilt < c.TiltMin || tilt > c.TiltMax {
		return 0, 0, false
	}
	w, h := float64(c.Width*2-1), float64(c.Height*4-1)
	x = int(math.Round((pan - c.PanMin) / (c.PanMax - c.PanMin) * w))
	y = int(math.Round((c.TiltMax - tilt) / (c.TiltMax - c.TiltMin) * h))
	return x, y, true
}

func (c *Canvas) Point(pan, tilt float64) {
	if x, y, ok := c.Dot(pan, tilt); ok {
		c.Set(x, y)
	}
}

// Cross draws a small plus centred on the pose.
func (c *Canvas) Cross(pan, tilt float64, size int) {
	x, y, ok := c.Dot(pan, tilt)
	if !ok {
		return
	}
	c.DrawLine(x-size, y, x+size, y)
	c.DrawLine(x, y-size, x, y+size)
}

// Rect outlines the pose window [pan0,pan1] x [tilt0,tilt1], clipped.
func (c *Canvas) Rect(pan0, tilt0, pan1, tilt1 float64) {
	clamp := func(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }
	pan0, pan1 = clamp(pan0, c.PanMin, c.PanMax), clamp(pan1, c.PanMin, c.PanMax)
	tilt0, tilt1 = clamp(tilt0, c.TiltMin, c.TiltMax), clamp(tilt1, c.TiltMin, c.TiltMax)
	x0, y0, _ := c.Dot(pan0, tilt0)
	x1, y1, _ := c.Dot(pan1, tilt1)
	c.DrawLine(x0, y0, x1, y0)
	c.DrawLine(x1, y0, x1, y1)
	c.DrawLine(x1, y1, x0, y1)
	c.DrawLine(x0, y1, x0, y0)
}

// DrawLine draws in dot coordinates with Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
