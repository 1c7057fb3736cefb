package report

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/pantrack/internal/pantilt"
)

var (
	cmdColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	actColor = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	objColor = color.RGBA{R: 44, G: 160, B: 44, A: 255}
)

// axisField extracts one value from a record.
type axisField func(pantilt.Record) float64

type trace struct {
	label string
	field axisField
	color color.Color
	dots  bool
}

// RenderPNG writes positions.png and velocities.png for records into dir.
func RenderPNG(dir string, records []pantilt.Record) ([]string, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no records to plot")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	pos := []trace{
		{"pan cmd", func(r pantilt.Record) float64 { return r.Cmd.Pan.Pos }, cmdColor, false},
		{"pan act", func(r pantilt.Record) float64 { return r.Act.Pan.Pos }, actColor, false},
		{"pan obj", func(r pantilt.Record) float64 { return r.Object.Pan }, objColor, true},
	}
	tilt := []trace{
		{"tilt cmd", func(r pantilt.Record) float64 { return r.Cmd.Tilt.Pos }, cmdColor, false},
		{"tilt act", func(r pantilt.Record) float64 { return r.Act.Tilt.Pos }, actColor, false},
		{"tilt obj", func(r pantilt.Record) float64 { return r.Object.Tilt }, objColor, true},
	}
	vel := []trace{
		{"pan cmd", func(r pantilt.Record) float64 { return r.Cmd.Pan.Vel }, cmdColor, false},
		{"pan act", func(r pantilt.Record) float64 { return r.Act.Pan.Vel }, actColor, false},
	}
	tiltVel := []trace{
		{"tilt cmd", func(r pantilt.Record) float64 { return r.Cmd.Tilt.Vel }, cmdColor, false},
		{"tilt act", func(r pantilt.Record) float64 { return r.Act.Tilt.Vel }, actColor, false},
	}

	plots := []struct {
		file   string
		title  string
		ylabel string
		traces []trace
	}{
		{"pan_position.png", "Pan position", "rad", pos},
		{"tilt_position.png", "Tilt position", "rad", tilt},
		{"pan_velocity.png", "Pan velocity", "rad/s", vel},
		{"tilt_velocity.png", "Tilt velocity", "rad/s", tiltVel},
	}

	var files []string
	for _, spec := range plots {
		p, err := timePlot(spec.title, spec.ylabel, records, spec.traces)
		if err != nil {
			return files, err
		}
		path := filepath.Join(dir, spec.file)
		if err := p.Save(10*vg.Inch, 4*vg.Inch, path); err != nil {
			return files, fmt.Errorf("failed to save %s: %w", spec.file, err)
		}
		files = append(files, path)
	}
	return files, nil
}

func timePlot(title, ylabel string, records []pantilt.Record, traces []trace) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "t (s)"
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())

	for _, tr := range traces {
		pts := make(plotter.XYs, 0, len(records))
		for _, r := range records {
			if tr.dots && !r.HasObject {
				continue
			}
			pts = append(pts, plotter.XY{X: r.Time, Y: tr.field(r)})
		}
		if len(pts) == 0 {
			continue
		}

		if tr.dots {
			sc, err := plotter.NewScatter(pts)
			if err != nil {
				return nil, err
			}
			sc.GlyphStyle.Color = tr.color
			sc.GlyphStyle.Radius = vg.Points(1)
			p.Add(sc)
			p.Legend.Add(tr.label, sc)
			continue
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.Color = tr.color
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(tr.label, line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}
