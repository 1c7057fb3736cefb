package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/san-kum/pantrack/internal/associate"
	"github.com/san-kum/pantrack/internal/pantilt"
)

// Options for the HTML page.
type Options struct {
	Title string
	// Stride keeps every Stride-th record in the line charts; zero picks one
	// that leaves about 2000 points.
	Stride int
	// AssetsHost overrides where the echarts scripts are loaded from.
	AssetsHost string
}

// RenderHTML writes a page with the axis traces and a scatter of the
// detection history against the tracked objects.
func RenderHTML(w io.Writer, records []pantilt.Record, dets []pantilt.Detection, objects []associate.Object, o Options) error {
	if o.Title == "" {
		o.Title = "pantrack run"
	}
	stride := o.Stride
	if stride <= 0 {
		stride = len(records)/2000 + 1
	}

	page := components.NewPage()
	page.PageTitle = o.Title
	if o.AssetsHost != "" {
		page.SetAssetsHost(o.AssetsHost)
	}
	page.AddCharts(
		axisChart(o, "Pan", records, stride,
			func(r pantilt.Record) float64 { return r.Cmd.Pan.Pos },
			func(r pantilt.Record) float64 { return r.Act.Pan.Pos },
			func(r pantilt.Record) float64 { return r.Object.Pan }),
		axisChart(o, "Tilt", records, stride,
			func(r pantilt.Record) float64 { return r.Cmd.Tilt.Pos },
			func(r pantilt.Record) float64 { return r.Act.Tilt.Pos },
			func(r pantilt.Record) float64 { return r.Object.Tilt }),
		detectionChart(o, dets, objects),
	)
	return page.Render(w)
}

func initOpts(o Options, title string) opts.Initialization {
	in := opts.Initialization{PageTitle: title, Width: "1000px", Height: "420px"}
	if o.AssetsHost != "" {
		in.AssetsHost = o.AssetsHost
	}
	return in
}

func axisChart(o Options, axis string, records []pantilt.Record, stride int, cmd, act, obj axisField) *charts.Line {
	x := make([]string, 0, len(records)/stride+1)
	cmdData := make([]opts.LineData, 0, cap(x))
	actData := make([]opts.LineData, 0, cap(x))
	objData := make([]opts.LineData, 0, cap(x))
	for i := 0; i < len(records); i += stride {
		r := records[i]
		x = append(x, fmt.Sprintf("%.2f", r.Time))
		cmdData = append(cmdData, opts.LineData{Value: cmd(r)})
		actData = append(actData, opts.LineData{Value: act(r)})
		if r.HasObject {
			objData = append(objData, opts.LineData{Value: obj(r)})
		} else {
			objData = append(objData, opts.LineData{Value: "-"})
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts(o, axis)),
		charts.WithTitleOpts(opts.Title{Title: axis + " position", Subtitle: fmt.Sprintf("ticks=%d stride=%d", len(records), stride)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "rad", NameLocation: "middle", NameGap: 30}),
	)
	line.SetXAxis(x).
		AddSeries("commanded", cmdData).
		AddSeries("actual", actData).
		AddSeries("object", objData, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true), ConnectNulls: opts.Bool(false)}))
	return line
}

func detectionChart(o Options, dets []pantilt.Detection, objects []associate.Object) *charts.Scatter {
	detData := make([]opts.ScatterData, 0, len(dets))
	for _, d := range dets {
		detData = append(detData, opts.ScatterData{Value: []interface{}{d.Pan, d.Tilt}})
	}
	objData := make([]opts.ScatterData, 0, len(objects))
	for _, obj := range objects {
		objData = append(objData, opts.ScatterData{Value: []interface{}{obj.Pan, obj.Tilt}})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts(o, "Detections")),
		charts.WithTitleOpts(opts.Title{Title: "Detections", Subtitle: fmt.Sprintf("detections=%d objects=%d", len(dets), len(objects))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "pan (rad)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "tilt (rad)", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("detections", detData, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))
	scatter.AddSeries("objects", objData, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}))
	return scatter
}
