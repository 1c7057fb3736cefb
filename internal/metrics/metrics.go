// Package metrics scores a tracking run and exports live gauges.
package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/pantrack/internal/pantilt"
)

type Metric interface {
	Name() string
	Observe(r pantilt.Record)
	Value() float64
	Reset()
}

// Standard returns the metrics recorded for every run.
func Standard(panVMax, tiltVMax float64) []Metric {
	return []Metric{
		NewTrackingError(),
		NewControlEffort(),
		NewSaturation(panVMax, tiltVMax),
		NewPointingError(),
	}
}

// Evaluate resets ms, feeds them every record and returns their values.
func Evaluate(ms []Metric, records []pantilt.Record) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for _, r := range records {
			m.Observe(r)
		}
		out[m.Name()] = m.Value()
	}
	return out
}

// Summary describes the distribution of one series.
type Summary struct {
	N    int     `json:"n"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	P95  float64 `json:"p95"`
}

func Summarize(xs []float64) Summary {
	if len(xs) == 0 {
		return Summary{}
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	mean, std := stat.MeanStdDev(sorted, nil)
	if len(sorted) == 1 {
		std = 0
	}
	return Summary{
		N:    len(sorted),
		Mean: mean,
		Std:  std,
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		P95:  stat.Quantile(0.95, stat.Empirical, sorted, nil),
	}
}

// Series extracts one value per record.
func Series(records []pantilt.Record, f func(pantilt.Record) float64) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = f(r)
	}
	return out
}

// PositionError is the commanded-minus-measured distance on both axes.
func PositionError(r pantilt.Record) float64 {
	return math.Hypot(r.Cmd.Pan.Pos-r.Act.Pan.Pos, r.Cmd.Tilt.Pos-r.Act.Tilt.Pos)
}
