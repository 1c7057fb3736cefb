package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/pantrack/internal/pantilt"
)

var modes = []string{"home", "tracking", "scanning"}

// Collector mirrors the control loop into Prometheus. It is a
// pantilt.Observer.
type Collector struct {
	gatherer prometheus.Gatherer

	Ticks      prometheus.Counter
	Position   *prometheus.GaugeVec
	Velocity   *prometheus.GaugeVec
	Tracked    prometheus.Gauge
	Mode       *prometheus.GaugeVec
	TrackError prometheus.Histogram
}

// NewCollector registers the rig metrics against reg, defaulting to the
// global registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{
		gatherer: gatherer,
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pantrack_ticks_total",
			Help: "Control ticks executed.",
		}),
		Position: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pantrack_position_radians",
			Help: "Latest position by axis and source (cmd or act).",
		}, []string{"axis", "source"}),
		Velocity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pantrack_velocity_radians_per_second",
			Help: "Latest velocity by axis and source (cmd or act).",
		}, []string{"axis", "source"}),
		Tracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pantrack_tracked_objects",
			Help: "Objects currently in the tracked list.",
		}),
		Mode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pantrack_mode",
			Help: "1 for the active mode, 0 otherwise.",
		}, []string{"mode"}),
		TrackError: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pantrack_tracking_error_radians",
			Help:    "Distance between commanded and measured pose.",
			Buckets: []float64{0.0005, 0.001, 0.002, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2},
		}),
	}

	for _, col := range []prometheus.Collector{c.Ticks, c.Position, c.Velocity, c.Tracked, c.Mode, c.TrackError} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return c, nil
}

func (c *Collector) OnTick(r pantilt.Record) {
	c.Ticks.Inc()
	c.Position.WithLabelValues("pan", "cmd").Set(r.Cmd.Pan.Pos)
	c.Position.WithLabelValues("pan", "act").Set(r.Act.Pan.Pos)
	c.Position.WithLabelValues("tilt", "cmd").Set(r.Cmd.Tilt.Pos)
	c.Position.WithLabelValues("tilt", "act").Set(r.Act.Tilt.Pos)
	c.Velocity.WithLabelValues("pan", "cmd").Set(r.Cmd.Pan.Vel)
	c.Velocity.WithLabelValues("pan", "act").Set(r.Act.Pan.Vel)
	c.Velocity.WithLabelValues("tilt", "cmd").Set(r.Cmd.Tilt.Vel)
	c.Velocity.WithLabelValues("tilt", "act").Set(r.Act.Tilt.Vel)
	c.Tracked.Set(float64(r.Tracked))
	for _, m := range modes {
		v := 0.0
		if m == r.Mode {
			v = 1
		}
		c.Mode.WithLabelValues(m).Set(v)
	}
	c.TrackError.Observe(PositionError(r))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
