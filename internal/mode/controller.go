package mode

import (
	"fmt"
	"log/slog"

	"github.com/san-kum/pantrack/internal/associate"
	"github.com/san-kum/pantrack/internal/command"
	"github.com/san-kum/pantrack/internal/pantilt"
	"github.com/san-kum/pantrack/internal/trajectory"
)

type Config struct {
	MinMove        float64 `yaml:"min_move"`
	MinTrackMove   float64 `yaml:"min_track_move"`
	InterestPeriod int     `yaml:"interest_period"`
}

func DefaultConfig() Config {
	return Config{
		MinMove:        0.1,
		MinTrackMove:   0.2,
		InterestPeriod: DefaultPeriod,
	}
}

// HistoryResetter is cleared whenever a new scan starts.
type HistoryResetter interface {
	ClearHistory()
}

// Controller owns the mode and drives the trajectory engine from command
// tokens, tracked objects and spline completion.
type Controller struct {
	cfg      Config
	eng      *trajectory.Engine
	interest Interest
	history  HistoryResetter
	log      *slog.Logger

	mode      Mode
	tick      int
	target    pantilt.Pose
	hasTarget bool
}

// NewController starts in GoHome. history may be nil.
func NewController(cfg Config, eng *trajectory.Engine, history HistoryResetter, log *slog.Logger) *Controller {
	return &Controller{
		cfg:      cfg,
		eng:      eng,
		interest: Interest{Period: cfg.InterestPeriod},
		history:  history,
		log:      log,
		mode:     GoHome,
	}
}

// Handle applies one command at control time t. It returns true for quit.
func (c *Controller) Handle(t float64, tok command.Token) bool {
	last := c.eng.Last()

	switch tok {
	case command.Scan:
		c.eng.MoveTo(t, trajectory.DefaultScan(0).Start(), c.cfg.MinMove)
		if c.history != nil {
			c.history.ClearHistory()
		}
		c.setMode(t, Scanning)
	case command.Home:
		c.eng.MoveTo(t, pantilt.Pair{}, c.cfg.MinMove)
		c.setMode(t, GoHome)
	case command.Track:
		c.eng.MoveTo(t, last.Pose().At(), c.cfg.MinMove)
		c.setMode(t, Tracking)
	case command.Quit:
		c.log.Info("quit requested", "t", t)
		return true
	default:
		c.log.Debug("ignoring command", "token", tok.String())
	}
	return false
}

// Track re-aims the move at the object of interest while Tracking. With no
// objects the current command is kept.
func (c *Controller) Track(t float64, objects []associate.Object) {
	if c.mode != Tracking {
		return
	}
	i, ok := c.interest.Index(c.tick, len(objects))
	if !ok {
		return
	}

	c.target = objects[i].Pose()
	c.hasTarget = true
	c.eng.MoveTo(t, c.target.At(), c.cfg.MinTrackMove)
}

// Settle replaces a spline that ends before the next tick with the
// trajectory the current mode calls for.
func (c *Controller) Settle(t float64, measured pantilt.Pose) error {
	if !c.eng.Complete(t) {
		return nil
	}

	switch c.mode {
	case Scanning:
		s := c.eng.Spec().(trajectory.Spline)
		c.eng.StartScan(trajectory.DefaultScan(s.T1))
	case GoHome, Tracking:
		c.eng.Hold(measured)
	default:
		return fmt.Errorf("%w: mode %s", pantilt.ErrUnexpectedSplineEnd, c.mode)
	}

	c.log.Debug("spline complete", "t", t, "mode", c.mode.String(), "next", c.eng.Kind().String())
	return nil
}

// Advance moves the round-robin tick counter forward by one.
func (c *Controller) Advance() { c.tick++ }

func (c *Controller) Mode() Mode { return c.mode }

func (c *Controller) Ticks() int { return c.tick }

// Target is the most recent object of interest.
func (c *Controller) Target() (pantilt.Pose, bool) { return c.target, c.hasTarget }

func (c *Controller) setMode(t float64, m Mode) {
	if m != c.mode {
		c.log.Info("mode change", "t", t, "from", c.mode.String(), "to", m.String())
	}
	c.mode = m
}
