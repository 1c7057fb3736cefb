// Package rig runs the control loop and the perception loop side by side.
//
// The control loop is paced by the actuator: each tick sends one setpoint
// and blocks on one feedback sample. Perception runs in its own goroutine
// and meets the control loop only through a shared.Channel.
package rig

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mdobak/go-xerrors"

	"github.com/san-kum/pantrack/internal/associate"
	"github.com/san-kum/pantrack/internal/command"
	"github.com/san-kum/pantrack/internal/config"
	"github.com/san-kum/pantrack/internal/mode"
	"github.com/san-kum/pantrack/internal/pantilt"
	"github.com/san-kum/pantrack/internal/perception"
	"github.com/san-kum/pantrack/internal/shared"
	"github.com/san-kum/pantrack/internal/trajectory"
)

// StopReason says why a run ended.
type StopReason string

const (
	StopQuit     StopReason = "quit"
	StopFlag     StopReason = "stop requested"
	StopDuration StopReason = "duration elapsed"
	StopContext  StopReason = "context done"
	StopError    StopReason = "error"
)

type Result struct {
	Ticks      int
	Time       float64
	Reason     StopReason
	Perception perception.Stats
	Objects    []associate.Object
	History    []pantilt.Detection
	FinalMode  mode.Mode
}

// Rig owns one run. It is not reusable.
type Rig struct {
	cfg       *config.Config
	act       pantilt.Actuator
	src       perception.Source
	commands  command.Source
	ch        *shared.Channel
	tracker   *associate.Tracker
	observers []pantilt.Observer
	log       *slog.Logger

	stateMu sync.RWMutex
	ctrl    *mode.Controller
	eng     *trajectory.Engine
}

// New wires a rig. src and commands may be nil.
func New(cfg *config.Config, act pantilt.Actuator, src perception.Source, commands command.Source, log *slog.Logger) (*Rig, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if commands == nil {
		commands = command.Multi{}
	}
	return &Rig{
		cfg:      cfg,
		act:      act,
		src:      src,
		commands: commands,
		ch:       shared.New(),
		tracker:  associate.NewTracker(cfg.Motion.MatchRadius),
		log:      log,
	}, nil
}

func (r *Rig) AddObserver(o pantilt.Observer) { r.observers = append(r.observers, o) }

// Channel exposes the shared state, for requesting a stop from outside.
func (r *Rig) Channel() *shared.Channel { return r.ch }

// Mode reports the controller's mode once the loop has started.
func (r *Rig) Mode() (mode.Mode, bool) {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	if r.ctrl == nil {
		return 0, false
	}
	return r.ctrl.Mode(), true
}

// Run executes the control loop until quit, stop, the configured duration,
// ctx cancellation or an error. On every exit path it raises the stop flag
// and waits for perception to return before closing the transports.
//
// Perception starts only after the first feedback pose is in the channel, so
// every detection is converted against a measured pose.
func (r *Rig) Run(ctx context.Context) (res *Result, err error) {
	res = &Result{}

	var (
		wg   sync.WaitGroup
		perr error
	)
	defer func() {
		r.ch.RequestStop()
		wg.Wait()
		if perr != nil && err == nil {
			err = perr
		}
		if r.src != nil {
			if cerr := r.src.Close(); cerr != nil {
				r.log.Warn("closing perception source", slog.Any("error", cerr))
			}
		}
		if cerr := r.act.Close(); cerr != nil {
			r.log.Warn("closing actuator", slog.Any("error", cerr))
		}
		res.Objects = r.tracker.Objects()
		res.History = r.tracker.History()
		if m, ok := r.Mode(); ok {
			res.FinalMode = m
		}
		r.log.Info("run finished", "ticks", res.Ticks, "t", res.Time, "reason", string(res.Reason),
			"objects", len(res.Objects), "frames", res.Perception.Frames)
	}()

	fb, ok, err := r.initial(ctx)
	switch {
	case err != nil:
		res.Reason = StopError
		r.log.Error("control loop failed", slog.Any("error", err))
		return res, err
	case !ok:
		res.Reason = StopContext
		return res, nil
	}
	r.ch.Exchange(fb.Pose())

	if r.src != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if p := recover(); p != nil {
					perr = xerrors.New(fmt.Errorf("perception panic: %v", p))
				}
				if perr != nil {
					r.log.Error("perception stopped, control continues without detections", slog.Any("error", perr))
				}
			}()
			res.Perception, perr = perception.Run(ctx, r.src, r.cfg.Camera, r.ch, r.log.With("loop", "perception"))
		}()
	}

	err = r.control(ctx, res, fb)
	if err != nil {
		res.Reason = StopError
		r.log.Error("control loop failed", slog.Any("error", err))
	}
	return res, err
}

// initial reads the first feedback sample. ok is false when ctx ended first.
func (r *Rig) initial(ctx context.Context) (fb pantilt.Pair, ok bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = xerrors.New(fmt.Errorf("initial feedback panic: %v", p))
		}
	}()

	fb, err = r.act.Next(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return fb, false, nil
		}
		return fb, false, fmt.Errorf("initial feedback: %w", err)
	}
	if !fb.IsValid() {
		return fb, false, fmt.Errorf("initial feedback: %w", pantilt.ErrInvalidFeedback)
	}
	return fb, true, nil
}

func (r *Rig) control(ctx context.Context, res *Result, fb pantilt.Pair) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = xerrors.New(fmt.Errorf("control loop panic at tick %d: %v", res.Ticks, p))
		}
	}()

	log := r.log.With("loop", "control")
	dt := r.cfg.Dt
	maxTicks := r.cfg.Ticks()

	eng := trajectory.NewEngine(r.cfg.TrajectoryConfig(), fb.Pose())
	ctrl := mode.NewController(r.cfg.ModeConfig(), eng, r.tracker, log)
	r.stateMu.Lock()
	r.eng, r.ctrl = eng, ctrl
	r.stateMu.Unlock()
	log.Info("control loop started", "pan", fb.Pan.Pos, "tilt", fb.Tilt.Pos, "dt", dt)

	t := 0.0
	for tick := 0; maxTicks == 0 || tick < maxTicks; tick++ {
		cmd := eng.Tick(t)
		if err := r.act.Send(cmd); err != nil {
			return &pantilt.TickError{Tick: tick, Time: t, Wrapped: err}
		}

		fb, err := r.act.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				res.Reason = StopContext
				return nil
			}
			return &pantilt.TickError{Tick: tick, Time: t, Wrapped: err}
		}
		measured := fb.Pose()
		eng.Latch(measured)

		dets, stop := r.ch.Exchange(measured)
		r.tracker.Add(dets)

		quit := false
		for _, tok := range r.commands.Poll(t) {
			log.Debug("command", "t", t, "token", tok.String())
			r.stateMu.Lock()
			quit = ctrl.Handle(t, tok)
			r.stateMu.Unlock()
			if quit {
				break
			}
		}

		r.stateMu.Lock()
		ctrl.Track(t, r.tracker.Objects())
		err = ctrl.Settle(t, measured)
		r.stateMu.Unlock()
		if err != nil {
			return &pantilt.TickError{Tick: tick, Time: t, Wrapped: err}
		}

		rec := pantilt.Record{
			Tick:    tick,
			Time:    t,
			Mode:    ctrl.Mode().String(),
			Kind:    eng.Kind().String(),
			Cmd:     cmd,
			Act:     fb,
			Tracked: r.tracker.Len(),
		}
		if d, ok := r.ch.Latest(); ok {
			rec.Object = pantilt.Pose{Pan: d.Pan, Tilt: d.Tilt}
			rec.HasObject = true
		}
		for _, o := range r.observers {
			o.OnTick(rec)
		}

		ctrl.Advance()
		res.Ticks = tick + 1
		res.Time = t
		t += dt

		switch {
		case quit:
			res.Reason = StopQuit
			return nil
		case stop:
			res.Reason = StopFlag
			return nil
		}
	}

	res.Reason = StopDuration
	return nil
}
