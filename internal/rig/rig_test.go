package rig

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/pantrack/internal/command"
	"github.com/san-kum/pantrack/internal/config"
	"github.com/san-kum/pantrack/internal/logging"
	"github.com/san-kum/pantrack/internal/mode"
	"github.com/san-kum/pantrack/internal/pantilt"
	"github.com/san-kum/pantrack/internal/perception"
)

func fastConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.GetPreset("fast")
	require.NotNil(t, cfg)
	cfg.Perception = "none"
	return cfg
}

func simActuator(t *testing.T, cfg *config.Config) pantilt.Actuator {
	t.Helper()
	act, err := NewRegistry().Actuator(cfg, logging.Noop())
	require.NoError(t, err)
	return act
}

func script(steps ...command.Step) *command.Script {
	return &command.Script{Steps: steps}
}

// centreSource reports one blob in the image centre per frame and tracks
// whether it was shut down.
type centreSource struct {
	frames int
	limit  int
	closed atomic.Bool
	idle   bool
}

func (s *centreSource) Next(ctx context.Context) (perception.Frame, error) {
	if s.idle || (s.limit > 0 && s.frames >= s.limit) {
		time.Sleep(time.Millisecond)
		return perception.Frame{}, perception.ErrNoFrame
	}
	s.frames++
	time.Sleep(200 * time.Microsecond)
	return perception.Frame{Seq: uint64(s.frames), Blobs: []perception.Blob{{X: 320, Y: 240, Area: 5000}}}, nil
}

func (s *centreSource) Close() error { s.closed.Store(true); return nil }

type faultyActuator struct {
	pantilt.Actuator
	failAt int
	panic  bool
	n      int
}

func (f *faultyActuator) Next(ctx context.Context) (pantilt.Pair, error) {
	f.n++
	if f.n == f.failAt {
		if f.panic {
			panic("encoder fault")
		}
		return pantilt.Pair{}, errors.New("link dropped")
	}
	return f.Actuator.Next(ctx)
}

func TestRun_ScriptedCycle(t *testing.T) {
	cfg := fastConfig(t)
	cfg.Duration = 0

	r, err := New(cfg, simActuator(t, cfg), nil, script(
		command.Step{At: 0.1, Command: command.Scan},
		command.Step{At: 4, Command: command.Home},
		command.Step{At: 8, Command: command.Quit},
	), logging.Noop())
	require.NoError(t, err)
	rec := NewRecorder(0)
	r.AddObserver(rec)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StopQuit, res.Reason)
	assert.Equal(t, mode.GoHome, res.FinalMode)
	assert.InDelta(t, 801, res.Ticks, 1)
	assert.Equal(t, res.Ticks, rec.Len())

	records := rec.Records()
	kinds := map[string]bool{}
	for i, r := range records {
		kinds[r.Kind] = true
		if i == 0 {
			continue
		}
		prev := records[i-1].Cmd
		assert.Less(t, math.Abs(r.Cmd.Pan.Pos-prev.Pan.Pos), 0.03, "pan jump at tick %d", i)
		assert.Less(t, math.Abs(r.Cmd.Tilt.Pos-prev.Tilt.Pos), 0.03, "tilt jump at tick %d", i)
	}
	assert.True(t, kinds["scan"])
	assert.True(t, kinds["spline"])
	assert.True(t, kinds["hold"])

	last, ok := rec.Last()
	require.True(t, ok)
	assert.InDelta(t, 0, last.Act.Pan.Pos, 0.01)
	assert.InDelta(t, 0, last.Act.Tilt.Pos, 0.01)
}

func TestRun_Duration(t *testing.T) {
	cfg := fastConfig(t)
	cfg.Duration = 1.5

	r, err := New(cfg, simActuator(t, cfg), nil, nil, logging.Noop())
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StopDuration, res.Reason)
	assert.Equal(t, 150, res.Ticks)
	assert.Equal(t, mode.GoHome, res.FinalMode)
}

func TestRun_TracksPerceivedObject(t *testing.T) {
	cfg := fastConfig(t)
	cfg.Duration = 3
	src := &centreSource{limit: 50}

	r, err := New(cfg, simActuator(t, cfg), src, script(command.Step{At: 0, Command: command.Track}), logging.Noop())
	require.NoError(t, err)
	rec := NewRecorder(0)
	r.AddObserver(rec)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, src.closed.Load())
	assert.Equal(t, mode.Tracking, res.FinalMode)
	assert.Equal(t, src.frames, res.Perception.Frames)
	if res.Perception.Frames > 0 {
		assert.Len(t, res.Objects, 1, "centre detections all land on the same object")
		assert.LessOrEqual(t, len(res.History), res.Perception.Detections)
	}
}

// lateActuator holds back its first feedback sample.
type lateActuator struct {
	pantilt.Actuator
	delay time.Duration
	n     int
}

func (l *lateActuator) Next(ctx context.Context) (pantilt.Pair, error) {
	l.n++
	if l.n == 1 {
		time.Sleep(l.delay)
	}
	return l.Actuator.Next(ctx)
}

func TestRun_DetectionsUseMeasuredStartPose(t *testing.T) {
	for i := 0; i < 3; i++ {
		cfg := fastConfig(t)
		cfg.Duration = 0.5
		cfg.Plant.Start = []float64{1.0, 0}
		src := &centreSource{limit: 20}
		act := &lateActuator{Actuator: simActuator(t, cfg), delay: 20 * time.Millisecond}

		r, err := New(cfg, act, src, script(command.Step{At: 0, Command: command.Track}), logging.Noop())
		require.NoError(t, err)

		res, err := r.Run(context.Background())
		require.NoError(t, err)
		for _, d := range res.History {
			assert.InDelta(t, 1.0, d.Pan, 0.05, "detection converted against an unmeasured pose")
		}
		for _, o := range res.Objects {
			assert.InDelta(t, 1.0, o.Pan, 0.05)
		}
		if res.Perception.Frames > 0 {
			assert.Len(t, res.Objects, 1)
		}
	}
}

func TestRun_InitialFeedbackErrorSkipsPerception(t *testing.T) {
	cfg := fastConfig(t)
	src := &centreSource{}
	act := &faultyActuator{Actuator: simActuator(t, cfg), failAt: 1}

	r, err := New(cfg, act, src, nil, logging.Noop())
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	require.ErrorContains(t, err, "initial feedback")
	assert.Equal(t, StopError, res.Reason)
	assert.Zero(t, res.Ticks)
	assert.Zero(t, src.frames)
	assert.True(t, src.closed.Load())
}

func TestRun_ErrorStopsPerception(t *testing.T) {
	cfg := fastConfig(t)
	src := &centreSource{idle: true}
	act := &faultyActuator{Actuator: simActuator(t, cfg), failAt: 6}

	r, err := New(cfg, act, src, nil, logging.Noop())
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	require.Error(t, err)
	var te *pantilt.TickError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 4, te.Tick)
	assert.Equal(t, StopError, res.Reason)
	assert.True(t, r.Channel().StopRequested())
	assert.True(t, src.closed.Load())
}

func TestRun_PanicIsRecovered(t *testing.T) {
	cfg := fastConfig(t)
	src := &centreSource{idle: true}
	act := &faultyActuator{Actuator: simActuator(t, cfg), failAt: 3, panic: true}

	r, err := New(cfg, act, src, nil, logging.Noop())
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encoder fault")
	assert.Equal(t, StopError, res.Reason)
	assert.True(t, src.closed.Load())
}

type brokenSource struct{ closed atomic.Bool }

func (s *brokenSource) Next(context.Context) (perception.Frame, error) {
	return perception.Frame{}, errors.New("socket reset")
}

func (s *brokenSource) Close() error { s.closed.Store(true); return nil }

type lockedBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

func TestRun_PerceptionFailureLoggedWhileRunning(t *testing.T) {
	cfg := fastConfig(t)
	cfg.Duration = 0.5
	var logs lockedBuffer
	src := &brokenSource{}

	r, err := New(cfg, simActuator(t, cfg), src, nil, logging.NewWriter(&logs, logging.Config{Level: "info"}))
	require.NoError(t, err)

	var seenMidRun atomic.Bool
	r.AddObserver(pantilt.ObserverFunc(func(rec pantilt.Record) {
		if rec.Tick != 0 {
			return
		}
		seenMidRun.Store(assert.Eventually(t, func() bool {
			return strings.Contains(logs.String(), "socket reset")
		}, 2*time.Second, 5*time.Millisecond))
	}))

	res, err := r.Run(context.Background())
	require.ErrorContains(t, err, "socket reset")
	assert.True(t, seenMidRun.Load(), "perception error must be logged before the run ends")
	assert.Equal(t, StopDuration, res.Reason)
	assert.Equal(t, 50, res.Ticks)
	assert.True(t, src.closed.Load())
}

func TestRun_StopFlag(t *testing.T) {
	cfg := fastConfig(t)
	cfg.Duration = 0

	r, err := New(cfg, simActuator(t, cfg), nil, nil, logging.Noop())
	require.NoError(t, err)
	r.AddObserver(pantilt.ObserverFunc(func(rec pantilt.Record) {
		if rec.Tick == 9 {
			r.Channel().RequestStop()
		}
	}))

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StopFlag, res.Reason)
	assert.Equal(t, 11, res.Ticks)
}

func TestRun_ContextCancelled(t *testing.T) {
	cfg := fastConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := New(cfg, simActuator(t, cfg), nil, nil, logging.Noop())
	require.NoError(t, err)
	res, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, StopContext, res.Reason)
	assert.Zero(t, res.Ticks)
}

func TestNew_Validates(t *testing.T) {
	cfg := fastConfig(t)
	cfg.Dt = 0
	_, err := New(cfg, nil, nil, nil, logging.Noop())
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	assert.Equal(t, []string{"serial", "sim"}, reg.ListActuators())
	assert.Equal(t, []string{"none", "sim", "udp"}, reg.ListSources())

	cfg := config.DefaultConfig()
	cfg.Actuator = "carrier-pigeon"
	_, err := reg.Actuator(cfg, logging.Noop())
	assert.Error(t, err)

	cfg = config.DefaultConfig()
	cfg.Actuator = "serial"
	cfg.Serial.Port = "/dev/pantrack-missing"
	_, err = reg.Actuator(cfg, logging.Noop())
	assert.ErrorIs(t, err, pantilt.ErrLinkNotFound)

	cfg = config.DefaultConfig()
	src, err := reg.Source(cfg, &faultyActuator{}, logging.Noop())
	assert.Error(t, err, "sim camera needs the sim plant")
	assert.Nil(t, src)

	cfg.Perception = "none"
	src, err = reg.Source(cfg, nil, logging.Noop())
	assert.NoError(t, err)
	assert.Nil(t, src)

	cfg.Perception = "sim"
	act := simActuator(t, cfg)
	src, err = reg.Source(cfg, act, logging.Noop())
	require.NoError(t, err)
	require.NotNil(t, src)
	assert.NoError(t, src.Close())
}

func TestRecorder_Limit(t *testing.T) {
	rec := NewRecorder(3)
	for i := 0; i < 5; i++ {
		rec.OnTick(pantilt.Record{Tick: i})
	}
	got := rec.Records()
	require.Len(t, got, 3)
	assert.Equal(t, 2, got[0].Tick)
	assert.Equal(t, 4, got[2].Tick)
}
