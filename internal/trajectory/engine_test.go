package trajectory

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/pantrack/internal/pantilt"
)

const tol = 1e-9

func assertPairNear(t *testing.T, want, got pantilt.Pair, delta float64) {
	t.Helper()
	assert.InDelta(t, want.Pan.Pos, got.Pan.Pos, delta, "pan pos")
	assert.InDelta(t, want.Pan.Vel, got.Pan.Vel, delta, "pan vel")
	assert.InDelta(t, want.Tilt.Pos, got.Tilt.Pos, delta, "tilt pos")
	assert.InDelta(t, want.Tilt.Vel, got.Tilt.Vel, delta, "tilt vel")
}

func TestEngine_StartsHolding(t *testing.T) {
	e := NewEngine(DefaultConfig(), pantilt.Pose{Pan: 0.2, Tilt: -0.1})

	assert.Equal(t, KindHold, e.Kind())
	cmd := e.Tick(0)
	assert.Equal(t, pantilt.Pair{
		Pan:  pantilt.Sample{Pos: 0.2},
		Tilt: pantilt.Sample{Pos: -0.1},
	}, cmd)
}

func TestEngine_LatchOnlyWhileHolding(t *testing.T) {
	e := NewEngine(DefaultConfig(), pantilt.Pose{})
	e.Latch(pantilt.Pose{Pan: 0.05, Tilt: 0.01})
	assert.Equal(t, Hold{Pan: 0.05, Tilt: 0.01}, e.Spec())

	e.Tick(0)
	e.MoveTo(0, pantilt.Pose{Pan: 1}.At(), 0.1)
	e.Latch(pantilt.Pose{Pan: 0.3})
	assert.Equal(t, KindSpline, e.Kind(), "latch must not disturb a spline")
}

func TestEngine_MoveToBoundaries(t *testing.T) {
	e := NewEngine(DefaultConfig(), pantilt.Pose{})
	e.Tick(0)

	target := pantilt.Pair{
		Pan:  pantilt.Sample{Pos: 0.8, Vel: 0.2},
		Tilt: pantilt.Sample{Pos: -0.4},
	}
	s := e.MoveTo(0, target, 0.1)

	assertPairNear(t, pantilt.Pair{}, s.Eval(s.T0), tol)
	assertPairNear(t, target, s.Eval(s.T1), 1e-7)
}

func TestEngine_MoveToWindow(t *testing.T) {
	cfg := DefaultConfig()
	e := NewEngine(cfg, pantilt.Pose{})
	e.Tick(2)

	s := e.MoveTo(2, pantilt.Pose{Pan: 1.4, Tilt: 0.3}.At(), cfg.MinMove)
	// pan needs 1.5*1.4/1.4 = 1.5s, tilt 1.5*0.3/1.2 = 0.375s
	assert.InDelta(t, 2.0, s.T0, tol)
	assert.InDelta(t, 1.5, s.Duration(), tol)

	s = e.MoveTo(2, pantilt.Pair{}, cfg.MinMove)
	assert.InDelta(t, cfg.MinMove, s.Duration(), tol, "null move should be floored")
}

func TestEngine_ContinuityAcrossReplacement(t *testing.T) {
	cfg := DefaultConfig()
	e := NewEngine(cfg, pantilt.Pose{})

	var tm float64
	e.Tick(tm)
	e.MoveTo(tm, pantilt.Pose{Pan: 1, Tilt: 0.5}.At(), cfg.MinMove)
	for i := 0; i < 37; i++ {
		tm += cfg.Dt
		e.Tick(tm)
	}

	before := e.Last()
	require.NotZero(t, before.Pan.Vel, "should be mid-move")

	s := e.MoveTo(tm, pantilt.Pair{}, cfg.MinMove)
	assertPairNear(t, before, s.Eval(tm), tol)
	assertPairNear(t, before, e.Tick(tm), tol)
}

func TestEngine_Complete(t *testing.T) {
	cfg := DefaultConfig()
	e := NewEngine(cfg, pantilt.Pose{})
	assert.False(t, e.Complete(0), "hold never completes")

	e.Tick(0)
	s := e.MoveTo(0, pantilt.Pose{Pan: 0.14}.At(), cfg.MinMove)

	assert.False(t, e.Complete(s.T0))
	assert.False(t, e.Complete(s.T1-2*cfg.Dt))
	assert.True(t, e.Complete(s.T1-cfg.Dt/2))

	e.StartScan(DefaultScan(s.T1))
	assert.False(t, e.Complete(1e6), "scan never completes")
}

func TestScan_DefaultStart(t *testing.T) {
	s := DefaultScan(3)
	start := s.Start()

	assert.InDelta(t, 0, start.Pan.Pos, tol)
	assert.InDelta(t, PanAmplitude*6*math.Pi/ScanPeriod, start.Pan.Vel, tol)
	assert.InDelta(t, TiltAmplitude, start.Tilt.Pos, tol)
	assert.InDelta(t, 0, start.Tilt.Vel, tol)

	// one full tilt period later the sweep is back at its start
	assertPairNear(t, start, s.Eval(3+ScanPeriod), 1e-9)
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindHold, "hold"},
		{KindSpline, "spline"},
		{KindScan, "scan"},
		{Kind(9), "kind(9)"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}
