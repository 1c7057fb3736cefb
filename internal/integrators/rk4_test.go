package integrators

import (
	"math"
	"testing"
)

// harmonic is x'' = -x.
var harmonic = SystemFunc(func(x State, t float64) State {
	return State{x[1], -x[0]}
})

func run(integ Integrator, steps int, dt float64) State {
	x := State{1.0, 0.0}
	for i := 0; i < steps; i++ {
		x = integ.Step(harmonic, x, float64(i)*dt, dt)
	}
	return x
}

func TestRK4Accuracy(t *testing.T) {
	dt := 0.01
	steps := 100
	x := run(NewRK4(), steps, dt)

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}

	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestEulerLessAccurateThanRK4(t *testing.T) {
	exact := math.Cos(1.0)
	eu := math.Abs(run(NewEuler(), 100, 0.01)[0] - exact)
	rk := math.Abs(run(NewRK4(), 100, 0.01)[0] - exact)

	if eu <= rk {
		t.Errorf("euler error %.2e should exceed rk4 error %.2e", eu, rk)
	}
	if eu > 1e-2 {
		t.Errorf("euler error too large: %.2e", eu)
	}
}

func TestNew(t *testing.T) {
	for _, name := range Names() {
		if _, err := New(name); err != nil {
			t.Errorf("New(%q): %v", name, err)
		}
	}
	if _, err := New("verlet"); err == nil {
		t.Error("expected error for unknown integrator")
	}
}

func TestStateIsValid(t *testing.T) {
	if !(State{1, 2}).IsValid() {
		t.Error("finite state reported invalid")
	}
	if (State{1, math.NaN()}).IsValid() {
		t.Error("NaN state reported valid")
	}
	c := State{1, 2}
	d := c.Clone()
	d[0] = 5
	if c[0] != 1 {
		t.Error("Clone shares storage")
	}
}
