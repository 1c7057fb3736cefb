// Package motion computes move durations and cubic blends between boundary
// conditions. It holds no state.
package motion

import "math"

// Cubic holds the coefficients of p(τ) = A + Bτ + Cτ² + Dτ³.
type Cubic struct {
	A, B, C, D float64
}

// At returns position and velocity at τ seconds into the segment.
func (c Cubic) At(tau float64) (pos, vel float64) {
	pos = c.A + c.B*tau + c.C*tau*tau + c.D*tau*tau*tau
	vel = c.B + 2*c.C*tau + 3*c.D*tau*tau
	return pos, vel
}

// Duration estimates the time needed to move from (p0, v0) to (pf, vf) with
// speed limit vmax. The result is never negative; callers floor it to keep
// moves from collapsing to zero length.
func Duration(p0, pf, v0, vf, vmax float64) float64 {
	return 1.5*math.Abs(pf-p0)/vmax + math.Abs(v0)/(0.6*vmax) + math.Abs(vf)/(0.6*vmax)
}

// SplineCoefficients solves the cubic matching (p0, v0) at t0 and (pf, vf) at
// t1. A zero-length window yields a hold at p0 moving at v0.
func SplineCoefficients(t0, t1, p0, pf, v0, vf float64) Cubic {
	tmove := t1 - t0
	if tmove == 0 {
		return Cubic{A: p0, B: v0}
	}

	return Cubic{
		A: p0,
		B: v0,
		C: 3*(pf-p0)/(tmove*tmove) - vf/tmove - 2*v0/tmove,
		D: -2*(pf-p0)/(tmove*tmove*tmove) + vf/(tmove*tmove) + v0/(tmove*tmove),
	}
}

// Evaluate returns the commanded position and velocity of c at time t for a
// segment starting at t0.
func Evaluate(t0, t float64, c Cubic) (pos, vel float64) {
	return c.At(t - t0)
}
