package sim

import "github.com/san-kum/pantrack/internal/pantilt"

// Servo is the per-axis position loop of the simulated motor controller: PID
// on position error plus velocity feed-forward, with an acceleration limit.
type Servo struct {
	Kp       float64 `yaml:"kp"`
	Ki       float64 `yaml:"ki"`
	Kd       float64 `yaml:"kd"`
	MaxAccel float64 `yaml:"max_accel"`

	integral float64
}

func DefaultServo() Servo {
	return Servo{Kp: 400, Ki: 0, Kd: 40, MaxAccel: 60}
}

// Accel is the commanded acceleration for an axis at (pos, vel) tracking sp.
func (s *Servo) Accel(sp pantilt.Sample, pos, vel float64) float64 {
	a := s.Kp*(sp.Pos-pos) + s.Kd*(sp.Vel-vel) + s.Ki*s.integral
	if s.MaxAccel > 0 {
		if a > s.MaxAccel {
			a = s.MaxAccel
		} else if a < -s.MaxAccel {
			a = -s.MaxAccel
		}
	}
	return a
}

// Integrate accumulates position error once per control period.
func (s *Servo) Integrate(sp pantilt.Sample, pos, dt float64) {
	s.integral += (sp.Pos - pos) * dt
}

// Reset clears integral state.
func (s *Servo) Reset() { s.integral = 0 }

// GetParams returns tunable parameters for live adjustment.
func (s *Servo) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp":       s.Kp,
		"Ki":       s.Ki,
		"Kd":       s.Kd,
		"MaxAccel": s.MaxAccel,
	}
}

// SetParam adjusts a servo parameter.
func (s *Servo) SetParam(name string, value float64) {
	switch name {
	case "Kp":
		s.Kp = value
	case "Ki":
		s.Ki = value
	case "Kd":
		s.Kd = value
	case "MaxAccel":
		s.MaxAccel = value
	}
}
