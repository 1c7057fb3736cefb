// Package actuator talks to the pan/tilt motor controller over a line based
// serial protocol.
//
// The host sends one setpoint line per tick and the controller answers with
// one feedback line at its fixed rate:
//
//	C <panPos> <panVel> <tiltPos> <tiltVel>
//	F <panPos> <panVel> <tiltPos> <tiltVel>
//
// Angles are radians, velocities radians per second.
package actuator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/pantrack/internal/pantilt"
)

const (
	KindSetpoint = 'C'
	KindFeedback = 'F'
)

// Format renders p as one protocol line, newline included.
func Format(kind byte, p pantilt.Pair) string {
	var b strings.Builder
	b.WriteByte(kind)
	for _, v := range [4]float64{p.Pan.Pos, p.Pan.Vel, p.Tilt.Pos, p.Tilt.Vel} {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(v, 'f', 6, 64))
	}
	b.WriteByte('\n')
	return b.String()
}

// Parse decodes one protocol line. Trailing whitespace is ignored.
func Parse(line string) (kind byte, p pantilt.Pair, err error) {
	fields := strings.Fields(line)
	if len(fields) != 5 || len(fields[0]) != 1 {
		return 0, p, fmt.Errorf("%w: %q", pantilt.ErrInvalidFeedback, line)
	}
	kind = fields[0][0]
	if kind != KindSetpoint && kind != KindFeedback {
		return 0, p, fmt.Errorf("%w: unknown line kind %q", pantilt.ErrInvalidFeedback, fields[0])
	}

	var v [4]float64
	for i, f := range fields[1:] {
		v[i], err = strconv.ParseFloat(f, 64)
		if err != nil {
			return 0, p, fmt.Errorf("%w: %v", pantilt.ErrInvalidFeedback, err)
		}
	}
	p = pantilt.Pair{
		Pan:  pantilt.Sample{Pos: v[0], Vel: v[1]},
		Tilt: pantilt.Sample{Pos: v[2], Vel: v[3]},
	}
	if !p.IsValid() {
		return 0, p, fmt.Errorf("%w: non-finite value in %q", pantilt.ErrInvalidFeedback, line)
	}
	return kind, p, nil
}
