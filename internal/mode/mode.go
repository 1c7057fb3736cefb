// Package mode decides which trajectory the rig runs and when to switch.
package mode

import (
	"fmt"
	"strings"
)

type Mode int

const (
	GoHome Mode = iota
	Tracking
	Scanning
)

func (m Mode) String() string {
	switch m {
	case GoHome:
		return "home"
	case Tracking:
		return "tracking"
	case Scanning:
		return "scanning"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode accepts the names returned by String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "home", "gohome":
		return GoHome, nil
	case "tracking", "track":
		return Tracking, nil
	case "scanning", "scan":
		return Scanning, nil
	}
	return 0, fmt.Errorf("unknown mode: %s", s)
}

// Interest cycles through tracked objects, advancing every Period ticks.
type Interest struct {
	Period int
}

const DefaultPeriod = 200

// Index returns the object of interest at tick k among n objects. It reports
// false when there is nothing to select.
func (in Interest) Index(k, n int) (int, bool) {
	if n <= 0 {
		return 0, false
	}
	p := in.Period
	if p <= 0 {
		p = DefaultPeriod
	}
	return (k / p) % n, true
}
