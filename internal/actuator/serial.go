package actuator

import (
	"fmt"
	"log/slog"
	"strings"

	"go.bug.st/serial"

	"github.com/san-kum/pantrack/internal/pantilt"
)

const DefaultBaud = 115200

// PortOptions describes the serial connection to the motor controller. The
// link always uses 8 data bits.
type PortOptions struct {
	BaudRate int    `yaml:"baud_rate"`
	StopBits int    `yaml:"stop_bits"`
	Parity   string `yaml:"parity"`
}

var parities = map[string]serial.Parity{
	"":     serial.NoParity,
	"none": serial.NoParity,
	"even": serial.EvenParity,
	"odd":  serial.OddParity,
}

// Mode builds the go.bug.st/serial mode, defaulting to 115200 8N1.
func (o PortOptions) Mode() (*serial.Mode, error) {
	m := &serial.Mode{BaudRate: o.BaudRate, DataBits: 8, StopBits: serial.OneStopBit}
	if m.BaudRate <= 0 {
		m.BaudRate = DefaultBaud
	}
	switch o.StopBits {
	case 0, 1:
	case 2:
		m.StopBits = serial.TwoStopBits
	default:
		return nil, fmt.Errorf("stop bits %d: want 1 or 2", o.StopBits)
	}
	p, ok := parities[strings.ToLower(o.Parity)]
	if !ok {
		return nil, fmt.Errorf("parity %q: want none, even or odd", o.Parity)
	}
	m.Parity = p
	return m, nil
}

// Open connects to the motor controller at path. Any failure to reach the
// port wraps pantilt.ErrLinkNotFound.
func Open(path string, opts PortOptions, log *slog.Logger) (*Link, error) {
	mode, err := opts.Mode()
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", pantilt.ErrLinkNotFound, path, err)
	}

	log.Info("actuator link open", "port", path, "baud", mode.BaudRate)
	return NewLink(port, log.With("port", path)), nil
}

// Ports lists the serial ports visible to the host.
func Ports() ([]string, error) {
	return serial.GetPortsList()
}
