package analysis

import (
	"fmt"
	"sort"

	"github.com/san-kum/pantrack/internal/pantilt"
)

var traces = map[string]func(pantilt.Record) float64{
	"cmd_pan":      func(r pantilt.Record) float64 { return r.Cmd.Pan.Pos },
	"cmd_tilt":     func(r pantilt.Record) float64 { return r.Cmd.Tilt.Pos },
	"act_pan":      func(r pantilt.Record) float64 { return r.Act.Pan.Pos },
	"act_tilt":     func(r pantilt.Record) float64 { return r.Act.Tilt.Pos },
	"act_pan_vel":  func(r pantilt.Record) float64 { return r.Act.Pan.Vel },
	"act_tilt_vel": func(r pantilt.Record) float64 { return r.Act.Tilt.Vel },
	"err_pan":      func(r pantilt.Record) float64 { return r.Cmd.Pan.Pos - r.Act.Pan.Pos },
	"err_tilt":     func(r pantilt.Record) float64 { return r.Cmd.Tilt.Pos - r.Act.Tilt.Pos },
}

// Trace extracts the named signal from records.
func Trace(records []pantilt.Record, name string) ([]float64, error) {
	fn, ok := traces[name]
	if !ok {
		return nil, fmt.Errorf("unknown trace %q (have %v)", name, TraceNames())
	}
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = fn(r)
	}
	return out, nil
}

func TraceNames() []string {
	names := make([]string, 0, len(traces))
	for name := range traces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Window keeps the records whose Kind matches, for example only the scan.
func Window(records []pantilt.Record, kind string) []pantilt.Record {
	if kind == "" {
		return records
	}
	var out []pantilt.Record
	for _, r := range records {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}
