package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/pantrack/internal/pantilt"
)

func ExportJSON(path string, run *Run) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, run)
}

// WriteJSON encodes the whole run, metadata and time history, to w.
func WriteJSON(w io.Writer, run *Run) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(run)
}

// WriteCSV writes the tick records in the same layout as records.csv.
func WriteCSV(w io.Writer, records []pantilt.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(recordHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(recordRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func recordRow(r pantilt.Record) []string {
	return []string{
		strconv.Itoa(r.Tick),
		ftoa(r.Time),
		r.Mode,
		r.Kind,
		ftoa(r.Cmd.Pan.Pos), ftoa(r.Cmd.Pan.Vel), ftoa(r.Cmd.Tilt.Pos), ftoa(r.Cmd.Tilt.Vel),
		ftoa(r.Act.Pan.Pos), ftoa(r.Act.Pan.Vel), ftoa(r.Act.Tilt.Pos), ftoa(r.Act.Tilt.Vel),
		ftoa(r.Object.Pan), ftoa(r.Object.Tilt),
		strconv.FormatBool(r.HasObject),
		strconv.Itoa(r.Tracked),
	}
}
