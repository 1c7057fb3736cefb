package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/pantrack/internal/associate"
	"github.com/san-kum/pantrack/internal/pantilt"
)

const (
	metadataFile   = "metadata.json"
	recordsFile    = "records.csv"
	detectionsFile = "detections.csv"
)

var recordHeader = []string{
	"tick", "time", "mode", "kind",
	"cmd_pan", "cmd_pan_vel", "cmd_tilt", "cmd_tilt_vel",
	"act_pan", "act_pan_vel", "act_tilt", "act_tilt_vel",
	"obj_pan", "obj_tilt", "has_object", "tracked",
}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

// RunMetadata describes one stored run.
type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Actuator   string             `json:"actuator"`
	Perception string             `json:"perception"`
	Seed       uint64             `json:"seed"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Ticks      int                `json:"ticks"`
	Reason     string             `json:"reason"`
	FinalMode  string             `json:"final_mode"`
	Objects    []associate.Object `json:"objects"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Run is everything written for a run.
type Run struct {
	Meta       RunMetadata         `json:"metadata"`
	Records    []pantilt.Record    `json:"records"`
	Detections []pantilt.Detection `json:"detections"`
}

// Save writes run into a fresh directory and returns its ID. An empty
// Meta.ID is filled in.
func (s *Store) Save(run *Run) (string, error) {
	meta := run.Meta
	if meta.ID == "" {
		meta.ID = newRunID(meta.Name)
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}

	runDir := s.Dir(meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeRecords(filepath.Join(runDir, recordsFile), run.Records); err != nil {
		return "", err
	}
	if err := writeDetections(filepath.Join(runDir, detectionsFile), run.Detections); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func newRunID(name string) string {
	if name == "" {
		name = "run"
	}
	return fmt.Sprintf("%s_%s_%s", name, time.Now().Format("20060102_150405"), uuid.New().String()[:8])
}

// List returns stored runs, newest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadRun reads the metadata, the tick records and the detection history.
func (s *Store) LoadRun(runID string) (*Run, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	records, err := s.LoadRecords(runID)
	if err != nil {
		return nil, err
	}
	dets, err := s.LoadDetections(runID)
	if err != nil {
		return nil, err
	}
	return &Run{Meta: *meta, Records: records, Detections: dets}, nil
}

func (s *Store) LoadRecords(runID string) ([]pantilt.Record, error) {
	rows, err := readCSV(filepath.Join(s.Dir(runID), recordsFile))
	if err != nil {
		return nil, err
	}

	records := make([]pantilt.Record, 0, len(rows))
	for i, row := range rows {
		rec, err := parseRecord(row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", recordsFile, i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Store) LoadDetections(runID string) ([]pantilt.Detection, error) {
	rows, err := readCSV(filepath.Join(s.Dir(runID), detectionsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	dets := make([]pantilt.Detection, 0, len(rows))
	for i, row := range rows {
		v, err := parseFloats(row, 2)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", detectionsFile, i+2, err)
		}
		dets = append(dets, pantilt.Detection{Pan: v[0], Tilt: v[1]})
	}
	return dets, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeRecords(path string, records []pantilt.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteCSV(f, records)
}

func writeDetections(path string, dets []pantilt.Detection) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"pan", "tilt"}); err != nil {
		return err
	}
	for _, d := range dets {
		if err := w.Write([]string{ftoa(d.Pan), ftoa(d.Tilt)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// readCSV returns the rows after the header.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return [][]string{}, nil
	}
	return rows[1:], nil
}

func parseRecord(row []string) (pantilt.Record, error) {
	if len(row) != len(recordHeader) {
		return pantilt.Record{}, fmt.Errorf("want %d fields, got %d", len(recordHeader), len(row))
	}

	tick, err := strconv.Atoi(row[0])
	if err != nil {
		return pantilt.Record{}, err
	}
	v, err := parseFloats(append([]string{row[1]}, row[4:14]...), 11)
	if err != nil {
		return pantilt.Record{}, err
	}
	hasObject, err := strconv.ParseBool(row[14])
	if err != nil {
		return pantilt.Record{}, err
	}
	tracked, err := strconv.Atoi(row[15])
	if err != nil {
		return pantilt.Record{}, err
	}

	return pantilt.Record{
		Tick: tick,
		Time: v[0],
		Mode: row[2],
		Kind: row[3],
		Cmd: pantilt.Pair{
			Pan:  pantilt.Sample{Pos: v[1], Vel: v[2]},
			Tilt: pantilt.Sample{Pos: v[3], Vel: v[4]},
		},
		Act: pantilt.Pair{
			Pan:  pantilt.Sample{Pos: v[5], Vel: v[6]},
			Tilt: pantilt.Sample{Pos: v[7], Vel: v[8]},
		},
		Object:    pantilt.Pose{Pan: v[9], Tilt: v[10]},
		HasObject: hasObject,
		Tracked:   tracked,
	}, nil
}

func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d fields, got %d", n, len(fields))
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
