package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/pantrack/internal/analysis"
	"github.com/san-kum/pantrack/internal/config"
	"github.com/san-kum/pantrack/internal/metrics"
	"github.com/san-kum/pantrack/internal/report"
	"github.com/san-kum/pantrack/internal/storage"
)

func openStore() *storage.Store {
	dir := dataDir
	if dir == "" {
		dir = os.Getenv(config.EnvPrefix + "DATA_DIR")
	}
	if dir == "" {
		dir = config.DefaultDataDir
	}
	return storage.New(dir)
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := openStore().List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tACTUATOR\tPERCEPTION\tTICKS\tREASON\tMODE\tOBJECTS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Actuator,
			run.Perception,
			run.Ticks,
			run.Reason,
			run.FinalMode,
			len(run.Objects),
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	run, err := openStore().LoadRun(args[0])
	if err != nil {
		return err
	}
	if len(run.Records) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", run.Meta.ID)
	fmt.Printf("samples: %d\n\n", len(run.Records))

	groups := [][]string{{"cmd_pan", "act_pan"}, {"cmd_tilt", "act_tilt"}}
	if plotTrace != "" {
		groups = [][]string{{plotTrace}}
	}

	for _, names := range groups {
		series := make([][]float64, 0, len(names))
		for _, name := range names {
			data, err := analysis.Trace(run.Records, name)
			if err != nil {
				return err
			}
			series = append(series, downsample(data, plotWidth*4))
		}
		graph := asciigraph.PlotMany(series,
			asciigraph.Height(plotHeight),
			asciigraph.Width(plotWidth),
			asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Yellow),
			asciigraph.Caption(fmt.Sprintf("%v (rad)", names)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

// downsample keeps at most n evenly spaced points.
func downsample(data []float64, n int) []float64 {
	if n <= 0 || len(data) <= n {
		return data
	}
	out := make([]float64, n)
	step := float64(len(data)-1) / float64(n-1)
	for i := range out {
		out[i] = data[int(float64(i)*step)]
	}
	return out
}

func renderRun(cmd *cobra.Command, args []string) error {
	st := openStore()
	run, err := st.LoadRun(args[0])
	if err != nil {
		return err
	}
	dir := outPath
	if dir == "" {
		dir = st.Dir(run.Meta.ID)
	}

	switch renderFmt {
	case "png", "html", "all":
	default:
		return fmt.Errorf("unknown format: %s (want png, html or all)", renderFmt)
	}

	if renderFmt == "png" || renderFmt == "all" {
		files, err := report.RenderPNG(dir, run.Records)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Println("wrote", f)
		}
	}
	if renderFmt == "html" || renderFmt == "all" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		path := filepath.Join(dir, "report.html")
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := report.RenderHTML(f, run.Records, run.Detections, run.Meta.Objects, report.Options{Title: run.Meta.ID}); err != nil {
			return err
		}
		fmt.Println("wrote", path)
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	run, err := openStore().LoadRun(args[0])
	if err != nil {
		return err
	}

	records := analysis.Window(run.Records, traceKind)
	data, err := analysis.Trace(records, traceName)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", run.Meta.ID)
	fmt.Printf("trace: %s (%d samples)\n", traceName, len(data))

	spec, err := analysis.PowerSpectrum(data, run.Meta.Dt)
	if err != nil {
		return err
	}
	freq, power := spec.Peak()
	if freq > 0 {
		fmt.Printf("dominant frequency: %.4f Hz (period %.3fs, amplitude %.4f)\n", freq, 1/freq, power)
	}

	top := make([]int, 0, len(spec.Power))
	for i := 1; i < len(spec.Power); i++ {
		top = append(top, i)
	}
	sort.Slice(top, func(a, b int) bool { return spec.Power[top[a]] > spec.Power[top[b]] })
	if len(top) > 5 {
		top = top[:5]
	}
	fmt.Println("\nstrongest components:")
	for _, i := range top {
		fmt.Printf("  %8.4f Hz  %.5f\n", spec.Freq[i], spec.Power[i])
	}

	errs := metrics.Summarize(metrics.Series(records, metrics.PositionError))
	fmt.Println("\nposition error (rad):")
	fmt.Printf("  mean %.5f  std %.5f  p95 %.5f  max %.5f\n", errs.Mean, errs.Std, errs.P95, errs.Max)

	if len(run.Meta.Metrics) > 0 {
		fmt.Println("\nstored metrics:")
		names := make([]string, 0, len(run.Meta.Metrics))
		for name := range run.Meta.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %s: %.6f\n", name, run.Meta.Metrics[name])
		}
	}
	return nil
}

// output returns stdout, or the --out file.
func output() (io.WriteCloser, error) {
	if outPath == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(outPath)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportCSV(cmd *cobra.Command, args []string) error {
	records, err := openStore().LoadRecords(args[0])
	if err != nil {
		return err
	}
	w, err := output()
	if err != nil {
		return err
	}
	defer w.Close()
	return storage.WriteCSV(w, records)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	run, err := openStore().LoadRun(args[0])
	if err != nil {
		return err
	}
	if outPath != "" {
		return storage.ExportJSON(outPath, run)
	}
	return storage.WriteJSON(os.Stdout, run)
}
