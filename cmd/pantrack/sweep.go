package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/pantrack/internal/command"
	"github.com/san-kum/pantrack/internal/logging"
	"github.com/san-kum/pantrack/internal/metrics"
	"github.com/san-kum/pantrack/internal/rig"
)

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("a sweep needs a bounded duration")
	}
	log := logging.New(cfg.Log)

	e := rig.NewEnsemble(cfg, numRuns, seedStart)
	if cfg.Script != "" {
		path := cfg.Script
		e.Commands = func() (command.Source, error) { return command.LoadScript(path) }
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %d seeds from %d...\n", numRuns, seedStart)
	start := time.Now()
	runs, err := e.Run(ctx, log)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start).Round(time.Millisecond))

	var names []string
	for name := range runs[0].Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "SEED\tTICKS\tMODE\tOBJECTS")
	for _, name := range names {
		fmt.Fprintf(w, "\t%s", name)
	}
	fmt.Fprintln(w)

	values := make(map[string][]float64, len(names))
	for _, run := range runs {
		fmt.Fprintf(w, "%d\t%d\t%s\t%d", run.Seed, run.Result.Ticks, run.Result.FinalMode, len(run.Result.Objects))
		for _, name := range names {
			fmt.Fprintf(w, "\t%.5f", run.Metrics[name])
			values[name] = append(values[name], run.Metrics[name])
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println("\nacross seeds:")
	for _, name := range names {
		s := metrics.Summarize(values[name])
		fmt.Printf("  %s: mean %.5f  std %.5f  max %.5f\n", name, s.Mean, s.Std, s.Max)
	}
	return nil
}
