package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/pantrack/internal/actuator"
	"github.com/san-kum/pantrack/internal/config"
)

var (
	dataDir     string
	configFile  string
	preset      string
	envFile     string
	dt          float64
	duration    float64
	actuatorArg string
	perception  string
	port        string
	baud        int
	udpAddr     string
	scriptFile  string
	realtime    bool
	seed        uint64
	logLevel    string
	logFormat   string
	metricsAddr string
	readStdin   bool
	save        bool
	runName     string
	frameRate   int
	theme       string
	numRuns     int
	seedStart   uint64

	plotTrace  string
	traceName  string
	traceKind  string
	renderFmt  string
	outPath    string
	plotWidth  int
	plotHeight int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "pantrack",
		Short:         "pan/tilt scanning and tracking rig",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "run data directory (default from config)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the rig, reading commands from stdin",
		Args:  cobra.NoArgs,
		RunE:  runRig,
	}
	addRigFlags(runCmd)
	runCmd.Flags().BoolVar(&readStdin, "stdin", true, "read command tokens from stdin")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the rig with the operator console",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addRigFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "console frame rate")
	liveCmd.Flags().StringVar(&theme, "theme", "default", "console theme")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run the simulated rig under several noise seeds in parallel",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addRigFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&numRuns, "runs", 8, "number of seeds")
	sweepCmd.Flags().Uint64Var(&seedStart, "seed-start", 1, "first seed")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot axis traces in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotTrace, "trace", "", "single trace to plot (default: commanded and actual of both axes)")
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 10, "plot height")

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render PNG plots and an HTML report",
		Args:  cobra.ExactArgs(1),
		RunE:  renderRun,
	}
	renderCmd.Flags().StringVar(&renderFmt, "format", "all", "png, html or all")
	renderCmd.Flags().StringVarP(&outPath, "out", "o", "", "output directory (default: the run directory)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis and error statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&traceName, "trace", "act_pan", "trace to analyse")
	analyzeCmd.Flags().StringVar(&traceKind, "kind", "", "only use ticks with this trajectory kind (hold, spline, scan)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run records to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list configuration presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Printf("  %-6s actuator=%s perception=%s realtime=%t duration=%.0fs\n",
					name, cfg.Actuator, cfg.Perception, cfg.Realtime, cfg.Duration)
			}
			return nil
		},
	}

	portsCmd := &cobra.Command{
		Use:   "ports",
		Short: "list serial ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := actuator.Ports()
			if err != nil {
				return err
			}
			if len(ports) == 0 {
				fmt.Println("no serial ports found")
				return nil
			}
			for _, p := range ports {
				fmt.Println(p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, sweepCmd, listCmd, plotCmd, renderCmd, analyzeCmd, exportCSVCmd, exportJSONCmd, presetsCmd, portsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addRigFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVar(&envFile, "env-file", ".env", "dotenv file with PANTRACK_* overrides")
	f.Float64Var(&dt, "dt", config.DefaultDt, "control period in seconds")
	f.Float64Var(&duration, "time", config.DefaultDuration, "run duration in seconds, 0 runs until quit")
	f.StringVar(&actuatorArg, "actuator", "sim", "actuator transport (sim, serial)")
	f.StringVar(&perception, "perception", "sim", "perception source (sim, udp, none)")
	f.StringVar(&port, "port", "", "serial port of the motor controller")
	f.IntVar(&baud, "baud", 115200, "serial baud rate")
	f.StringVar(&udpAddr, "udp", config.DefaultUDPAddr, "UDP listen address for camera frames")
	f.StringVar(&scriptFile, "script", "", "yaml command script")
	f.BoolVar(&realtime, "realtime", false, "pace the simulated rig in wall-clock time")
	f.Uint64Var(&seed, "seed", 0, "noise seed for the simulated rig")
	f.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	f.StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	f.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	f.BoolVar(&save, "save", true, "store the run under the data directory")
	f.StringVar(&runName, "name", "run", "name prefix for the stored run")
}
