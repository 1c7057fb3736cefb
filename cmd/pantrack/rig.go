package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/san-kum/pantrack/internal/command"
	"github.com/san-kum/pantrack/internal/config"
	"github.com/san-kum/pantrack/internal/logging"
	"github.com/san-kum/pantrack/internal/metrics"
	"github.com/san-kum/pantrack/internal/rig"
	"github.com/san-kum/pantrack/internal/storage"
	"github.com/san-kum/pantrack/internal/viz"
)

// loadConfig layers defaults, preset, config file, environment and changed
// flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		var err error
		cfg, err = config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("actuator") {
		cfg.Actuator = actuatorArg
	}
	if flags.Changed("perception") {
		cfg.Perception = perception
	}
	if flags.Changed("port") {
		cfg.Serial.Port = port
	}
	if flags.Changed("baud") {
		cfg.Serial.BaudRate = baud
	}
	if flags.Changed("udp") {
		cfg.UDP.Addr = udpAddr
	}
	if flags.Changed("script") {
		cfg.Script = scriptFile
	}
	if flags.Changed("realtime") {
		cfg.Realtime = realtime
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = metricsAddr
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	return cfg, cfg.Validate()
}

// session is one rig run with its observers and command inputs.
type session struct {
	cfg   *config.Config
	log   *slog.Logger
	rig   *rig.Rig
	rec   *rig.Recorder
	queue *command.Queue
	stop  func()
}

func newSession(cfg *config.Config, log *slog.Logger) (*session, error) {
	return openSession(cfg, log, prometheus.NewRegistry())
}

// openSession builds the transports and the rig. Whatever fails after the
// transports are open closes them again.
func openSession(cfg *config.Config, log *slog.Logger, promReg *prometheus.Registry) (s *session, err error) {
	reg := rig.NewRegistry()
	act, err := reg.Actuator(cfg, log)
	if err != nil {
		return nil, err
	}
	src, err := reg.Source(cfg, act, log)
	if err != nil {
		act.Close()
		return nil, err
	}
	defer func() {
		if err == nil {
			return
		}
		if cerr := act.Close(); cerr != nil {
			log.Warn("closing actuator", slog.Any("error", cerr))
		}
		if src != nil {
			if cerr := src.Close(); cerr != nil {
				log.Warn("closing perception source", slog.Any("error", cerr))
			}
		}
	}()

	queue := command.NewQueue(command.DefaultQueueSize)
	sources := command.Multi{queue}
	if cfg.Script != "" {
		script, err := command.LoadScript(cfg.Script)
		if err != nil {
			return nil, fmt.Errorf("failed to load script: %w", err)
		}
		log.Info("command script loaded", "name", script.Name, "steps", len(script.Steps))
		sources = append(sources, script)
	}

	r, err := rig.New(cfg, act, src, sources, log)
	if err != nil {
		return nil, err
	}
	s = &session{cfg: cfg, log: log, rig: r, queue: queue, stop: func() {}}

	s.rec = rig.NewRecorder(0)
	r.AddObserver(s.rec)

	if cfg.MetricsAddr != "" {
		collector, err := metrics.NewCollector(promReg)
		if err != nil {
			return nil, err
		}
		r.AddObserver(collector)

		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: collector.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.Info("serving metrics", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		s.stop = func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				log.Warn("metrics server shutdown", slog.Any("error", err))
			}
		}
	}
	return s, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runRig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := newSession(cfg, logging.New(cfg.Log))
	if err != nil {
		return err
	}
	defer s.stop()

	ctx, cancel := signalContext()
	defer cancel()

	if readStdin {
		go func() {
			dropped, err := command.ReadLines(ctx, os.Stdin, s.queue)
			if dropped > 0 {
				s.log.Warn("command queue full, tokens dropped", "dropped", dropped)
			}
			if err != nil && !errors.Is(err, context.Canceled) {
				s.log.Warn("reading stdin", slog.Any("error", err))
			}
		}()
	}

	fmt.Printf("running rig (actuator=%s perception=%s)...\n", cfg.Actuator, cfg.Perception)
	start := time.Now()
	res, runErr := s.rig.Run(ctx)
	return s.finish(res, runErr, time.Since(start))
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Actuator == "sim" && !cmd.Flags().Changed("realtime") {
		cfg.Realtime = true
	}
	// The console owns the terminal, so logs go to a file in the data dir.
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return err
	}
	logFile, err := os.Create(filepath.Join(cfg.DataDir, "live.log"))
	if err != nil {
		return err
	}
	defer logFile.Close()

	s, err := newSession(cfg, logging.NewWriter(logFile, cfg.Log))
	if err != nil {
		return err
	}
	defer s.stop()

	ctx, cancel := signalContext()
	defer cancel()

	type outcome struct {
		res *rig.Result
		err error
		dur time.Duration
	}
	done := make(chan struct{})
	out := make(chan outcome, 1)
	go func() {
		defer close(done)
		start := time.Now()
		res, err := s.rig.Run(ctx)
		out <- outcome{res, err, time.Since(start)}
	}()

	if err := viz.Run(ctx, s.rec, s.queue, done, viz.Options{Theme: theme, FPS: frameRate, Duration: cfg.Duration}); err != nil {
		s.log.Error("console failed", slog.Any("error", err))
	}
	s.rig.Channel().RequestStop()
	o := <-out
	return s.finish(o.res, o.err, o.dur)
}

func (s *session) finish(res *rig.Result, runErr error, elapsed time.Duration) error {
	if res == nil {
		return runErr
	}
	records := s.rec.Records()
	scores := metrics.Evaluate(metrics.Standard(s.cfg.Motion.PanVMax, s.cfg.Motion.TiltVMax), records)

	fmt.Printf("completed in %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("stop reason: %s\n", res.Reason)
	fmt.Printf("ticks: %d (t=%.2fs)\n", res.Ticks, res.Time)
	fmt.Printf("final mode: %s\n", res.FinalMode)
	fmt.Printf("frames: %d, detections: %d, tracked objects: %d\n", res.Perception.Frames, res.Perception.Detections, len(res.Objects))
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, scores[name])
	}

	if save {
		st := storage.New(s.cfg.DataDir)
		if err := st.Init(); err != nil {
			return errors.Join(runErr, err)
		}
		runID, err := st.Save(&storage.Run{
			Meta: storage.RunMetadata{
				Name:       runName,
				Actuator:   s.cfg.Actuator,
				Perception: s.cfg.Perception,
				Seed:       s.cfg.Seed,
				Dt:         s.cfg.Dt,
				Duration:   s.cfg.Duration,
				Ticks:      res.Ticks,
				Reason:     string(res.Reason),
				FinalMode:  res.FinalMode.String(),
				Objects:    res.Objects,
				Metrics:    scores,
			},
			Records:    records,
			Detections: res.History,
		})
		if err != nil {
			return errors.Join(runErr, err)
		}
		fmt.Printf("\nrun id: %s\n", runID)
	}
	return runErr
}
