package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/pantrack/internal/actuator"
	"github.com/san-kum/pantrack/internal/associate"
	"github.com/san-kum/pantrack/internal/logging"
	"github.com/san-kum/pantrack/internal/mode"
	"github.com/san-kum/pantrack/internal/perception"
	"github.com/san-kum/pantrack/internal/sim"
	"github.com/san-kum/pantrack/internal/trajectory"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 20.0
	DefaultUDPAddr  = ":9870"
	DefaultDataDir  = "./runs"
)

type Config struct {
	Actuator   string  `yaml:"actuator"`   // sim or serial
	Perception string  `yaml:"perception"` // sim, udp or none
	Dt         float64 `yaml:"dt"`
	// Duration bounds a run in seconds; zero runs until quit.
	Duration float64 `yaml:"duration"`
	Realtime bool    `yaml:"realtime"`
	Script   string  `yaml:"script"`

	Motion MotionConfig      `yaml:"motion"`
	Camera perception.Camera `yaml:"camera"`
	Serial SerialConfig      `yaml:"serial"`
	UDP    UDPConfig         `yaml:"udp"`
	Plant  sim.PlantConfig   `yaml:"plant"`
	World  sim.World         `yaml:"world"`
	// FeedbackNoise is the simulated encoder noise in radians.
	FeedbackNoise float64 `yaml:"feedback_noise"`
	Seed          uint64  `yaml:"seed"`

	Log         logging.Config `yaml:"log"`
	MetricsAddr string         `yaml:"metrics_addr"`
	DataDir     string         `yaml:"data_dir"`
}

type MotionConfig struct {
	PanVMax        float64          `yaml:"pan_vmax"`
	TiltVMax       float64          `yaml:"tilt_vmax"`
	MinMove        float64          `yaml:"min_move"`
	MinTrackMove   float64          `yaml:"min_track_move"`
	InterestPeriod int              `yaml:"interest_period"`
	MatchRadius    associate.Radius `yaml:"match_radius"`
}

type SerialConfig struct {
	Port                 string `yaml:"port"`
	actuator.PortOptions `yaml:",inline"`
}

type UDPConfig struct {
	Addr        string        `yaml:"addr"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

func DefaultConfig() *Config {
	tcfg := trajectory.DefaultConfig()
	mcfg := mode.DefaultConfig()
	return &Config{
		Actuator:   "sim",
		Perception: "sim",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Motion: MotionConfig{
			PanVMax:        tcfg.PanVMax,
			TiltVMax:       tcfg.TiltVMax,
			MinMove:        mcfg.MinMove,
			MinTrackMove:   mcfg.MinTrackMove,
			InterestPeriod: mcfg.InterestPeriod,
			MatchRadius:    associate.DefaultRadius,
		},
		Camera: perception.DefaultCamera(),
		UDP: UDPConfig{
			Addr:        DefaultUDPAddr,
			ReadTimeout: perception.DefaultReadTimeout,
		},
		Plant:   sim.DefaultPlantConfig(),
		World:   sim.DefaultWorld(),
		Log:     logging.Config{Level: "info", Format: "text"},
		DataDir: DefaultDataDir,
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads path on top of base, so keys missing from the file keep
// base's values.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return base, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects configurations the control loop cannot run with.
func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	if c.Duration < 0 {
		return fmt.Errorf("duration must not be negative, got %f", c.Duration)
	}
	if c.Motion.PanVMax <= 0 || c.Motion.TiltVMax <= 0 {
		return fmt.Errorf("velocity limits must be positive, got pan=%f tilt=%f", c.Motion.PanVMax, c.Motion.TiltVMax)
	}
	if c.Motion.MinMove <= 0 || c.Motion.MinTrackMove <= 0 {
		return fmt.Errorf("minimum move durations must be positive")
	}
	if c.Actuator == "serial" && c.Serial.Port == "" {
		return fmt.Errorf("serial actuator needs a port")
	}
	return nil
}

func (c *Config) TrajectoryConfig() trajectory.Config {
	return trajectory.Config{
		Dt:       c.Dt,
		PanVMax:  c.Motion.PanVMax,
		TiltVMax: c.Motion.TiltVMax,
		MinMove:  c.Motion.MinMove,
	}
}

func (c *Config) ModeConfig() mode.Config {
	return mode.Config{
		MinMove:        c.Motion.MinMove,
		MinTrackMove:   c.Motion.MinTrackMove,
		InterestPeriod: c.Motion.InterestPeriod,
	}
}

func (c *Config) ActuatorConfig() sim.ActuatorConfig {
	return sim.ActuatorConfig{
		Dt:       c.Dt,
		Realtime: c.Realtime,
		Noise:    c.FeedbackNoise,
		Seed:     c.Seed,
	}
}

// Ticks is the number of control ticks in Duration, or zero for unbounded.
func (c *Config) Ticks() int {
	if c.Duration <= 0 {
		return 0
	}
	return int(c.Duration/c.Dt + 0.5)
}
