package rig

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/san-kum/pantrack/internal/actuator"
	"github.com/san-kum/pantrack/internal/config"
	"github.com/san-kum/pantrack/internal/pantilt"
	"github.com/san-kum/pantrack/internal/perception"
	"github.com/san-kum/pantrack/internal/sim"
)

type ActuatorFactory func(cfg *config.Config, log *slog.Logger) (pantilt.Actuator, error)

// SourceFactory builds a frame source. act is the already opened actuator;
// a nil Source with a nil error means perception is disabled.
type SourceFactory func(cfg *config.Config, act pantilt.Actuator, log *slog.Logger) (perception.Source, error)

// Registry maps transport names to constructors.
type Registry struct {
	actuators map[string]ActuatorFactory
	sources   map[string]SourceFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		actuators: make(map[string]ActuatorFactory),
		sources:   make(map[string]SourceFactory),
	}

	r.actuators["sim"] = func(cfg *config.Config, log *slog.Logger) (pantilt.Actuator, error) {
		plant, err := sim.NewPlant(cfg.Plant)
		if err != nil {
			return nil, err
		}
		return sim.NewActuator(plant, cfg.ActuatorConfig()), nil
	}
	r.actuators["serial"] = func(cfg *config.Config, log *slog.Logger) (pantilt.Actuator, error) {
		return actuator.Open(cfg.Serial.Port, cfg.Serial.PortOptions, log)
	}

	r.sources["none"] = func(*config.Config, pantilt.Actuator, *slog.Logger) (perception.Source, error) {
		return nil, nil
	}
	r.sources["sim"] = func(cfg *config.Config, act pantilt.Actuator, log *slog.Logger) (perception.Source, error) {
		sa, ok := act.(*sim.Actuator)
		if !ok {
			return nil, fmt.Errorf("sim perception needs the sim actuator, got %T", act)
		}
		world := cfg.World
		if world.Seed == 0 {
			world.Seed = cfg.Seed + 1
		}
		return sim.NewCamera(world, cfg.Camera, sa.Plant(), cfg.UDP.ReadTimeout), nil
	}
	r.sources["udp"] = func(cfg *config.Config, act pantilt.Actuator, log *slog.Logger) (perception.Source, error) {
		src, err := perception.ListenUDP(cfg.UDP.Addr, cfg.UDP.ReadTimeout)
		if err != nil {
			return nil, err
		}
		log.Info("listening for frames", "addr", src.Addr().String())
		return src, nil
	}

	return r
}

// RegisterActuator adds or replaces an actuator transport.
func (r *Registry) RegisterActuator(name string, f ActuatorFactory) { r.actuators[name] = f }

// RegisterSource adds or replaces a perception transport.
func (r *Registry) RegisterSource(name string, f SourceFactory) { r.sources[name] = f }

func (r *Registry) Actuator(cfg *config.Config, log *slog.Logger) (pantilt.Actuator, error) {
	fn, ok := r.actuators[cfg.Actuator]
	if !ok {
		return nil, fmt.Errorf("unknown actuator: %s", cfg.Actuator)
	}
	return fn(cfg, log)
}

func (r *Registry) Source(cfg *config.Config, act pantilt.Actuator, log *slog.Logger) (perception.Source, error) {
	name := cfg.Perception
	if name == "" {
		name = "none"
	}
	fn, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("unknown perception source: %s", name)
	}
	return fn(cfg, act, log)
}

func (r *Registry) ListActuators() []string { return sortedKeys(r.actuators) }

func (r *Registry) ListSources() []string { return sortedKeys(r.sources) }

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
