package config

import "sort"

// Presets adjust DefaultConfig for common setups.
var Presets = map[string]func(*Config){
	// bench: hardware link and live camera stream, paced by the motors.
	"bench": func(c *Config) {
		c.Actuator = "serial"
		c.Serial.Port = "/dev/ttyUSB0"
		c.Perception = "udp"
		c.Realtime = true
		c.Duration = 0
	},
	// fast: simulated rig stepped as fast as possible, for CI and scripts.
	"fast": func(c *Config) {
		c.Actuator = "sim"
		c.Perception = "sim"
		c.Realtime = false
		c.Duration = 30
	},
	// lab: simulated rig in wall-clock time with sensor noise.
	"lab": func(c *Config) {
		c.Actuator = "sim"
		c.Perception = "sim"
		c.Realtime = true
		c.FeedbackNoise = 0.002
		c.World.Noise = 3
		c.Duration = 60
	},
}

// GetPreset returns DefaultConfig adjusted by the named preset, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
