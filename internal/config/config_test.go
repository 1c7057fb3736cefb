package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Actuator != "sim" {
		t.Errorf("expected sim actuator, got %s", cfg.Actuator)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
	if got := cfg.Ticks(); got != 2000 {
		t.Errorf("expected 2000 ticks, got %d", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative duration", func(c *Config) { c.Duration = -1 }},
		{"zero vmax", func(c *Config) { c.Motion.TiltVMax = 0 }},
		{"zero min move", func(c *Config) { c.Motion.MinMove = 0 }},
		{"serial without port", func(c *Config) { c.Actuator = "serial" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	cfg := DefaultConfig()
	cfg.Motion.PanVMax = 2
	cfg.Serial.Port = "/dev/ttyACM0"
	cfg.Serial.BaudRate = 57600

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Motion.PanVMax != 2 || got.Serial.Port != "/dev/ttyACM0" || got.Serial.BaudRate != 57600 {
		t.Errorf("round trip lost fields: %+v", got)
	}
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("duration: 5\nmotion:\n  pan_vmax: 0.7\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Duration != 5 || cfg.Motion.PanVMax != 0.7 {
		t.Errorf("overrides not applied: %+v", cfg.Motion)
	}
	if cfg.Motion.TiltVMax != 1.2 || cfg.Camera.Width != 640 {
		t.Error("defaults lost")
	}
}

func TestLoadOver_Preset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("serial:\n  port: /dev/ttyS3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadOver(path, GetPreset("bench"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Serial.Port != "/dev/ttyS3" {
		t.Errorf("expected file port, got %q", cfg.Serial.Port)
	}
	if cfg.Perception != "udp" || !cfg.Realtime {
		t.Error("preset values lost")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("bench")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Actuator != "serial" || cfg.Perception != "udp" {
		t.Errorf("unexpected bench transports: %s/%s", cfg.Actuator, cfg.Perception)
	}

	// presets never leak into each other or the defaults
	cfg.Dt = 1
	if GetPreset("bench").Dt != DefaultDt {
		t.Error("preset shares state between calls")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != 3 || presets[0] != "bench" {
		t.Errorf("unexpected presets %v", presets)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PANTRACK_ACTUATOR", "serial")
	t.Setenv("PANTRACK_SERIAL_PORT", "/dev/ttyS3")
	t.Setenv("PANTRACK_DURATION", "12.5")
	t.Setenv("PANTRACK_REALTIME", "true")
	t.Setenv("PANTRACK_UDP_READ_TIMEOUT", "250ms")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatal(err)
	}
	if cfg.Actuator != "serial" || cfg.Serial.Port != "/dev/ttyS3" {
		t.Errorf("string overrides not applied")
	}
	if cfg.Duration != 12.5 || !cfg.Realtime || cfg.UDP.ReadTimeout != 250*time.Millisecond {
		t.Errorf("typed overrides not applied: %+v", cfg)
	}

	t.Setenv("PANTRACK_DURATION", "soon")
	if err := DefaultConfig().ApplyEnv(); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("PANTRACK_TEST_DOTENV=yes\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("PANTRACK_TEST_DOTENV") })

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatal(err)
	}
	if os.Getenv("PANTRACK_TEST_DOTENV") != "yes" {
		t.Error("dotenv value not loaded")
	}
}
