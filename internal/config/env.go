package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const EnvPrefix = "PANTRACK_"

// LoadDotEnv loads .env files into the process environment. Missing files
// are not an error; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides c from PANTRACK_* variables.
func (c *Config) ApplyEnv() error {
	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
	}
	str("ACTUATOR", &c.Actuator)
	str("PERCEPTION", &c.Perception)
	str("SCRIPT", &c.Script)
	str("SERIAL_PORT", &c.Serial.Port)
	str("UDP_ADDR", &c.UDP.Addr)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("METRICS_ADDR", &c.MetricsAddr)
	str("DATA_DIR", &c.DataDir)

	if v, ok := os.LookupEnv(EnvPrefix + "DURATION"); ok {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sDURATION: %w", EnvPrefix, err)
		}
		c.Duration = d
	}
	if v, ok := os.LookupEnv(EnvPrefix + "REALTIME"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sREALTIME: %w", EnvPrefix, err)
		}
		c.Realtime = b
	}
	if v, ok := os.LookupEnv(EnvPrefix + "SERIAL_BAUD"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sSERIAL_BAUD: %w", EnvPrefix, err)
		}
		c.Serial.BaudRate = n
	}
	if v, ok := os.LookupEnv(EnvPrefix + "UDP_READ_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sUDP_READ_TIMEOUT: %w", EnvPrefix, err)
		}
		c.UDP.ReadTimeout = d
	}
	return nil
}
