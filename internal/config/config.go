// Package config reads the application configuration from environment
// variables; the CLI loads a .env file first so local setups stay simple.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config represents the complete application configuration
type Config struct {
	// DatabasePath locates the SQLite calibration store. Empty disables
	// persistence.
	DatabasePath string
	// Workers bounds parallel per-pair estimation; 0 means GOMAXPROCS.
	Workers int
	// Debug switches the logger to development output.
	Debug bool
	// MinDepthRange and MaxGapRatio override the profile acceptance
	// thresholds; zero keeps the defaults (10 m, 0.8).
	MinDepthRange float64
	MaxGapRatio   float64
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DatabasePath: os.Getenv("GLIDERCAL_DB_PATH"),
		Debug:        os.Getenv("GLIDERCAL_DEBUG") == "true",
	}

	var err error
	if cfg.Workers, err = intEnv("GLIDERCAL_WORKERS"); err != nil {
		return nil, err
	}
	if cfg.MinDepthRange, err = floatEnv("GLIDERCAL_MIN_DEPTH_RANGE"); err != nil {
		return nil, err
	}
	if cfg.MaxGapRatio, err = floatEnv("GLIDERCAL_MAX_GAP_RATIO"); err != nil {
		return nil, err
	}
	return cfg, nil
}

func intEnv(key string) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func floatEnv(key string) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
