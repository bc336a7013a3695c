package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variables that take precedence over the config file.
const (
	EnvRuns     = "FINCAST_RUNS"
	EnvSeed     = "FINCAST_SEED"
	EnvScenario = "FINCAST_SCENARIO"
	EnvTheme    = "FINCAST_THEME"
)

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvRuns); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRuns, err)
		}
		cfg.General.Runs = n
	}
	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		cfg.General.Seed = &seed
	}
	if v := os.Getenv(EnvScenario); v != "" {
		cfg.General.ScenarioFile = v
	}
	if v := os.Getenv(EnvTheme); v != "" {
		cfg.Appearance.Theme = v
	}
	return nil
}
