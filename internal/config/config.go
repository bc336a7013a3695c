// Package config loads and saves the fincast application config.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all fincast configuration.
type Config struct {
	General    GeneralConfig     `toml:"general"`
	Appearance AppearanceConfig  `toml:"appearance"`
	Daemon     DaemonConfig      `toml:"daemon"`
	Overrides  ScenarioOverrides `toml:"overrides"`
}

// GeneralConfig holds projection defaults.
type GeneralConfig struct {
	Runs          int     `toml:"runs"`
	Workers       int     `toml:"workers,omitempty"`
	Seed          *uint64 `toml:"seed,omitempty"`
	ScenarioFile  string  `toml:"scenario_file,omitempty"`
	RecordHistory bool    `toml:"record_history"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DaemonConfig holds settings for the background reprojection service.
type DaemonConfig struct {
	Addr         string `toml:"addr"`
	Schedule     string `toml:"schedule"`
	EventsBuffer int    `toml:"events_buffer"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Runs:          1000,
			RecordHistory: true,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8787",
			Schedule:     "0 6 * * 1",
			EventsBuffer: 200,
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fincast")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fincast")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// ScenariosDir returns the directory searched for named scenario files.
func ScenariosDir() string {
	return filepath.Join(Dir(), "scenarios")
}

// Load reads the config file, returning defaults if it doesn't exist,
// then applies environment variable overrides.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if len(data) > 0 {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	if err := os.MkdirAll(Dir(), 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return toml.NewEncoder(f).Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}
