package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/theirongolddev/fincast/internal/model"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, k := range []string{EnvRuns, EnvSeed, EnvScenario, EnvTheme} {
		t.Setenv(k, "")
	}
	return dir
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.Runs != 1000 {
		t.Errorf("Runs = %d, want 1000", cfg.General.Runs)
	}
	if cfg.General.Seed != nil {
		t.Errorf("Seed = %v, want nil", *cfg.General.Seed)
	}
	if cfg.Daemon.Schedule != "0 6 * * 1" {
		t.Errorf("Schedule = %q", cfg.Daemon.Schedule)
	}
	if Exists() {
		t.Error("Exists() = true before Save")
	}
}

func TestSaveThenLoad(t *testing.T) {
	dir := isolate(t)

	cfg := DefaultConfig()
	seed := uint64(1) << 62
	weeks := 104
	cfg.General.Runs = 250
	cfg.General.Seed = &seed
	cfg.General.ScenarioFile = "/tmp/plan.yaml"
	cfg.Appearance.Theme = "catppuccin-mocha"
	cfg.Overrides.Weeks = &weeks

	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if Path() != filepath.Join(dir, "fincast", "config.toml") {
		t.Fatalf("Path = %q", Path())
	}
	if !Exists() {
		t.Fatal("Exists() = false after Save")
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.General.Runs != 250 || got.General.Seed == nil || *got.General.Seed != seed {
		t.Errorf("general = %+v", got.General)
	}
	if got.General.ScenarioFile != "/tmp/plan.yaml" {
		t.Errorf("ScenarioFile = %q", got.General.ScenarioFile)
	}
	if got.Appearance.Theme != "catppuccin-mocha" {
		t.Errorf("Theme = %q", got.Appearance.Theme)
	}
	if got.Overrides.Weeks == nil || *got.Overrides.Weeks != 104 {
		t.Errorf("Overrides.Weeks = %v", got.Overrides.Weeks)
	}
	if got.Overrides.ISAMean != nil {
		t.Errorf("Overrides.ISAMean = %v, want unset", *got.Overrides.ISAMean)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "fincast", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[appearance]\ntheme = \"tokyo-night\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Appearance.Theme != "tokyo-night" {
		t.Errorf("Theme = %q", cfg.Appearance.Theme)
	}
	if cfg.General.Runs != 1000 || !cfg.General.RecordHistory {
		t.Errorf("general defaults lost: %+v", cfg.General)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(EnvRuns, "42")
	t.Setenv(EnvSeed, strconv.FormatUint(18446744073709551615, 10))
	t.Setenv(EnvScenario, "/srv/scenario.toml")
	t.Setenv(EnvTheme, "terminal")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.Runs != 42 {
		t.Errorf("Runs = %d, want 42", cfg.General.Runs)
	}
	if cfg.General.Seed == nil || *cfg.General.Seed != 18446744073709551615 {
		t.Errorf("Seed = %v", cfg.General.Seed)
	}
	if cfg.General.ScenarioFile != "/srv/scenario.toml" {
		t.Errorf("ScenarioFile = %q", cfg.General.ScenarioFile)
	}
	if cfg.Appearance.Theme != "terminal" {
		t.Errorf("Theme = %q", cfg.Appearance.Theme)
	}
}

func TestLoad_MalformedEnv(t *testing.T) {
	isolate(t)
	t.Setenv(EnvRuns, "lots")

	if _, err := Load(); err == nil {
		t.Fatal("Load accepted FINCAST_RUNS=lots")
	}

	t.Setenv(EnvRuns, "")
	t.Setenv(EnvSeed, "-1")
	var numErr *strconv.NumError
	if _, err := Load(); !errors.As(err, &numErr) {
		t.Fatalf("Load error = %v, want *strconv.NumError", err)
	}
}

func TestScenarioOverrides_Apply(t *testing.T) {
	base := model.DefaultScenario()

	var none ScenarioOverrides
	if !none.IsEmpty() {
		t.Fatal("zero overrides should be empty")
	}
	if got := none.Apply(base); got != base {
		t.Fatalf("empty Apply changed scenario: %+v", got)
	}

	mean, weeks := 5.5, 260
	o := ScenarioOverrides{ISAMean: &mean, Weeks: &weeks}
	got := o.Apply(base)
	if got.ISAMean != 5.5 || got.Weeks != 260 {
		t.Fatalf("Apply = ISAMean %v Weeks %d", got.ISAMean, got.Weeks)
	}
	if got.LISAMean != base.LISAMean || got.SavingsBalance != base.SavingsBalance {
		t.Fatal("Apply touched fields that were not overridden")
	}
	if base.ISAMean == 5.5 {
		t.Fatal("Apply mutated its input")
	}
}
