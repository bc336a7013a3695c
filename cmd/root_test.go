package cmd

import (
	"path/filepath"
	"testing"

	"github.com/theirongolddev/fincast/internal/config"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/pipeline"
	"github.com/theirongolddev/fincast/internal/source"
)

func resetFlags(t *testing.T) {
	t.Helper()
	flagScenario, flagWeeks = "", 0
	t.Cleanup(func() {
		flagScenario, flagWeeks = "", 0
		for _, name := range []string{"runs", "seed", "workers"} {
			_ = rootCmd.PersistentFlags().Lookup(name).Value.Set("0")
			rootCmd.PersistentFlags().Lookup(name).Changed = false
		}
	})
}

func TestResolveScenarioDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	resetFlags(t)

	s, path, err := resolveScenario(config.DefaultConfig())
	if err != nil {
		t.Fatalf("resolveScenario: %v", err)
	}
	if path != "" || s != model.DefaultScenario() {
		t.Fatalf("got %+v from %q, want built-in defaults", s, path)
	}
}

func TestResolveScenarioByName(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	resetFlags(t)

	want := model.DefaultScenario()
	want.Name = "gap-year"
	want.AnnualInflow = 0
	file := filepath.Join(config.ScenariosDir(), "gap-year.yaml")
	if err := source.SaveScenario(file, want); err != nil {
		t.Fatalf("SaveScenario: %v", err)
	}

	weeks := 104
	cfg := config.DefaultConfig()
	cfg.Overrides.Weeks = &weeks
	flagScenario = "gap-year"

	s, path, err := resolveScenario(cfg)
	if err != nil {
		t.Fatalf("resolveScenario: %v", err)
	}
	if path != file {
		t.Fatalf("path = %q, want %q", path, file)
	}
	if s.AnnualInflow != 0 || s.Weeks != 104 {
		t.Fatalf("scenario = %+v, want no inflow and 104 weeks", s)
	}

	flagWeeks = 10
	s, _, err = resolveScenario(cfg)
	if err != nil {
		t.Fatalf("resolveScenario: %v", err)
	}
	if s.Weeks != 10 {
		t.Fatalf("--weeks did not win over the config override: %d", s.Weeks)
	}
}

func TestEnsembleOptionsFlagsOverrideConfig(t *testing.T) {
	resetFlags(t)

	cfg := config.DefaultConfig()
	cfg.General.Seed = pipeline.SeedPtr(3)

	opts := ensembleOptions(cfg)
	if opts.Runs != cfg.General.Runs || opts.Seed == nil || *opts.Seed != 3 {
		t.Fatalf("config values not used: %+v", opts)
	}

	flags := rootCmd.PersistentFlags()
	if err := flags.Set("runs", "50"); err != nil {
		t.Fatal(err)
	}
	if err := flags.Set("seed", "0"); err != nil {
		t.Fatal(err)
	}
	opts = ensembleOptions(cfg)
	if opts.Runs != 50 {
		t.Fatalf("Runs = %d, want 50", opts.Runs)
	}
	if opts.Seed == nil || *opts.Seed != 0 {
		t.Fatalf("explicit --seed 0 should be kept, got %v", opts.Seed)
	}
}

func TestHistogramTargets(t *testing.T) {
	out, err := pipeline.RunWithHistory(model.DefaultScenario(), pipeline.Options{Runs: 8, Seed: pipeline.SeedPtr(1)}, nil)
	if err != nil {
		t.Fatalf("RunWithHistory: %v", err)
	}

	all, err := histogramTargets(out, "")
	if err != nil || len(all) != len(model.Accounts) {
		t.Fatalf("default targets = %d, %v", len(all), err)
	}

	for _, which := range []string{"liquid", "Total", "isa", "LISA"} {
		got, err := histogramTargets(out, which)
		if err != nil {
			t.Fatalf("%s: %v", which, err)
		}
		if len(got) != 1 || len(got[0].values) != 8 {
			t.Fatalf("%s: targets = %+v", which, got)
		}
	}

	if _, err := histogramTargets(out, "pension"); err == nil {
		t.Fatal("unknown account should fail")
	}
}
